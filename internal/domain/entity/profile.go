package entity

// Profile is the social profile of an account as served by the social db.
type Profile struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}
