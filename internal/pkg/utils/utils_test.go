package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYocto(t *testing.T) {
	d, err := ParseYocto("1000000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000000", d.String())

	d, err = ParseYocto("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseYocto("not-a-number")
	assert.Error(t, err)
}

func TestYoctoTokenRoundTrip(t *testing.T) {
	yocto, err := ParseYocto("2500000000000000000000000")
	require.NoError(t, err)

	tokens := YoctoToToken(yocto)
	assert.Equal(t, "2.5", tokens.String())
	assert.Equal(t, "2500000000000000000000000", TokenToYocto(tokens).String())
}

func TestYoctoTokenRoundTripExactToTheLastDigit(t *testing.T) {
	// 1 NEAR plus a single yocto: the conversion needs all 24 fractional
	// places, nothing may be rounded away.
	cases := []string{
		"1000000000000000000000001",
		"1",
		"999999999999999999999999",
		"123456789012345678901234567",
	}
	for _, raw := range cases {
		yocto, err := ParseYocto(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, TokenToYocto(YoctoToToken(yocto)).String(), raw)
	}
}

func TestReadableAmount(t *testing.T) {
	d, err := ReadableAmount("1500000", 6)
	require.NoError(t, err)
	assert.Equal(t, "1.5", d.String())

	d, err = ReadableAmount("", 18)
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = ReadableAmount("42", 0)
	require.NoError(t, err)
	assert.Equal(t, "42", d.String())
}

func TestClampZero(t *testing.T) {
	assert.True(t, ClampZero(decimal.NewFromInt(-1)).IsZero())
	assert.Equal(t, "3", ClampZero(decimal.NewFromInt(3)).String())
	assert.True(t, ClampZero(decimal.Zero).IsZero())
}

func TestBatchStrings(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	batches := BatchStrings(items, 2)
	require.Len(t, batches, 3)
	assert.Equal(t, []string{"a", "b"}, batches[0])
	assert.Equal(t, []string{"c", "d"}, batches[1])
	assert.Equal(t, []string{"e"}, batches[2])

	assert.Len(t, BatchStrings(items, 10), 1)
	assert.Len(t, BatchStrings(items, 0), 1, "non-positive batch size means one batch")
	assert.Empty(t, BatchStrings(nil, 3))
}

func TestIsValidAccountID(t *testing.T) {
	valid := []string{
		"example.near",
		"treasury.sputnik-dao.near",
		"a2",
		"sub_account.example.near",
		"d6d8a4615737815082b487c61f6f744f107b1e60.lockup.near",
	}
	for _, id := range valid {
		assert.True(t, IsValidAccountID(id), id)
	}

	invalid := []string{
		"",
		"x",
		"UPPER.near",
		".near",
		"double..dot.near",
		"trailing-.near",
		"has space.near",
		"waytoolongwaytoolongwaytoolongwaytoolongwaytoolongwaytoolong.near.extra",
	}
	for _, id := range invalid {
		assert.False(t, IsValidAccountID(id), id)
	}
}

func TestIsValidTargetAddress(t *testing.T) {
	assert.True(t, IsValidTargetAddress("eth", "0x52908400098527886E0F7030069857D2E4169EE7"))
	assert.False(t, IsValidTargetAddress("eth", "0x123"))
	assert.False(t, IsValidTargetAddress("base", "example.near"))

	assert.True(t, IsValidTargetAddress("near", "example.near"))
	assert.False(t, IsValidTargetAddress("near", "Example.Near"))

	// Unknown chains only require non-emptiness.
	assert.True(t, IsValidTargetAddress("sol", "4Nd1mYbCVVq2..."))
	assert.False(t, IsValidTargetAddress("sol", ""))
}
