package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePostalCode(t *testing.T) {
	assertions := assert.New(t)

	code, err := NormalizePostalCode(" 00620 ")
	assertions.NoError(err)
	assertions.Equal("00620", code)

	_, err = NormalizePostalCode("620")
	assertions.Error(err, "short codes must be rejected, not padded silently")

	_, err = NormalizePostalCode("0062a")
	assertions.Error(err)

	_, err = NormalizePostalCode("006200")
	assertions.Error(err)
}

func TestPostalCodeRange_Matches_InclusiveBounds(t *testing.T) {
	assertions := assert.New(t)

	r, err := NewPostalCodeRange("00100", "00200", "")
	require.NoError(t, err)

	assertions.True(r.Matches("00100"), "start bound is inclusive")
	assertions.True(r.Matches("00200"), "end bound is inclusive")
	assertions.True(r.Matches("00150"))
	assertions.False(r.Matches("00099"))
	assertions.False(r.Matches("00201"))
}

func TestPostalCodeRange_ZeroPaddedOrdering(t *testing.T) {
	// "00099" < "00100" must hold; it only does because codes are
	// fixed-width zero-padded strings.
	r, err := NewPostalCodeRange("00099", "00100", "")
	require.NoError(t, err)

	assert.True(t, r.Matches("00099"))
	assert.True(t, r.Matches("00100"))
	assert.False(t, r.Matches("00101"))
}

func TestNewPostalCodeRange_RejectsInvertedBounds(t *testing.T) {
	_, err := NewPostalCodeRange("00200", "00100", "")
	assert.Error(t, err)
}

func TestParsePostalCodeRanges(t *testing.T) {
	assertions := assert.New(t)

	// Mixed single codes and ranges, mixed separators
	ranges, err := ParsePostalCodeRanges("00100-00200, 00500\n 00620")
	require.NoError(t, err)
	require.Len(t, ranges, 3)

	assertions.Equal(PostalCodeRange{Start: "00100", End: "00200"}, ranges[0])
	assertions.Equal("00500", ranges[1].Start)
	assertions.Equal("00500", ranges[1].End, "single code becomes a degenerate range")
	assertions.Equal("00620", ranges[2].Start)

	// Whitespace-only input yields zero ranges
	ranges, err = ParsePostalCodeRanges("  \n\t , ,")
	assertions.NoError(err)
	assertions.Empty(ranges)

	// Malformed tokens are rejected
	_, err = ParsePostalCodeRanges("00100-abc")
	assertions.Error(err)
	_, err = ParsePostalCodeRanges("1234")
	assertions.Error(err)
}

func TestParseFormatRoundTrip(t *testing.T) {
	input := "00100-00200,00500,00620-00650"

	ranges, err := ParsePostalCodeRanges(input)
	require.NoError(t, err)

	formatted := FormatPostalCodeRanges(ranges)
	assert.Equal(t, input, formatted)

	reparsed, err := ParsePostalCodeRanges(formatted)
	require.NoError(t, err)
	assert.Equal(t, ranges, reparsed)
}

func TestAllFinlandRange(t *testing.T) {
	r := AllFinlandRange()
	assert.Equal(t, "00000", r.Start)
	assert.Equal(t, "99999", r.End)
	assert.True(t, r.Matches("00001"))
	assert.True(t, r.Matches("99999"))
}

func TestShippingZone_MatchesPostalCode(t *testing.T) {
	assertions := assert.New(t)

	zone := &ShippingZone{
		Name: "Helsinki",
		PostalCodes: []PostalCodeRange{
			{Start: "00100", End: "00200"},
			{Start: "00500", End: "00500"},
		},
	}

	assertions.True(zone.MatchesPostalCode("00150"))
	assertions.True(zone.MatchesPostalCode("00500"))
	assertions.False(zone.MatchesPostalCode("00300"))
	assertions.False(zone.MatchesPostalCode("00099"))

	empty := &ShippingZone{Name: "Empty"}
	assertions.False(empty.MatchesPostalCode("00100"), "a zone without ranges matches nothing")
}

func TestShippingRule_Validate(t *testing.T) {
	assertions := assert.New(t)

	rule := &ShippingRule{
		Name:             "Standard",
		RuleType:         RuleTypeFlatRate,
		Priority:         1,
		CategoryScope:    CategoryScopeAll,
		ProductCondition: ConditionBoth,
		FlatRatePrice:    20,
	}
	assertions.NoError(rule.Validate())

	bad := *rule
	bad.Priority = 0
	assertions.Error(bad.Validate())

	bad = *rule
	bad.RuleType = "per_weight"
	assertions.Error(bad.Validate())

	bad = *rule
	bad.CategoryScope = ""
	assertions.Error(bad.Validate())

	bad = *rule
	bad.MinOrderValue = -1
	assertions.Error(bad.Validate())
}

func TestShippingRule_AppliesTo(t *testing.T) {
	assertions := assert.New(t)

	cart := map[string]bool{"cat-sofas": true, "cat-tables": true}

	all := &ShippingRule{CategoryScope: CategoryScopeAll}
	assertions.True(all.AppliesTo(cart))

	listed := &ShippingRule{CategoryScope: CategoryScopeListed, CategoryIDs: []string{"cat-tables"}}
	assertions.True(listed.AppliesTo(cart))

	miss := &ShippingRule{CategoryScope: CategoryScopeListed, CategoryIDs: []string{"cat-beds"}}
	assertions.False(miss.AppliesTo(cart))

	// Listed scope with an empty set matches nothing
	emptyListed := &ShippingRule{CategoryScope: CategoryScopeListed}
	assertions.False(emptyListed.AppliesTo(cart))
}

func TestShippingRule_CoversCondition(t *testing.T) {
	assertions := assert.New(t)

	both := &ShippingRule{ProductCondition: ConditionBoth}
	assertions.True(both.CoversCondition(true, true))

	newOnly := &ShippingRule{ProductCondition: ConditionNew}
	assertions.True(newOnly.CoversCondition(true, false))
	assertions.False(newOnly.CoversCondition(true, true), "mixed carts need a 'both' rule")
	assertions.False(newOnly.CoversCondition(false, true))

	usedOnly := &ShippingRule{ProductCondition: ConditionUsed}
	assertions.True(usedOnly.CoversCondition(false, true))
	assertions.False(usedOnly.CoversCondition(true, false))
}

func TestQuoteRequest_Subtotal(t *testing.T) {
	req := QuoteRequest{
		Items: []QuoteItem{
			{UnitPrice: 50, Quantity: 2},
			{UnitPrice: 20, Quantity: 1},
		},
	}
	assert.Equal(t, 120.0, req.Subtotal())
}
