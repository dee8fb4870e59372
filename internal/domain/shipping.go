package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for shipping resolution. Both unwrap to
// ErrShippingUnavailable: the storefront shows one message, the logs keep the
// distinction.
var (
	ErrShippingUnavailable = errors.New("delivery is not available for this address")
	ErrNoZoneForPostalCode = fmt.Errorf("no shipping zone covers the postal code: %w", ErrShippingUnavailable)
	ErrNoEligibleRule      = fmt.Errorf("no eligible shipping rule for the order: %w", ErrShippingUnavailable)
)

// --- Postal codes ---

// Finnish postal codes are fixed-width 5-digit strings. Zero padding is what
// makes plain string comparison equal to numeric comparison ("00099" < "00100");
// codes must never be compared unpadded.
const postalCodeLen = 5

// NormalizePostalCode trims the input and verifies it is exactly five digits.
func NormalizePostalCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) != postalCodeLen {
		return "", fmt.Errorf("postal code %q must be %d digits", code, postalCodeLen)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("postal code %q contains a non-digit", code)
		}
	}
	return code, nil
}

// PostalCodeRange is an inclusive range of 5-digit postal codes. A single
// code is stored as a degenerate range with Start == End. City is an
// informational label only; it plays no part in matching.
type PostalCodeRange struct {
	Start string `json:"postal_code_start"`
	End   string `json:"postal_code_end"`
	City  string `json:"city,omitempty"`
}

// NewPostalCodeRange validates both bounds and the Start <= End invariant.
func NewPostalCodeRange(start, end, city string) (PostalCodeRange, error) {
	s, err := NormalizePostalCode(start)
	if err != nil {
		return PostalCodeRange{}, err
	}
	e, err := NormalizePostalCode(end)
	if err != nil {
		return PostalCodeRange{}, err
	}
	if s > e {
		return PostalCodeRange{}, fmt.Errorf("postal code range %s-%s: start exceeds end", s, e)
	}
	return PostalCodeRange{Start: s, End: e, City: city}, nil
}

// Matches reports whether code falls inside the range, bounds inclusive.
// The caller is expected to pass a normalized code.
func (r PostalCodeRange) Matches(code string) bool {
	return r.Start <= code && code <= r.End
}

// String renders the range back to admin-input form: "00100" for a single
// code, "00100-00200" otherwise.
func (r PostalCodeRange) String() string {
	if r.Start == r.End {
		return r.Start
	}
	return r.Start + "-" + r.End
}

// AllFinlandRange is the catch-all range produced by the "add all Finland"
// admin convenience.
func AllFinlandRange() PostalCodeRange {
	return PostalCodeRange{Start: "00000", End: "99999"}
}

// ParsePostalCodeRanges parses free-text admin input into ranges. Tokens are
// separated by commas, newlines or whitespace; each token is a single code or
// a hyphenated "start-end" pair. Empty tokens are dropped, so whitespace-only
// input yields zero ranges (a zone that matches nothing).
func ParsePostalCodeRanges(input string) ([]PostalCodeRange, error) {
	fields := strings.FieldsFunc(input, func(c rune) bool {
		return c == ',' || c == '\n' || c == '\r' || c == ' ' || c == '\t'
	})

	var ranges []PostalCodeRange
	for _, token := range fields {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		var r PostalCodeRange
		var err error
		if start, end, found := strings.Cut(token, "-"); found {
			r, err = NewPostalCodeRange(start, end, "")
		} else {
			r, err = NewPostalCodeRange(token, token, "")
		}
		if err != nil {
			return nil, fmt.Errorf("invalid postal code token %q: %w", token, err)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// FormatPostalCodeRanges renders ranges back to a comma-joined token string.
// ParsePostalCodeRanges(FormatPostalCodeRanges(rs)) reproduces rs.
func FormatPostalCodeRanges(ranges []PostalCodeRange) string {
	tokens := make([]string, len(ranges))
	for i, r := range ranges {
		tokens[i] = r.String()
	}
	return strings.Join(tokens, ",")
}

// --- Zones ---

// ShippingZone groups postal-code ranges and carries the driving distance
// from the store. A zone with no ranges matches nothing.
type ShippingZone struct {
	ID                  int32             `json:"id"`
	Name                string            `json:"name"`
	DistanceFromStoreKm float64           `json:"distance_from_store_km"`
	IsActive            bool              `json:"is_active"`
	PostalCodes         []PostalCodeRange `json:"postal_codes"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// MatchesPostalCode reports whether any of the zone's ranges contains code.
func (z *ShippingZone) MatchesPostalCode(code string) bool {
	for _, r := range z.PostalCodes {
		if r.Matches(code) {
			return true
		}
	}
	return false
}

// Validate checks admin input for a zone.
func (z *ShippingZone) Validate() error {
	if strings.TrimSpace(z.Name) == "" {
		return fmt.Errorf("zone name is required")
	}
	if z.DistanceFromStoreKm < 0 {
		return fmt.Errorf("distance_from_store_km must be >= 0")
	}
	for _, r := range z.PostalCodes {
		if _, err := NewPostalCodeRange(r.Start, r.End, r.City); err != nil {
			return err
		}
	}
	return nil
}

// --- Rules ---

// ShippingRule is a pricing strategy scoped by category, product condition
// and minimum order value. Lower priority numbers are evaluated first.
type ShippingRule struct {
	ID               int32   `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	RuleType         string  `json:"rule_type"`
	IsActive         bool    `json:"is_active"`
	Priority         int32   `json:"priority"`
	CategoryScope    string  `json:"category_scope"`
	CategoryIDs      []string `json:"category_ids"`
	ProductCondition string  `json:"product_condition"`
	MinOrderValue    float64 `json:"min_order_value"`

	// flat_rate
	FlatRatePrice float64 `json:"flat_rate_price,omitempty"`
	// distance_based; MaxDistanceKm == 0 means uncapped
	BasePrice     float64 `json:"base_price,omitempty"`
	PricePerKm    float64 `json:"price_per_km,omitempty"`
	MaxDistanceKm float64 `json:"max_distance_km,omitempty"`

	EstimatedDeliveryDays int32     `json:"estimated_delivery_days"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	// ZonePrices is populated on admin reads and may be supplied on writes;
	// rule and overrides are then persisted in one transaction.
	ZonePrices []ShippingZonePrice `json:"zone_prices,omitempty"`
}

// Validate checks admin input for a rule, including cross-field constraints
// the struct tags cannot express.
func (r *ShippingRule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("rule name is required")
	}
	switch r.RuleType {
	case RuleTypeFlatRate, RuleTypeDistanceBased, RuleTypeZoneBased:
	default:
		return fmt.Errorf("unknown rule_type %q", r.RuleType)
	}
	if r.Priority < 1 {
		return fmt.Errorf("priority must be >= 1")
	}
	switch r.CategoryScope {
	case CategoryScopeAll, CategoryScopeListed:
	default:
		return fmt.Errorf("unknown category_scope %q", r.CategoryScope)
	}
	switch r.ProductCondition {
	case ConditionNew, ConditionUsed, ConditionBoth:
	default:
		return fmt.Errorf("unknown product_condition %q", r.ProductCondition)
	}
	if r.MinOrderValue < 0 {
		return fmt.Errorf("min_order_value must be >= 0")
	}
	if r.EstimatedDeliveryDays < 0 {
		return fmt.Errorf("estimated_delivery_days must be >= 0")
	}
	if r.FlatRatePrice < 0 || r.BasePrice < 0 || r.PricePerKm < 0 || r.MaxDistanceKm < 0 {
		return fmt.Errorf("prices and distances must be >= 0")
	}
	return nil
}

// AppliesTo reports whether the rule's category scope covers a cart whose
// items span cartCategoryIDs. A "listed" scope with an empty list matches
// nothing; rules meant to cover everything must say so with scope "all".
func (r *ShippingRule) AppliesTo(cartCategoryIDs map[string]bool) bool {
	if r.CategoryScope == CategoryScopeAll {
		return true
	}
	for _, id := range r.CategoryIDs {
		if cartCategoryIDs[id] {
			return true
		}
	}
	return false
}

// CoversCondition reports whether the rule's condition scope covers every
// item in the cart. A mixed new/used cart is only covered by "both".
func (r *ShippingRule) CoversCondition(hasNew, hasUsed bool) bool {
	switch r.ProductCondition {
	case ConditionBoth:
		return true
	case ConditionNew:
		return !hasUsed
	case ConditionUsed:
		return !hasNew
	}
	return false
}

// --- Zone price overrides ---

// ShippingZonePrice binds an override price to a (rule, zone) pair. At most
// one row exists per pair; writes go through upsert.
type ShippingZonePrice struct {
	ID              int32   `json:"id"`
	ShippingRuleID  int32   `json:"shipping_rule_id"`
	ShippingZoneID  int32   `json:"shipping_zone_id"`
	OverridePrice   float64 `json:"override_price"`
	OverrideEnabled bool    `json:"override_enabled"`
}

func (p *ShippingZonePrice) Validate() error {
	if p.ShippingZoneID == 0 {
		return fmt.Errorf("shipping_zone_id is required")
	}
	if p.OverridePrice < 0 {
		return fmt.Errorf("override_price must be >= 0")
	}
	return nil
}

// --- Quotes ---

// QuoteItem is one cart line as seen by shipping resolution.
type QuoteItem struct {
	ProductID   string
	CategoryIDs []string
	Condition   string
	UnitPrice   float64
	Quantity    int
}

// QuoteRequest is the input to shipping resolution.
type QuoteRequest struct {
	PostalCode     string
	DeliveryMethod string
	Items          []QuoteItem
}

// Subtotal is the order value the min_order_value scoping is checked against.
func (q QuoteRequest) Subtotal() float64 {
	var total float64
	for _, item := range q.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// ShippingQuote is the outcome of resolution. When Available is false, Cost
// is meaningless and Message carries the user-facing reason.
type ShippingQuote struct {
	Available             bool    `json:"available"`
	Cost                  float64 `json:"total_cost"`
	RuleID                int32   `json:"rule_id,omitempty"`
	RuleName              string  `json:"rule_name,omitempty"`
	EstimatedDeliveryDays int32   `json:"estimated_delivery_days,omitempty"`
	Message               string  `json:"message,omitempty"`
}

// --- Repository ---

type ShippingRepository interface {
	// Zones
	GetAllZones(ctx context.Context) ([]ShippingZone, error)
	GetActiveZones(ctx context.Context) ([]ShippingZone, error)
	GetZoneByID(ctx context.Context, id int32) (*ShippingZone, error)
	CreateZone(ctx context.Context, zone *ShippingZone) (*ShippingZone, error)
	UpdateZone(ctx context.Context, zone *ShippingZone) (*ShippingZone, error)
	DeleteZone(ctx context.Context, id int32) error

	// Rules
	GetAllRules(ctx context.Context) ([]ShippingRule, error)
	GetActiveRules(ctx context.Context) ([]ShippingRule, error)
	GetRuleByID(ctx context.Context, id int32) (*ShippingRule, error)
	CreateRule(ctx context.Context, rule *ShippingRule) (*ShippingRule, error)
	UpdateRule(ctx context.Context, rule *ShippingRule) (*ShippingRule, error)
	DeleteRule(ctx context.Context, id int32) error

	// Zone price overrides
	GetAllZonePrices(ctx context.Context) ([]ShippingZonePrice, error)
	GetZonePricesByRule(ctx context.Context, ruleID int32) ([]ShippingZonePrice, error)
	UpsertZonePrice(ctx context.Context, price *ShippingZonePrice) (*ShippingZonePrice, error)
	UpdateZonePrice(ctx context.Context, price *ShippingZonePrice) (*ShippingZonePrice, error)
	ReplaceZonePricesForRule(ctx context.Context, ruleID int32, prices []ShippingZonePrice) error
}
