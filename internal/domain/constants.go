package domain

// Product conditions. The marketplace sells both new and second-hand
// furniture; "both" is only valid as a shipping-rule scope, never on a
// product itself.
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
	ConditionBoth = "both"
)

// Shipping rule types
const (
	RuleTypeFlatRate      = "flat_rate"
	RuleTypeDistanceBased = "distance_based"
	RuleTypeZoneBased     = "zone_based"
)

// Category scoping for shipping rules. The old admin UI conflated an empty
// category list with "maybe applies to everything"; the scope field makes the
// intent explicit.
const (
	CategoryScopeAll    = "all"
	CategoryScopeListed = "listed"
)

// Delivery methods
const (
	DeliveryMethodPickup       = "pickup"
	DeliveryMethodHomeDelivery = "home_delivery"
)

// Invoice statuses
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// Reservation statuses
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusExpired   = "expired"
)

// Trade-in request statuses
const (
	TradeInStatusPending   = "pending"
	TradeInStatusReviewed  = "reviewed"
	TradeInStatusOfferMade = "offer_made"
	TradeInStatusAccepted  = "accepted"
	TradeInStatusRejected  = "rejected"
)

// List exports for the enums API
var RuleTypes = []string{
	RuleTypeFlatRate,
	RuleTypeDistanceBased,
	RuleTypeZoneBased,
}

var ProductConditions = []string{
	ConditionNew,
	ConditionUsed,
}

var RuleConditions = []string{
	ConditionNew,
	ConditionUsed,
	ConditionBoth,
}

var DeliveryMethods = []string{
	DeliveryMethodPickup,
	DeliveryMethodHomeDelivery,
}

var InvoiceStatuses = []string{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
}

var ReservationStatuses = []string{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusCompleted,
	ReservationStatusCancelled,
	ReservationStatusExpired,
}

var TradeInStatuses = []string{
	TradeInStatusPending,
	TradeInStatusReviewed,
	TradeInStatusOfferMade,
	TradeInStatusAccepted,
	TradeInStatusRejected,
}
