package domain

const (
	RoleTenant   = "TENANT"
	RoleLandlord = "LANDLORD"
	RoleAdmin    = "ADMIN"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

const (
	RevenueStatusPending = "pending"
	RevenueStatusPaid    = "paid"
)

// Unit-type categories priced by AppFeeConfig.
const (
	UnitTypeBedsitter  = "bedsitter"
	UnitTypeOneBedroom = "1br"
	UnitTypeTwoBedroom = "2br"
	UnitTypeAirbnb     = "airbnb"
)

// UnitTypes lists every category a fee can be configured for.
var UnitTypes = []string{UnitTypeBedsitter, UnitTypeOneBedroom, UnitTypeTwoBedroom, UnitTypeAirbnb}

// IsUnitType reports whether s is a known unit-type category.
func IsUnitType(s string) bool {
	for _, t := range UnitTypes {
		if t == s {
			return true
		}
	}
	return false
}

const (
	TargetKindUnit    = "unit"
	TargetKindBooking = "booking"
)

const (
	MethodCodeMpesa = "mpesa"
	MethodCodeBank  = "bank"
)

// Audit actions.
const (
	AuditPaymentCreated     = "payment_created"
	AuditPaymentCompleted   = "payment_completed"
	AuditPaymentFailed      = "payment_failed"
	AuditSettlementRecorded = "settlement_recorded"
)
