package registry

import (
	"time"

	"givechain.org/internal/chain"
)

// MethodType enumerates supported payment method kinds.
type MethodType string

// MethodETH is the only supported kind: an Ethereum private key used as the
// transaction sender.
const MethodETH MethodType = "ETH"

// Valid reports whether the type is a known kind.
func (t MethodType) Valid() bool { return t == MethodETH }

// PaymentMethod is a user's registered signing credential. Ownership is
// immutable for the lifetime of the row.
type PaymentMethod struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      MethodType       `json:"type"`
	Key       chain.PrivateKey `json:"-"`
	CreatedAt time.Time        `json:"created_at"`
}

// Foundation is a registered donation recipient. Foundations are global:
// no user owns them.
type Foundation struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	PaymentAddress string    `json:"payment_address"`
	CreatedAt      time.Time `json:"created_at"`
}

// PaymentRule binds a payment method to a foundation with a fixed amount in
// ether, kept as its decimal string form. A rule is transitively owned by
// the user who owns its payment method.
type PaymentRule struct {
	ID              int64     `json:"id"`
	PaymentMethodID int64     `json:"payment_method_id"`
	FoundationID    int64     `json:"foundation_id"`
	Amount          string    `json:"amount"`
	CreatedAt       time.Time `json:"created_at"`
}

// RuleResolution carries everything a trigger needs, resolved through the
// ownership closure in one step.
type RuleResolution struct {
	Rule       PaymentRule
	Method     PaymentMethod
	Foundation Foundation
}
