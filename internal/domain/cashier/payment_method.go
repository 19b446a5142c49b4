package cashier

// PaymentMethodType classifies payment methods as defined by the
// payment-methods catalog. Payments store a snapshot of the type so
// aggregation never needs to join the external catalog.
type PaymentMethodType string

const (
	MethodTypeCash            PaymentMethodType = "CASH"
	MethodTypeCard            PaymentMethodType = "CARD"
	MethodTypeBankTransfer    PaymentMethodType = "BANK_TRANSFER"
	MethodTypeCheck           PaymentMethodType = "CHECK"
	MethodTypeInternalCredit  PaymentMethodType = "INTERNAL_CREDIT"
	MethodTypeDeferredPayment PaymentMethodType = "DEFERRED_PAYMENT"
	MethodTypeOther           PaymentMethodType = "OTHER"
)

// IsValid checks if the method type is a known PaymentMethodType
func (t PaymentMethodType) IsValid() bool {
	switch t {
	case MethodTypeCash, MethodTypeCard, MethodTypeBankTransfer, MethodTypeCheck,
		MethodTypeInternalCredit, MethodTypeDeferredPayment, MethodTypeOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethodType
func (t PaymentMethodType) String() string {
	return string(t)
}

// IsVerifiable returns true if payments of this method type require an
// independent verification before a session can be trusted as closed
func (t PaymentMethodType) IsVerifiable() bool {
	return t == MethodTypeCard || t == MethodTypeBankTransfer || t == MethodTypeCheck
}

// IsDeferred returns true if the method itself defers collection (the amount
// becomes a debt instead of money in the drawer)
func (t PaymentMethodType) IsDeferred() bool {
	return t == MethodTypeDeferredPayment
}

// VerifiableMethodTypes lists the method types subject to the verification workflow
func VerifiableMethodTypes() []PaymentMethodType {
	return []PaymentMethodType{MethodTypeCard, MethodTypeBankTransfer, MethodTypeCheck}
}
