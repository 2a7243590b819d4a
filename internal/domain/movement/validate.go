package movement

import "errors"

// Validation errors for transaction input. Each maps to a malformed-request
// outcome; none of them ever reaches the store.
var (
	ErrInvalidAmount      = errors.New("amount must be a positive integer")
	ErrInvalidKind        = errors.New(`kind must be "c" or "d"`)
	ErrInvalidDescription = errors.New("description must be between 1 and 10 characters")
)

// Maximum description length in characters
const MaxDescriptionLen = 10

// NewTransactionInput validates and normalizes a decoded transaction request.
// It is a pure function: all rules must hold or the first violated one is
// returned and nothing else happens.
func NewTransactionInput(amount int64, kind string, description string) (TransactionInput, error) {
	if amount <= 0 {
		return TransactionInput{}, ErrInvalidAmount
	}

	k := Kind(kind)
	if !k.Valid() {
		return TransactionInput{}, ErrInvalidKind
	}

	if len(description) < 1 || len(description) > MaxDescriptionLen {
		return TransactionInput{}, ErrInvalidDescription
	}

	return TransactionInput{
		Amount:      amount,
		Kind:        k,
		Description: description,
	}, nil
}
