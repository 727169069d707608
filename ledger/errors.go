package ledger

import (
	"errors"
	"fmt"

	"github.com/trustvest/trustvest/risk"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrFraudBlocked      = errors.New("blocked by fraud rule")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrUnknownAsset      = errors.New("unknown asset")
)

// FraudBlockedError is returned when a preventive rule stops an action. It
// matches ErrFraudBlocked under errors.Is and carries the recorded signal.
type FraudBlockedError struct {
	Signal risk.Signal
}

func (e *FraudBlockedError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrFraudBlocked, e.Signal.Type, e.Signal.Description)
}

func (e *FraudBlockedError) Is(target error) bool { return target == ErrFraudBlocked }
