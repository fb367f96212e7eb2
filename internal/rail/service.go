package rail

import (
	"errors"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Service is the external value-transfer rail. A Pay either credits the
// recipient in full or fails; failed deposits are attributed back to the
// original payer by the rail itself.
type Service interface {
	Pay(to string, amount uint64) error
}

type service struct {
	provider *Provider
}

func NewRailService(provider *Provider) Service {
	return service{provider}
}

func (s service) Pay(to string, amount uint64) error {
	return s.provider.RequestPayment(to, amount)
}
