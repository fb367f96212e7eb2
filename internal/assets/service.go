package assets

import (
	"errors"
)

var (
	ErrTransferRejected = errors.New("asset transfer rejected")
)

// Service is the external asset-ownership registry. The marketplace only
// needs to resolve current owners and move assets in and out of custody;
// everything else about the registry is out of scope.
type Service interface {
	OwnerOf(contract string, tokenId uint64) (string, error)
	Transfer(contract string, tokenId uint64, from, to string) error
}

type service struct {
	provider *Provider
}

func NewAssetService(provider *Provider) Service {
	return service{provider}
}

func (s service) OwnerOf(contract string, tokenId uint64) (string, error) {
	return s.provider.GetOwner(contract, tokenId)
}

func (s service) Transfer(contract string, tokenId uint64, from, to string) error {
	return s.provider.RequestTransfer(contract, tokenId, from, to)
}
