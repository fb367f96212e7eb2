package entity

import (
	"crypto/md5"
	"fmt"
)

// Listing is the authoritative sale offer for a single asset. Records are
// never deleted; a settled or withdrawn listing stays behind with
// IsActive=false and is overwritten by the next List on the same key.
type Listing struct {
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Price    uint64 `json:"price"`
	Seller   string `json:"seller"`
	IsActive bool   `json:"isActive"`
}

func (l Listing) Key() ListingKey {
	return ListingKey{Contract: l.Contract, TokenId: l.TokenId}
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.Contract, l.TokenId)
}

// ListingKey identifies a listing by (collection contract, token id). Keying
// on the pair keeps two collections that share a numeric token id apart.
type ListingKey struct {
	Contract string
	TokenId  uint64
}

func (k ListingKey) String() string {
	return fmt.Sprintf("%s-%d", k.Contract, k.TokenId)
}

func CreateListingSlug(contract string, tokenId uint64) string {
	data := []byte(fmt.Sprintf("listing-%s-%d", contract, tokenId))
	return fmt.Sprintf("%x", md5.Sum(data))
}
