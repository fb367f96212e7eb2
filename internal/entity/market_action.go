package entity

import (
	"crypto/md5"
	"fmt"
	"time"
)

// MarketAction is an append-only fact emitted by the marketplace core for
// external observers and indexers. The core never reads these back.
type MarketAction struct {
	Contract   string     `json:"contract"`
	TokenId    uint64     `json:"tokenId"`
	Action     ActionType `json:"action"`
	Seller     string     `json:"seller"`
	Buyer      string     `json:"buyer"`
	Price      uint64     `json:"price"`
	Fee        uint64     `json:"fee"`
	Operator   string     `json:"operator"`
	OccurredAt time.Time  `json:"occurredAt"`
}

type ActionType string

const (
	ListedAction       ActionType = "listed"
	PriceChangedAction ActionType = "priceChanged"
	DelistedAction     ActionType = "delisted"
	SoldAction         ActionType = "sold"
	FeeCollectedAction ActionType = "feeCollected"

	CollectionAddedAction   ActionType = "collectionAdded"
	CollectionRemovedAction ActionType = "collectionRemoved"
)

func (a MarketAction) Slug() string {
	return CreateMarketActionSlug(a.Contract, a.TokenId, string(a.Action), a.OccurredAt.UnixNano())
}

func CreateMarketActionSlug(contract string, tokenId uint64, action string, nanos int64) string {
	data := []byte(fmt.Sprintf("marketaction-%s-%d-%s-%d", contract, tokenId, action, nanos))
	return fmt.Sprintf("%x", md5.Sum(data))
}
