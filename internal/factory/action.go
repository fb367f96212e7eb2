package factory

import (
	"time"

	"github.com/nftbazaar/marketplace/internal/entity"
)

func CreateListedAction(listing entity.Listing) entity.MarketAction {
	return entity.MarketAction{
		Contract:   listing.Contract,
		TokenId:    listing.TokenId,
		Action:     entity.ListedAction,
		Seller:     listing.Seller,
		Price:      listing.Price,
		OccurredAt: time.Now().UTC(),
	}
}

func CreatePriceChangedAction(listing entity.Listing) entity.MarketAction {
	return entity.MarketAction{
		Contract:   listing.Contract,
		TokenId:    listing.TokenId,
		Action:     entity.PriceChangedAction,
		Seller:     listing.Seller,
		Price:      listing.Price,
		OccurredAt: time.Now().UTC(),
	}
}

func CreateDelistedAction(listing entity.Listing) entity.MarketAction {
	return entity.MarketAction{
		Contract:   listing.Contract,
		TokenId:    listing.TokenId,
		Action:     entity.DelistedAction,
		Seller:     listing.Seller,
		OccurredAt: time.Now().UTC(),
	}
}

func CreateSoldAction(listing entity.Listing, buyer string, fee uint64) entity.MarketAction {
	return entity.MarketAction{
		Contract:   listing.Contract,
		TokenId:    listing.TokenId,
		Action:     entity.SoldAction,
		Seller:     listing.Seller,
		Buyer:      buyer,
		Price:      listing.Price,
		Fee:        fee,
		OccurredAt: time.Now().UTC(),
	}
}

func CreateFeeCollectedAction(listing entity.Listing, operator string, fee uint64) entity.MarketAction {
	return entity.MarketAction{
		Contract:   listing.Contract,
		TokenId:    listing.TokenId,
		Action:     entity.FeeCollectedAction,
		Operator:   operator,
		Fee:        fee,
		OccurredAt: time.Now().UTC(),
	}
}

func CreateCollectionAction(contract, operator string, action entity.ActionType) entity.MarketAction {
	return entity.MarketAction{
		Contract:   contract,
		Action:     action,
		Operator:   operator,
		OccurredAt: time.Now().UTC(),
	}
}
