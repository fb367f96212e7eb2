package market

import (
	"errors"

	"github.com/nftbazaar/marketplace/internal/assets"
	"github.com/nftbazaar/marketplace/internal/entity"
	"github.com/nftbazaar/marketplace/internal/event"
	"github.com/nftbazaar/marketplace/internal/factory"
	"github.com/nftbazaar/marketplace/internal/rail"
	"go.uber.org/zap"
)

var (
	ErrInvalidPayment = errors.New("payment does not match listing price")
)

// Settlement executes the atomic purchase protocol: exact payment in, asset
// out of custody to the buyer, price split between seller and operator. All
// of it happens under the listing's lock, so a concurrent Buy on the same
// asset either wins outright or observes the listing already gone.
type Settlement interface {
	Buy(contract string, tokenId uint64, caller string, paidAmount uint64) error
}

type settlement struct {
	gate     Gate
	ledger   Ledger
	registry assets.Service
	payments rail.Service

	custodian string
}

func NewSettlement(gate Gate, ledger Ledger, registry assets.Service, payments rail.Service, custodian string) Settlement {
	return settlement{gate, ledger, registry, payments, custodian}
}

func (s settlement) Buy(contract string, tokenId uint64, caller string, paidAmount uint64) error {
	if !s.gate.IsCollectionSupported(contract) {
		return ErrUnsupportedCollection
	}

	var sold entity.Listing
	var feeAmount uint64

	err := s.ledger.Settle(contract, tokenId, func(listing entity.Listing) error {
		if paidAmount != listing.Price {
			return ErrInvalidPayment
		}

		// One snapshot of the fee percentage covers both amounts.
		feePct := s.gate.FeePercentage()
		feeAmount = listing.Price * feePct / 100
		if feeAmount > listing.Price {
			// A fee percentage above 100 owes the operator more than the
			// escrowed payment can cover.
			zap.L().With(zap.Uint64("feePercentage", feePct), zap.Uint64("price", listing.Price)).Warn("Settlement: fee exceeds price")
			return rail.ErrInsufficientFunds
		}
		sellerAmount := listing.Price - feeAmount

		if err := s.registry.Transfer(contract, tokenId, s.custodian, caller); err != nil {
			return err
		}

		if err := s.payments.Pay(listing.Seller, sellerAmount); err != nil {
			s.rollbackCustody(contract, tokenId, caller)
			return err
		}
		if err := s.payments.Pay(s.gate.Operator(), feeAmount); err != nil {
			s.rollbackCustody(contract, tokenId, caller)
			return err
		}

		sold = listing
		return nil
	})
	if err != nil {
		return err
	}

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", sold.Seller),
		zap.String("buyer", caller),
		zap.Uint64("price", sold.Price),
		zap.Uint64("fee", feeAmount),
	).Info("Settlement: sold")

	event.EmitEvent(event.SoldEvent, factory.CreateSoldAction(sold, caller, feeAmount))
	event.EmitEvent(event.FeeCollectedEvent, factory.CreateFeeCollectedAction(sold, s.gate.Operator(), feeAmount))

	return nil
}

// rollbackCustody undoes the custody transfer of a settlement whose payment
// leg failed. The rail attributes its own failed deposits back to the payer.
func (s settlement) rollbackCustody(contract string, tokenId uint64, buyer string) {
	if err := s.registry.Transfer(contract, tokenId, buyer, s.custodian); err != nil {
		zap.L().With(
			zap.String("contract", contract),
			zap.Uint64("tokenId", tokenId),
			zap.String("buyer", buyer),
			zap.Error(err),
		).Error("Settlement: custody rollback failed, asset held outside custody")
	}
}
