package market

import (
	"errors"
	"sync"

	"github.com/nftbazaar/marketplace/internal/assets"
	"github.com/nftbazaar/marketplace/internal/entity"
	"github.com/nftbazaar/marketplace/internal/event"
	"github.com/nftbazaar/marketplace/internal/factory"
	"go.uber.org/zap"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrNotSeller       = errors.New("caller is not the seller")

	// Custody transfers are refused by the external registry, not by us.
	ErrTransferRejected = assets.ErrTransferRejected
)

// Ledger is the authoritative record of listings. While a listing is active
// the asset sits in marketplace custody; the stored seller field is the sole
// source of authorization truth for ChangePrice and Unlist, the external
// registry is never re-queried once custody has been taken.
//
// Every operation on a listing runs under that listing's own lock, so two
// concurrent calls on the same asset serialize and exactly one of two racing
// settlements can win.
type Ledger interface {
	List(contract string, tokenId uint64, price uint64, caller string) error
	ChangePrice(contract string, tokenId uint64, newPrice uint64, caller string) error
	Unlist(contract string, tokenId uint64, caller string) error
	Get(contract string, tokenId uint64) (entity.Listing, error)

	// Settle runs fn against the active listing for the key and deactivates
	// the record if fn succeeds, all under the key's lock. A missing or
	// inactive listing fails with ErrListingNotFound before fn runs.
	Settle(contract string, tokenId uint64, fn func(listing entity.Listing) error) error
}

type ledger struct {
	gate      Gate
	registry  assets.Service
	custodian string

	mu       sync.Mutex
	listings map[entity.ListingKey]*entity.Listing
	locks    map[entity.ListingKey]*sync.Mutex
}

func NewLedger(gate Gate, registry assets.Service, custodian string) Ledger {
	return &ledger{
		gate:      gate,
		registry:  registry,
		custodian: custodian,
		listings:  make(map[entity.ListingKey]*entity.Listing),
		locks:     make(map[entity.ListingKey]*sync.Mutex),
	}
}

func (l *ledger) List(contract string, tokenId uint64, price uint64, caller string) error {
	if !l.gate.IsCollectionSupported(contract) {
		return ErrUnsupportedCollection
	}

	if price == 0 {
		return ErrInvalidPrice
	}

	key := entity.ListingKey{Contract: contract, TokenId: tokenId}
	lock := l.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	owner, err := l.registry.OwnerOf(contract, tokenId)
	if err != nil {
		zap.L().With(zap.String("contract", contract), zap.Uint64("tokenId", tokenId), zap.Error(err)).Error("Ledger: owner lookup failed")
		return err
	}
	if owner != caller {
		return ErrNotSeller
	}

	if err := l.registry.Transfer(contract, tokenId, caller, l.custodian); err != nil {
		return err
	}

	// Overwrites any stale inactive record for the key.
	listing := entity.Listing{
		Contract: contract,
		TokenId:  tokenId,
		Price:    price,
		Seller:   caller,
		IsActive: true,
	}
	l.write(listing)

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", caller),
		zap.Uint64("price", price),
	).Info("Ledger: listed")

	event.EmitEvent(event.ListedEvent, factory.CreateListedAction(listing))

	return nil
}

func (l *ledger) ChangePrice(contract string, tokenId uint64, newPrice uint64, caller string) error {
	if !l.gate.IsCollectionSupported(contract) {
		return ErrUnsupportedCollection
	}

	key := entity.ListingKey{Contract: contract, TokenId: tokenId}
	lock := l.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	listing, ok := l.read(key)
	if !ok || !listing.IsActive {
		return ErrListingNotFound
	}

	if newPrice == 0 {
		return ErrInvalidPrice
	}
	if caller != listing.Seller {
		return ErrNotSeller
	}

	listing.Price = newPrice
	l.write(listing)

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.Uint64("price", newPrice),
	).Info("Ledger: price changed")

	event.EmitEvent(event.PriceChangedEvent, factory.CreatePriceChangedAction(listing))

	return nil
}

func (l *ledger) Unlist(contract string, tokenId uint64, caller string) error {
	if !l.gate.IsCollectionSupported(contract) {
		return ErrUnsupportedCollection
	}

	key := entity.ListingKey{Contract: contract, TokenId: tokenId}
	lock := l.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	listing, ok := l.read(key)
	if !ok || !listing.IsActive {
		return ErrListingNotFound
	}
	if caller != listing.Seller {
		return ErrNotSeller
	}

	// Should always succeed while we hold custody, but a refusal must reach
	// the caller, never be swallowed.
	if err := l.registry.Transfer(contract, tokenId, l.custodian, caller); err != nil {
		zap.L().With(zap.String("contract", contract), zap.Uint64("tokenId", tokenId), zap.Error(err)).Error("Ledger: custody return rejected")
		return err
	}

	listing.IsActive = false
	l.write(listing)

	zap.L().With(zap.String("contract", contract), zap.Uint64("tokenId", tokenId)).Info("Ledger: delisted")

	event.EmitEvent(event.DelistedEvent, factory.CreateDelistedAction(listing))

	return nil
}

func (l *ledger) Get(contract string, tokenId uint64) (entity.Listing, error) {
	key := entity.ListingKey{Contract: contract, TokenId: tokenId}
	lock := l.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	listing, ok := l.read(key)
	if !ok || !listing.IsActive {
		// A never-listed asset and an already-settled one look the same.
		return entity.Listing{}, ErrListingNotFound
	}

	return listing, nil
}

func (l *ledger) Settle(contract string, tokenId uint64, fn func(listing entity.Listing) error) error {
	key := entity.ListingKey{Contract: contract, TokenId: tokenId}
	lock := l.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	listing, ok := l.read(key)
	if !ok || !listing.IsActive {
		return ErrListingNotFound
	}

	if err := fn(listing); err != nil {
		return err
	}

	listing.IsActive = false
	l.write(listing)

	return nil
}

func (l *ledger) lockFor(key entity.ListingKey) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}

	return lock
}

func (l *ledger) read(key entity.ListingKey) (entity.Listing, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	listing, ok := l.listings[key]
	if !ok {
		return entity.Listing{}, false
	}

	return *listing, true
}

func (l *ledger) write(listing entity.Listing) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.listings[listing.Key()] = &listing
}
