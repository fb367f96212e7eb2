package market

import (
	"errors"
	"sync"

	"github.com/nftbazaar/marketplace/internal/entity"
	"github.com/nftbazaar/marketplace/internal/event"
	"github.com/nftbazaar/marketplace/internal/factory"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var (
	ErrNotAuthorized         = errors.New("not authorized")
	ErrUnsupportedCollection = errors.New("collection not supported")
)

// Gate guards every asset-touching operation. Only assets from collections
// the operator has approved are ever taken into custody. It also carries the
// operator-owned marketplace configuration: the fee percentage and the
// operator identity itself.
type Gate interface {
	IsCollectionSupported(contract string) bool
	AddSupportedContract(contract, caller string) error
	RemoveSupportedContract(contract, caller string) error

	FeePercentage() uint64
	SetFeePercentage(pct uint64, caller string) error

	Operator() string
}

type gate struct {
	supported *cache.Cache
	operator  string

	mu  sync.RWMutex
	fee uint64
}

func NewGate(operator string, feePercentage uint64) Gate {
	return &gate{
		supported: cache.New(cache.NoExpiration, cache.NoExpiration),
		operator:  operator,
		fee:       feePercentage,
	}
}

func (g *gate) IsCollectionSupported(contract string) bool {
	_, found := g.supported.Get(contract)
	return found
}

func (g *gate) AddSupportedContract(contract, caller string) error {
	if caller != g.operator {
		zap.L().With(zap.String("contract", contract), zap.String("caller", caller)).Warn("Gate: unauthorized add")
		return ErrNotAuthorized
	}

	g.supported.Set(contract, true, cache.NoExpiration)
	zap.L().With(zap.String("contract", contract)).Info("Gate: collection supported")

	event.EmitEvent(event.CollectionAddedEvent, factory.CreateCollectionAction(contract, g.operator, entity.CollectionAddedAction))

	return nil
}

func (g *gate) RemoveSupportedContract(contract, caller string) error {
	if caller != g.operator {
		zap.L().With(zap.String("contract", contract), zap.String("caller", caller)).Warn("Gate: unauthorized remove")
		return ErrNotAuthorized
	}

	g.supported.Delete(contract)
	zap.L().With(zap.String("contract", contract)).Info("Gate: collection removed")

	event.EmitEvent(event.CollectionRemovedEvent, factory.CreateCollectionAction(contract, g.operator, entity.CollectionRemovedAction))

	return nil
}

func (g *gate) FeePercentage() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.fee
}

// SetFeePercentage accepts any value, including percentages above 100. A fee
// above 100 makes every settlement owe the operator more than the price; the
// original system behaves the same way, so the gate does not range-check.
func (g *gate) SetFeePercentage(pct uint64, caller string) error {
	if caller != g.operator {
		return ErrNotAuthorized
	}

	g.mu.Lock()
	g.fee = pct
	g.mu.Unlock()

	zap.L().With(zap.Uint64("feePercentage", pct)).Info("Gate: fee updated")

	return nil
}

func (g *gate) Operator() string {
	return g.operator
}
