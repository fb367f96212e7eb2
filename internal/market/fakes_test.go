package market

import (
	"fmt"
	"sync"

	"github.com/nftbazaar/marketplace/internal/assets"
	"github.com/nftbazaar/marketplace/internal/rail"
)

// fakeRegistry models the external asset registry: a flat ownership table
// with optional transfer refusal.
type fakeRegistry struct {
	mu        sync.Mutex
	owners    map[string]string
	reject    bool
	transfers int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{owners: make(map[string]string)}
}

func assetKey(contract string, tokenId uint64) string {
	return fmt.Sprintf("%s-%d", contract, tokenId)
}

func (r *fakeRegistry) setOwner(contract string, tokenId uint64, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[assetKey(contract, tokenId)] = owner
}

func (r *fakeRegistry) ownerOf(contract string, tokenId uint64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owners[assetKey(contract, tokenId)]
}

func (r *fakeRegistry) OwnerOf(contract string, tokenId uint64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[assetKey(contract, tokenId)]
	if !ok {
		return "", fmt.Errorf("unknown asset %s", assetKey(contract, tokenId))
	}

	return owner, nil
}

func (r *fakeRegistry) Transfer(contract string, tokenId uint64, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.reject {
		return assets.ErrTransferRejected
	}
	if r.owners[assetKey(contract, tokenId)] != from {
		return assets.ErrTransferRejected
	}

	r.owners[assetKey(contract, tokenId)] = to
	r.transfers++

	return nil
}

// fakeRail records credits per recipient and can be told to refuse payments
// to a specific identity.
type fakeRail struct {
	mu       sync.Mutex
	balances map[string]uint64
	payments []railPayment
	failFor  string
}

type railPayment struct {
	to     string
	amount uint64
}

func newFakeRail() *fakeRail {
	return &fakeRail{balances: make(map[string]uint64)}
}

func (r *fakeRail) Pay(to string, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failFor != "" && to == r.failFor {
		return rail.ErrInsufficientFunds
	}

	r.balances[to] += amount
	r.payments = append(r.payments, railPayment{to, amount})

	return nil
}

func (r *fakeRail) balance(identity string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[identity]
}

func (r *fakeRail) paymentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}
