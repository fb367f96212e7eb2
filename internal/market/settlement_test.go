package market

import (
	"errors"
	"sync"
	"testing"

	"github.com/nftbazaar/marketplace/internal/rail"
)

type settlementFixture struct {
	gate       Gate
	ledger     Ledger
	settlement Settlement
	registry   *fakeRegistry
	payments   *fakeRail
}

func newSettlementFixture(t *testing.T, feePercentage uint64) settlementFixture {
	t.Helper()

	gate := NewGate(operator, feePercentage)
	if err := gate.AddSupportedContract(ducks, operator); err != nil {
		t.Fatalf("failed to approve collection: %v", err)
	}

	registry := newFakeRegistry()
	registry.setOwner(ducks, 7, seller)
	payments := newFakeRail()

	ledger := NewLedger(gate, registry, custodian)
	settlement := NewSettlement(gate, ledger, registry, payments, custodian)

	return settlementFixture{gate, ledger, settlement, registry, payments}
}

func (f settlementFixture) list(t *testing.T, price uint64) {
	t.Helper()
	if err := f.ledger.List(ducks, 7, price, seller); err != nil {
		t.Fatalf("list failed: %v", err)
	}
}

func TestSettlement_BuyAtTwoPercent(t *testing.T) {
	f := newSettlementFixture(t, 2)
	f.list(t, 1000)

	if err := f.settlement.Buy(ducks, 7, buyer, 1000); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	if got := f.payments.balance(seller); got != 980 {
		t.Errorf("expected seller credited 980, got %d", got)
	}
	if got := f.payments.balance(operator); got != 20 {
		t.Errorf("expected operator credited 20, got %d", got)
	}
	if owner := f.registry.ownerOf(ducks, 7); owner != buyer {
		t.Errorf("expected buyer to own the asset, owner is %s", owner)
	}
	if _, err := f.ledger.Get(ducks, 7); !errors.Is(err, ErrListingNotFound) {
		t.Fatal("listing must be inactive after settlement")
	}
}

func TestSettlement_WrongPaymentLeavesListingUntouched(t *testing.T) {
	f := newSettlementFixture(t, 2)
	f.list(t, 1000)

	for _, paid := range []uint64{0, 999, 1001} {
		if err := f.settlement.Buy(ducks, 7, buyer, paid); !errors.Is(err, ErrInvalidPayment) {
			t.Fatalf("paid %d: expected ErrInvalidPayment, got %v", paid, err)
		}
	}

	if f.payments.paymentCount() != 0 {
		t.Errorf("no credits may happen on a failed payment, got %d", f.payments.paymentCount())
	}
	if owner := f.registry.ownerOf(ducks, 7); owner != custodian {
		t.Errorf("asset must stay in custody, owner is %s", owner)
	}
	if listing, err := f.ledger.Get(ducks, 7); err != nil || !listing.IsActive {
		t.Fatalf("listing must remain active and unsettled, got %v", err)
	}
}

func TestSettlement_UnsupportedCollection(t *testing.T) {
	f := newSettlementFixture(t, 2)

	if err := f.settlement.Buy("0xgeese", 7, buyer, 1000); !errors.Is(err, ErrUnsupportedCollection) {
		t.Fatalf("expected ErrUnsupportedCollection, got %v", err)
	}
}

func TestSettlement_BuyWithoutListing(t *testing.T) {
	f := newSettlementFixture(t, 2)

	if err := f.settlement.Buy(ducks, 7, buyer, 1000); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestSettlement_SellerCreditFailureRollsBackCustody(t *testing.T) {
	f := newSettlementFixture(t, 2)
	f.list(t, 1000)
	f.payments.failFor = seller

	if err := f.settlement.Buy(ducks, 7, buyer, 1000); !errors.Is(err, rail.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if owner := f.registry.ownerOf(ducks, 7); owner != custodian {
		t.Errorf("custody transfer must be rolled back, owner is %s", owner)
	}
	if listing, err := f.ledger.Get(ducks, 7); err != nil || !listing.IsActive {
		t.Fatalf("listing must remain active after a failed settlement, got %v", err)
	}
}

func TestSettlement_FeeCreditFailureRollsBackCustody(t *testing.T) {
	f := newSettlementFixture(t, 2)
	f.list(t, 1000)
	f.payments.failFor = operator

	if err := f.settlement.Buy(ducks, 7, buyer, 1000); !errors.Is(err, rail.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if owner := f.registry.ownerOf(ducks, 7); owner != custodian {
		t.Errorf("custody transfer must be rolled back, owner is %s", owner)
	}
	if listing, err := f.ledger.Get(ducks, 7); err != nil || !listing.IsActive {
		t.Fatalf("listing must remain active after a failed settlement, got %v", err)
	}
}

func TestSettlement_AssetTransferRejected(t *testing.T) {
	f := newSettlementFixture(t, 2)
	f.list(t, 1000)
	f.registry.reject = true

	if err := f.settlement.Buy(ducks, 7, buyer, 1000); !errors.Is(err, ErrTransferRejected) {
		t.Fatalf("expected ErrTransferRejected, got %v", err)
	}
	if f.payments.paymentCount() != 0 {
		t.Error("no funds may move when the asset transfer is rejected")
	}
	if listing, err := f.ledger.Get(ducks, 7); err != nil || !listing.IsActive {
		t.Fatalf("listing must remain active, got %v", err)
	}
}

func TestSettlement_ConcurrentBuySingleWinner(t *testing.T) {
	f := newSettlementFixture(t, 2)
	f.list(t, 1000)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.settlement.Buy(ducks, 7, buyer, 1000)
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrListingNotFound):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("expected exactly one winner and one loser, got %d/%d", wins, losses)
	}

	if got := f.payments.balance(seller); got != 980 {
		t.Errorf("seller must be credited exactly once, got %d", got)
	}
	if got := f.payments.balance(operator); got != 20 {
		t.Errorf("operator must be credited exactly once, got %d", got)
	}
}

func TestSettlement_FeeConservation(t *testing.T) {
	prices := []uint64{1, 99, 100, 1000, 12345}
	fees := []uint64{0, 1, 2, 33, 99, 100}

	for _, price := range prices {
		for _, fee := range fees {
			f := newSettlementFixture(t, fee)
			f.list(t, price)

			if err := f.settlement.Buy(ducks, 7, buyer, price); err != nil {
				t.Fatalf("price=%d fee=%d: buy failed: %v", price, fee, err)
			}

			wantFee := price * fee / 100
			if got := f.payments.balance(operator); got != wantFee {
				t.Errorf("price=%d fee=%d: expected fee %d, got %d", price, fee, wantFee, got)
			}
			if got := f.payments.balance(seller); got != price-wantFee {
				t.Errorf("price=%d fee=%d: expected seller amount %d, got %d", price, fee, price-wantFee, got)
			}
			if f.payments.balance(seller)+f.payments.balance(operator) != price {
				t.Errorf("price=%d fee=%d: credits do not sum to price", price, fee)
			}
		}
	}
}

func TestSettlement_FeeAbovePriceFails(t *testing.T) {
	f := newSettlementFixture(t, 150)
	f.list(t, 1000)

	if err := f.settlement.Buy(ducks, 7, buyer, 1000); !errors.Is(err, rail.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if owner := f.registry.ownerOf(ducks, 7); owner != custodian {
		t.Errorf("asset must stay in custody, owner is %s", owner)
	}
	if f.payments.paymentCount() != 0 {
		t.Error("no credits may happen when the fee exceeds the price")
	}
}

func TestSettlement_RelistAfterSale(t *testing.T) {
	f := newSettlementFixture(t, 2)
	f.list(t, 1000)

	if err := f.settlement.Buy(ducks, 7, buyer, 1000); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	// The buyer turns around and lists the same asset again; the stale
	// inactive record is overwritten by a fresh active one.
	if err := f.ledger.List(ducks, 7, 2500, buyer); err != nil {
		t.Fatalf("relist failed: %v", err)
	}

	listing, err := f.ledger.Get(ducks, 7)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if listing.Seller != buyer || listing.Price != 2500 || !listing.IsActive {
		t.Errorf("unexpected relisted record: %+v", listing)
	}
}

func TestSettlement_FeeSnapshotPerSettlement(t *testing.T) {
	f := newSettlementFixture(t, 2)
	f.list(t, 1000)

	if err := f.gate.SetFeePercentage(10, operator); err != nil {
		t.Fatalf("set fee failed: %v", err)
	}

	if err := f.settlement.Buy(ducks, 7, buyer, 1000); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	// The settlement uses the fee in force when it runs, once.
	if got := f.payments.balance(operator); got != 100 {
		t.Errorf("expected fee 100 at 10%%, got %d", got)
	}
	if got := f.payments.balance(seller); got != 900 {
		t.Errorf("expected seller amount 900, got %d", got)
	}
}
