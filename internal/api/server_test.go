package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nftbazaar/marketplace/internal/assets"
	"github.com/nftbazaar/marketplace/internal/market"
)

const (
	operator  = "0xoperator"
	custodian = "0xmarket"
	seller    = "0xseller"
	buyer     = "0xbuyer"
	ducks     = "0xducks"
)

type stubRegistry struct {
	mu     sync.Mutex
	owners map[string]string
}

func (r *stubRegistry) OwnerOf(contract string, tokenId uint64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[fmt.Sprintf("%s-%d", contract, tokenId)]
	if !ok {
		return "", fmt.Errorf("unknown asset")
	}
	return owner, nil
}

func (r *stubRegistry) Transfer(contract string, tokenId uint64, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s-%d", contract, tokenId)
	if r.owners[key] != from {
		return assets.ErrTransferRejected
	}
	r.owners[key] = to
	return nil
}

type stubRail struct {
	mu       sync.Mutex
	balances map[string]uint64
}

func (r *stubRail) Pay(to string, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[to] += amount
	return nil
}

func newTestServer() (Server, *stubRail) {
	gate := market.NewGate(operator, 2)
	registry := &stubRegistry{owners: map[string]string{fmt.Sprintf("%s-%d", ducks, 7): seller}}
	payments := &stubRail{balances: make(map[string]uint64)}
	ledger := market.NewLedger(gate, registry, custodian)
	settlement := market.NewSettlement(gate, ledger, registry, payments, custodian)

	return NewServer(gate, ledger, settlement), payments
}

func do(t *testing.T, router http.Handler, method, path, caller, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(callerHeader, caller)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer()

	rec := do(t, server.Router(), "GET", "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServer_AdminRequiresOperator(t *testing.T) {
	server, _ := newTestServer()
	router := server.Router()

	rec := do(t, router, "POST", "/admin/collections", seller, fmt.Sprintf(`{"contract":%q}`, ducks))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-operator, got %d", rec.Code)
	}

	rec = do(t, router, "POST", "/admin/collections", operator, fmt.Sprintf(`{"contract":%q}`, ducks))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestServer_ListGetBuyFlow(t *testing.T) {
	server, payments := newTestServer()
	router := server.Router()

	if rec := do(t, router, "POST", "/admin/collections", operator, fmt.Sprintf(`{"contract":%q}`, ducks)); rec.Code != http.StatusCreated {
		t.Fatalf("approve failed: %d", rec.Code)
	}

	body := fmt.Sprintf(`{"contract":%q,"tokenId":7,"price":1000}`, ducks)
	if rec := do(t, router, "POST", "/listings", seller, body); rec.Code != http.StatusCreated {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}

	rec := do(t, router, "GET", "/listings/"+ducks+"/7", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get failed: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"price":1000`) {
		t.Errorf("unexpected listing body: %s", rec.Body.String())
	}

	if rec := do(t, router, "POST", "/listings/"+ducks+"/7/buy", buyer, `{"paidAmount":999}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on wrong payment, got %d", rec.Code)
	}

	if rec := do(t, router, "POST", "/listings/"+ducks+"/7/buy", buyer, `{"paidAmount":1000}`); rec.Code != http.StatusOK {
		t.Fatalf("buy failed: %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, router, "GET", "/listings/"+ducks+"/7", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after settlement, got %d", rec.Code)
	}

	payments.mu.Lock()
	defer payments.mu.Unlock()
	if payments.balances[seller] != 980 || payments.balances[operator] != 20 {
		t.Errorf("unexpected credits: %+v", payments.balances)
	}
}

func TestServer_UnlistFlow(t *testing.T) {
	server, _ := newTestServer()
	router := server.Router()

	do(t, router, "POST", "/admin/collections", operator, fmt.Sprintf(`{"contract":%q}`, ducks))
	do(t, router, "POST", "/listings", seller, fmt.Sprintf(`{"contract":%q,"tokenId":7,"price":1000}`, ducks))

	if rec := do(t, router, "DELETE", "/listings/"+ducks+"/7", buyer, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-seller unlist, got %d", rec.Code)
	}
	if rec := do(t, router, "DELETE", "/listings/"+ducks+"/7", seller, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("unlist failed: %d", rec.Code)
	}
	if rec := do(t, router, "GET", "/listings/"+ducks+"/7", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after unlist, got %d", rec.Code)
	}
}
