package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/nftbazaar/marketplace/internal/market"
	"github.com/nftbazaar/marketplace/internal/rail"
	"go.uber.org/zap"
)

// callerHeader carries the verdict of the external access-control component.
const callerHeader = "X-Market-Caller"

type Server struct {
	gate       market.Gate
	ledger     market.Ledger
	settlement market.Settlement
}

func NewServer(gate market.Gate, ledger market.Ledger, settlement market.Settlement) Server {
	return Server{gate, ledger, settlement}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/listings", s.handleList).Methods("POST")
	r.HandleFunc("/listings/{contract}/{tokenId}", s.handleGetListing).Methods("GET")
	r.HandleFunc("/listings/{contract}/{tokenId}", s.handleUnlist).Methods("DELETE")
	r.HandleFunc("/listings/{contract}/{tokenId}/price", s.handleChangePrice).Methods("PATCH")
	r.HandleFunc("/listings/{contract}/{tokenId}/buy", s.handleBuy).Methods("POST")

	r.HandleFunc("/admin/collections", s.handleAddCollection).Methods("POST")
	r.HandleFunc("/admin/collections/{contract}", s.handleRemoveCollection).Methods("DELETE")
	r.HandleFunc("/admin/fee", s.handleSetFee).Methods("PUT")

	return r
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

type listRequest struct {
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Price    uint64 `json:"price"`
}

func (s Server) handleList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.ledger.List(req.Contract, req.TokenId, req.Price, caller(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, err := listingVars(r)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	listing, err := s.ledger.Get(contract, tokenId)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(listing)
}

func (s Server) handleUnlist(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, err := listingVars(r)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	if err := s.ledger.Unlist(contract, tokenId, caller(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type changePriceRequest struct {
	Price uint64 `json:"price"`
}

func (s Server) handleChangePrice(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, err := listingVars(r)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	var req changePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.ledger.ChangePrice(contract, tokenId, req.Price, caller(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type buyRequest struct {
	PaidAmount uint64 `json:"paidAmount"`
}

func (s Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, err := listingVars(r)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.settlement.Buy(contract, tokenId, caller(r), req.PaidAmount); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type collectionRequest struct {
	Contract string `json:"contract"`
}

func (s Server) handleAddCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.gate.AddSupportedContract(req.Contract, caller(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s Server) handleRemoveCollection(w http.ResponseWriter, r *http.Request) {
	contract := mux.Vars(r)["contract"]

	if err := s.gate.RemoveSupportedContract(contract, caller(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type feeRequest struct {
	FeePercentage uint64 `json:"feePercentage"`
}

func (s Server) handleSetFee(w http.ResponseWriter, r *http.Request) {
	var req feeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.gate.SetFeePercentage(req.FeePercentage, caller(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func caller(r *http.Request) string {
	return r.Header.Get(callerHeader)
}

func listingVars(r *http.Request) (string, uint64, error) {
	vars := mux.Vars(r)
	tokenId, err := strconv.ParseUint(vars["tokenId"], 10, 64)

	return vars["contract"], tokenId, err
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrNotAuthorized), errors.Is(err, market.ErrNotSeller):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, market.ErrUnsupportedCollection):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, market.ErrListingNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, market.ErrInvalidPrice), errors.Is(err, market.ErrInvalidPayment):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, market.ErrTransferRejected):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, rail.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	default:
		zap.L().With(zap.Error(err)).Error("Api: Unhandled error")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
