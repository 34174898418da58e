package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"fundledger/application"
	"fundledger/application/dto"
	"fundledger/domain/apperrors"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxRequestBodyBytes = 64 << 10

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// Handlers serves the ledger API
type Handlers struct {
	confirmations application.ConfirmationHandler
	totals        application.TotalsHandler
	health        HealthChecker
}

// NewHandlers creates the API handlers
func NewHandlers(confirmations application.ConfirmationHandler, totals application.TotalsHandler, health HealthChecker) *Handlers {
	return &Handlers{
		confirmations: confirmations,
		totals:        totals,
		health:        health,
	}
}

// confirmTransferBody accepts amountReceived as a JSON number or a numeric string
type confirmTransferBody struct {
	TeamID            string      `json:"teamId"`
	FundsReceivedDate string      `json:"fundsReceivedDate"`
	AmountReceived    json.Number `json:"amountReceived"`
	BankReference     *string     `json:"bankReference"`
	ConfirmationNotes *string     `json:"confirmationNotes"`
	ProofDocumentID   *string     `json:"proofDocumentId"`
}

// ConfirmTransferResponse is the body of a successful confirmation
type ConfirmTransferResponse struct {
	Success           bool                     `json:"success"`
	Transfer          dto.ConfirmedTransferDTO `json:"transfer"`
	InvestmentUpdated bool                     `json:"investmentUpdated"`
	Warnings          []string                 `json:"warnings,omitempty"`
}

// ConfirmTransfer handles POST /api/v1/transfers/{transferId}/confirm
func (h *Handlers) ConfirmTransfer(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.ErrUnauthorized)
		return
	}

	var body confirmTransferBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}

	// The path names the transfer and the token names the team; a body team must agree
	if body.TeamID != "" && body.TeamID != identity.TeamID {
		writeError(w, apperrors.ErrForbidden)
		return
	}

	result, err := h.confirmations.ConfirmTransfer(r.Context(), dto.ConfirmTransferRequest{
		TransferID:        mux.Vars(r)["transferId"],
		TeamID:            identity.TeamID,
		ActorID:           identity.UserID,
		FundsReceivedDate: body.FundsReceivedDate,
		AmountReceived:    body.AmountReceived.String(),
		BankReference:     body.BankReference,
		ConfirmationNotes: body.ConfirmationNotes,
		ProofDocumentID:   body.ProofDocumentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ConfirmTransferResponse{
		Success:           true,
		Transfer:          result.Transfer,
		InvestmentUpdated: result.InvestmentUpdated,
		Warnings:          result.Warnings,
	})
}

// GetTransfer handles GET /api/v1/transfers/{transferId}
func (h *Handlers) GetTransfer(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.ErrUnauthorized)
		return
	}

	transfer, err := h.confirmations.GetTransfer(r.Context(), identity.TeamID, mux.Vars(r)["transferId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transfer)
}

// GetFundTotals handles GET /api/v1/funds/{fundId}/totals
func (h *Handlers) GetFundTotals(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.ErrUnauthorized)
		return
	}

	totals, err := h.totals.GetFundTotals(r.Context(), identity.TeamID, mux.Vars(r)["fundId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// RecomputeFundTotals handles POST /api/v1/funds/{fundId}/totals/recompute
func (h *Handlers) RecomputeFundTotals(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.ErrUnauthorized)
		return
	}

	totals, err := h.totals.RecomputeFundTotals(r.Context(), identity.TeamID, identity.UserID, mux.Vars(r)["fundId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// Healthz handles GET /healthz
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.health.Healthy(ctx); err != nil {
			log.WithError(err).Warn("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var maxBytesErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperrors.NewValidationError("body", "Request body is required")
	case errors.As(err, &maxBytesErr):
		return apperrors.NewValidationError("body", "Request body is too large")
	case errors.As(err, &typeErr):
		return apperrors.NewValidationError(typeErr.Field, typeErr.Field+" has the wrong type")
	case strings.Contains(err.Error(), "invalid number literal"):
		return apperrors.NewValidationError("amountReceived", "amountReceived must be a decimal number")
	default:
		return apperrors.NewValidationError("body", "Request body must be valid JSON")
	}
}
