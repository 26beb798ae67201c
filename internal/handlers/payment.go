package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/gateway"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/logger"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/services"
)

type PaymentHandler struct {
	service services.TransactionLifecycle
	log     logger.Logger
}

func NewPaymentHandler(service services.TransactionLifecycle, log logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, log: log}
}

func (h *PaymentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/pay", h.Pay).Methods("POST")
	router.HandleFunc("/api/webhook", h.Webhook).Methods("POST")
	router.HandleFunc("/api/status/{id}", h.Status).Methods("GET")
}

type payRequest struct {
	Phone  string      `json:"phone"`
	Amount json.Number `json:"amount"`
}

type payResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Pay triggers an STK push for {phone, amount} and answers with the
// gateway-issued transaction id the storefront will poll on.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode pay request", logger.ErrorField("error", err))
		respondJSON(w, http.StatusBadRequest, payResponse{Success: false, Error: "invalid request payload"})
		return
	}

	if req.Phone == "" {
		respondJSON(w, http.StatusBadRequest, payResponse{Success: false, Error: "phone is required"})
		return
	}

	amount, err := parseAmount(req.Amount.String())
	if err != nil {
		h.log.Warn("invalid amount",
			logger.StringField("amount", req.Amount.String()),
			logger.ErrorField("error", err))
		respondJSON(w, http.StatusBadRequest, payResponse{Success: false, Error: err.Error()})
		return
	}

	transactionID, err := h.service.Initiate(r.Context(), req.Phone, amount)
	if err != nil {
		h.handleInitiateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, payResponse{Success: true, TransactionID: transactionID})
}

func (h *PaymentHandler) handleInitiateError(w http.ResponseWriter, err error) {
	var rejected *gateway.RejectedError
	if errors.As(err, &rejected) {
		message := rejected.Message
		if message == "" {
			message = "Failed to initiate payment."
		}
		respondJSON(w, http.StatusBadRequest, payResponse{Success: false, Error: message})
		return
	}
	respondJSON(w, http.StatusInternalServerError, payResponse{Success: false, Error: err.Error()})
}

// Webhook receives asynchronous outcome events from the gateway. It
// acknowledges with 200 on everything it can tolerate, because a non-2xx
// answer makes the gateway re-deliver; only a store failure yields a 500.
// The raw body is read up front so a signature check can be added ahead of
// decoding.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		h.log.Warn("failed to read webhook body", logger.ErrorField("error", err))
		writeText(w, http.StatusOK, "OK")
		return
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rawBody, &body); err != nil {
		h.log.Warn("webhook body is not valid JSON, ignoring", logger.ErrorField("error", err))
		writeText(w, http.StatusOK, "OK")
		return
	}

	if err := h.service.Reconcile(r.Context(), body); err != nil {
		h.log.Error("webhook processing failed", logger.ErrorField("error", err))
		writeText(w, http.StatusInternalServerError, "Webhook Error")
		return
	}

	writeText(w, http.StatusOK, "OK")
}

type statusResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Status is the polling endpoint: it reports the stored status for the id.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	transactionID := mux.Vars(r)["id"]

	status, err := h.service.GetStatus(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			respondJSON(w, http.StatusNotFound, statusResponse{Status: "unknown", Message: "Transaction not found"})
			return
		}
		h.log.Error("status check failed",
			logger.StringField("transaction_id", transactionID),
			logger.ErrorField("error", err))
		respondJSON(w, http.StatusInternalServerError, statusResponse{Error: "Database error"})
		return
	}

	respondJSON(w, http.StatusOK, statusResponse{Status: string(status)})
}

// parseAmount accepts a positive amount with at most two decimal places.
func parseAmount(raw string) (float64, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, errors.New("amount must be a number")
	}
	if !amount.IsPositive() {
		return 0, errors.New("amount must be positive")
	}
	if amount.Exponent() < -2 {
		return 0, errors.New("amount must have at most two decimal places")
	}
	return amount.InexactFloat64(), nil
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(body))
}
