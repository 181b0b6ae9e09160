package handlers

import (
	"context"
	"net/http"
	"time"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/subscription"
)

type subscriptionService interface {
	GetStatus(ctx context.Context, clerkID string) (*subscription.StatusResponse, error)
	CreateCheckoutSession(ctx context.Context, clerkID, priceID string) (*subscription.CheckoutResponse, error)
	RecordIAPPurchase(ctx context.Context, clerkID string, req *subscription.IAPPurchaseRequest) (*subscription.Subscription, error)
}

type SubscriptionHandler struct {
	subscriptions subscriptionService
	log           *logger.Logger
}

func NewSubscriptionHandler(subscriptions subscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, log: log}
}

// GET /api/v1/subscription
func (h *SubscriptionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	status, err := h.subscriptions.GetStatus(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get subscription")
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

// GET /api/v1/subscription/products
func (h *SubscriptionHandler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, subscription.Products)
}

// POST /api/v1/subscription/checkout
func (h *SubscriptionHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	var req subscription.CheckoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PriceID == "" {
		respondWithError(w, http.StatusBadRequest, "priceId is required")
		return
	}

	resp, err := h.subscriptions.CreateCheckoutSession(ctx, clerkID, req.PriceID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to create checkout session")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/subscription/iap
func (h *SubscriptionHandler) RecordIAP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	var req subscription.IAPPurchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sub, err := h.subscriptions.RecordIAPPurchase(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to record purchase")
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}
