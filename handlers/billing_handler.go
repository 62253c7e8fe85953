package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"homePulseAPI/internal/billing"
	"homePulseAPI/middleware"
	"homePulseAPI/services"
)

type BillingHandler struct {
	billingService *services.BillingService
}

func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

func (h *BillingHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	plans, err := h.billingService.ListPlans(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load plans")
		return
	}

	respondWithJSON(w, http.StatusOK, plans)
}

// Checkout picks a plan and returns the hosted Stripe URL; the
// payment itself happens on Stripe's side and comes back through the
// billing webhook.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req billing.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanID == "" {
		respondWithError(w, http.StatusBadRequest, "planId is required")
		return
	}

	resp, err := h.billingService.Checkout(ctx, clerkID, req.PlanID)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			respondWithError(w, http.StatusNotFound, "Plan not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
