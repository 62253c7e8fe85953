package handlers

import (
	"context"
	"net/http"
	"time"

	"homePulseAPI/middleware"
	"homePulseAPI/services"
)

type CreditsHandler struct {
	creditsService *services.CreditsService
}

func NewCreditsHandler(creditsService *services.CreditsService) *CreditsHandler {
	return &CreditsHandler{
		creditsService: creditsService,
	}
}

// GetMyCredits serves GET /api/v1/me/credits. A user with no profile
// row gets a 200 with a null profile; only a failed profile read is
// a 500. Quota state goes stale fast, so the response is marked
// uncacheable.
func (h *CreditsHandler) GetMyCredits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	snapshot, err := h.creditsService.GetMyCredits(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondWithJSON(w, http.StatusOK, snapshot)
}
