package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"homePulseAPI/internal/admin"
	"homePulseAPI/internal/credits"
	"homePulseAPI/internal/listing"
	"homePulseAPI/middleware"
	"homePulseAPI/services"
)

type AdminHandler struct {
	adminService   *services.AdminService
	userService    *services.UserService
	listingService *services.ListingService
	creditsService *services.CreditsService
	alertService   *services.AlertService
}

func NewAdminHandler(
	adminService *services.AdminService,
	userService *services.UserService,
	listingService *services.ListingService,
	creditsService *services.CreditsService,
	alertService *services.AlertService,
) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		userService:    userService,
		listingService: listingService,
		creditsService: creditsService,
		alertService:   alertService,
	}
}

// adminContext resolves the caller's privilege and writes the 403
// itself when there is none. A failed identity lookup denies exactly
// like a missing membership; the response never says which it was.
func (h *AdminHandler) adminContext(ctx context.Context, w http.ResponseWriter) (*admin.Context, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthenticated")
		return nil, false
	}

	email := ""
	if u, err := h.userService.GetUserByClerkID(ctx, clerkID); err == nil {
		email = u.Email
	}

	adminCtx := h.adminService.Resolve(ctx, clerkID, email)
	if adminCtx == nil {
		respondWithError(w, http.StatusForbidden, "forbidden")
		return nil, false
	}

	if adminCtx.Bootstrap {
		log.Printf("Admin: bootstrap access by %s (%s)", adminCtx.UserID, adminCtx.Email)
	}

	return adminCtx, true
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.adminContext(ctx, w); !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.userService.ListUsers(ctx, limit, offset)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) ListMemberships(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	adminCtx, ok := h.adminContext(ctx, w)
	if !ok {
		return
	}
	if adminCtx.Role != admin.RoleSuperAdmin {
		respondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	memberships, err := h.adminService.ListMemberships(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list memberships")
		return
	}

	respondWithJSON(w, http.StatusOK, memberships)
}

type grantCreditsRequest struct {
	Amount int    `json:"amount"`
	Note   string `json:"note,omitempty"`
}

func (h *AdminHandler) GrantCredits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	adminCtx, ok := h.adminContext(ctx, w)
	if !ok {
		return
	}
	if adminCtx.Role == admin.RoleViewer {
		respondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req grantCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		respondWithError(w, http.StatusBadRequest, "amount must be a positive integer")
		return
	}

	targetUserID := mux.Vars(r)["id"]
	err := h.creditsService.GrantBonus(ctx, targetUserID, req.Amount, "admin", credits.ReasonAdminGrant, map[string]any{
		"granted_by": adminCtx.UserID,
		"note":       req.Note,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Credits granted"})
}

func (h *AdminHandler) UpdateListingPrice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	adminCtx, ok := h.adminContext(ctx, w)
	if !ok {
		return
	}
	if adminCtx.Role == admin.RoleViewer {
		respondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req listing.UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Price <= 0 {
		respondWithError(w, http.StatusBadRequest, "price must be a positive integer")
		return
	}

	l, oldPrice, err := h.listingService.UpdatePrice(ctx, mux.Vars(r)["id"], req.Price)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			respondWithError(w, http.StatusNotFound, "Listing not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.alertService.PriceChanged(ctx, l, oldPrice, l.Price); err != nil {
		log.Printf("UpdateListingPrice: alert fan-out failed for %s: %v", l.ID, err)
	}

	respondWithJSON(w, http.StatusOK, l)
}
