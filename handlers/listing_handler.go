package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"homePulseAPI/internal/listing"
	"homePulseAPI/middleware"
	"homePulseAPI/services"
)

type ListingHandler struct {
	listingService *services.ListingService
}

func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

func (h *ListingHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	filters := listing.SearchFilters{
		Query: q.Get("q"),
		City:  q.Get("city"),
	}
	if v := q.Get("min_price"); v != "" {
		filters.MinPrice, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("max_price"); v != "" {
		filters.MaxPrice, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("limit"); v != "" {
		filters.Limit, _ = strconv.Atoi(v)
	}

	listings, err := h.listingService.Search(ctx, filters)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to search listings")
		return
	}

	respondWithJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	l, err := h.listingService.GetByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			respondWithError(w, http.StatusNotFound, "Listing not found")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, l)
}

func (h *ListingHandler) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	points, err := h.listingService.PriceHistory(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, points)
}

// AnalyzeListing is the credit-consuming pricing estimate. Exhausted
// quota maps to 402 so the client can send the user to the plans
// page.
func (h *ListingHandler) AnalyzeListing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	estimate, err := h.listingService.Analyze(ctx, clerkID, mux.Vars(r)["id"])
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientCredits):
			middleware.CountAnalysis("no_credits")
			respondWithError(w, http.StatusPaymentRequired, "insufficient credits")
		case errors.Is(err, services.ErrListingNotFound):
			respondWithError(w, http.StatusNotFound, "Listing not found")
		default:
			middleware.CountAnalysis("error")
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	middleware.CountAnalysis("ok")
	respondWithJSON(w, http.StatusOK, estimate)
}
