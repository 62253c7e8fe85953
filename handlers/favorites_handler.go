package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"homePulseAPI/internal/favorite"
	"homePulseAPI/middleware"
	"homePulseAPI/services"
)

type FavoritesHandler struct {
	favoritesService *services.FavoritesService
}

func NewFavoritesHandler(favoritesService *services.FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{
		favoritesService: favoritesService,
	}
}

func (h *FavoritesHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	saved, err := h.favoritesService.GetFavorites(ctx, clerkID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load favorites")
		return
	}

	respondWithJSON(w, http.StatusOK, saved)
}

func (h *FavoritesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req favorite.AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ListingID == "" {
		respondWithError(w, http.StatusBadRequest, "listingId is required")
		return
	}

	f, err := h.favoritesService.AddFavorite(ctx, clerkID, req.ListingID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, f)
}

func (h *FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	listingID := r.URL.Query().Get("listingId")
	if listingID == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'listingId' is required")
		return
	}

	if err := h.favoritesService.RemoveFavorite(ctx, clerkID, listingID); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Favorite removed"})
}
