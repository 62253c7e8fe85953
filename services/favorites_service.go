package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homePulseAPI/internal/favorite"
	"homePulseAPI/internal/listing"
)

type FavoritesService struct {
	db *pgxpool.Pool
}

func NewFavoritesService(db *pgxpool.Pool) *FavoritesService {
	return &FavoritesService{db: db}
}

func (s *FavoritesService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return userID, nil
}

func (s *FavoritesService) AddFavorite(ctx context.Context, clerkID, listingID string) (*favorite.Favorite, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	listingUUID, err := uuid.Parse(listingID)
	if err != nil {
		return nil, fmt.Errorf("invalid listing id: %w", err)
	}

	f := &favorite.Favorite{}
	err = s.db.QueryRow(ctx, `
	INSERT INTO favorites (id, user_id, listing_id, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, listing_id) DO UPDATE SET user_id = favorites.user_id
	RETURNING id, user_id, listing_id, created_at
	`, uuid.New().String(), userID, listingUUID).Scan(&f.ID, &f.UserID, &f.ListingID, &f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}

	return f, nil
}

func (s *FavoritesService) RemoveFavorite(ctx context.Context, clerkID, listingID string) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	listingUUID, err := uuid.Parse(listingID)
	if err != nil {
		return fmt.Errorf("invalid listing id: %w", err)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2`, userID, listingUUID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("favorite not found")
	}

	return nil
}

func (s *FavoritesService) GetFavorites(ctx context.Context, clerkID string) ([]favorite.SavedListing, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
	SELECT f.id, f.user_id, f.listing_id, f.created_at,
	       l.id, l.title, COALESCE(l.description, ''), l.address, l.city, l.property_type,
	       l.bedrooms, l.bathrooms, l.area_sqm, l.price, l.currency, COALESCE(l.image_url, ''),
	       l.is_active, l.created_at, l.updated_at
	FROM favorites f
	JOIN listings l ON l.id = f.listing_id
	WHERE f.user_id = $1
	ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	defer rows.Close()

	saved := []favorite.SavedListing{}
	for rows.Next() {
		var sl favorite.SavedListing
		var l listing.Listing
		err := rows.Scan(
			&sl.Favorite.ID, &sl.Favorite.UserID, &sl.Favorite.ListingID, &sl.Favorite.CreatedAt,
			&l.ID, &l.Title, &l.Description, &l.Address, &l.City, &l.PropertyType,
			&l.Bedrooms, &l.Bathrooms, &l.AreaSqm, &l.Price, &l.Currency, &l.ImageURL,
			&l.IsActive, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sl.Listing = l
		saved = append(saved, sl)
	}

	return saved, rows.Err()
}
