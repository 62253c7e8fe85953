package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homePulseAPI/internal/listing"
	"homePulseAPI/utils"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingService struct {
	db             *pgxpool.Pool
	creditsService *CreditsService
}

func NewListingService(db *pgxpool.Pool, creditsService *CreditsService) *ListingService {
	return &ListingService{db: db, creditsService: creditsService}
}

const listingColumns = `id, title, COALESCE(description, ''), address, city, property_type,
	bedrooms, bathrooms, area_sqm, price, currency, COALESCE(image_url, ''), is_active, created_at, updated_at`

func scanListing(row pgx.Row) (*listing.Listing, error) {
	l := &listing.Listing{}
	err := row.Scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&l.Address,
		&l.City,
		&l.PropertyType,
		&l.Bedrooms,
		&l.Bathrooms,
		&l.AreaSqm,
		&l.Price,
		&l.Currency,
		&l.ImageURL,
		&l.IsActive,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *ListingService) Search(ctx context.Context, f listing.SearchFilters) ([]*listing.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE is_active = TRUE`
	args := []any{}

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR address ILIKE $%d)", len(args), len(args))
	}
	if f.City != "" {
		args = append(args, f.City)
		query += fmt.Sprintf(" AND city ILIKE $%d", len(args))
	}
	if f.MinPrice > 0 {
		args = append(args, f.MinPrice)
		query += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	if f.MaxPrice > 0 {
		args = append(args, f.MaxPrice)
		query += fmt.Sprintf(" AND price <= $%d", len(args))
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer rows.Close()

	listings := []*listing.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

func (s *ListingService) GetByID(ctx context.Context, id string) (*listing.Listing, error) {
	listingUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid listing id: %w", err)
	}

	l, err := scanListing(s.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, listingUUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	return l, nil
}

func (s *ListingService) PriceHistory(ctx context.Context, id string) ([]listing.PricePoint, error) {
	listingUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid listing id: %w", err)
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, listing_id, price, recorded_at
	FROM listing_price_history
	WHERE listing_id = $1
	ORDER BY recorded_at ASC
	`, listingUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}
	defer rows.Close()

	points := []listing.PricePoint{}
	for rows.Next() {
		var p listing.PricePoint
		if err := rows.Scan(&p.ID, &p.ListingID, &p.Price, &p.RecordedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// Analyze runs the credit-metered pricing estimate. The credit is
// charged first so an exhausted quota never reaches the model; the
// charge and the estimate are not atomic, matching how the rest of
// the analysis products meter usage.
func (s *ListingService) Analyze(ctx context.Context, userID, listingID string) (*listing.Estimate, error) {
	l, err := s.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	err = s.creditsService.SpendCredit(ctx, userID, "price_analysis", map[string]any{
		"listing_id": l.ID,
	})
	if err != nil {
		return nil, err
	}

	history, err := s.PriceHistory(ctx, listingID)
	if err != nil {
		log.Printf("Analyze: price history unavailable for %s: %v", listingID, err)
		history = nil
	}

	prices := make([]int64, 0, len(history)+1)
	for _, p := range history {
		prices = append(prices, p.Price)
	}
	prices = append(prices, l.Price)

	var cityAvgPerSqm float64
	err = s.db.QueryRow(ctx, `
	SELECT COALESCE(AVG(price / NULLIF(area_sqm, 0)), 0)
	FROM listings
	WHERE city = $1 AND is_active = TRUE
	`, l.City).Scan(&cityAvgPerSqm)
	if err != nil {
		log.Printf("Analyze: city average unavailable for %s: %v", l.City, err)
		cityAvgPerSqm = 0
	}

	trend := utils.TrendScore(prices)
	estimated := utils.EstimatePrice(l.Price, l.AreaSqm, cityAvgPerSqm, trend)

	return &listing.Estimate{
		ListingID:      l.ID,
		EstimatedPrice: estimated,
		ListPrice:      l.Price,
		TrendScore:     trend,
		Verdict:        utils.Verdict(estimated, l.Price),
		CreditsCharged: 1,
	}, nil
}

// UpdatePrice changes a listing price and appends the history row in
// one transaction. It returns the updated listing and the previous
// price so the caller can fan out drop alerts.
func (s *ListingService) UpdatePrice(ctx context.Context, listingID string, newPrice int64) (*listing.Listing, int64, error) {
	if newPrice <= 0 {
		return nil, 0, fmt.Errorf("price must be positive")
	}

	listingUUID, err := uuid.Parse(listingID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid listing id: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldPrice int64
	err = tx.QueryRow(ctx, `SELECT price FROM listings WHERE id = $1 FOR UPDATE`, listingUUID).Scan(&oldPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrListingNotFound
		}
		return nil, 0, fmt.Errorf("failed to lock listing: %w", err)
	}

	l, err := scanListing(tx.QueryRow(ctx, `
	UPDATE listings SET price = $2, updated_at = NOW()
	WHERE id = $1
	RETURNING `+listingColumns, listingUUID, newPrice))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to update price: %w", err)
	}

	_, err = tx.Exec(ctx, `
	INSERT INTO listing_price_history (id, listing_id, price, recorded_at)
	VALUES ($1, $2, $3, $4)
	`, uuid.New().String(), listingUUID, newPrice, time.Now())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to record price history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}

	return l, oldPrice, nil
}
