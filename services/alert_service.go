package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homePulseAPI/internal/listing"
	"homePulseAPI/internal/notification"
)

// PushProvider abstracts FCM so the service can run without push
// configured (alerts still land in the database).
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type AlertService struct {
	db   *pgxpool.Pool
	push PushProvider
}

func NewAlertService(db *pgxpool.Pool) *AlertService {
	return &AlertService{db: db}
}

func (s *AlertService) SetPushProvider(p PushProvider) {
	s.push = p
}

// PriceChanged fans a price move out to every user who favorited the
// listing: one alert row each, plus a push to their devices. Push
// failures are logged, not propagated; the admin price update must
// not fail because a token went stale.
func (s *AlertService) PriceChanged(ctx context.Context, l *listing.Listing, oldPrice, newPrice int64) error {
	if oldPrice == newPrice {
		return nil
	}

	alertType := notification.AlertPriceRise
	title := "Price increased"
	if newPrice < oldPrice {
		alertType = notification.AlertPriceDrop
		title = "Price drop on a saved home"
	}
	message := fmt.Sprintf("%s is now %d %s (was %d)", l.Title, newPrice, l.Currency, oldPrice)

	rows, err := s.db.Query(ctx, `SELECT user_id FROM favorites WHERE listing_id = $1`, l.ID)
	if err != nil {
		return fmt.Errorf("failed to find watchers: %w", err)
	}
	defer rows.Close()

	userIDs := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return err
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	data := map[string]any{
		"listing_id": l.ID,
		"old_price":  oldPrice,
		"new_price":  newPrice,
	}
	dataJSON, _ := json.Marshal(data)

	for _, userID := range userIDs {
		_, err := s.db.Exec(ctx, `
		INSERT INTO price_alerts (id, user_id, listing_id, type, title, message, is_read, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, NOW())
		`, uuid.New(), userID, l.ID, string(alertType), title, message, dataJSON)
		if err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}
	}

	if s.push == nil {
		return nil
	}

	tokens, err := s.deviceTokens(ctx, userIDs)
	if err != nil {
		log.Printf("PriceChanged: device token lookup failed: %v", err)
		return nil
	}

	if err := s.push.SendPush(ctx, tokens, title, message, data); err != nil {
		log.Printf("PriceChanged: push failed for listing %s: %v", l.ID, err)
	}

	return nil
}

func (s *AlertService) deviceTokens(ctx context.Context, userIDs []uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}

	return tokens, rows.Err()
}

func (s *AlertService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
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

func (s *AlertService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO device_tokens (user_id, token, platform, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (token) DO UPDATE SET user_id = $1, platform = $3
	`, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	return nil
}

func (s *AlertService) ListAlerts(ctx context.Context, clerkID string) (*notification.AlertListResponse, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, listing_id, type, title, message, is_read, COALESCE(data, '{}'::jsonb), created_at
	FROM price_alerts
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT 50
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	defer rows.Close()

	alerts := []*notification.Alert{}
	unread := 0
	for rows.Next() {
		a := &notification.Alert{}
		var dataJSON []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.ListingID, &a.Type, &a.Title, &a.Message, &a.IsRead, &dataJSON, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(dataJSON, &a.Data); err != nil {
			a.Data = nil
		}
		if !a.IsRead {
			unread++
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &notification.AlertListResponse{Alerts: alerts, UnreadCount: unread}, nil
}

func (s *AlertService) MarkAllRead(ctx context.Context, clerkID string) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `UPDATE price_alerts SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark alerts read: %w", err)
	}
	return nil
}
