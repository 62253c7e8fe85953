package notification

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertPriceDrop AlertType = "price_drop"
	AlertPriceRise AlertType = "price_rise"
)

// Alert is an in-app notification row tied to a favorited listing
// whose price changed.
type Alert struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	ListingID uuid.UUID      `json:"listing_id" db:"listing_id"`
	Type      AlertType      `json:"type" db:"type"`
	Title     string         `json:"title" db:"title"`
	Message   string         `json:"message" db:"message"`
	IsRead    bool           `json:"is_read" db:"is_read"`
	Data      map[string]any `json:"data" db:"data"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type AlertListResponse struct {
	Alerts      []*Alert `json:"alerts"`
	UnreadCount int      `json:"unread_count"`
}
