package favorite

import (
	"time"

	"homePulseAPI/internal/listing"
)

type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ListingID string    `json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}

type AddFavoriteRequest struct {
	ListingID string `json:"listingId"`
}

// SavedListing joins a favorite with its listing for the list view.
type SavedListing struct {
	Favorite Favorite        `json:"favorite"`
	Listing  listing.Listing `json:"listing"`
}
