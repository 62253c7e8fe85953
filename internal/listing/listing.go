package listing

import "time"

type Listing struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	PropertyType string    `json:"propertyType"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	AreaSqm      float64   `json:"areaSqm"`
	Price        int64     `json:"price"`
	Currency     string    `json:"currency"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PricePoint is one row of listing_price_history, appended every
// time an admin changes a listing price.
type PricePoint struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listingId"`
	Price      int64     `json:"price"`
	RecordedAt time.Time `json:"recordedAt"`
}

type SearchFilters struct {
	Query    string
	City     string
	MinPrice int64
	MaxPrice int64
	Limit    int
}

type UpdatePriceRequest struct {
	Price int64 `json:"price"`
}

// Estimate is the output of the credit-metered pricing analysis.
type Estimate struct {
	ListingID      string  `json:"listingId"`
	EstimatedPrice int64   `json:"estimatedPrice"`
	ListPrice      int64   `json:"listPrice"`
	TrendScore     float64 `json:"trendScore"`
	Verdict        string  `json:"verdict"`
	CreditsCharged int     `json:"creditsCharged"`
}
