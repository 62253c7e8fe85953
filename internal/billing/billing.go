package billing

import "time"

// Plan maps a subscription tier to its Stripe price and the credit
// limits the webhook applies on upgrade.
type Plan struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Tier               string `json:"tier"`
	StripePriceID      string `json:"stripePriceId"`
	MonthlyPriceCents  int64  `json:"monthlyPriceCents"`
	DailyCreditLimit   int    `json:"dailyCreditLimit"`
	MonthlyCreditLimit int    `json:"monthlyCreditLimit"`
	BonusCredits       int    `json:"bonusCredits"`
	IsActive           bool   `json:"isActive"`
}

type Subscription struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"userId"`
	StripeCustomerID     string    `json:"stripeCustomerId"`
	StripeSubscriptionID string    `json:"stripeSubscriptionId"`
	StripePriceID        string    `json:"stripePriceId"`
	Status               string    `json:"status"`
	CurrentPeriodEnd     time.Time `json:"currentPeriodEnd"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

type CheckoutRequest struct {
	PlanID string `json:"planId"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}
