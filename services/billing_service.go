package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"homePulseAPI/internal/billing"
	"homePulseAPI/internal/credits"
)

var ErrPlanNotFound = errors.New("plan not found")

// BillingService selects a plan and hands the caller to Stripe
// Checkout. Payment execution is entirely Stripe's; we only learn
// the outcome through the signed webhook.
type BillingService struct {
	db             *pgxpool.Pool
	userService    *UserService
	creditsService *CreditsService
}

func NewBillingService(db *pgxpool.Pool, userService *UserService, creditsService *CreditsService) *BillingService {
	return &BillingService{db: db, userService: userService, creditsService: creditsService}
}

const planColumns = `id, name, tier, stripe_price_id, monthly_price_cents, daily_credit_limit, monthly_credit_limit, bonus_credits, is_active`

func scanPlan(row pgx.Row) (*billing.Plan, error) {
	p := &billing.Plan{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Tier,
		&p.StripePriceID,
		&p.MonthlyPriceCents,
		&p.DailyCreditLimit,
		&p.MonthlyCreditLimit,
		&p.BonusCredits,
		&p.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *BillingService) ListPlans(ctx context.Context) ([]*billing.Plan, error) {
	rows, err := s.db.Query(ctx, `SELECT `+planColumns+` FROM plans WHERE is_active = TRUE ORDER BY monthly_price_cents ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := []*billing.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}

func (s *BillingService) getPlan(ctx context.Context, planID string) (*billing.Plan, error) {
	p, err := scanPlan(s.db.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1 AND is_active = TRUE`, planID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return p, nil
}

// Checkout creates a Stripe Checkout session for the chosen plan and
// returns its hosted URL. The clerk user id rides along as metadata
// so the webhook can attribute the completed payment.
func (s *BillingService) Checkout(ctx context.Context, clerkID, planID string) (*billing.CheckoutResponse, error) {
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:3000"
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(appURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(appURL + "/pricing"),
		ClientReferenceID: stripe.String(clerkID),
	}
	params.AddMetadata("user_id", clerkID)
	params.AddMetadata("plan_id", plan.ID)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &billing.CheckoutResponse{CheckoutURL: sess.URL}, nil
}

// ApplyCheckoutCompleted reacts to checkout.session.completed: store
// the subscription row, move the user to the plan's tier, raise the
// credit limits and append the bonus-grant ledger event.
func (s *BillingService) ApplyCheckoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	clerkID := sess.Metadata["user_id"]
	planID := sess.Metadata["plan_id"]
	if clerkID == "" || planID == "" {
		return fmt.Errorf("checkout session %s missing user_id/plan_id metadata", sess.ID)
	}

	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return err
	}

	subscriptionID := ""
	if sess.Subscription != nil {
		subscriptionID = sess.Subscription.ID
	}
	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO subscriptions (id, user_id, stripe_customer_id, stripe_subscription_id, stripe_price_id, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, 'active', NOW(), NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET stripe_customer_id = $3, stripe_subscription_id = $4, stripe_price_id = $5, status = 'active', updated_at = NOW()
	`, sess.ID, clerkID, customerID, subscriptionID, plan.StripePriceID)
	if err != nil {
		return fmt.Errorf("failed to store subscription: %w", err)
	}

	if err := s.userService.UpdateTierByClerkID(ctx, clerkID, plan.Tier); err != nil {
		return err
	}

	if err := s.creditsService.EnsureProfile(ctx, clerkID, plan.Tier, plan.DailyCreditLimit, plan.MonthlyCreditLimit); err != nil {
		return err
	}

	if plan.BonusCredits > 0 {
		err = s.creditsService.GrantBonus(ctx, clerkID, plan.BonusCredits, "plan", credits.ReasonPlanBonus, map[string]any{
			"plan_id": plan.ID,
		})
		if err != nil {
			return err
		}
	}

	log.Printf("Billing: user %s upgraded to %s", clerkID, plan.Tier)
	return nil
}

// ApplySubscriptionStatus downgrades users whose subscription lapsed.
func (s *BillingService) ApplySubscriptionStatus(ctx context.Context, sub *stripe.Subscription) error {
	var clerkID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM subscriptions WHERE stripe_subscription_id = $1`, sub.ID).Scan(&clerkID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("Billing: unknown subscription %s, ignoring", sub.ID)
			return nil
		}
		return fmt.Errorf("failed to find subscription: %w", err)
	}

	_, err = s.db.Exec(ctx, `UPDATE subscriptions SET status = $2, updated_at = NOW() WHERE stripe_subscription_id = $1`, sub.ID, string(sub.Status))
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	if sub.Status == stripe.SubscriptionStatusCanceled || sub.Status == stripe.SubscriptionStatusUnpaid {
		if err := s.userService.UpdateTierByClerkID(ctx, clerkID, "free"); err != nil && !errors.Is(err, ErrUserNotFound) {
			return err
		}
	}

	return nil
}
