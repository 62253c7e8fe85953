package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homePulseAPI/internal/credits"
)

// ErrInsufficientCredits is returned by SpendCredit when the daily
// and monthly allowances are exhausted and no bonus credits remain.
var ErrInsufficientCredits = errors.New("insufficient credits")

// CreditStore is the read side of the credit ledger. GetProfile
// returns (nil, nil) when the user has no profile row yet.
type CreditStore interface {
	GetProfile(ctx context.Context, userID string) (*credits.Profile, error)
	RecentEvents(ctx context.Context, userID string, limit int) ([]credits.Event, error)
}

type CreditsService struct {
	store CreditStore
	db    *pgxpool.Pool
}

func NewCreditsService(db *pgxpool.Pool) *CreditsService {
	return &CreditsService{store: &pgxCreditStore{db: db}, db: db}
}

// NewCreditsServiceWithStore builds a read-only service over any
// CreditStore. The ledger writers need a database pool and are not
// usable on instances built this way.
func NewCreditsServiceWithStore(store CreditStore) *CreditsService {
	return &CreditsService{store: store}
}

// GetMyCredits returns the caller's quota snapshot. A missing
// profile row is a normal "no data yet" case, not an error. A failed
// profile read fails the whole call; a failed event read degrades to
// an empty history because quota status matters more than audit
// trail.
func (s *CreditsService) GetMyCredits(ctx context.Context, userID string) (*credits.Snapshot, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit profile: %w", err)
	}

	events, err := s.store.RecentEvents(ctx, userID, credits.RecentEventsWindow)
	if err != nil {
		log.Printf("GetMyCredits: event lookup failed for user %s: %v", userID, err)
		events = nil
	}
	if events == nil {
		events = []credits.Event{}
	}

	return &credits.Snapshot{
		UserID:       userID,
		Profile:      profile,
		RecentEvents: events,
	}, nil
}

// SpendCredit charges one credit for product inside a single
// transaction: periodic allowance first, bonus credits after, and an
// appended ledger event either way. Expired windows are reset in the
// same transaction before the charge is applied.
func (s *CreditsService) SpendCredit(ctx context.Context, userID string, product string, meta map[string]any) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		dailyUsed, dailyLimit     int
		monthlyUsed, monthlyLimit int
		bonus                     int
		dailyReset, monthlyReset  time.Time
	)
	query := `
	SELECT daily_credit_used, daily_credit_limit, daily_credit_reset_at,
	       monthly_credit_used, monthly_credit_limit, monthly_credit_reset_at,
	       bonus_credits
	FROM user_profiles
	WHERE user_id = $1
	FOR UPDATE
	`
	err = tx.QueryRow(ctx, query, userID).Scan(
		&dailyUsed, &dailyLimit, &dailyReset,
		&monthlyUsed, &monthlyLimit, &monthlyReset,
		&bonus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInsufficientCredits
		}
		return fmt.Errorf("failed to load credit counters: %w", err)
	}

	now := time.Now()
	if !now.Before(dailyReset) {
		dailyUsed = 0
		dailyReset = now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	}
	if !now.Before(monthlyReset) {
		monthlyUsed = 0
		monthlyReset = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	}

	switch {
	case dailyUsed < dailyLimit && monthlyUsed < monthlyLimit:
		dailyUsed++
		monthlyUsed++
	case bonus > 0:
		bonus--
	default:
		return ErrInsufficientCredits
	}

	updateQuery := `
	UPDATE user_profiles
	SET daily_credit_used = $2, daily_credit_reset_at = $3,
	    monthly_credit_used = $4, monthly_credit_reset_at = $5,
	    bonus_credits = $6, updated_at = NOW()
	WHERE user_id = $1
	`
	if _, err := tx.Exec(ctx, updateQuery, userID, dailyUsed, dailyReset, monthlyUsed, monthlyReset, bonus); err != nil {
		return fmt.Errorf("failed to update credit counters: %w", err)
	}

	if err := insertCreditEvent(ctx, tx, userID, product, -1, credits.ReasonAnalysis, meta); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GrantBonus adds amount bonus credits and records the ledger event.
// Used by the admin grant endpoint and the billing webhook.
func (s *CreditsService) GrantBonus(ctx context.Context, userID string, amount int, product, reason string, meta map[string]any) error {
	if amount <= 0 {
		return fmt.Errorf("grant amount must be positive")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
	UPDATE user_profiles
	SET bonus_credits = bonus_credits + $2, updated_at = NOW()
	WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to add bonus credits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no credit profile for user %s", userID)
	}

	if err := insertCreditEvent(ctx, tx, userID, product, amount, reason, meta); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// EnsureProfile creates or upgrades the profile row for a tier. The
// billing webhook calls it when a plan checkout completes.
func (s *CreditsService) EnsureProfile(ctx context.Context, userID, tier string, dailyLimit, monthlyLimit int) error {
	query := `
	INSERT INTO user_profiles (user_id, tier, daily_credit_used, daily_credit_limit, daily_credit_reset_at,
	                           monthly_credit_used, monthly_credit_limit, monthly_credit_reset_at,
	                           bonus_credits, created_at, updated_at)
	VALUES ($1, $2, 0, $3, NOW() + interval '1 day', 0, $4, date_trunc('month', NOW()) + interval '1 month', 0, NOW(), NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET tier = $2, daily_credit_limit = $3, monthly_credit_limit = $4, updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, userID, tier, dailyLimit, monthlyLimit); err != nil {
		return fmt.Errorf("failed to ensure credit profile: %w", err)
	}
	return nil
}

func insertCreditEvent(ctx context.Context, tx pgx.Tx, userID, product string, delta int, reason string, meta map[string]any) error {
	var metaJSON []byte
	if meta != nil {
		var err error
		metaJSON, err = json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to marshal event meta: %w", err)
		}
	}

	_, err := tx.Exec(ctx, `
	INSERT INTO credit_events (id, user_id, product, delta, reason, meta, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, uuid.New().String(), userID, product, delta, reason, metaJSON)
	if err != nil {
		return fmt.Errorf("failed to append credit event: %w", err)
	}
	return nil
}

type pgxCreditStore struct {
	db *pgxpool.Pool
}

func (s *pgxCreditStore) GetProfile(ctx context.Context, userID string) (*credits.Profile, error) {
	query := `
	SELECT tier, daily_credit_used, daily_credit_limit, daily_credit_reset_at,
	       monthly_credit_used, monthly_credit_limit, monthly_credit_reset_at,
	       bonus_credits
	FROM user_profiles
	WHERE user_id = $1
	`

	profile := &credits.Profile{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&profile.Tier,
		&profile.DailyCreditUsed,
		&profile.DailyCreditLimit,
		&profile.DailyCreditResetAt,
		&profile.MonthlyCreditUsed,
		&profile.MonthlyCreditLimit,
		&profile.MonthlyCreditResetAt,
		&profile.BonusCredits,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return profile, nil
}

func (s *pgxCreditStore) RecentEvents(ctx context.Context, userID string, limit int) ([]credits.Event, error) {
	query := `
	SELECT id, user_id, product, delta, reason, created_at, COALESCE(meta, 'null'::jsonb)
	FROM credit_events
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []credits.Event{}
	for rows.Next() {
		var e credits.Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.Product, &e.Delta, &e.Reason, &e.CreatedAt, &e.Meta); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
