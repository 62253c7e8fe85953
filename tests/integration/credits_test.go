package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homePulseAPI/handlers"
	"homePulseAPI/internal/credits"
	"homePulseAPI/middleware"
	"homePulseAPI/services"
	"homePulseAPI/tests/helpers"
)

func TestGetMyCredits_Unauthenticated(t *testing.T) {
	// No database needed: the 401 short-circuits before any lookup.
	creditsService := services.NewCreditsServiceWithStore(nil)
	creditsHandler := handlers.NewCreditsHandler(creditsService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/credits", nil)
	rr := httptest.NewRecorder()

	creditsHandler.GetMyCredits(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "unauthenticated", response["error"])
}

func TestGetMyCredits_NoProfileRow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	creditsService := services.NewCreditsService(pool)
	creditsHandler := handlers.NewCreditsHandler(creditsService)

	clerkID := helpers.UniqueClerkID()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/credits", nil)
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	creditsHandler.GetMyCredits(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var snapshot credits.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snapshot))
	assert.Equal(t, clerkID, snapshot.UserID)
	assert.Nil(t, snapshot.Profile)
	require.NotNil(t, snapshot.RecentEvents)
	assert.Empty(t, snapshot.RecentEvents)
}

func TestGetMyCredits_ProfileWithEventWindow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	creditsService := services.NewCreditsService(pool)
	creditsHandler := handlers.NewCreditsHandler(creditsService)

	clerkID := helpers.UniqueClerkID()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
	INSERT INTO user_profiles (user_id, tier, daily_credit_used, daily_credit_limit, daily_credit_reset_at,
	                           monthly_credit_used, monthly_credit_limit, monthly_credit_reset_at,
	                           bonus_credits, created_at, updated_at)
	VALUES ($1, 'free', 3, 5, NOW() + interval '1 day', 7, 50, NOW() + interval '10 days', 0, NOW(), NOW())
	`, clerkID)
	require.NoError(t, err)

	// 12 events; only the 10 newest should come back.
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		_, err := pool.Exec(ctx, `
		INSERT INTO credit_events (id, user_id, product, delta, reason, created_at)
		VALUES (gen_random_uuid(), $1, 'price_analysis', -1, $2, $3)
		`, clerkID, fmt.Sprintf("analysis_%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/credits", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID))

	rr := httptest.NewRecorder()
	creditsHandler.GetMyCredits(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var snapshot credits.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snapshot))

	require.NotNil(t, snapshot.Profile)
	assert.Equal(t, "free", snapshot.Profile.Tier)
	assert.Equal(t, 3, snapshot.Profile.DailyCreditUsed)
	assert.Equal(t, 5, snapshot.Profile.DailyCreditLimit)

	require.Len(t, snapshot.RecentEvents, 10)
	for i := 1; i < len(snapshot.RecentEvents); i++ {
		prev := snapshot.RecentEvents[i-1].CreatedAt
		cur := snapshot.RecentEvents[i].CreatedAt
		assert.True(t, prev.After(cur) || prev.Equal(cur), "events must be most-recent-first")
	}
	// The two oldest events fall outside the window.
	assert.Equal(t, "analysis_11", snapshot.RecentEvents[0].Reason)
	assert.Equal(t, "analysis_2", snapshot.RecentEvents[9].Reason)
}

func TestSpendCredit_AppendsLedgerEvent(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	creditsService := services.NewCreditsService(pool)
	clerkID := helpers.UniqueClerkID()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
	INSERT INTO user_profiles (user_id, tier, daily_credit_used, daily_credit_limit, daily_credit_reset_at,
	                           monthly_credit_used, monthly_credit_limit, monthly_credit_reset_at,
	                           bonus_credits, created_at, updated_at)
	VALUES ($1, 'free', 0, 2, NOW() + interval '1 day', 0, 50, NOW() + interval '10 days', 1, NOW(), NOW())
	`, clerkID)
	require.NoError(t, err)

	// Two periodic credits, then one bonus credit, then exhaustion.
	require.NoError(t, creditsService.SpendCredit(ctx, clerkID, "price_analysis", nil))
	require.NoError(t, creditsService.SpendCredit(ctx, clerkID, "price_analysis", nil))
	require.NoError(t, creditsService.SpendCredit(ctx, clerkID, "price_analysis", nil))

	err = creditsService.SpendCredit(ctx, clerkID, "price_analysis", nil)
	assert.ErrorIs(t, err, services.ErrInsufficientCredits)

	snapshot, err := creditsService.GetMyCredits(ctx, clerkID)
	require.NoError(t, err)
	require.NotNil(t, snapshot.Profile)
	assert.Equal(t, 2, snapshot.Profile.DailyCreditUsed)
	assert.Equal(t, 0, snapshot.Profile.BonusCredits)
	assert.Len(t, snapshot.RecentEvents, 3)
	for _, e := range snapshot.RecentEvents {
		assert.Equal(t, -1, e.Delta)
		assert.Equal(t, "price_analysis", e.Product)
	}
}
