package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homePulseAPI/internal/credits"
)

type fakeCreditStore struct {
	profile    *credits.Profile
	profileErr error
	events     []credits.Event
	eventsErr  error
	gotLimit   int
}

func (s *fakeCreditStore) GetProfile(ctx context.Context, userID string) (*credits.Profile, error) {
	return s.profile, s.profileErr
}

func (s *fakeCreditStore) RecentEvents(ctx context.Context, userID string, limit int) ([]credits.Event, error) {
	s.gotLimit = limit
	return s.events, s.eventsErr
}

func TestGetMyCredits_NoProfileYet(t *testing.T) {
	store := &fakeCreditStore{}
	svc := NewCreditsServiceWithStore(store)

	got, err := svc.GetMyCredits(context.Background(), "user_new")

	require.NoError(t, err)
	assert.Equal(t, "user_new", got.UserID)
	assert.Nil(t, got.Profile)
	require.NotNil(t, got.RecentEvents)
	assert.Empty(t, got.RecentEvents)
}

func TestGetMyCredits_ProfileAndEvents(t *testing.T) {
	now := time.Now()
	profile := &credits.Profile{
		Tier:             "free",
		DailyCreditUsed:  3,
		DailyCreditLimit: 5,
		BonusCredits:     0,
	}
	events := []credits.Event{
		{ID: "e2", UserID: "user_1", Product: "price_analysis", Delta: -1, Reason: credits.ReasonAnalysis, CreatedAt: now},
		{ID: "e1", UserID: "user_1", Product: "price_analysis", Delta: -1, Reason: credits.ReasonAnalysis, CreatedAt: now.Add(-time.Hour)},
	}
	store := &fakeCreditStore{profile: profile, events: events}
	svc := NewCreditsServiceWithStore(store)

	got, err := svc.GetMyCredits(context.Background(), "user_1")

	require.NoError(t, err)
	assert.Equal(t, profile, got.Profile)
	require.Len(t, got.RecentEvents, 2)
	// Most recent first.
	assert.Equal(t, "e2", got.RecentEvents[0].ID)
	assert.Equal(t, "e1", got.RecentEvents[1].ID)
	assert.True(t, got.RecentEvents[0].CreatedAt.After(got.RecentEvents[1].CreatedAt))
}

func TestGetMyCredits_UsesRecentEventsWindow(t *testing.T) {
	store := &fakeCreditStore{profile: &credits.Profile{Tier: "free"}}
	svc := NewCreditsServiceWithStore(store)

	_, err := svc.GetMyCredits(context.Background(), "user_1")

	require.NoError(t, err)
	assert.Equal(t, credits.RecentEventsWindow, store.gotLimit)
}

func TestGetMyCredits_ProfileLookupFailureFailsRequest(t *testing.T) {
	store := &fakeCreditStore{
		profileErr: errors.New("connection reset by peer"),
		events:     []credits.Event{{ID: "e1"}},
	}
	svc := NewCreditsServiceWithStore(store)

	got, err := svc.GetMyCredits(context.Background(), "user_1")

	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "connection reset by peer")
}

func TestGetMyCredits_EventLookupFailureDegrades(t *testing.T) {
	profile := &credits.Profile{Tier: "pro", DailyCreditLimit: 50}
	store := &fakeCreditStore{
		profile:   profile,
		eventsErr: errors.New("relation missing"),
	}
	svc := NewCreditsServiceWithStore(store)

	got, err := svc.GetMyCredits(context.Background(), "user_1")

	require.NoError(t, err)
	assert.Equal(t, profile, got.Profile)
	require.NotNil(t, got.RecentEvents)
	assert.Empty(t, got.RecentEvents)
}

func TestGetMyCredits_NilEventsBecomesEmptySlice(t *testing.T) {
	store := &fakeCreditStore{profile: &credits.Profile{Tier: "free"}, events: nil}
	svc := NewCreditsServiceWithStore(store)

	got, err := svc.GetMyCredits(context.Background(), "user_1")

	require.NoError(t, err)
	require.NotNil(t, got.RecentEvents)
	assert.Len(t, got.RecentEvents, 0)
}
