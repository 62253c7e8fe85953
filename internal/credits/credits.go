package credits

import (
	"encoding/json"
	"time"
)

// RecentEventsWindow caps how many ledger entries the credits
// endpoint returns. The full ledger stays in the database.
const RecentEventsWindow = 10

type Profile struct {
	Tier                 string    `json:"tier"`
	DailyCreditUsed      int       `json:"daily_credit_used"`
	DailyCreditLimit     int       `json:"daily_credit_limit"`
	DailyCreditResetAt   time.Time `json:"daily_credit_reset_at"`
	MonthlyCreditUsed    int       `json:"monthly_credit_used"`
	MonthlyCreditLimit   int       `json:"monthly_credit_limit"`
	MonthlyCreditResetAt time.Time `json:"monthly_credit_reset_at"`
	BonusCredits         int       `json:"bonus_credits"`
}

// Event is one immutable ledger entry. Rows are only ever inserted;
// delta is negative for consumption, positive for grants.
type Event struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Product   string          `json:"product"`
	Delta     int             `json:"delta"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

// Snapshot is what GET /api/v1/me/credits returns. Profile is null
// for users that have no profile row yet; RecentEvents is never null.
type Snapshot struct {
	UserID       string   `json:"user_id"`
	Profile      *Profile `json:"profile"`
	RecentEvents []Event  `json:"recent_events"`
}

// Event reasons written by this service.
const (
	ReasonAnalysis   = "analysis"
	ReasonAdminGrant = "admin_grant"
	ReasonPlanBonus  = "plan_bonus"
)
