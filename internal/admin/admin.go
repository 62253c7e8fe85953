package admin

import "strings"

const (
	RoleViewer     = "viewer"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Membership mirrors one row of admin_users.
type Membership struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// Context is the resolved privilege of an authenticated caller.
// Bootstrap marks grants that came from the email allowlist instead
// of a membership row; callers may log it but must not branch on it
// for access decisions.
type Context struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Bootstrap bool   `json:"bootstrap"`
}

// BootstrapConfig is read from the environment once in main and
// injected, so resolution never touches os.Getenv.
type BootstrapConfig struct {
	Enabled   bool
	Allowlist map[string]struct{}
}

// NewBootstrapConfig parses the raw env values. Only the literal
// "true" enables the fallback.
func NewBootstrapConfig(enabled, rawAllowlist string) BootstrapConfig {
	return BootstrapConfig{
		Enabled:   enabled == "true",
		Allowlist: ParseAllowlist(rawAllowlist),
	}
}

// ParseAllowlist splits a comma-separated email list into a set.
// Entries are trimmed and lowercased, empties dropped, duplicates
// collapsed.
func ParseAllowlist(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		set[entry] = struct{}{}
	}
	return set
}

// Allows reports whether email passes the allowlist, matching
// case-insensitively on the input side too.
func (c BootstrapConfig) Allows(email string) bool {
	_, ok := c.Allowlist[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
