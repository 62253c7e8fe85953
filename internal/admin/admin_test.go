package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAllowlist(t *testing.T) {
	set := ParseAllowlist("a@x.com, ,B@X.com,a@x.com")

	assert.Len(t, set, 2)
	assert.Contains(t, set, "a@x.com")
	assert.Contains(t, set, "b@x.com")
}

func TestParseAllowlist_Empty(t *testing.T) {
	assert.Empty(t, ParseAllowlist(""))
	assert.Empty(t, ParseAllowlist(" , ,"))
}

func TestBootstrapConfig_AllowsCaseInsensitive(t *testing.T) {
	cfg := NewBootstrapConfig("true", "Admin@Example.com")

	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.Allows("admin@example.com"))
	assert.True(t, cfg.Allows("  ADMIN@EXAMPLE.COM "))
	assert.False(t, cfg.Allows("other@example.com"))
}

func TestNewBootstrapConfig_OnlyLiteralTrueEnables(t *testing.T) {
	for _, v := range []string{"", "false", "TRUE", "1", "yes"} {
		assert.False(t, NewBootstrapConfig(v, "a@x.com").Enabled, "value %q should not enable bootstrap", v)
	}
	assert.True(t, NewBootstrapConfig("true", "a@x.com").Enabled)
}
