package topology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshscope/backend-go/internal/domain"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadNamingRules(t *testing.T) {
	path := writeRules(t, `
rules:
  - source: gateway
    target: " orders "
  - source: orders
    target: db
`)

	rules, err := LoadNamingRules(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.NamingRule{
		{Source: "gateway", Target: "orders"},
		{Source: "orders", Target: "db"},
	}, rules)
}

func TestLoadNamingRulesEmpty(t *testing.T) {
	rules, err := LoadNamingRules(writeRules(t, "rules: []\n"))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadNamingRulesErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "rules: [source: a"},
		{"missing target", "rules:\n  - source: api\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadNamingRules(writeRules(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadNamingRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMatchRules(t *testing.T) {
	rules := DefaultNamingRules()

	assert.Equal(t, 2, matchRules(rules, "api", "payment-service"))
	assert.Equal(t, 1, matchRules(rules, "frontend", "api"))
	assert.Equal(t, 0, matchRules(rules, "db", "api"))
	assert.Equal(t, 0, matchRules(nil, "api", "service"))
}
