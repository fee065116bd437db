package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCLIConfigOverrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides []string
		expected  map[string]any
		wantErr   string
	}{
		{
			name:      "single value",
			overrides: []string{"cc.theme=nord"},
			expected:  map[string]any{"theme": "nord"},
		},
		{
			name:      "value containing equals",
			overrides: []string{"cc.pager=less --opt=1"},
			expected:  map[string]any{"pager": "less --opt=1"},
		},
		{
			name:      "last one wins",
			overrides: []string{"cc.editor=vim", "cc.editor=nano"},
			expected:  map[string]any{"editor": "nano"},
		},
		{
			name:      "missing equals",
			overrides: []string{"cc.theme"},
			wantErr:   "invalid config override",
		},
		{
			name:      "wrong prefix",
			overrides: []string{"lw.theme=nord"},
			wantErr:   "must start with",
		},
		{
			name:      "empty key",
			overrides: []string{"cc.=x"},
			wantErr:   "empty config key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseCLIConfigOverrides(tt.overrides)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestApplyCLIOverrides(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyCLIOverrides(nil))
	assert.Equal(t, DefaultConfig(), cfg)

	require.NoError(t, cfg.ApplyCLIOverrides([]string{
		"cc.theme=solarized-light",
		"cc.show_hidden=true",
		"cc.search_debounce_ms=50",
		"cc.search_exclude=",
	}))
	assert.Equal(t, "solarized-light", cfg.Theme)
	assert.True(t, cfg.ShowHidden)
	assert.Equal(t, 50, cfg.SearchDebounceMS)
	assert.Empty(t, cfg.SearchExclude)

	assert.Error(t, cfg.ApplyCLIOverrides([]string{"theme=nord"}))
}
