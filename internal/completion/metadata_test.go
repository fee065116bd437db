package completion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFlagsHaveNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range GetFlags() {
		require.NotEmpty(t, f.Name)
		assert.False(t, strings.HasPrefix(f.Name, "-"), "flag %q must not carry dashes", f.Name)
		assert.False(t, seen[f.Name], "duplicate flag %q", f.Name)
		seen[f.Name] = true
		if len(f.Values) > 0 {
			assert.True(t, f.HasValue, "flag %q enumerates values without taking one", f.Name)
		}
	}
	assert.True(t, seen["storage-root"])
	assert.True(t, seen["theme"])
}

func TestConfigKeys(t *testing.T) {
	keys := ConfigKeys()
	require.NotEmpty(t, keys)
	for _, k := range keys {
		assert.True(t, strings.HasPrefix(k, "cc."), k)
		assert.True(t, strings.HasSuffix(k, "="), k)
	}
	assert.Contains(t, keys, "cc.storage_root=")
}

func TestScript(t *testing.T) {
	commands := []string{"tree", "search", "commit"}
	tests := []struct {
		shell string
		want  []string
	}{
		{shell: "bash", want: []string{"complete -F _codecanvas codecanvas", "commit search tree", "--theme)"}},
		{shell: "zsh", want: []string{"#compdef codecanvas", "'1:command:(commit search tree)'", "_files -/"}},
		{shell: "fish", want: []string{"complete -c codecanvas -n '__fish_use_subcommand' -f -a 'commit search tree'", "-l storage-root"}},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			script, err := Script(tt.shell, commands)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, script, w)
			}
		})
	}

	// the caller's slice is left in its order
	assert.Equal(t, []string{"tree", "search", "commit"}, commands)

	_, err := Script("powershell", commands)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported shell")
}
