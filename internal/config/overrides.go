package config

import (
	"fmt"
	"strings"
)

const overridePrefix = "cc."

// parseCLIConfigOverrides parses --config=cc.key=value format.
// Returns a map suitable for apply().
func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	result := make(map[string]any)

	for _, override := range overrides {
		parts := strings.SplitN(override, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config override: %q, expected format: cc.key=value (note: use = not space)", override)
		}

		fullKey := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(fullKey, overridePrefix) {
			return nil, fmt.Errorf("config override key must start with '%s': %q", overridePrefix, fullKey)
		}

		key := strings.TrimPrefix(fullKey, overridePrefix)
		if key == "" {
			return nil, fmt.Errorf("empty config key in override: %q", override)
		}
		// last one wins
		result[key] = parts[1]
	}

	return result, nil
}

// ApplyCLIOverrides applies --config overrides on top of the loaded values.
func (cfg *AppConfig) ApplyCLIOverrides(overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}
	data, err := parseCLIConfigOverrides(overrides)
	if err != nil {
		return err
	}
	cfg.apply(data)
	return nil
}
