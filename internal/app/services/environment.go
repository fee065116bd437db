package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
)

// BuildEditorEnv builds the variables exported to editor commands.
func BuildEditorEnv(storageRoot, localPath, docPath, languageID string, line int) map[string]string {
	env := map[string]string{
		"CODECANVAS_ROOT":     storageRoot,
		"CODECANVAS_FILE":     localPath,
		"CODECANVAS_PATH":     docPath,
		"CODECANVAS_LANGUAGE": languageID,
	}
	if line > 0 {
		env["CODECANVAS_LINE"] = strconv.Itoa(line)
	}
	return env
}

// ExpandWithEnv expands environment variables using the provided map first.
func ExpandWithEnv(input string, env map[string]string) string {
	if input == "" {
		return ""
	}
	return os.Expand(input, func(key string) string {
		if val, ok := env[key]; ok {
			return val
		}
		return os.Getenv(key)
	})
}

// EnvMapToList converts environment variables to sorted KEY=VALUE pairs.
func EnvMapToList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for key, val := range env {
		out = append(out, fmt.Sprintf("%s=%s", key, val))
	}
	sort.Strings(out)
	return out
}
