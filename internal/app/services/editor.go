package services

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/chmouel/codecanvas/internal/config"
)

// EditorCommand determines the editor command to use.
func EditorCommand(cfg *config.AppConfig) string {
	if cfg != nil {
		if editor := strings.TrimSpace(cfg.Editor); editor != "" {
			return os.ExpandEnv(editor)
		}
	}
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}
	if _, err := exec.LookPath("nvim"); err == nil {
		return "nvim"
	}
	if _, err := exec.LookPath("vi"); err == nil {
		return "vi"
	}
	return ""
}

// PagerCommand determines the pager command to use.
func PagerCommand(cfg *config.AppConfig) string {
	if cfg != nil {
		if pager := strings.TrimSpace(cfg.Pager); pager != "" {
			return pager
		}
	}
	if pager := strings.TrimSpace(os.Getenv("PAGER")); pager != "" {
		return pager
	}
	if _, err := exec.LookPath("less"); err == nil {
		return "less -R"
	}
	return "cat"
}

// PagerEnv returns environment variables needed for the pager.
func PagerEnv(pager string) []string {
	if pagerIsLess(pager) {
		return []string{"LESS=", "LESSHISTFILE=-"}
	}
	return nil
}

func pagerIsLess(pager string) bool {
	for field := range strings.FieldsSeq(pager) {
		if strings.Contains(field, "=") && !strings.HasPrefix(field, "-") && !strings.Contains(field, "/") {
			continue
		}
		return filepath.Base(field) == "less"
	}
	return false
}

// ShellQuote single-quotes s for a POSIX shell.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
