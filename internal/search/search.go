// Package search implements linear, per-line regex search over the full
// file tree. Every call re-walks the tree; nothing is indexed.
package search

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/filetree"
	"github.com/chmouel/codecanvas/internal/log"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

// DefaultExclude is the exclude list used when none is configured.
const DefaultExclude = "node_modules,dist,build"

// DefaultMaxFileSize bounds the size of files that are scanned.
const DefaultMaxFileSize int64 = 1 << 20

// Options controls pattern compilation and file selection.
type Options struct {
	CaseSensitive bool
	WholeWord     bool
	Regex         bool
	Include       []string // path substrings, empty admits everything
	Exclude       []string // path substrings, checked before Include
	MaxFileSize   int64    // 0 disables the limit
	Root          string   // subtree to search, "" for the whole tree
}

// Tree is the traversal and read capability search needs.
type Tree interface {
	Walk(ctx context.Context, root string, fn filetree.WalkFunc) error
	ReadFile(path string) ([]byte, error)
	Stat(path string) (storage.Info, error)
}

var logger = log.Component("search")

// ParsePatterns splits a comma separated pattern list, dropping blanks.
func ParsePatterns(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Compile builds the line pattern for query. Literal queries are escaped
// unless Regex is set; WholeWord wraps the pattern in word boundaries.
func Compile(query string, opts Options) (*regexp.Regexp, error) {
	pattern := query
	if !opts.Regex {
		pattern = regexp.QuoteMeta(pattern)
	}
	if opts.WholeWord {
		pattern = `\b(?:` + pattern + `)\b`
	}
	if !opts.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidPattern, "invalid pattern: "+err.Error())
	}
	return re, nil
}

// Excluded reports whether path contains any exclude pattern.
func (o Options) Excluded(path string) bool {
	for _, p := range o.Exclude {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Included reports whether path is eligible. Exclusion wins over inclusion.
func (o Options) Included(path string) bool {
	if o.Excluded(path) {
		return false
	}
	if len(o.Include) == 0 {
		return true
	}
	for _, p := range o.Include {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Run searches every eligible file below opts.Root for query. A blank query
// yields no results. Unreadable, binary and oversized files are skipped.
func Run(ctx context.Context, tree Tree, query string, opts Options) ([]models.SearchMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	re, err := Compile(query, opts)
	if err != nil {
		return nil, err
	}

	var results []models.SearchMatch
	scanned := 0
	err = tree.Walk(ctx, opts.Root, func(node *models.FileNode) error {
		if node.IsDir() {
			if opts.Excluded(node.Path + "/") {
				return filetree.SkipDir
			}
			return nil
		}
		if !opts.Included(node.Path) {
			return nil
		}
		if opts.MaxFileSize > 0 {
			info, err := tree.Stat(node.Path)
			if err != nil {
				logger.Debugf("skipping %s: %v", node.Path, err)
				return nil
			}
			if info.Size > opts.MaxFileSize {
				return nil
			}
		}
		data, err := tree.ReadFile(node.Path)
		if err != nil {
			logger.Debugf("skipping %s: %v", node.Path, err)
			return nil
		}
		if bytes.IndexByte(data, 0) >= 0 {
			return nil
		}
		scanned++
		if lines := MatchLines(re, string(data)); len(lines) > 0 {
			results = append(results, models.SearchMatch{Path: node.Path, Lines: lines})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return results, err
	}
	logger.Debugf("search %q: %d files scanned, %d with matches", query, scanned, len(results))
	return results, nil
}

// MatchLines returns every line of content with at least one non-empty
// match, with the byte spans of all matches in order.
func MatchLines(re *regexp.Regexp, content string) []models.LineMatch {
	var out []models.LineMatch
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		var spans []models.Span
		for _, m := range re.FindAllStringIndex(line, -1) {
			if m[0] == m[1] {
				continue
			}
			spans = append(spans, models.Span{Start: m[0], End: m[1]})
		}
		if len(spans) == 0 {
			continue
		}
		out = append(out, models.LineMatch{Line: i + 1, Content: line, Spans: spans})
	}
	return out
}
