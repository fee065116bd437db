// Package samples serves the static code sample catalog. The catalog index
// and the sample sources are embedded in the binary.
package samples

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/chmouel/codecanvas/internal/models"
)

//go:embed catalog.yaml data
var content embed.FS

type catalogEntry struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Language    string `yaml:"language"`
	File        string `yaml:"file"`
}

type catalogFile struct {
	Samples []catalogEntry `yaml:"samples"`
}

var load = sync.OnceValues(func() ([]models.CodeSample, error) {
	return parse(content)
})

func parse(fsys embed.FS) ([]models.CodeSample, error) {
	raw, err := fsys.ReadFile("catalog.yaml")
	if err != nil {
		return nil, err
	}
	var cat catalogFile
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("parse sample catalog: %w", err)
	}
	out := make([]models.CodeSample, 0, len(cat.Samples))
	for _, e := range cat.Samples {
		code, err := fsys.ReadFile(path.Join("data", e.File))
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", e.ID, err)
		}
		out = append(out, models.CodeSample{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Category:    e.Category,
			Language:    e.Language,
			Code:        strings.TrimRight(string(code), "\n"),
		})
	}
	return out, nil
}

// All returns every sample in catalog order.
func All() []models.CodeSample {
	samples, err := load()
	if err != nil {
		// the catalog is embedded; a parse failure is a build defect
		panic(err)
	}
	return append([]models.CodeSample(nil), samples...)
}

func filter(keep func(models.CodeSample) bool) []models.CodeSample {
	var out []models.CodeSample
	for _, s := range All() {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// ByLanguage returns the samples written in language.
func ByLanguage(language string) []models.CodeSample {
	return filter(func(s models.CodeSample) bool { return s.Language == language })
}

// ByCategory returns the samples of one category.
func ByCategory(category string) []models.CodeSample {
	return filter(func(s models.CodeSample) bool { return s.Category == category })
}

// Search matches query case-insensitively against title, description and
// category. An empty query returns everything.
func Search(query string) []models.CodeSample {
	term := strings.ToLower(strings.TrimSpace(query))
	return filter(func(s models.CodeSample) bool {
		return strings.Contains(strings.ToLower(s.Title), term) ||
			strings.Contains(strings.ToLower(s.Description), term) ||
			strings.Contains(strings.ToLower(s.Category), term)
	})
}

// Get looks a sample up by id.
func Get(id string) (models.CodeSample, bool) {
	for _, s := range All() {
		if s.ID == id {
			return s, true
		}
	}
	return models.CodeSample{}, false
}

func distinct(field func(models.CodeSample) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range All() {
		v := field(s)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Languages lists the languages present in the catalog.
func Languages() []string {
	return distinct(func(s models.CodeSample) string { return s.Language })
}

// Categories lists the categories present in the catalog.
func Categories() []string {
	return distinct(func(s models.CodeSample) string { return s.Category })
}
