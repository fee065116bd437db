package workspace

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
)

// DefaultSnippets seeds a fresh snippet store.
func DefaultSnippets() []models.Snippet {
	return []models.Snippet{
		{
			ID:          "react-component",
			Name:        "React Component",
			Description: "Create a new React functional component",
			Language:    "typescript",
			Code: `interface Props {
  // Add props here
}

const Component: React.FC<Props> = () => {
  return (
    <div>
      {/* Add content here */}
    </div>
  );
};

export default Component;`,
		},
		{
			ID:          "useState-hook",
			Name:        "useState Hook",
			Description: "Add React useState hook",
			Language:    "typescript",
			Code:        "const [state, setState] = useState<type>(initialValue);",
		},
		{
			ID:          "go-table-test",
			Name:        "Go table test",
			Description: "Table driven test skeleton",
			Language:    "go",
			Code: `tests := []struct {
	name string
}{
	{name: "case"},
}
for _, tt := range tests {
	t.Run(tt.name, func(t *testing.T) {
	})
}`,
		},
	}
}

// Snippets is the user's snippet library.
type Snippets struct {
	mu    sync.RWMutex
	items []models.Snippet
}

// NewSnippets returns a store seeded with DefaultSnippets.
func NewSnippets() *Snippets {
	return &Snippets{items: DefaultSnippets()}
}

func validateSnippet(s models.Snippet) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperr.Validation(apperr.CodeInvalidName, "snippet name must not be empty")
	}
	return nil
}

// Add stores a new snippet and returns it with its id.
func (s *Snippets) Add(snippet models.Snippet) (models.Snippet, error) {
	if err := validateSnippet(snippet); err != nil {
		return models.Snippet{}, err
	}
	snippet.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, snippet)
	return snippet, nil
}

// Update replaces the snippet with the same id.
func (s *Snippets) Update(snippet models.Snippet) error {
	if err := validateSnippet(snippet); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == snippet.ID {
			s.items[i] = snippet
			return nil
		}
	}
	return apperr.New(apperr.KindValidation, apperr.CodeNotFound, "no such snippet: "+snippet.ID)
}

// Delete removes a snippet.
func (s *Snippets) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// List returns every snippet.
func (s *Snippets) List() []models.Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Snippet(nil), s.items...)
}

// ForLanguage returns the snippets of one language id.
func (s *Snippets) ForLanguage(language string) []models.Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Snippet
	for _, item := range s.items {
		if item.Language == language {
			out = append(out, item)
		}
	}
	return out
}
