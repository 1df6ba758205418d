package directory

import (
	"sort"
	"strings"
)

// Author is a fact-checker profile. Role, Page and Image are optional and
// empty when unknown.
type Author struct {
	Initials string `toml:"initials" yaml:"initials" json:"initials"`
	Name     string `toml:"name" yaml:"name" json:"name"`
	Role     string `toml:"role" yaml:"role" json:"role,omitempty"`
	Page     string `toml:"page" yaml:"page" json:"page,omitempty"`
	Image    string `toml:"img" yaml:"img" json:"img,omitempty"`
}

// Authors maps lower-cased initials to author profiles.
type Authors struct {
	byInitials map[string]Author
}

// NewAuthors builds a directory from profiles. Entries without initials are
// ignored; later entries win over earlier ones with the same initials.
func NewAuthors(entries []Author) *Authors {
	a := &Authors{byInitials: make(map[string]Author, len(entries))}
	for _, e := range entries {
		key := normalizeInitials(e.Initials)
		if key == "" {
			continue
		}
		e.Initials = key
		e.Name = strings.TrimSpace(e.Name)
		e.Role = strings.TrimSpace(e.Role)
		e.Page = strings.TrimSpace(e.Page)
		e.Image = strings.TrimSpace(e.Image)
		a.byInitials[key] = e
	}
	return a
}

// Lookup returns the profile registered under initials. Matching ignores case
// and surrounding whitespace.
func (a *Authors) Lookup(initials string) (Author, bool) {
	if a == nil {
		return Author{}, false
	}
	author, ok := a.byInitials[normalizeInitials(initials)]
	return author, ok
}

// Len returns the number of authors.
func (a *Authors) Len() int {
	if a == nil {
		return 0
	}
	return len(a.byInitials)
}

// Entries returns every profile ordered by initials.
func (a *Authors) Entries() []Author {
	if a == nil {
		return nil
	}
	out := make([]Author, 0, len(a.byInitials))
	for _, author := range a.byInitials {
		out = append(out, author)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Initials < out[j].Initials })
	return out
}

func normalizeInitials(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
