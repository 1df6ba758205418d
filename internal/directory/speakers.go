package directory

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultSpeakerClass is applied to speakers missing from the directory.
const DefaultSpeakerClass = "speaker"

const suggestThreshold = 0.85

// SpeakerEntry is one row of a speaker directory file.
type SpeakerEntry struct {
	Name  string `toml:"name" yaml:"name"`
	Class string `toml:"class" yaml:"class"`
}

// Speakers maps a speaker's display name to the CSS class used for their
// paragraphs. Lookups are exact on the trimmed name.
type Speakers struct {
	classes map[string]string
	names   []string
}

// NewSpeakers builds a directory from entries. Later entries win over earlier
// ones with the same name.
func NewSpeakers(entries []SpeakerEntry) *Speakers {
	s := &Speakers{classes: make(map[string]string, len(entries))}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		if _, seen := s.classes[name]; !seen {
			s.names = append(s.names, name)
		}
		s.classes[name] = strings.TrimSpace(e.Class)
	}
	sort.Strings(s.names)
	return s
}

// DefaultSpeakers returns the directory used when no speaker file is
// configured: the candidates of the 2016 general election debates.
func DefaultSpeakers() *Speakers {
	return NewSpeakers([]SpeakerEntry{
		{Name: "HILLARY CLINTON", Class: "speaker dem"},
		{Name: "TIM KAINE", Class: "speaker dem"},
		{Name: "BARACK OBAMA", Class: "speaker dem"},
		{Name: "BARAK OBAMA", Class: "speaker dem"},
		{Name: "DONALD TRUMP", Class: "speaker gop"},
		{Name: "MIKE PENCE", Class: "speaker gop"},
	})
}

// Class returns the CSS class registered for name.
func (s *Speakers) Class(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	class, ok := s.classes[strings.TrimSpace(name)]
	return class, ok
}

// Len returns the number of speakers.
func (s *Speakers) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Entries returns the directory sorted by name.
func (s *Speakers) Entries() []SpeakerEntry {
	if s == nil {
		return nil
	}
	out := make([]SpeakerEntry, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, SpeakerEntry{Name: name, Class: s.classes[name]})
	}
	return out
}

// Suggest returns the known speaker closest to name, if any is close enough
// to be a likely typo. Candidates sharing a Double Metaphone code are
// preferred; otherwise a plain Jaro-Winkler score above the threshold is
// required.
func (s *Speakers) Suggest(name string) (string, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if s == nil || query == "" {
		return "", false
	}
	queryCodes := metaphoneCodes(query)

	var (
		best         string
		bestScore    float64
		bestPhonetic bool
	)
	for _, candidate := range s.names {
		lower := strings.ToLower(candidate)
		if lower == query {
			continue
		}
		score := matchr.JaroWinkler(query, lower, false)
		phonetic := sharesCode(queryCodes, metaphoneCodes(lower))
		switch {
		case phonetic && score >= suggestThreshold-0.1:
			if !bestPhonetic || score > bestScore {
				best, bestScore, bestPhonetic = candidate, score, true
			}
		case !bestPhonetic && score >= suggestThreshold && score > bestScore:
			best, bestScore = candidate, score
		}
	}
	return best, best != ""
}

func metaphoneCodes(value string) map[string]struct{} {
	codes := map[string]struct{}{}
	for _, token := range strings.Fields(value) {
		primary, secondary := matchr.DoubleMetaphone(token)
		if primary != "" {
			codes[primary] = struct{}{}
		}
		if secondary != "" {
			codes[secondary] = struct{}{}
		}
	}
	return codes
}

// sharesCode reports whether the two code sets have a code in common.
func sharesCode(a, b map[string]struct{}) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
