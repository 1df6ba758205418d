package directory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a directory file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned for files whose extension is not recognized.
var ErrUnknownFormat = errors.New("directory: unknown file format")

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

type speakerFile struct {
	Speakers []SpeakerEntry `toml:"speakers" yaml:"speakers"`
}

type authorFile struct {
	Authors []Author `toml:"authors" yaml:"authors"`
}

// Set bundles the directories handed to a parse.
type Set struct {
	Speakers     *Speakers
	Authors      *Authors
	DefaultClass string
}

// SpeakerClass resolves name, reporting whether it was found. Unknown
// speakers get the set's default class.
func (s Set) SpeakerClass(name string) (string, bool) {
	if class, ok := s.Speakers.Class(name); ok {
		return class, true
	}
	if s.DefaultClass != "" {
		return s.DefaultClass, false
	}
	return DefaultSpeakerClass, false
}

// Load reads both directories. An empty speakers path selects
// DefaultSpeakers; an empty authors path yields an empty author directory.
func Load(speakersPath, authorsPath, defaultClass string) (Set, error) {
	set := Set{Speakers: DefaultSpeakers(), Authors: NewAuthors(nil), DefaultClass: defaultClass}
	if strings.TrimSpace(speakersPath) != "" {
		speakers, err := LoadSpeakers(speakersPath)
		if err != nil {
			return Set{}, err
		}
		set.Speakers = speakers
	}
	if strings.TrimSpace(authorsPath) != "" {
		authors, err := LoadAuthors(authorsPath)
		if err != nil {
			return Set{}, err
		}
		set.Authors = authors
	}
	return set, nil
}

// LoadSpeakers reads a speaker directory file.
func LoadSpeakers(path string) (*Speakers, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("directory: open speakers %q: %w", path, err)
	}
	defer f.Close()

	speakers, err := ReadSpeakers(f, format)
	if err != nil {
		return nil, fmt.Errorf("directory: parse speakers %q: %w", path, err)
	}
	return speakers, nil
}

// LoadAuthors reads an author directory file.
func LoadAuthors(path string) (*Authors, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("directory: open authors %q: %w", path, err)
	}
	defer f.Close()

	authors, err := ReadAuthors(f, format)
	if err != nil {
		return nil, fmt.Errorf("directory: parse authors %q: %w", path, err)
	}
	return authors, nil
}

// ReadSpeakers decodes a speaker directory from r.
func ReadSpeakers(r io.Reader, format Format) (*Speakers, error) {
	var file speakerFile
	switch format {
	case FormatTOML:
		if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&file); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatCSV:
		rows, err := readCSV(r, "name", "class")
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			file.Speakers = append(file.Speakers, SpeakerEntry{Name: row["name"], Class: row["class"]})
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	for i, e := range file.Speakers {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("speaker entry %d: name is required", i+1)
		}
		if strings.TrimSpace(e.Class) == "" {
			return nil, fmt.Errorf("speaker %q: class is required", e.Name)
		}
	}
	return NewSpeakers(file.Speakers), nil
}

// ReadAuthors decodes an author directory from r.
func ReadAuthors(r io.Reader, format Format) (*Authors, error) {
	var file authorFile
	switch format {
	case FormatTOML:
		if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&file); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatCSV:
		rows, err := readCSV(r, "initials", "name")
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			file.Authors = append(file.Authors, Author{
				Initials: row["initials"],
				Name:     row["name"],
				Role:     row["role"],
				Page:     row["page"],
				Image:    row["img"],
			})
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	for i, e := range file.Authors {
		if strings.TrimSpace(e.Initials) == "" {
			return nil, fmt.Errorf("author entry %d: initials are required", i+1)
		}
	}
	return NewAuthors(file.Authors), nil
}

// readCSV reads a spreadsheet export whose first row names the columns.
// Column names are matched case-insensitively; required lists the columns
// that must be present.
func readCSV(r io.Reader, required ...string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
		present[columns[i]] = true
	}
	for _, name := range required {
		if !present[name] {
			return nil, fmt.Errorf("csv column %q missing", name)
		}
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		row := make(map[string]string, len(columns))
		blank := true
		for i, value := range record {
			if i >= len(columns) {
				break
			}
			value = strings.TrimSpace(value)
			if value != "" {
				blank = false
			}
			row[columns[i]] = value
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
