// Package reference loads the county vocabulary and tax rate table from the
// configured source.
package reference

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"

	"deedcheck/internal/domain"
	"deedcheck/internal/port"
)

// fileEntry is one county in a JSON or YAML reference file. A missing
// tax_rate means the county has no configured rate.
type fileEntry struct {
	Name    string    `yaml:"name" json:"name"`
	TaxRate rateValue `yaml:"tax_rate" json:"tax_rate"`
}

// rateValue reads a tax_rate from its literal text, so a rate written with
// many digits is kept exactly rather than rounded through float64. Quoted
// rates are accepted too.
type rateValue struct {
	decimal.NullDecimal
}

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (r *rateValue) UnmarshalYAML(b []byte) error {
	lit := strings.TrimSpace(string(b))
	if i := strings.Index(lit, " #"); i >= 0 {
		lit = strings.TrimSpace(lit[:i])
	}
	lit = strings.Trim(lit, `"'`)
	switch lit {
	case "", "null", "~":
		r.NullDecimal = decimal.NullDecimal{}
		return nil
	}
	d, err := decimal.NewFromString(lit)
	if err != nil {
		return fmt.Errorf("tax_rate %q is not a number", lit)
	}
	r.NullDecimal = decimal.NewNullDecimal(d)
	return nil
}

type fileDocument struct {
	Counties []fileEntry `yaml:"counties" json:"counties"`
}

// ParseDocument decodes a reference document. Both a bare list of
// {name, tax_rate} objects and a {counties: [...]} wrapper are accepted.
// JSON is valid YAML, so one decoder serves both.
func ParseDocument(data []byte) ([]port.CountyEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: reference document is empty", domain.ErrInvalidReferenceData)
	}

	var raw []fileEntry
	if isSequence(trimmed) {
		if err := yaml.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: decoding county list: %v", domain.ErrInvalidReferenceData, err)
		}
	} else {
		var doc fileDocument
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: decoding reference document: %v", domain.ErrInvalidReferenceData, err)
		}
		raw = doc.Counties
	}

	entries := make([]port.CountyEntry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, port.CountyEntry{Name: r.Name, TaxRate: r.TaxRate.NullDecimal})
	}
	return entries, nil
}

func isSequence(data []byte) bool {
	if data[0] == '[' {
		return true
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || line == "---" {
			continue
		}
		return strings.HasPrefix(line, "- ")
	}
	return false
}

// FileSource reads a JSON or YAML reference file from disk.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load implements port.ReferenceSource.
func (s *FileSource) Load(_ context.Context) ([]port.CountyEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading reference file %s: %w", s.path, err)
	}
	entries, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(s.path), err)
	}
	return entries, nil
}
