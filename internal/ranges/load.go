package ranges

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type fileEntry struct {
	Field    string   `yaml:"field"`
	Category *string  `yaml:"category,omitempty"`
	Low      *float64 `yaml:"low,omitempty"`
	High     *float64 `yaml:"high,omitempty"`
}

type fileDoc struct {
	Ranges []fileEntry `yaml:"ranges"`
}

// LoadFile reads a range table from a YAML file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ranges: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a YAML document of the form
//
//	ranges:
//	  - field: preop_ecg
//	    category: Normal Sinus Rhythm
//	  - field: preop_k
//	    low: 3.5
//	    high: 5.5
func Decode(r io.Reader) (*Table, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode ranges: %w", err)
	}
	specs := make([]Spec, 0, len(doc.Ranges))
	for i, e := range doc.Ranges {
		switch {
		case e.Category != nil && (e.Low != nil || e.High != nil):
			return nil, fmt.Errorf("range %d (%s): category and low/high are mutually exclusive", i+1, e.Field)
		case e.Category != nil:
			specs = append(specs, Category(e.Field, *e.Category))
		case e.Low != nil && e.High != nil:
			specs = append(specs, Interval(e.Field, *e.Low, *e.High))
		default:
			return nil, fmt.Errorf("range %d (%s): needs either category or both low and high", i+1, e.Field)
		}
	}
	return New(specs)
}

// Encode writes t in the format Decode accepts.
func Encode(w io.Writer, t *Table) error {
	doc := fileDoc{Ranges: make([]fileEntry, 0, t.Len())}
	for _, s := range t.specs {
		e := fileEntry{Field: s.Field}
		if s.IsCategory {
			c := s.Category
			e.Category = &c
		} else {
			lo, hi := s.Low, s.High
			e.Low, e.High = &lo, &hi
		}
		doc.Ranges = append(doc.Ranges, e)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode ranges: %w", err)
	}
	return enc.Close()
}
