package clinical

import (
	"strconv"
	"strings"
)

// Kind tags the content of a Value.
type Kind int

const (
	Missing Kind = iota
	Number
	Text
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single dataset cell. Raw keeps the trimmed cell text so
// categorical comparisons see exactly what the file contained.
type Value struct {
	Kind Kind
	Num  float64
	Raw  string
}

var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
}

// ParseValue classifies a raw cell.
func ParseValue(s string) Value {
	raw := strings.TrimSpace(s)
	if _, ok := missingTokens[raw]; ok {
		return Value{}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Value{Kind: Number, Num: f, Raw: raw}
	}
	return Value{Kind: Text, Raw: raw}
}

// NumberValue builds a numeric Value with a canonical raw form.
func NumberValue(f float64) Value {
	return Value{Kind: Number, Num: f, Raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

// TextValue builds a text Value.
func TextValue(s string) Value {
	return Value{Kind: Text, Raw: s}
}

func (v Value) IsMissing() bool { return v.Kind == Missing }

// Float reports the numeric content; ok is false for text and missing cells.
func (v Value) Float() (float64, bool) {
	if v.Kind != Number {
		return 0, false
	}
	return v.Num, true
}

// String renders the cell as it should appear in a written table.
func (v Value) String() string {
	if v.Kind == Missing {
		return ""
	}
	return v.Raw
}

// Equal compares kind and content; two missing values are equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Number:
		return v.Num == o.Num
	case Text:
		return v.Raw == o.Raw
	default:
		return true
	}
}
