package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexKind tags which shape a FlexValue arrived in
type FlexKind int

const (
	FlexEmpty  FlexKind = iota
	FlexString          // "Go"
	FlexList            // ["Go", "SQL"]
	FlexRefs            // {"id": "1", "name": "Go"} or a list mixing refs and strings
)

// Ref is the {id, name} object shape some form widgets submit
type Ref struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// label prefers the human name over the id
func (r Ref) label() string {
	if s := strings.TrimSpace(r.Name); s != "" {
		return s
	}
	return strings.TrimSpace(r.ID)
}

// FlexValue is a form field that may be a string, a list of strings, an object
// with name/id, or a list of those. It is decoded once at the boundary and read
// through Strings, String and Int.
type FlexValue struct {
	Kind  FlexKind
	Text  string
	Items []string
	Refs  []Ref
}

func FlexOf(items ...string) FlexValue {
	if len(items) == 1 {
		return FlexValue{Kind: FlexString, Text: items[0]}
	}
	return FlexValue{Kind: FlexList, Items: items}
}

func (v *FlexValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*v = FlexValue{}

	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '"':
		v.Kind = FlexString
		return json.Unmarshal(b, &v.Text)
	case '{':
		var r Ref
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		v.Kind = FlexRefs
		v.Refs = []Ref{r}
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		return v.fromList(raw)
	case 't', 'f':
		return fmt.Errorf("flex value: booleans are not accepted")
	default:
		// numbers arrive from numeric inputs; keep their literal text
		v.Kind = FlexString
		v.Text = string(b)
		return nil
	}
}

func (v *FlexValue) fromList(raw []json.RawMessage) error {
	v.Kind = FlexList
	refs := make([]Ref, 0, len(raw))
	hasObject := false

	for _, el := range raw {
		el = bytes.TrimSpace(el)
		if len(el) == 0 || bytes.Equal(el, []byte("null")) {
			continue
		}
		if el[0] == '{' {
			var r Ref
			if err := json.Unmarshal(el, &r); err != nil {
				return err
			}
			refs = append(refs, r)
			hasObject = true
			continue
		}
		var s string
		if el[0] == '"' {
			if err := json.Unmarshal(el, &s); err != nil {
				return err
			}
		} else {
			s = string(el)
		}
		v.Items = append(v.Items, s)
		refs = append(refs, Ref{Name: s})
	}

	// a list with any object keeps every element as a ref, in input order
	if hasObject {
		v.Refs = refs
		v.Items = nil
		v.Kind = FlexRefs
	}
	return nil
}

// MarshalJSON writes the normalized list, so a re-decoded value is already clean
func (v FlexValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case FlexEmpty:
		return []byte("null"), nil
	case FlexString:
		return json.Marshal(v.Text)
	default:
		return json.Marshal(v.Strings())
	}
}

// Strings normalizes any shape to a list of trimmed, non-empty strings
func (v FlexValue) Strings() []string {
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	switch v.Kind {
	case FlexString:
		add(v.Text)
	case FlexList:
		for _, s := range v.Items {
			add(s)
		}
	case FlexRefs:
		for _, r := range v.Refs {
			add(r.label())
		}
	}

	if out == nil {
		return []string{}
	}
	return out
}

// String collapses the value to a single string; lists are joined by newlines
func (v FlexValue) String() string {
	if v.Kind == FlexString {
		return strings.TrimSpace(v.Text)
	}
	return strings.Join(v.Strings(), "\n")
}

// Int parses a numeric field; ok is false when the field is empty
func (v FlexValue) Int() (n int, ok bool, err error) {
	s := strings.ReplaceAll(v.String(), ",", "")
	if s == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("not a whole number: %q", s)
	}
	return n, true, nil
}

// IntPtr is Int for optional numeric fields
func (v FlexValue) IntPtr() (*int, error) {
	n, ok, err := v.Int()
	if err != nil || !ok {
		return nil, err
	}
	return &n, nil
}
