package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Well-known preference keys.
const (
	PrefFocus     = "focus"
	PrefAISummary = "aiSummary"
	PrefBudget    = "budget"
)

// ValueKind identifies which member of a PreferenceValue is populated.
type ValueKind int

const (
	KindString ValueKind = iota + 1
	KindList
	KindNumber
)

// PreferenceValue is a tagged union of string, string list and number.
type PreferenceValue struct {
	kind ValueKind
	str  string
	list []string
	num  float64
}

// StringValue wraps a string.
func StringValue(s string) PreferenceValue {
	return PreferenceValue{kind: KindString, str: s}
}

// ListValue wraps a list of strings.
func ListValue(items []string) PreferenceValue {
	return PreferenceValue{kind: KindList, list: append([]string{}, items...)}
}

// NumberValue wraps a number.
func NumberValue(n float64) PreferenceValue {
	return PreferenceValue{kind: KindNumber, num: n}
}

// Kind returns the populated member.
func (v PreferenceValue) Kind() ValueKind { return v.kind }

// AsString returns the string member.
func (v PreferenceValue) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsList returns a copy of the list member.
func (v PreferenceValue) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]string{}, v.list...), true
}

// AsNumber returns the number member.
func (v PreferenceValue) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v PreferenceValue) value() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindList:
		if v.list == nil {
			return []string{}
		}
		return v.list
	case KindNumber:
		return v.num
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v PreferenceValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.value())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *PreferenceValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty preference value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("preference list must hold strings: %w", err)
		}
		*v = ListValue(list)
	case 'n':
		return fmt.Errorf("preference value must not be null")
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported preference value %s", data)
		}
		*v = NumberValue(n)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v PreferenceValue) MarshalYAML() (interface{}, error) {
	return v.value(), nil
}

// Preferences is an open attribute bag keyed by preference name.
type Preferences map[string]PreferenceValue

// UnmarshalJSON keeps every entry that fits the string, string-list or number
// shape and drops the rest.
func (p *Preferences) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Preferences, len(raw))
	for key, msg := range raw {
		var v PreferenceValue
		if err := v.UnmarshalJSON(msg); err != nil {
			continue
		}
		out[key] = v
	}
	*p = out
	return nil
}

// Clone returns a deep copy. The result is never nil.
func (p Preferences) Clone() Preferences {
	out := make(Preferences, len(p))
	for k, v := range p {
		if v.kind == KindList {
			v.list = append([]string{}, v.list...)
		}
		out[k] = v
	}
	return out
}

// Focus returns the focus topic tags, if set.
func (p Preferences) Focus() []string {
	list, _ := p[PrefFocus].AsList()
	return list
}

// AISummary returns the narrative summary, if set.
func (p Preferences) AISummary() string {
	s, _ := p[PrefAISummary].AsString()
	return s
}
