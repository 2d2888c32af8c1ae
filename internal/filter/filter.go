// Package filter narrows catalog collections by search text, exact values,
// substring tokens and numeric ranges.
package filter

import (
	"math"
	"strings"
)

// All is the option value meaning "no constraint".
const All = "ALL"

// Criteria combines every active constraint with logical AND.
type Criteria struct {
	Text     string
	Equals   []Equals
	Contains []Contains
	Ranges   []Range
}

// Equals requires Field to equal Value exactly.
type Equals struct {
	Field string
	Value string
}

// Contains requires Field to contain Token.
type Contains struct {
	Field string
	Token string
}

// Range requires the numeric Field to lie in [Min, Max]. Max may be +Inf.
type Range struct {
	Field string
	Min   float64
	Max   float64
}

// Fields describes how to read a record type. Text names the fields searched
// by Criteria.Text; each must also appear in Strings.
type Fields[T any] struct {
	Text    []string
	Strings map[string]func(T) string
	Numbers map[string]func(T) (float64, bool)
}

func inactive(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || value == All
}

// Active reports whether any constraint would exclude records.
func (c Criteria) Active() bool {
	if strings.TrimSpace(c.Text) != "" {
		return true
	}
	for _, eq := range c.Equals {
		if !inactive(eq.Value) {
			return true
		}
	}
	for _, ct := range c.Contains {
		if !inactive(ct.Token) {
			return true
		}
	}
	return len(c.Ranges) > 0
}

// Apply returns the items matching c in their original order. items is never
// modified and the result is always a fresh slice.
func Apply[T any](items []T, fields Fields[T], c Criteria) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if fields.Match(item, c) {
			out = append(out, item)
		}
	}
	return out
}

// Match reports whether item satisfies every active constraint in c. A
// constraint on a field the record type does not have never matches.
func (f Fields[T]) Match(item T, c Criteria) bool {
	if term := strings.TrimSpace(c.Text); term != "" && !f.matchText(item, term) {
		return false
	}
	for _, eq := range c.Equals {
		if inactive(eq.Value) {
			continue
		}
		get, ok := f.Strings[eq.Field]
		if !ok || get(item) != eq.Value {
			return false
		}
	}
	for _, ct := range c.Contains {
		if inactive(ct.Token) {
			continue
		}
		get, ok := f.Strings[ct.Field]
		if !ok || !strings.Contains(get(item), ct.Token) {
			return false
		}
	}
	for _, r := range c.Ranges {
		get, ok := f.Numbers[r.Field]
		if !ok {
			return false
		}
		value, present := get(item)
		if !present || math.IsNaN(value) || value < r.Min || value > r.Max {
			return false
		}
	}
	return true
}

func (f Fields[T]) matchText(item T, term string) bool {
	term = strings.ToLower(term)
	for _, name := range f.Text {
		get, ok := f.Strings[name]
		if ok && strings.Contains(strings.ToLower(get(item)), term) {
			return true
		}
	}
	return false
}

// DistinctValues returns All followed by the distinct non-empty values of
// accessor in first-seen order.
func DistinctValues[T any](items []T, accessor func(T) string) []string {
	seen := map[string]struct{}{}
	values := []string{All}
	for _, item := range items {
		value := accessor(item)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}
