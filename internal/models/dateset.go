package models

import (
	"sort"
	"strings"
	"time"
)

// DateKeyLayout is the local-calendar date format used to key per-occurrence
// markers. Keys are always rendered in the engine's location, never UTC.
const DateKeyLayout = "2006-01-02"

// DateKey renders t as a date-key in the given location.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

// DateSet is a set of date-keys. The store keeps an item's completed and
// skipped sets disjoint; DateSet itself is just the container.
type DateSet map[string]struct{}

func NewDateSet(keys ...string) DateSet {
	s := make(DateSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s DateSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

func (s DateSet) Add(key string) {
	s[key] = struct{}{}
}

func (s DateSet) Remove(key string) {
	delete(s, key)
}

func (s DateSet) Len() int {
	return len(s)
}

// Keys returns the date-keys in ascending order.
func (s DateSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s DateSet) Clone() DateSet {
	out := make(DateSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Encode serializes the set for the storage text column.
func (s DateSet) Encode() string {
	return strings.Join(s.Keys(), ",")
}

// ParseDateSet decodes a stored marker column. Tokens that do not parse as
// date-keys are dropped; a fully corrupt value decodes to an empty set so bad
// persisted data never blocks the item.
func ParseDateSet(raw string) DateSet {
	s := make(DateSet)
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, err := time.Parse(DateKeyLayout, tok); err != nil {
			continue
		}
		s[tok] = struct{}{}
	}
	return s
}
