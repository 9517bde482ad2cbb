// Package models defines the client-side data model of the journal cache:
// records, persisted chunks, cache metadata, retention settings and the value
// objects returned by sync and stats.
package models

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

// Kind classifies a record.
type Kind string

const (
	// KindEntry is a dated journal entry keyed by YYYY-MM-DD.
	KindEntry Kind = "entry"
	// KindTopic is a named topical collection keyed by "topic:<slug>".
	KindTopic Kind = "topic"
)

const topicKeyPrefix = "topic:"

// Item is a tagged sub-item of a record (a prayer point, a verse, a to-do).
type Item struct {
	Tag  string `json:"tag,omitempty"`
	Text string `json:"text"`
	Done bool   `json:"done,omitempty"`
}

// Record is a single journal document. NaturalKey is unique within one
// user's collection and drives gap detection during sync.
type Record struct {
	ID         string          `json:"id"`
	NaturalKey string          `json:"natural_key"`
	Kind       Kind            `json:"kind"`
	Title      string          `json:"title,omitempty"`
	Body       string          `json:"body,omitempty"`
	Items      []Item          `json:"items,omitempty"`
	Flags      map[string]bool `json:"flags,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// TopicKey builds the natural key of a topical collection from its name.
func TopicKey(name string) string {
	slug := strings.Trim(slugCleaner.ReplaceAllString(strings.ToLower(name), "-"), "-")
	return topicKeyPrefix + slug
}

// KindOfKey infers the kind of a record from its natural key.
func KindOfKey(naturalKey string) Kind {
	if strings.HasPrefix(naturalKey, topicKeyPrefix) {
		return KindTopic
	}
	return KindEntry
}

// EntryKey builds the natural key of the entry for day t.
func EntryKey(t time.Time) string {
	return timex.FormatDay(t)
}

// Validate checks the fields every store relies on.
func (r Record) Validate() error {
	switch r.Kind {
	case KindEntry:
		if _, err := timex.ParseDay(r.NaturalKey); err != nil {
			return fmt.Errorf("%w: entry key must be YYYY-MM-DD: %v", common.ErrValidation, err)
		}
	case KindTopic:
		if !strings.HasPrefix(r.NaturalKey, topicKeyPrefix) || len(r.NaturalKey) == len(topicKeyPrefix) {
			return fmt.Errorf("%w: topic key must look like %q", common.ErrValidation, topicKeyPrefix+"<slug>")
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", common.ErrValidation, r.Kind)
	}
	if strings.Contains(r.NaturalKey, "/") {
		return fmt.Errorf("%w: natural key must not contain '/'", common.ErrValidation)
	}
	return nil
}

// Day returns the calendar day of an entry, or false for topics and
// malformed keys.
func (r Record) Day() (time.Time, bool) {
	if r.Kind != KindEntry {
		return time.Time{}, false
	}
	d, err := timex.ParseDay(r.NaturalKey)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// LastTouched is the timestamp retention uses for topics.
func (r Record) LastTouched() time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

// OlderThan reports whether the record falls before the retention cutoff:
// entries by their day, topics by their last update.
func (r Record) OlderThan(cutoff time.Time) bool {
	if d, ok := r.Day(); ok {
		return d.Before(cutoff)
	}
	if r.Kind == KindTopic {
		t := r.LastTouched()
		return !t.IsZero() && t.Before(cutoff)
	}
	return false
}

// SortByKeyDesc orders records by natural key, newest date first. The sort is
// stable so equal keys keep their relative order.
func SortByKeyDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].NaturalKey > records[j].NaturalKey
	})
}

// KeySet returns the set of natural keys present in records.
func KeySet(records []Record) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		set[r.NaturalKey] = struct{}{}
	}
	return set
}

// MissingKeys returns the keys of remote absent from local, sorted
// ascending. It is the gap computation shared by sync and stats.
func MissingKeys(remote []string, local map[string]struct{}) []string {
	missing := make([]string, 0)
	seen := make(map[string]struct{}, len(remote))
	for _, k := range remote {
		if _, ok := local[k]; ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		missing = append(missing, k)
	}
	sort.Strings(missing)
	return missing
}

// Merge overlays incoming on base by natural key (incoming wins) and returns
// the union sorted descending by key. No key of base is ever dropped.
func Merge(base, incoming []Record) []Record {
	index := make(map[string]int, len(base)+len(incoming))
	merged := make([]Record, 0, len(base)+len(incoming))
	for _, r := range base {
		if i, ok := index[r.NaturalKey]; ok {
			merged[i] = r
			continue
		}
		index[r.NaturalKey] = len(merged)
		merged = append(merged, r)
	}
	for _, r := range incoming {
		if i, ok := index[r.NaturalKey]; ok {
			merged[i] = r
			continue
		}
		index[r.NaturalKey] = len(merged)
		merged = append(merged, r)
	}
	SortByKeyDesc(merged)
	return merged
}
