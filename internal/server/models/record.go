// Package models holds the server-side representation of journal records.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

const (
	KindEntry = "entry"
	KindTopic = "topic"
)

const TopicKeyPrefix = "topic:"

type Item struct {
	Tag  string `json:"tag,omitempty"`
	Text string `json:"text"`
	Done bool   `json:"done,omitempty"`
}

// Record is one row of the records table. NaturalKey is unique per UserID.
type Record struct {
	ID         string
	UserID     string
	NaturalKey string
	Kind       string
	Title      string
	Body       string
	Items      []Item
	Flags      map[string]bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate rejects records the client contract does not allow.
func (r *Record) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	switch r.Kind {
	case KindEntry:
		if _, err := timex.ParseDay(r.NaturalKey); err != nil {
			return fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
	case KindTopic:
		if !strings.HasPrefix(r.NaturalKey, TopicKeyPrefix) || len(r.NaturalKey) == len(TopicKeyPrefix) {
			return fmt.Errorf("%w: bad topic key %q", common.ErrValidation, r.NaturalKey)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", common.ErrValidation, r.Kind)
	}
	return nil
}
