package api

import "time"

// Record kinds on the wire.
const (
	KindEntry = "entry"
	KindTopic = "topic"
)

type Item struct {
	Tag  string `json:"tag,omitempty"`
	Text string `json:"text"`
	Done bool   `json:"done,omitempty"`
}

type Record struct {
	ID         string          `json:"id"`
	NaturalKey string          `json:"natural_key"`
	Kind       string          `json:"kind"`
	Title      string          `json:"title,omitempty"`
	Body       string          `json:"body,omitempty"`
	Items      []Item          `json:"items,omitempty"`
	Flags      map[string]bool `json:"flags,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ListKeysRequest struct {
	UserID string `json:"user_id"`
}

type ListKeysResponse struct {
	Keys []string `json:"keys"`
}

type FetchByKeysRequest struct {
	UserID string   `json:"user_id"`
	Keys   []string `json:"keys"`
}

type FetchAllRequest struct {
	UserID string `json:"user_id"`
}

type FetchResponse struct {
	Records []Record `json:"records"`
}

type UpsertRequest struct {
	UserID string `json:"user_id"`
	Record Record `json:"record"`
}

type UpsertResponse struct {
	Record Record `json:"record"`
}

type DeleteRequest struct {
	UserID string `json:"user_id"`
	ID     string `json:"id"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// DeleteOlderThanRequest removes records of one kind older than Cutoff:
// entries by their day key, topics by their last update.
type DeleteOlderThanRequest struct {
	UserID string    `json:"user_id"`
	Kind   string    `json:"kind"`
	Cutoff time.Time `json:"cutoff"`
}

type DeleteOlderThanResponse struct {
	Deleted int64 `json:"deleted"`
}
