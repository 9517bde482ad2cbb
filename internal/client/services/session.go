package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/metadata"
)

// Session is what the CLI remembers between runs.
type Session struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// SessionService keeps the last session in the local database and proxies
// liveness checks to the remote.
type SessionService interface {
	Remember(ctx context.Context, s Session) error
	// Restore reports false when no session was remembered.
	Restore(ctx context.Context) (Session, bool, error)
	Forget(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type sessionService struct {
	client client.Client
	meta   metadata.Repository
}

func NewSessionService(c client.Client, meta metadata.Repository) SessionService {
	return &sessionService{client: c, meta: meta}
}

func (s *sessionService) Remember(ctx context.Context, sess Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.meta.Set(ctx, metadata.SessionKey, b); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *sessionService) Restore(ctx context.Context) (Session, bool, error) {
	b, err := s.meta.Get(ctx, metadata.SessionKey)
	if err != nil {
		return Session{}, false, fmt.Errorf("load session: %w", err)
	}
	if b == nil {
		return Session{}, false, nil
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return Session{}, false, fmt.Errorf("decode session: %w", err)
	}
	return sess, sess.UserID != "", nil
}

func (s *sessionService) Forget(ctx context.Context) error {
	return s.meta.Delete(ctx, metadata.SessionKey)
}

func (s *sessionService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *sessionService) Close(ctx context.Context) error {
	return s.client.Close()
}
