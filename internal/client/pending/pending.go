// Package pending persists the contact payload between the form step and the
// verify-and-send step. An envelope lives for TTL after it is written; anything
// expired, corrupt, or incomplete reads as absent.
package pending

import (
	"encoding/json"
	"strings"
	"time"

	"contactgate/internal/core/contact"
	"contactgate/internal/platform/logger"
	ptime "contactgate/internal/platform/time"
)

// Defaults
const (
	Key = "contact:pending"
	TTL = 15 * time.Minute
)

// Envelope is the persisted payload plus its creation time
type Envelope struct {
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// Payload returns the envelope as a contact payload without a token
func (e Envelope) Payload() contact.Payload {
	return contact.Payload{Name: e.Name, Email: e.Email, Message: e.Message}
}

// Expired reports whether ttl has passed since CreatedAt
func (e Envelope) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) > ttl
}

// wire is the stored JSON; createdAt is epoch milliseconds
type wire struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"`
}

// Store reads and writes the envelope under one key
type Store struct {
	storage Storage
	key     string
	ttl     time.Duration
	clock   ptime.Clock
}

// Option configures a Store
type Option func(*Store)

// WithTTL overrides the 15 minute lifetime
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithClock injects a time source
func WithClock(c ptime.Clock) Option {
	return func(s *Store) { s.clock = ptime.OrSystem(c) }
}

// WithKey overrides the storage key
func WithKey(k string) Option {
	return func(s *Store) {
		if strings.TrimSpace(k) != "" {
			s.key = k
		}
	}
}

// New builds a Store over storage
func New(storage Storage, opts ...Option) *Store {
	s := &Store{storage: storage, key: Key, ttl: TTL, clock: ptime.System}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TTL reports the envelope lifetime
func (s *Store) TTL() time.Duration { return s.ttl }

// Save writes p stamped with the current time
func (s *Store) Save(p contact.Payload) (Envelope, error) {
	e := Envelope{Name: p.Name, Email: p.Email, Message: p.Message, CreatedAt: s.clock.Now()}
	raw, err := json.Marshal(wire{Name: e.Name, Email: e.Email, Message: e.Message, CreatedAt: e.CreatedAt.UnixMilli()})
	if err != nil {
		return Envelope{}, err
	}
	if err := s.storage.Save(s.key, raw); err != nil {
		return Envelope{}, err
	}
	e.CreatedAt = time.UnixMilli(e.CreatedAt.UnixMilli())
	return e, nil
}

// Load returns the envelope when one is present and fresh. Expired or
// unreadable envelopes are removed; read failures report absent.
func (s *Store) Load() (Envelope, bool) {
	raw, ok, err := s.storage.Load(s.key)
	if err != nil {
		logger.Named("pending").Warn().Err(err).Msg("read pending envelope")
		return Envelope{}, false
	}
	if !ok {
		return Envelope{}, false
	}

	var w wire
	if err := json.Unmarshal(raw, &w); err != nil || !complete(w) {
		s.drop("corrupt")
		return Envelope{}, false
	}

	e := Envelope{Name: w.Name, Email: w.Email, Message: w.Message, CreatedAt: time.UnixMilli(w.CreatedAt)}
	if e.Expired(s.clock.Now(), s.ttl) {
		s.drop("expired")
		return Envelope{}, false
	}
	return e, true
}

// Discard removes the envelope
func (s *Store) Discard() error { return s.storage.Delete(s.key) }

func (s *Store) drop(reason string) {
	if err := s.storage.Delete(s.key); err != nil {
		logger.Named("pending").Warn().Err(err).Str("reason", reason).Msg("drop pending envelope")
	}
}

func complete(w wire) bool {
	return strings.TrimSpace(w.Name) != "" &&
		strings.TrimSpace(w.Email) != "" &&
		strings.TrimSpace(w.Message) != "" &&
		w.CreatedAt > 0
}
