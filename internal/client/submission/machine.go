// Package submission drives a contact submission from the browser side: bot
// heuristics, a persisted pending envelope, a verification challenge, and one
// cancellable send at a time.
package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"contactgate/internal/client/pending"
	"contactgate/internal/core/contact"
	perr "contactgate/internal/platform/errors"
	"contactgate/internal/platform/logger"
	ptime "contactgate/internal/platform/time"
)

// DefaultMinFill is the shortest plausible time from first render to submit
const DefaultMinFill = time.Second

// User facing messages
const (
	MsgSent         = "Message sent successfully."
	MsgBlocked      = "Please take a moment to review your message, then send it again."
	MsgNoPending    = "No pending message found. Please fill out the contact form again."
	MsgCanceled     = "The request was canceled."
	MsgVerifyFailed = "Verification failed. Please try again."
	MsgVerifyExpiry = "Verification expired. Please verify again."
	MsgSaveFailed   = "Could not keep your message for the next step. Please try again."
)

// Receipt is what the edge returns for a delivered message
type Receipt struct {
	ReferenceID string
	Message     string
}

// Submitter posts a payload (with its verification token) to the edge
type Submitter interface {
	Submit(ctx context.Context, p contact.Payload) (Receipt, error)
}

// Form is what the visitor filled in, honeypot included
type Form struct {
	Name     string
	Email    string
	Message  string
	Honeypot string
}

// Snapshot is the observable machine state
type Snapshot struct {
	State State

	// Payload is the pending message once phase one has stored it
	Payload  contact.Payload
	HasToken bool

	ReferenceID string
	Message     string
	Err         error
	Retryable   bool
}

// Machine is safe for concurrent use; at most one send is in flight
type Machine struct {
	mu sync.Mutex

	store    *pending.Store
	sub      Submitter
	clock    ptime.Clock
	minFill  time.Duration
	autoSend bool
	observe  func(Snapshot)

	snap       Snapshot
	token      string
	renderedAt time.Time

	gen    uint64
	cancel context.CancelFunc
}

// Option configures a Machine
type Option func(*Machine)

// WithClock injects a time source
func WithClock(c ptime.Clock) Option { return func(m *Machine) { m.clock = ptime.OrSystem(c) } }

// WithMinFill overrides the fill time heuristic; 0 disables it
func WithMinFill(d time.Duration) Option { return func(m *Machine) { m.minFill = d } }

// WithAutoSend sends as soon as a challenge token arrives
func WithAutoSend(on bool) Option { return func(m *Machine) { m.autoSend = on } }

// WithObserver is called after every state change, outside the machine lock
func WithObserver(fn func(Snapshot)) Option { return func(m *Machine) { m.observe = fn } }

// New builds an idle Machine
func New(store *pending.Store, sub Submitter, opts ...Option) *Machine {
	m := &Machine{
		store:   store,
		sub:     sub,
		clock:   ptime.System,
		minFill: DefaultMinFill,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Snapshot returns the current state
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// set moves to next and returns the snapshot to publish; callers hold mu
func (m *Machine) set(next Snapshot) (Snapshot, error) {
	if !allowed(m.snap.State, next.State) {
		return m.snap, &TransitionError{From: m.snap.State, To: next.State}
	}
	next.HasToken = m.token != ""
	m.snap = next
	return next, nil
}

// commit releases mu and publishes s
func (m *Machine) commit(s Snapshot, err error) (Snapshot, error) {
	m.mu.Unlock()
	if err == nil && m.observe != nil {
		m.observe(s)
	}
	return s, err
}

// Start marks the form as rendered; the fill timer runs from here
func (m *Machine) Start() (Snapshot, error) {
	m.mu.Lock()
	m.renderedAt = m.clock.Now()
	return m.commit(m.set(Snapshot{State: StateFilling}))
}

// Compose runs phase one: bot heuristics, local validation, and persisting
// the pending envelope
func (m *Machine) Compose(f Form) (Snapshot, error) {
	m.mu.Lock()

	// automated fillers see the same success a person would
	if strings.TrimSpace(f.Honeypot) != "" {
		return m.commit(m.set(Snapshot{State: StateSuccess, Message: MsgSent}))
	}

	if m.minFill > 0 && m.clock.Now().Sub(m.renderedAt) < m.minFill {
		return m.commit(m.set(Snapshot{
			State:   StateBlocked,
			Message: MsgBlocked,
			Err:     perr.New(perr.ErrorCodeBlocked, MsgBlocked),
		}))
	}

	p, err := contact.Validate(contact.Payload{Name: f.Name, Email: f.Email, Message: f.Message})
	if err != nil {
		return m.commit(m.set(Snapshot{
			State:   StateFilling,
			Message: perr.WireFrom(err).Message,
			Err:     err,
		}))
	}

	if _, err := m.set(Snapshot{State: StateSubmitting, Payload: p}); err != nil {
		return m.commit(m.snap, err)
	}
	env, err := m.store.Save(p)
	if err != nil {
		logger.Named("submission").Warn().Err(err).Msg("save pending envelope")
		return m.commit(m.set(Snapshot{
			State:     StateFilling,
			Message:   MsgSaveFailed,
			Err:       perr.Wrap(err, perr.ErrorCodeUnknown, MsgSaveFailed),
			Retryable: true,
		}))
	}
	m.token = ""
	return m.commit(m.set(Snapshot{State: StatePendingVerification, Payload: env.Payload()}))
}

// Resume enters phase two from the stored envelope
func (m *Machine) Resume() (Snapshot, error) {
	m.mu.Lock()
	if m.snap.State == StateSending {
		return m.commit(m.snap, &TransitionError{From: StateSending, To: StatePendingVerification})
	}
	m.token = ""
	return m.commit(m.set(m.pendingOrMissing()))
}

// pendingOrMissing loads the envelope; callers hold mu
func (m *Machine) pendingOrMissing() Snapshot {
	env, ok := m.store.Load()
	if !ok {
		return Snapshot{State: StateNoPending, Message: MsgNoPending}
	}
	return Snapshot{State: StatePendingVerification, Payload: env.Payload()}
}

// Challenge starts a fresh verification challenge; any earlier token is dropped
func (m *Machine) Challenge() (Snapshot, error) {
	m.mu.Lock()
	m.token = ""
	return m.commit(m.set(Snapshot{State: StateVerifying, Payload: m.snap.Payload}))
}

// Verified records the challenge token and, with auto send, sends right away
func (m *Machine) Verified(ctx context.Context, token string) (Snapshot, error) {
	m.mu.Lock()
	if m.snap.State != StateVerifying {
		return m.commit(m.snap, &TransitionError{From: m.snap.State, To: StatePendingVerification})
	}
	m.token = strings.TrimSpace(token)
	s, err := m.commit(m.set(Snapshot{State: StatePendingVerification, Payload: m.snap.Payload}))
	if err != nil || !m.autoSend {
		return s, err
	}
	return m.Send(ctx)
}

// ChallengeFailed resets the challenge and keeps the payload for another try
func (m *Machine) ChallengeFailed(expired bool) (Snapshot, error) {
	m.mu.Lock()
	if m.snap.State != StateVerifying {
		return m.commit(m.snap, &TransitionError{From: m.snap.State, To: StatePendingVerification})
	}
	msg := MsgVerifyFailed
	if expired {
		msg = MsgVerifyExpiry
	}
	m.token = ""
	return m.commit(m.set(Snapshot{
		State:     StatePendingVerification,
		Payload:   m.snap.Payload,
		Message:   msg,
		Err:       perr.New(perr.ErrorCodeVerification, msg),
		Retryable: true,
	}))
}

// Send posts the pending envelope with the current token. A send already in
// flight is canceled first and its result is never published.
func (m *Machine) Send(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	if m.token == "" {
		return m.commit(m.snap, &TransitionError{From: m.snap.State, To: StateSending})
	}
	if !allowed(m.snap.State, StateSending) {
		return m.commit(m.snap, &TransitionError{From: m.snap.State, To: StateSending})
	}

	env, ok := m.store.Load()
	if !ok {
		m.abortLocked()
		m.token = ""
		return m.commit(m.set(Snapshot{State: StateNoPending, Message: MsgNoPending}))
	}

	m.abortLocked()
	m.gen++
	gen := m.gen
	sctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	p := env.Payload()
	p.Token = m.token
	sending, _ := m.set(Snapshot{State: StateSending, Payload: env.Payload()})
	m.commit(sending, nil)

	rec, err := m.sub.Submit(sctx, p)
	cancel()

	m.mu.Lock()
	if gen != m.gen {
		// superseded or discarded; the newer attempt owns the state
		m.mu.Unlock()
		return Snapshot{State: StateCanceled, Message: MsgCanceled, Err: perr.New(perr.ErrorCodeCanceled, MsgCanceled)}, nil
	}
	m.cancel = nil
	m.token = ""
	return m.commit(m.set(m.settle(rec, err, env.Payload())))
}

// settle maps a finished send to its state; callers hold mu
func (m *Machine) settle(rec Receipt, err error, p contact.Payload) Snapshot {
	switch {
	case err == nil:
		if derr := m.store.Discard(); derr != nil {
			logger.Named("submission").Warn().Err(derr).Msg("discard pending envelope")
		}
		msg := rec.Message
		if msg == "" {
			msg = MsgSent
		}
		return Snapshot{State: StateSuccess, ReferenceID: rec.ReferenceID, Message: msg}

	case errors.Is(err, context.Canceled) || perr.IsCode(err, perr.ErrorCodeCanceled):
		return Snapshot{
			State:     StateCanceled,
			Payload:   p,
			Message:   MsgCanceled,
			Err:       perr.Wrap(err, perr.ErrorCodeCanceled, MsgCanceled),
			Retryable: true,
		}

	case perr.IsCode(err, perr.ErrorCodeVerification), perr.IsCode(err, perr.ErrorCodeMissingToken):
		return Snapshot{
			State:     StatePendingVerification,
			Payload:   p,
			Message:   perr.WireFrom(err).Message,
			Err:       err,
			Retryable: true,
		}

	default:
		return Snapshot{
			State:     StateFailed,
			Payload:   p,
			Message:   perr.WireFrom(err).Message,
			Err:       err,
			Retryable: perr.Retryable(err),
		}
	}
}

// Cancel aborts the send in flight, if any; the send settles as canceled
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
}

// Discard abandons the submission: any send is dropped and the envelope removed
func (m *Machine) Discard() Snapshot {
	m.mu.Lock()
	m.abortLocked()
	m.gen++
	m.token = ""
	if err := m.store.Discard(); err != nil {
		logger.Named("submission").Warn().Err(err).Msg("discard pending envelope")
	}
	m.snap = Snapshot{State: StateIdle}
	s, _ := m.commit(m.snap, nil)
	return s
}

// abortLocked cancels the in-flight send; callers hold mu
func (m *Machine) abortLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
