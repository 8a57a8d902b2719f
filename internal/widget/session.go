package widget

import (
	"context"
	"sync"
	"time"

	"medigenius/internal/transcript"
)

// inflight es el único slot de llamada pendiente.
type inflight struct {
	startedAt time.Time
	cancel    context.CancelFunc
}

// Session agrupa el transcript y el estado de admisión de una conversación.
type Session struct {
	mu         sync.Mutex
	transcript *transcript.Store
	pending    *inflight
	currentID  string
}

func NewSession() *Session {
	return &Session{transcript: transcript.NewStore()}
}

func (s *Session) Transcript() *transcript.Store {
	return s.transcript
}

// Busy indica si hay una llamada en curso.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// PendingSince devuelve cuándo empezó la llamada en curso.
func (s *Session) PendingSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return time.Time{}, false
	}
	return s.pending.startedAt, true
}

// acquire ocupa el slot; devuelve false si ya estaba ocupado.
func (s *Session) acquire(ctx context.Context, now time.Time) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return nil, false
	}
	callCtx, cancel := context.WithCancel(ctx)
	s.pending = &inflight{startedAt: now, cancel: cancel}
	return callCtx, true
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return
	}
	s.pending.cancel()
	s.pending = nil
}

// CurrentID devuelve la sesión del backend que refleja el transcript, o "" si aún no se conoce.
func (s *Session) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

func (s *Session) setCurrent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = id
}
