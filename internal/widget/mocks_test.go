package widget

import (
	"context"
	"errors"
	"sync"
	"time"

	"medigenius/internal/transcript"
)

type mockRemote struct {
	mu         sync.Mutex
	reply      Reply
	err        error
	resetErr   error
	sent       []string
	newChats   int
	newChatID  string
	clears     int
	started    chan struct{}
	unblock    chan struct{}
	panicOnRun bool
}

func (m *mockRemote) Send(ctx context.Context, text string) (Reply, error) {
	m.mu.Lock()
	m.sent = append(m.sent, text)
	started, unblock := m.started, m.unblock
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if unblock != nil {
		<-unblock
	}
	if m.panicOnRun {
		panic("remote exploded")
	}
	return m.reply, m.err
}

func (m *mockRemote) NewChat(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newChats++
	if m.resetErr != nil {
		return "", m.resetErr
	}
	return m.newChatID, nil
}

func (m *mockRemote) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	return m.resetErr
}

type notification struct {
	level Level
	text  string
}

type mockView struct {
	mu            sync.Mutex
	appended      []transcript.Message
	resets        int
	busyChanges   []bool
	notifications []notification
	theme         string
	sidebarOpen   bool
	sidebar       []SessionSummary
}

func (v *mockView) Append(msg transcript.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.appended = append(v.appended, msg)
}

func (v *mockView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resets++
	v.appended = nil
}

func (v *mockView) SetBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busyChanges = append(v.busyChanges, busy)
}

func (v *mockView) Notify(level Level, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, notification{level: level, text: text})
}

func (v *mockView) ApplyTheme(theme string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.theme = theme
}

func (v *mockView) ShowSidebar(open bool, sessions []SessionSummary) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sidebarOpen = open
	v.sidebar = sessions
}

func (v *mockView) lastNotification() (notification, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.notifications) == 0 {
		return notification{}, false
	}
	return v.notifications[len(v.notifications)-1], true
}

type mockArchive struct {
	sessions   []SessionSummary
	history    map[string][]transcript.Message
	err        error
	deleted    []string
	rotateTo   string
	listCalled int
}

func (a *mockArchive) Sessions(context.Context) ([]SessionSummary, error) {
	a.listCalled++
	return a.sessions, a.err
}

func (a *mockArchive) History(_ context.Context, id string) ([]transcript.Message, error) {
	if a.err != nil {
		return nil, a.err
	}
	msgs, ok := a.history[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return msgs, nil
}

func (a *mockArchive) DeleteSession(_ context.Context, id string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.deleted = append(a.deleted, id)
	return a.rotateTo, nil
}

type mockClipboard struct {
	copied string
	err    error
}

func (c *mockClipboard) Copy(text string) error {
	if c.err != nil {
		return c.err
	}
	c.copied = text
	return nil
}

type mockRecognizer struct {
	text string
	err  error
}

func (r mockRecognizer) Recognize(context.Context) (string, error) {
	return r.text, r.err
}

type mockSaver struct {
	saved []transcript.Document
	err   error
}

func (s *mockSaver) Save(doc transcript.Document) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, doc)
	return "/tmp/" + doc.Filename, nil
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 14, 14, 30, 0, 0, time.UTC)
}
