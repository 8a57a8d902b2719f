package widget

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"medigenius/internal/domain"
	"medigenius/internal/prefs"
	"medigenius/internal/transcript"
)

const (
	StructuralFailureText = "Sorry, I couldn't process your request. Please try again."
	TransportFailureText  = "Unable to connect to the server. Please check your connection and try again."

	SourceSystemError     = "System Error"
	SourceConnectionError = "Connection Error"
)

// Outcome resume cómo terminó un Submit.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeAnswered
	OutcomeFailed
	OutcomeUnreachable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeFailed:
		return "failed"
	case OutcomeUnreachable:
		return "unreachable"
	default:
		return "ignored"
	}
}

// Options agrupa los colaboradores opcionales del Controller.
type Options struct {
	AssistantName string
	Archive       Archive
	Clipboard     Clipboard
	Recognizer    Recognizer
	Saver         DocumentSaver
	Prefs         prefs.Store
	Clock         func() time.Time
}

// Controller coordina el ciclo enviar/recibir y las acciones del widget.
type Controller struct {
	logger        *zap.Logger
	remote        Remote
	view          View
	session       *Session
	assistantName string
	archive       Archive
	clipboard     Clipboard
	recognizer    Recognizer
	saver         DocumentSaver
	prefStore     prefs.Store
	prefs         prefs.Preferences
	clock         func() time.Time
}

// NewController crea un Controller y lee las preferencias una sola vez.
func NewController(logger *zap.Logger, remote Remote, view View, opts Options) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.AssistantName == "" {
		opts.AssistantName = "MediGenius"
	}
	if opts.Recognizer == nil {
		opts.Recognizer = NewDisabledRecognizer()
	}
	if opts.Prefs == nil {
		opts.Prefs = prefs.NewMemoryStore()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	p, err := opts.Prefs.Load()
	if err != nil {
		logger.Warn("load preferences failed", zap.Error(err))
	}

	return &Controller{
		logger:        logger,
		remote:        remote,
		view:          view,
		session:       NewSession(),
		assistantName: opts.AssistantName,
		archive:       opts.Archive,
		clipboard:     opts.Clipboard,
		recognizer:    opts.Recognizer,
		saver:         opts.Saver,
		prefStore:     opts.Prefs,
		prefs:         p.Normalize(),
		clock:         opts.Clock,
	}
}

// Start aplica al View el estado inicial de preferencias.
func (c *Controller) Start(ctx context.Context) {
	if c.view == nil {
		return
	}
	c.view.ApplyTheme(c.prefs.Theme)
	c.view.ShowSidebar(c.prefs.SidebarOpen, c.sidebarSessions(ctx))
}

func (c *Controller) Session() *Session {
	return c.session
}

func (c *Controller) Busy() bool {
	return c.session.Busy()
}

func (c *Controller) Messages() []transcript.Message {
	return c.session.transcript.All()
}

func (c *Controller) Preferences() prefs.Preferences {
	return c.prefs
}

// Submit envía el texto si no está vacío y no hay otra llamada en curso.
// Agrega exactamente un mensaje de usuario y una respuesta por envío admitido.
func (c *Controller) Submit(ctx context.Context, raw string) Outcome {
	text := strings.TrimSpace(raw)
	if text == "" || c.remote == nil {
		return OutcomeIgnored
	}
	callCtx, ok := c.session.acquire(ctx, c.clock())
	if !ok {
		return OutcomeIgnored
	}
	defer c.finish()
	c.setBusy(true)

	c.append(transcript.Message{
		Content:   text,
		Role:      domain.RoleUser,
		Timestamp: c.stamp(),
	})

	reply, err := c.remote.Send(callCtx, text)
	if err == nil && reply.SessionID != "" {
		c.session.setCurrent(reply.SessionID)
	}
	switch {
	case err != nil:
		c.logger.Warn("chat request unreachable", zap.Error(err))
		c.append(transcript.Message{
			Content:   TransportFailureText,
			Role:      domain.RoleSystemError,
			Timestamp: c.stamp(),
			Source:    SourceConnectionError,
		})
		c.notify(LevelError, "Connection error. Please try again.")
		return OutcomeUnreachable
	case !reply.Success:
		c.logger.Warn("chat request failed", zap.String("source", reply.Source))
		c.append(transcript.Message{
			Content:   StructuralFailureText,
			Role:      domain.RoleSystemError,
			Timestamp: c.stamp(),
			Source:    SourceSystemError,
		})
		c.notify(LevelError, "Failed to get response")
		return OutcomeFailed
	default:
		ts := strings.TrimSpace(reply.Timestamp)
		if ts == "" {
			ts = c.stamp()
		}
		c.append(transcript.Message{
			Content:   reply.Text,
			Role:      domain.RoleAssistant,
			Timestamp: ts,
			Source:    strings.TrimSpace(reply.Source),
		})
		return OutcomeAnswered
	}
}

// Reset vacía el transcript local; no hace nada mientras hay una llamada en curso.
func (c *Controller) Reset() error {
	if _, ok := c.session.acquire(context.Background(), c.clock()); !ok {
		return ErrBusy
	}
	defer c.session.release()
	c.resetLocked()
	return nil
}

// NewChat pide al backend una sesión nueva y solo entonces limpia el transcript.
func (c *Controller) NewChat(ctx context.Context) error {
	if c.remote == nil {
		return ErrNotConfigured
	}
	return c.remoteReset(ctx, "new chat", c.remote.NewChat, "New chat started")
}

// Clear pide al backend olvidar el estado de conversación y limpia el transcript.
func (c *Controller) Clear(ctx context.Context) error {
	if c.remote == nil {
		return ErrNotConfigured
	}
	return c.remoteReset(ctx, "clear", func(ctx context.Context) (string, error) {
		return c.session.CurrentID(), c.remote.Clear(ctx)
	}, "Conversation cleared")
}

// remoteReset limpia el transcript solo si el backend confirma; call devuelve la sesión vigente.
func (c *Controller) remoteReset(ctx context.Context, op string, call func(context.Context) (string, error), done string) error {
	callCtx, ok := c.session.acquire(ctx, c.clock())
	if !ok {
		return ErrBusy
	}
	defer c.session.release()

	id, err := call(callCtx)
	if err != nil {
		c.logger.Warn(op+" failed", zap.Error(err))
		c.notify(LevelError, "Could not reach the server. Conversation kept.")
		return err
	}
	c.resetLocked()
	c.session.setCurrent(id)
	c.notify(LevelSuccess, done)
	c.refreshSidebar(ctx)
	return nil
}

func (c *Controller) resetLocked() {
	c.session.transcript.Clear()
	if c.view != nil {
		c.view.Reset()
	}
}

// Export genera el documento de texto del transcript actual.
func (c *Controller) Export(now time.Time) (transcript.Document, error) {
	doc, err := transcript.Export(c.session.transcript.All(), c.assistantName, now)
	if errors.Is(err, transcript.ErrEmptyTranscript) {
		c.notify(LevelWarning, "No messages to export")
	}
	return doc, err
}

// Download exporta el transcript y lo entrega mediante el DocumentSaver.
func (c *Controller) Download() (string, error) {
	if c.saver == nil {
		return "", ErrNotConfigured
	}
	doc, err := c.Export(c.clock())
	if err != nil {
		return "", err
	}
	location, err := c.saver.Save(doc)
	if err != nil {
		c.logger.Warn("save export failed", zap.Error(err))
		c.notify(LevelError, "Could not save the chat export")
		return "", err
	}
	c.notify(LevelSuccess, "Chat exported to "+location)
	return location, nil
}

// CopyLast copia la última respuesta del asistente.
func (c *Controller) CopyLast() error {
	msg, ok := c.session.transcript.Last(domain.RoleAssistant)
	if !ok {
		c.notify(LevelWarning, "Nothing to copy yet")
		return ErrNothingToCopy
	}
	return c.Copy(msg.Content)
}

// Copy envía texto al portapapeles.
func (c *Controller) Copy(text string) error {
	if c.clipboard == nil {
		c.notify(LevelError, "Clipboard is not available")
		return ErrUnsupported
	}
	if err := c.clipboard.Copy(text); err != nil {
		c.logger.Warn("clipboard copy failed", zap.Error(err))
		c.notify(LevelError, "Failed to copy")
		return err
	}
	c.notify(LevelSuccess, "Copied to clipboard")
	return nil
}

// Voice obtiene texto reconocido y lo envía como un mensaje normal.
func (c *Controller) Voice(ctx context.Context) (Outcome, error) {
	if c.Busy() {
		return OutcomeIgnored, ErrBusy
	}
	text, err := c.recognizer.Recognize(ctx)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			c.notify(LevelError, "Voice input is not supported here")
		} else {
			c.logger.Warn("speech recognition failed", zap.Error(err))
			c.notify(LevelError, "Voice recognition failed")
		}
		return OutcomeIgnored, err
	}
	return c.Submit(ctx, text), nil
}

// LoadSession reemplaza el transcript por el historial guardado de otra sesión.
func (c *Controller) LoadSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if c.archive == nil {
		return ErrNotConfigured
	}
	if sessionID == "" {
		c.notify(LevelWarning, "Choose a session to load")
		return ErrUnknownSession
	}
	callCtx, ok := c.session.acquire(ctx, c.clock())
	if !ok {
		return ErrBusy
	}
	defer c.session.release()

	msgs, err := c.archive.History(callCtx, sessionID)
	if err != nil {
		c.logger.Warn("load session failed", zap.String("session_id", sessionID), zap.Error(err))
		c.notify(LevelError, "Could not load that chat")
		return err
	}
	c.resetLocked()
	for _, m := range msgs {
		c.append(m)
	}
	c.session.setCurrent(sessionID)
	c.notify(LevelInfo, "Chat loaded")
	return nil
}

// DeleteSession borra una sesión guardada. Si era la actual, o el backend la reemplazó,
// limpia el transcript.
func (c *Controller) DeleteSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if c.archive == nil {
		return ErrNotConfigured
	}
	if sessionID == "" {
		c.notify(LevelWarning, "Choose a session to delete")
		return ErrUnknownSession
	}
	callCtx, ok := c.session.acquire(ctx, c.clock())
	if !ok {
		return ErrBusy
	}
	defer c.session.release()

	rotated, err := c.archive.DeleteSession(callCtx, sessionID)
	if err != nil {
		c.logger.Warn("delete session failed", zap.String("session_id", sessionID), zap.Error(err))
		c.notify(LevelError, "Could not delete that chat")
		return err
	}
	if c.session.CurrentID() == sessionID || rotated != "" {
		c.resetLocked()
		c.session.setCurrent(rotated)
	}
	c.notify(LevelSuccess, "Chat deleted")
	c.refreshSidebar(ctx)
	return nil
}

// ToggleTheme alterna entre tema claro y oscuro y lo persiste.
func (c *Controller) ToggleTheme() prefs.Preferences {
	if c.prefs.Theme == prefs.ThemeDark {
		c.prefs.Theme = prefs.ThemeLight
	} else {
		c.prefs.Theme = prefs.ThemeDark
	}
	c.savePrefs()
	if c.view != nil {
		c.view.ApplyTheme(c.prefs.Theme)
	}
	return c.prefs
}

// ToggleSidebar abre o cierra la barra lateral y lo persiste.
func (c *Controller) ToggleSidebar(ctx context.Context) prefs.Preferences {
	c.prefs.SidebarOpen = !c.prefs.SidebarOpen
	c.savePrefs()
	if c.view != nil {
		c.view.ShowSidebar(c.prefs.SidebarOpen, c.sidebarSessions(ctx))
	}
	return c.prefs
}

// RefreshSessions vuelve a listar las sesiones en la barra lateral.
func (c *Controller) RefreshSessions(ctx context.Context) []SessionSummary {
	sessions := c.listSessions(ctx)
	if c.view != nil {
		c.view.ShowSidebar(true, sessions)
	}
	return sessions
}

func (c *Controller) refreshSidebar(ctx context.Context) {
	if c.view == nil || !c.prefs.SidebarOpen {
		return
	}
	c.view.ShowSidebar(true, c.sidebarSessions(ctx))
}

func (c *Controller) sidebarSessions(ctx context.Context) []SessionSummary {
	if !c.prefs.SidebarOpen {
		return nil
	}
	return c.listSessions(ctx)
}

func (c *Controller) listSessions(ctx context.Context) []SessionSummary {
	if c.archive == nil {
		return nil
	}
	sessions, err := c.archive.Sessions(ctx)
	if err != nil {
		c.logger.Warn("list sessions failed", zap.Error(err))
		return nil
	}
	return sessions
}

func (c *Controller) savePrefs() {
	if err := c.prefStore.Save(c.prefs); err != nil {
		c.logger.Warn("save preferences failed", zap.Error(err))
		c.notify(LevelWarning, "Preference not saved")
	}
}

func (c *Controller) finish() {
	c.session.release()
	c.setBusy(false)
}

func (c *Controller) append(msg transcript.Message) {
	c.session.transcript.Append(msg)
	if c.view != nil {
		c.view.Append(msg)
	}
}

func (c *Controller) setBusy(busy bool) {
	if c.view != nil {
		c.view.SetBusy(busy)
	}
}

func (c *Controller) notify(level Level, text string) {
	if c.view != nil {
		c.view.Notify(level, text)
	}
}

func (c *Controller) stamp() string {
	return c.clock().Format(domain.TimestampLayout)
}
