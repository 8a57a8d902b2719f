package widget

import (
	"context"
	"errors"

	"medigenius/internal/transcript"
)

var (
	ErrBusy           = errors.New("submission in flight")
	ErrUnsupported    = errors.New("capability not supported")
	ErrNotConfigured  = errors.New("widget not configured")
	ErrUnknownAction  = errors.New("unknown action")
	ErrNothingToCopy  = errors.New("nothing to copy")
	ErrUnknownSession = errors.New("unknown session")
)

// Reply es el resultado estructural de una llamada al endpoint de chat.
type Reply struct {
	Success   bool
	Text      string
	Timestamp string
	Source    string
	SessionID string
}

// Remote es el endpoint de chat remoto. Un error indica falla de transporte;
// Reply.Success=false indica falla estructural.
type Remote interface {
	Send(ctx context.Context, text string) (Reply, error)
	NewChat(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// SessionSummary describe una conversación previa listada en la barra lateral.
type SessionSummary struct {
	ID         string
	Preview    string
	LastActive string
}

// Archive expone el historial guardado por el backend. DeleteSession devuelve la
// sesión nueva cuando el backend reemplazó la actual.
type Archive interface {
	Sessions(ctx context.Context) ([]SessionSummary, error)
	History(ctx context.Context, sessionID string) ([]transcript.Message, error)
	DeleteSession(ctx context.Context, sessionID string) (string, error)
}

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// View refleja el transcript 1:1 y muestra notificaciones transitorias.
type View interface {
	Append(msg transcript.Message)
	Reset()
	SetBusy(busy bool)
	Notify(level Level, text string)
	ApplyTheme(theme string)
	ShowSidebar(open bool, sessions []SessionSummary)
}

// Clipboard copia texto al portapapeles de la plataforma.
type Clipboard interface {
	Copy(text string) error
}

// Recognizer devuelve texto reconocido por voz.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// DocumentSaver entrega el documento exportado al usuario y devuelve su ubicación.
type DocumentSaver interface {
	Save(doc transcript.Document) (string, error)
}

type disabledRecognizer struct{}

// NewDisabledRecognizer crea un Recognizer para plataformas sin reconocimiento de voz.
func NewDisabledRecognizer() Recognizer {
	return disabledRecognizer{}
}

func (disabledRecognizer) Recognize(context.Context) (string, error) {
	return "", ErrUnsupported
}
