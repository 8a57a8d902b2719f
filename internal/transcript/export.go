package transcript

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"medigenius/internal/domain"
)

var ErrEmptyTranscript = errors.New("transcript is empty")

const filenameLayout = "20060102-150405"

// Document es el archivo de texto descargable de una conversación.
type Document struct {
	Filename string
	Body     []byte
}

// SpeakerLabel devuelve la etiqueta mostrada para el autor del mensaje.
func SpeakerLabel(role domain.Role, assistantName string) string {
	switch role {
	case domain.RoleUser:
		return "You"
	case domain.RoleAssistant, domain.RoleSystemError:
		return assistantName
	}
	return assistantName
}

// Render escribe un bloque por mensaje: cabecera, contenido, fuente opcional y línea en blanco.
func Render(w io.Writer, msgs []Message, assistantName string) error {
	for _, m := range msgs {
		if _, err := fmt.Fprintf(w, "[%s] %s:\n%s\n", m.Timestamp, SpeakerLabel(m.Role, assistantName), m.Content); err != nil {
			return err
		}
		if m.Source != "" {
			if _, err := fmt.Fprintf(w, "Source: %s\n", m.Source); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Export construye el documento de texto; falla si no hay mensajes.
func Export(msgs []Message, assistantName string, now time.Time) (Document, error) {
	if len(msgs) == 0 {
		return Document{}, ErrEmptyTranscript
	}
	var buf bytes.Buffer
	if err := Render(&buf, msgs, assistantName); err != nil {
		return Document{}, fmt.Errorf("render transcript: %w", err)
	}
	return Document{
		Filename: "medigenius-chat-" + now.Format(filenameLayout) + ".txt",
		Body:     buf.Bytes(),
	}, nil
}
