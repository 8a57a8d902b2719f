package domain

import (
	"errors"
	"strings"
)

// Role identifica quién emitió un mensaje de la conversación.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleSystemError
)

var ErrUnknownRole = errors.New("unknown role")

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleSystemError:
		return "system-error"
	default:
		return "unknown"
	}
}

// ParseRole convierte el tag persistido en un Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "assistant", "bot":
		return RoleAssistant, nil
	case "system-error", "error":
		return RoleSystemError, nil
	default:
		return 0, ErrUnknownRole
	}
}
