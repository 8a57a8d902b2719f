package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const sessionTokenIssuer = "medigenius"

var ErrSessionTokenInvalid = errors.New("session token invalid")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionTokens firma y valida la cookie que identifica la sesión de chat.
type SessionTokens struct {
	key []byte
	now func() time.Time
}

// NewSessionTokens deriva la clave de firma desde secret; sin secret usa uno aleatorio por proceso.
func NewSessionTokens(secret string) (*SessionTokens, error) {
	if strings.TrimSpace(secret) == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("medigenius session cookie")), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &SessionTokens{key: key, now: time.Now}, nil
}

func (t *SessionTokens) Issue(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrSessionTokenInvalid
	}
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   sessionTokenIssuer,
			IssuedAt: jwt.NewNumericDate(t.now().UTC()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

func (t *SessionTokens) Parse(token string) (string, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionTokenIssuer),
	)
	if err != nil || !parsed.Valid || strings.TrimSpace(claims.SessionID) == "" {
		return "", ErrSessionTokenInvalid
	}
	return claims.SessionID, nil
}
