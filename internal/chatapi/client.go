package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"medigenius/internal/domain"
	"medigenius/internal/transcript"
	"medigenius/internal/widget"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// Client habla con el backend de chat y mantiene la cookie de sesión.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient construye un cliente con cookie jar propio. Si httpClient es nil no se fija timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		logger:  logger,
	}, nil
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Send implementa widget.Remote. Un cuerpo JSON válido siempre es un resultado
// estructural, aun con status de error; cualquier otra cosa es falla de transporte.
func (c *Client) Send(ctx context.Context, text string) (widget.Reply, error) {
	var cr chatResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/api/chat", chatRequest{Message: text}, &cr)
	if err != nil {
		return widget.Reply{}, err
	}
	if status >= 400 || !cr.Success {
		c.logger.Debug("chat structural failure", zap.Int("status", status), zap.String("error", cr.Error))
		return widget.Reply{Success: false}, nil
	}
	return widget.Reply{
		Success:   true,
		Text:      cr.Response,
		Timestamp: cr.Timestamp,
		Source:    cr.Source,
		SessionID: cr.SessionID,
	}, nil
}

type ackResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Success   bool   `json:"success"`
}

// NewChat devuelve el id de la sesión que abrió el backend.
func (c *Client) NewChat(ctx context.Context) (string, error) {
	ar, err := c.ack(ctx, http.MethodPost, "/api/new-chat")
	return ar.SessionID, err
}

func (c *Client) Clear(ctx context.Context) error {
	_, err := c.ack(ctx, http.MethodPost, "/api/clear")
	return err
}

// DeleteSession devuelve la sesión nueva si el backend reemplazó la actual.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) (string, error) {
	ar, err := c.ack(ctx, http.MethodDelete, "/api/session/"+url.PathEscape(sessionID))
	return ar.SessionID, err
}

func (c *Client) ack(ctx context.Context, method, path string) (ackResponse, error) {
	var ar ackResponse
	status, err := c.doJSON(ctx, method, path, nil, &ar)
	if err != nil {
		return ackResponse{}, err
	}
	if status >= 300 || !ar.Success {
		return ackResponse{}, fmt.Errorf("%w: %s %s status=%d", ErrUnexpectedStatus, method, path, status)
	}
	return ar, nil
}

type historyMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

type historyResponse struct {
	Messages  []historyMessage `json:"messages"`
	SessionID string           `json:"session_id,omitempty"`
	Success   bool             `json:"success"`
}

// History carga una sesión guardada y la convierte en mensajes del transcript.
func (c *Client) History(ctx context.Context, sessionID string) ([]transcript.Message, error) {
	path := "/api/history"
	if sessionID != "" {
		path = "/api/session/" + url.PathEscape(sessionID)
	}
	var hr historyResponse
	status, err := c.doJSON(ctx, http.MethodGet, path, nil, &hr)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("%w: GET %s status=%d", ErrUnexpectedStatus, path, status)
	}

	out := make([]transcript.Message, 0, len(hr.Messages))
	for _, m := range hr.Messages {
		role, err := domain.ParseRole(m.Role)
		if err != nil {
			c.logger.Warn("skipping history message", zap.String("role", m.Role))
			continue
		}
		out = append(out, transcript.Message{
			Content:   m.Content,
			Role:      role,
			Timestamp: m.Timestamp.Local().Format(domain.TimestampLayout),
			Source:    m.Source,
		})
	}
	return out, nil
}

type sessionsResponse struct {
	Sessions []struct {
		ID         string    `json:"session_id"`
		LastActive time.Time `json:"last_active"`
		Preview    string    `json:"preview"`
	} `json:"sessions"`
	Success bool `json:"success"`
}

func (c *Client) Sessions(ctx context.Context) ([]widget.SessionSummary, error) {
	var sr sessionsResponse
	status, err := c.doJSON(ctx, http.MethodGet, "/api/sessions", nil, &sr)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("%w: GET /api/sessions status=%d", ErrUnexpectedStatus, status)
	}
	out := make([]widget.SessionSummary, 0, len(sr.Sessions))
	for _, s := range sr.Sessions {
		out = append(out, widget.SessionSummary{
			ID:         s.ID,
			Preview:    s.Preview,
			LastActive: s.LastActive.Local().Format("Jan 2 " + domain.TimestampLayout),
		})
	}
	return out, nil
}

// Health devuelve nil si el backend responde healthy.
func (c *Client) Health(ctx context.Context) error {
	var hr struct {
		Status string `json:"status"`
	}
	status, err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &hr)
	if err != nil {
		return err
	}
	if status != http.StatusOK || hr.Status != "healthy" {
		return fmt.Errorf("%w: health status=%d %q", ErrUnexpectedStatus, status, hr.Status)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		c.logger.Debug("non-json response", zap.Int("status", resp.StatusCode), zap.String("path", path))
		return resp.StatusCode, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp.StatusCode, nil
}
