package widget

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Handler ejecuta una acción del widget con un argumento opcional.
type Handler func(ctx context.Context, arg string) error

type command struct {
	handler Handler
	help    string
}

// Dispatcher es la tabla explícita acción -> handler del widget.
type Dispatcher struct {
	ctrl     *Controller
	commands map[string]command
}

// NewDispatcher registra las acciones estándar del widget.
func NewDispatcher(ctrl *Controller) *Dispatcher {
	d := &Dispatcher{ctrl: ctrl, commands: make(map[string]command)}

	d.Register("send", "send a message", func(ctx context.Context, arg string) error {
		ctrl.Submit(ctx, arg)
		return nil
	})
	d.Register("new-chat", "start a new conversation", func(ctx context.Context, _ string) error {
		return ctrl.NewChat(ctx)
	})
	d.Register("clear", "clear the current conversation", func(ctx context.Context, _ string) error {
		return ctrl.Clear(ctx)
	})
	d.Register("export", "download the conversation as text", func(context.Context, string) error {
		_, err := ctrl.Download()
		return err
	})
	d.Register("copy", "copy the last answer", func(context.Context, string) error {
		return ctrl.CopyLast()
	})
	d.Register("voice", "dictate a message", func(ctx context.Context, _ string) error {
		_, err := ctrl.Voice(ctx)
		return err
	})
	d.Register("theme", "toggle light/dark theme", func(context.Context, string) error {
		ctrl.ToggleTheme()
		return nil
	})
	d.Register("sidebar", "toggle the chat history sidebar", func(ctx context.Context, _ string) error {
		ctrl.ToggleSidebar(ctx)
		return nil
	})
	d.Register("sessions", "list saved chats", func(ctx context.Context, _ string) error {
		ctrl.RefreshSessions(ctx)
		return nil
	})
	d.Register("load", "load a saved chat by id", func(ctx context.Context, arg string) error {
		return ctrl.LoadSession(ctx, arg)
	})
	d.Register("delete", "delete a saved chat by id", func(ctx context.Context, arg string) error {
		return ctrl.DeleteSession(ctx, arg)
	})
	for _, name := range []string{"attach", "settings", "regenerate"} {
		d.Register(name, name+" (coming soon)", d.comingSoon(name))
	}
	d.Register("help", "show available actions", func(context.Context, string) error {
		ctrl.notify(LevelInfo, d.Help())
		return nil
	})
	return d
}

// Register agrega o reemplaza una acción.
func (d *Dispatcher) Register(name, help string, h Handler) {
	d.commands[name] = command{handler: h, help: help}
}

// Dispatch ejecuta la acción indicada.
func (d *Dispatcher) Dispatch(ctx context.Context, action, arg string) error {
	cmd, ok := d.commands[strings.ToLower(strings.TrimSpace(action))]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return cmd.handler(ctx, arg)
}

// Actions devuelve los nombres registrados ordenados.
func (d *Dispatcher) Actions() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) Help() string {
	var b strings.Builder
	b.WriteString("Available actions:")
	for _, name := range d.Actions() {
		fmt.Fprintf(&b, "\n  /%-10s %s", name, d.commands[name].help)
	}
	return b.String()
}

func (d *Dispatcher) comingSoon(name string) Handler {
	label := strings.ToUpper(name[:1]) + name[1:]
	return func(context.Context, string) error {
		d.ctrl.notify(LevelInfo, label+" feature coming soon!")
		return nil
	}
}
