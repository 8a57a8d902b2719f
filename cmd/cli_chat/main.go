package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"medigenius/internal/chatapi"
	"medigenius/internal/config"
	"medigenius/internal/prefs"
	"medigenius/internal/terminal"
	"medigenius/internal/widget"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	client, err := chatapi.NewClient(cfg.BaseURL, &http.Client{}, logger)
	if err != nil {
		log.Fatal(err)
	}
	healthCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := client.Health(healthCtx); err != nil {
		logger.Warn("backend not reachable", zap.String("base_url", cfg.BaseURL), zap.Error(err))
	}
	cancel()

	prefsPath := cfg.PrefsPath
	if prefsPath == "" {
		if prefsPath, err = prefs.DefaultPath(); err != nil {
			logger.Warn("resolve prefs path", zap.Error(err))
		}
	}
	var store prefs.Store = prefs.NewMemoryStore()
	if prefsPath != "" {
		store = prefs.NewFileStore(prefsPath)
	}

	view := terminal.NewView(os.Stdout, cfg.AssistantName, 80)
	ctrl := widget.NewController(logger, client, view, widget.Options{
		AssistantName: cfg.AssistantName,
		Archive:       client,
		Clipboard:     widget.NewSystemClipboard(),
		Recognizer:    widget.NewDisabledRecognizer(),
		Saver:         widget.NewDirSaver(cfg.ExportDir),
		Prefs:         store,
	})
	dispatcher := widget.NewDispatcher(ctrl)

	view.Reset()
	ctrl.Start(ctx)

	for {
		fmt.Print("You > ")
		line, err := reader.ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			fmt.Println()
			return
		}
		action, arg, ok := parseLine(line)
		if !ok {
			continue
		}
		if action == "exit" || action == "quit" {
			fmt.Println("Bye!")
			return
		}
		if err := dispatcher.Dispatch(ctx, action, arg); err != nil {
			if errors.Is(err, widget.ErrUnknownAction) {
				view.Notify(widget.LevelWarning, fmt.Sprintf("unknown action %q, type /help", action))
				continue
			}
			logger.Debug("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

// parseLine separa "/acción argumento"; cualquier otro texto se envía como mensaje.
func parseLine(line string) (action, arg string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}
	if !strings.HasPrefix(line, "/") {
		return "send", line, true
	}
	name, rest, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(rest), true
}

func newLogger(debug bool) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
