package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Preferences son las opciones de interfaz que sobreviven entre ejecuciones.
type Preferences struct {
	Theme       string `toml:"theme"`
	SidebarOpen bool   `toml:"sidebar_open"`
}

// Defaults devuelve las preferencias iniciales.
func Defaults() Preferences {
	return Preferences{Theme: ThemeLight, SidebarOpen: true}
}

// Normalize corrige valores desconocidos.
func (p Preferences) Normalize() Preferences {
	if p.Theme != ThemeDark {
		p.Theme = ThemeLight
	}
	return p
}

// Store persiste preferencias clave-valor del widget.
type Store interface {
	Load() (Preferences, error)
	Save(p Preferences) error
}

type memoryStore struct {
	mu    sync.Mutex
	prefs Preferences
}

func NewMemoryStore() Store {
	return &memoryStore{prefs: Defaults()}
}

func (s *memoryStore) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs, nil
}

func (s *memoryStore) Save(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = p.Normalize()
	return nil
}

type fileStore struct {
	mu     sync.Mutex
	path   string
	create func(path string) (io.WriteCloser, error)
}

// NewFileStore guarda las preferencias como TOML en path.
func NewFileStore(path string) Store {
	return &fileStore{path: path, create: createFile}
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// DefaultPath devuelve la ruta de preferencias bajo el directorio de configuración del usuario.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "medigenius", "prefs.toml"), nil
}

func (s *fileStore) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Defaults()
	if _, err := toml.DecodeFile(s.path, &p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("decode prefs: %w", err)
	}
	return p.Normalize(), nil
}

// Save reporta también el error de Close, que es donde aparece un flush fallido.
func (s *fileStore) Save(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	f, err := s.create(s.path)
	if err != nil {
		return fmt.Errorf("create prefs file: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(p.Normalize()); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close prefs file: %w", err)
	}
	return nil
}
