package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"medigenius/internal/domain"
	"medigenius/internal/prefs"
	"medigenius/internal/transcript"
	"medigenius/internal/widget"
)

// palette agrupa los estilos de burbujas para un tema.
type palette struct {
	header    lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	failure   lipgloss.Style
	source    lipgloss.Style
	meta      lipgloss.Style
	levels    map[widget.Level]lipgloss.Style
}

func newPalette(theme string) palette {
	fg, dim, userBg, botBg := lipgloss.Color("252"), lipgloss.Color("245"), lipgloss.Color("24"), lipgloss.Color("236")
	if theme != prefs.ThemeDark {
		fg, dim, userBg, botBg = lipgloss.Color("235"), lipgloss.Color("242"), lipgloss.Color("153"), lipgloss.Color("255")
	}
	bubble := lipgloss.NewStyle().Padding(0, 1).Foreground(fg)
	return palette{
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		user:      bubble.Background(userBg),
		assistant: bubble.Background(botBg),
		failure:   bubble.Foreground(lipgloss.Color("196")).Bold(true),
		source:    lipgloss.NewStyle().Italic(true).Foreground(dim),
		meta:      lipgloss.NewStyle().Foreground(dim),
		levels: map[widget.Level]lipgloss.Style{
			widget.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			widget.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
			widget.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			widget.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		},
	}
}

// View dibuja el transcript como burbujas en la terminal.
type View struct {
	mu            sync.Mutex
	out           io.Writer
	assistantName string
	width         int
	theme         string
	styles        palette
}

func NewView(out io.Writer, assistantName string, width int) *View {
	if width <= 0 {
		width = 80
	}
	return &View{
		out:           out,
		assistantName: assistantName,
		width:         width,
		theme:         prefs.ThemeLight,
		styles:        newPalette(prefs.ThemeLight),
	}
}

func (v *View) Append(msg transcript.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()

	label := transcript.SpeakerLabel(msg.Role, v.assistantName)
	bubbleWidth := v.width * 3 / 4

	var bubble lipgloss.Style
	align := lipgloss.Left
	switch msg.Role {
	case domain.RoleUser:
		bubble = v.styles.user
		align = lipgloss.Right
	case domain.RoleAssistant:
		bubble = v.styles.assistant
	case domain.RoleSystemError:
		bubble = v.styles.failure
	}

	lines := []string{
		v.styles.meta.Render(label + " · " + msg.Timestamp),
		bubble.Width(bubbleWidth).Render(msg.Content),
	}
	if msg.Source != "" {
		lines = append(lines, v.styles.source.Render("Source: "+msg.Source))
	}
	block := lipgloss.JoinVertical(align, lines...)
	fmt.Fprintln(v.out, lipgloss.PlaceHorizontal(v.width, align, block))
	fmt.Fprintln(v.out)
}

func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, v.styles.header.Render("── "+v.assistantName+" ── new conversation ──"))
	fmt.Fprintln(v.out, v.styles.meta.Render("Ask me anything about your health. Type /help for actions."))
	fmt.Fprintln(v.out)
}

func (v *View) SetBusy(busy bool) {
	if !busy {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, v.styles.meta.Render(v.assistantName+" is typing..."))
}

func (v *View) Notify(level widget.Level, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	style, ok := v.styles.levels[level]
	if !ok {
		style = v.styles.meta
	}
	fmt.Fprintln(v.out, style.Render("["+level.String()+"] "+text))
}

func (v *View) ApplyTheme(theme string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.theme = theme
	v.styles = newPalette(theme)
}

// Theme devuelve el tema aplicado.
func (v *View) Theme() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.theme
}

func (v *View) ShowSidebar(open bool, sessions []widget.SessionSummary) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !open {
		fmt.Fprintln(v.out, v.styles.meta.Render("Chat history hidden (/sidebar to show)"))
		return
	}
	var b strings.Builder
	b.WriteString(v.styles.header.Render("Recent chats"))
	if len(sessions) == 0 {
		b.WriteString("\n" + v.styles.meta.Render("  no saved chats"))
	}
	for _, s := range sessions {
		preview := s.Preview
		if preview == "" {
			preview = "(empty)"
		}
		b.WriteString(fmt.Sprintf("\n  %s  %s  %s", v.styles.meta.Render(s.ID), preview, v.styles.meta.Render(s.LastActive)))
	}
	fmt.Fprintln(v.out, lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Render(b.String()))
}
