package sim

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/saaga0h/colorlux/internal/color"
)

// glyphWidth is the pixel width of one character of the device font
const glyphWidth = 6

var (
	screenStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3D3D5C")).
			Padding(0, 1).
			Width(24)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0B0"))
)

type textItem struct {
	x, y int16
	text string
}

// Panel renders the simulated board (display, reference LED, matrix and buzzers) to a terminal
type Panel struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger

	buffer []textItem
	shown  []textItem
	levels [3]uint16
	matrix color.RGB8
	tones  [2]uint16

	last string
}

// NewPanel creates a panel writing frames to out
func NewPanel(out io.Writer, logger *slog.Logger) *Panel {
	return &Panel{out: out, logger: logger}
}

// Render draws the current frame
func (p *Panel) Render() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.render()
}

// Lines returns the text currently on the display, top to bottom
func (p *Panel) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return screenLines(p.shown)
}

func (p *Panel) render() string {
	screen := screenStyle.Render(strings.Join(screenLines(p.shown), "\n"))

	indicator := color.RGB8{R: uint8(p.levels[0] >> 8), G: uint8(p.levels[1] >> 8), B: uint8(p.levels[2] >> 8)}
	footer := fmt.Sprintf("%s %s  %s %s  %s %s",
		labelStyle.Render("ref"), swatch(indicator),
		labelStyle.Render("matrix"), swatch(p.matrix),
		labelStyle.Render("buzz"), tones(p.tones))

	return lipgloss.JoinVertical(lipgloss.Left, screen, footer)
}

func (p *Panel) flush() error {
	p.mu.Lock()
	p.shown = p.buffer
	frame := p.render()
	changed := frame != p.last
	p.last = frame
	p.mu.Unlock()

	if !changed {
		return nil
	}
	if _, err := fmt.Fprintln(p.out, frame); err != nil {
		return fmt.Errorf("failed to write panel frame: %w", err)
	}
	return nil
}

func (p *Panel) setLevels(r, g, b uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.levels = [3]uint16{r, g, b}
}

// Display returns the panel's text display
func (p *Panel) Display() *Display { return &Display{panel: p} }

// Matrix returns the panel's LED matrix
func (p *Panel) Matrix() *Matrix { return &Matrix{panel: p} }

// Buzzer returns buzzer channel 0 (colour cue) or 1 (alert)
func (p *Panel) Buzzer(channel int) *Buzzer { return &Buzzer{panel: p, channel: channel} }

// Display collects text until Flush renders the frame
type Display struct{ panel *Panel }

func (d *Display) Clear() {
	d.panel.mu.Lock()
	defer d.panel.mu.Unlock()
	d.panel.buffer = nil
}

func (d *Display) DrawText(text string, x, y int16) {
	d.panel.mu.Lock()
	defer d.panel.mu.Unlock()
	d.panel.buffer = append(d.panel.buffer, textItem{x: x, y: y, text: text})
}

func (d *Display) Flush() error {
	return d.panel.flush()
}

// Matrix stores the colour shown on all pixels
type Matrix struct{ panel *Panel }

func (m *Matrix) SetColor(r, g, b uint8) error {
	m.panel.mu.Lock()
	defer m.panel.mu.Unlock()
	m.panel.matrix = color.RGB8{R: r, G: g, B: b}
	return nil
}

// Buzzer stores the frequency playing on one channel
type Buzzer struct {
	panel   *Panel
	channel int
}

func (b *Buzzer) PlayTone(hz uint16) error {
	b.panel.mu.Lock()
	defer b.panel.mu.Unlock()
	b.panel.tones[b.channel] = hz
	b.panel.logger.Debug("Buzzer on", "channel", b.channel, "hz", hz)
	return nil
}

func (b *Buzzer) StopTone() error {
	b.panel.mu.Lock()
	defer b.panel.mu.Unlock()
	b.panel.tones[b.channel] = 0
	return nil
}

// Playing returns the frequency currently sounding, 0 when silent
func (b *Buzzer) Playing() uint16 {
	b.panel.mu.Lock()
	defer b.panel.mu.Unlock()
	return b.panel.tones[b.channel]
}

// screenLines lays text items out in rows by y, then x
func screenLines(items []textItem) []string {
	sorted := make([]textItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y < sorted[j].y
		}
		return sorted[i].x < sorted[j].x
	})

	var lines []string
	for _, item := range sorted {
		indent := strings.Repeat(" ", int(item.x)/glyphWidth)
		lines = append(lines, indent+item.text)
	}
	return lines
}

func swatch(c color.RGB8) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.String())).Render("███")
}

func tones(hz [2]uint16) string {
	var parts []string
	for i, f := range hz {
		if f == 0 {
			parts = append(parts, fmt.Sprintf("%d:-", i))
			continue
		}
		parts = append(parts, fmt.Sprintf("%d:%dHz", i, f))
	}
	return strings.Join(parts, " ")
}
