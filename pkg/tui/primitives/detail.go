// Package primitives содержит низкоуровневые компоненты TUI.
package primitives

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"
)

// DetailPane — прокручиваемая панель с переносом строк по ширине.
//
// Хранит исходные строки без переноса и переформатирует их при каждом ресайзе.
type DetailPane struct {
	viewport viewport.Model
	lines    []string
}

// NewDetailPane создаёт пустую панель.
func NewDetailPane() *DetailPane {
	return &DetailPane{viewport: viewport.New(0, 0)}
}

// SetContent заменяет содержимое и прокручивает в начало.
func (p *DetailPane) SetContent(content string) {
	p.lines = strings.Split(content, "\n")
	p.reflow()
	p.viewport.GotoTop()
}

// Content возвращает исходные строки (без переноса).
func (p *DetailPane) Content() []string {
	return p.lines
}

// HandleResize задаёт размеры панели. Высота не меньше 1, ширина не меньше 20.
func (p *DetailPane) HandleResize(width, height int) {
	if height < 1 {
		height = 1
	}
	if width < 20 {
		width = 20
	}

	p.viewport.Width = width
	p.viewport.Height = height
	p.reflow()

	// Позиция прокрутки не должна выходить за новый конец текста
	maxOffset := p.viewport.TotalLineCount() - p.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if p.viewport.YOffset > maxOffset {
		p.viewport.SetYOffset(maxOffset)
	}
}

// Dimensions возвращает текущие размеры.
func (p *DetailPane) Dimensions() (width, height int) {
	return p.viewport.Width, p.viewport.Height
}

// Update прокидывает клавиши прокрутки во viewport.
func (p *DetailPane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

// View отрисовывает панель.
func (p *DetailPane) View() string {
	return p.viewport.View()
}

// Viewport возвращает копию viewport.Model (для тестов и статуса).
func (p *DetailPane) Viewport() viewport.Model {
	return p.viewport
}

func (p *DetailPane) reflow() {
	width := p.viewport.Width
	if width <= 0 {
		p.viewport.SetContent(strings.Join(p.lines, "\n"))
		return
	}

	wrapped := make([]string, 0, len(p.lines))
	for _, line := range p.lines {
		wrapped = append(wrapped, strings.Split(wrap.String(line, width), "\n")...)
	}
	p.viewport.SetContent(strings.Join(wrapped, "\n"))
}
