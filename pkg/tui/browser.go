// Package tui — интерактивный браузер каталога товаров на bubbletea.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ilkoid/woo-sdk/pkg/tui/primitives"
	"github.com/ilkoid/woo-sdk/pkg/woo"
)

const (
	headerHeight = 2
	footerHeight = 2
	loadTimeout  = 5 * time.Minute
)

// Loader загружает товары для показа (обычно woo.Client.GetAllProducts).
type Loader func(ctx context.Context) ([]woo.Product, error)

// --- Сообщения (Messages) ---
type errMsg struct{ err error }
type productsMsg []woo.Product

// Browser — модель bubbletea: таблица товаров и панель деталей.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	load   Loader
	title  string
	keys   KeyMap
	help   help.Model
	spin   spinner.Model
	table  table.Model
	detail *primitives.DetailPane

	products   []woo.Product
	loading    bool
	showDetail bool
	err        error
	width      int
	height     int
}

// NewBrowser создаёт браузер. title выводится в заголовке (например, адрес магазина).
// Загрузка идёт под ctx; выход из браузера отменяет незавершённую загрузку.
func NewBrowser(ctx context.Context, title string, load Loader) Browser {
	ctx, cancel := context.WithCancel(ctx)


	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	return Browser{
		ctx:     ctx,
		cancel:  cancel,
		load:    load,
		title:   title,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spin:    s,
		table:   t,
		detail:  primitives.NewDetailPane(),
		loading: true, // Сразу начинаем загрузку
	}
}

// Init запускает спиннер и команду загрузки.
func (b Browser) Init() tea.Cmd {
	return tea.Batch(b.spin.Tick, b.fetch())
}

func (b Browser) fetch() tea.Cmd {
	load, parent := b.load, b.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, loadTimeout)
		defer cancel()

		products, err := load(ctx)
		if err != nil {
			return errMsg{err}
		}
		return productsMsg(products)
	}
}

// Update - обработка событий.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if key.Matches(msg, b.keys.Quit) {
			b.cancel()
			return b, tea.Quit
		}
		if b.loading {
			return b, nil
		}
		if key.Matches(msg, b.keys.Reload) {
			b.loading = true
			b.err = nil
			b.showDetail = false
			return b, tea.Batch(b.spin.Tick, b.fetch())
		}
		if b.showDetail {
			if key.Matches(msg, b.keys.Back) {
				b.showDetail = false
				return b, nil
			}
			return b, b.detail.Update(msg)
		}
		if key.Matches(msg, b.keys.Open) {
			if p, ok := b.Selected(); ok {
				b.detail.SetContent(formatProduct(p))
				b.showDetail = true
			}
			return b, nil
		}

	case errMsg:
		b.loading = false
		b.err = msg.err
		return b, nil

	case productsMsg:
		b.loading = false
		b.products = msg
		b.table.SetRows(rows(msg))
		b.table.SetCursor(0)
		return b, nil

	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		bodyHeight := msg.Height - headerHeight - footerHeight
		if bodyHeight < 3 {
			bodyHeight = 3
		}
		b.table.SetColumns(columns(msg.Width))
		b.table.SetWidth(msg.Width)
		b.table.SetHeight(bodyHeight)
		b.detail.HandleResize(msg.Width, bodyHeight)
		return b, nil

	case spinner.TickMsg:
		if !b.loading {
			return b, nil
		}
		var cmd tea.Cmd
		b.spin, cmd = b.spin.Update(msg)
		return b, cmd
	}

	var cmd tea.Cmd
	b.table, cmd = b.table.Update(msg)
	return b, cmd
}

// View - отрисовка.
func (b Browser) View() string {
	if b.err != nil {
		return fmt.Sprintf("\n%s\n\n%s",
			errorStyle.Render("❌ Error: "+b.err.Error()),
			dimStyle.Render("Press 'r' to retry, 'q' to quit."))
	}

	header := titleStyle.Render("🛒 " + b.title)

	if b.loading {
		return fmt.Sprintf("\n %s Fetching products...\n\n", b.spin.View())
	}

	var body string
	if b.showDetail {
		body = b.detail.View()
	} else {
		body = b.table.View()
	}

	status := dimStyle.Render(fmt.Sprintf("%d products", len(b.products)))
	return lipgloss.JoinVertical(lipgloss.Left,
		header+"  "+status,
		body,
		b.help.View(b.keys),
	)
}

// Selected возвращает товар под курсором.
func (b Browser) Selected() (woo.Product, bool) {
	i := b.table.Cursor()
	if i < 0 || i >= len(b.products) {
		return nil, false
	}
	return b.products[i], true
}

// ShowingDetail сообщает, открыта ли панель деталей.
func (b Browser) ShowingDetail() bool { return b.showDetail }

// Err возвращает последнюю ошибку загрузки.
func (b Browser) Err() error { return b.err }

// Run запускает браузер в альтернативном экране. Отмена ctx прерывает загрузку и закрывает программу.
func Run(ctx context.Context, title string, load Loader) error {
	b := NewBrowser(ctx, title, load)
	defer b.cancel()

	p := tea.NewProgram(b, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func columns(width int) []table.Column {
	nameWidth := width - 8 - 16 - 10 - 10 - 10
	if nameWidth < 20 {
		nameWidth = 20
	}
	return []table.Column{
		{Title: "ID", Width: 8},
		{Title: "SKU", Width: 16},
		{Title: "Name", Width: nameWidth},
		{Title: "Status", Width: 10},
		{Title: "Price", Width: 10},
	}
}

func rows(products []woo.Product) []table.Row {
	out := make([]table.Row, len(products))
	for i, p := range products {
		out[i] = table.Row{
			strconv.FormatInt(p.ID(), 10),
			p.SKU(),
			p.Name(),
			p.Status(),
			p.Price(),
		}
	}
	return out
}

// formatProduct — полезная нагрузка товара как отформатированный JSON.
func formatProduct(p woo.Product) string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Sprintf("cannot render product: %v", err)
	}
	return string(data)
}
