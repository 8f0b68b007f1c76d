// Package woo предоставляет минимальный SDK для WooCommerce REST API (wc/v3).
//
// Что есть в SDK:
//   - исполнитель запросов с basic auth и ограниченным числом немедленных повторов
//   - Get/Post/Put/Delete поверх исполнителя
//   - агрегатор пагинации (GetAll/EachPage), листающий page=1,2,... до пустой страницы
//   - хелперы для товаров (products)
//
// Полезная нагрузка не интерпретируется: что вернул магазин, то и получает вызывающий.
// Клиент не хранит изменяемого состояния после New и безопасен для параллельного
// использования независимыми вызывающими.
package woo

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ilkoid/woo-sdk/pkg/config"
	"github.com/ilkoid/woo-sdk/pkg/utils"
)

const (
	// APIPrefix — версионированный префикс REST API WooCommerce.
	APIPrefix = "/wp-json/wc/v3/"

	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultPerPage    = 100
	DefaultCharset    = "utf-8"

	// DefaultUserAgent — фиксированный браузерный User-Agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать транспорт в тестах.
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Logger принимает диагностические сообщения о неудачных попытках.
type Logger interface {
	Warn(msg string, keyvals ...any)
}

// LoggerFunc адаптирует функцию к Logger.
type LoggerFunc func(msg string, keyvals ...any)

// Warn реализует Logger.
func (f LoggerFunc) Warn(msg string, keyvals ...any) { f(msg, keyvals...) }

// Client — клиент WooCommerce REST API.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string

	httpClient HTTPClient
	timeout    time.Duration
	maxRetries int
	perPage    int
	maxPages   int
	userAgent  string
	charset    string
	decoder    charsetPolicy
	logger     Logger
}

// Option настраивает Client при создании.
type Option func(*Client)

// WithTimeout задаёт timeout одной попытки.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRetries задаёт максимальное число попыток (не меньше 1).
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithHTTPClient подменяет транспорт.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger подменяет приёмник диагностических сообщений.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithCharset задаёт политику декодирования тела ответа:
// "utf-8" (по умолчанию) — всегда UTF-8 независимо от заголовка,
// "auto" — кодировка из Content-Type, любое другое имя из WHATWG индекса —
// принудительное перекодирование из неё.
func WithCharset(label string) Option {
	return func(c *Client) { c.charset = label }
}

// WithUserAgent подменяет фиксированный User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithPerPage задаёт размер страницы по умолчанию для GetAll.
func WithPerPage(n int) Option {
	return func(c *Client) { c.perPage = n }
}

// WithMaxPages ограничивает число непустых страниц в GetAll (0 = без ограничения).
func WithMaxPages(n int) Option {
	return func(c *Client) { c.maxPages = n }
}

// New создает новый клиент WooCommerce.
//
// Параметры:
//   - baseURL: адрес магазина (завершающие "/" отбрасываются)
//   - consumerKey, consumerSecret: пара ключей REST API
//   - opts: необязательные настройки
//
// Возвращает ошибку при пустых обязательных параметрах, maxRetries < 1
// или неизвестной кодировке.
func New(baseURL, consumerKey, consumerSecret string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:        strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		timeout:        DefaultTimeout,
		maxRetries:     DefaultMaxRetries,
		perPage:        DefaultPerPage,
		userAgent:      DefaultUserAgent,
		charset:        DefaultCharset,
		logger:         LoggerFunc(utils.Warn),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		return nil, fmt.Errorf("woo: base url is required")
	}
	if c.consumerKey == "" || c.consumerSecret == "" {
		return nil, fmt.Errorf("woo: consumer key and secret are required")
	}
	if c.maxRetries < 1 {
		return nil, fmt.Errorf("woo: max retries must be at least 1, got %d", c.maxRetries)
	}
	if c.timeout <= 0 {
		return nil, fmt.Errorf("woo: timeout must be positive, got %s", c.timeout)
	}
	if c.perPage <= 0 {
		c.perPage = DefaultPerPage
	}
	if c.maxPages < 0 {
		return nil, fmt.Errorf("woo: max pages must not be negative, got %d", c.maxPages)
	}

	policy, err := newCharsetPolicy(c.charset)
	if err != nil {
		return nil, err
	}
	c.decoder = policy

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = LoggerFunc(func(string, ...any) {})
	}

	return c, nil
}

// NewFromConfig создает клиент из секции woo файла config.yaml.
//
// Поля с нулевыми значениями заполняются через GetDefaults().
func NewFromConfig(cfg config.WooConfig, opts ...Option) (*Client, error) {
	cfg = cfg.GetDefaults()

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid woo.timeout format: %w", err)
	}

	base := []Option{
		WithTimeout(timeout),
		WithMaxRetries(cfg.RetryAttempts),
		WithPerPage(cfg.PerPage),
		WithMaxPages(cfg.MaxPages),
		WithCharset(cfg.Charset),
	}
	if cfg.UserAgent != "" {
		base = append(base, WithUserAgent(cfg.UserAgent))
	}

	return New(cfg.BaseURL, cfg.ConsumerKey, cfg.ConsumerSecret, append(base, opts...)...)
}

// BaseURL возвращает нормализованный адрес магазина.
func (c *Client) BaseURL() string { return c.baseURL }

// MaxRetries возвращает число попыток на один запрос.
func (c *Client) MaxRetries() int { return c.maxRetries }

// PerPage возвращает размер страницы по умолчанию.
func (c *Client) PerPage() int { return c.perPage }
