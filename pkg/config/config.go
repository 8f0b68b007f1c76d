package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Woo      WooConfig      `yaml:"woo"`
	S3       S3Config       `yaml:"s3"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	App      AppSpecific    `yaml:"app"`
}

// WooConfig — параметры подключения к WooCommerce REST API.
type WooConfig struct {
	BaseURL        string `yaml:"base_url"`        // Адрес магазина, например https://shop.example.com
	ConsumerKey    string `yaml:"consumer_key"`    // Поддерживает ${VAR}
	ConsumerSecret string `yaml:"consumer_secret"` // Поддерживает ${VAR}
	Timeout        string `yaml:"timeout"`         // Timeout одной попытки (например, "10s")
	RetryAttempts  int    `yaml:"retry_attempts"`  // Максимум попыток на запрос
	PerPage        int    `yaml:"per_page"`        // Размер страницы для выгрузки всех товаров
	MaxPages       int    `yaml:"max_pages"`       // 0 = без ограничения
	Charset        string `yaml:"charset"`         // Кодировка ответа: "utf-8", "auto", "windows-1251"...
	UserAgent      string `yaml:"user_agent"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *WooConfig) GetDefaults() WooConfig {
	result := *c // Копируем текущие значения

	if result.Timeout == "" {
		result.Timeout = "10s"
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = 3
	}
	if result.PerPage == 0 {
		result.PerPage = 100
	}
	if result.Charset == "" {
		result.Charset = "utf-8"
	}

	return result
}

// S3Config — настройки объектного хранилища для экспорта.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"` // Префикс ключей экспорта (default: "exports")
}

// Validate проверяет секцию s3. Вызывается только когда экспорт в S3 реально нужен.
func (c S3Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("s3.endpoint is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("s3.bucket is required")
	}
	return nil
}

// SnapshotConfig — локальный снимок каталога в SQLite.
type SnapshotConfig struct {
	Path string `yaml:"path"` // default: "products.db"
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug  bool   `yaml:"debug"`
	LogDir string `yaml:"log_dir"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if strings.TrimSpace(c.Woo.BaseURL) == "" {
		return fmt.Errorf("woo.base_url is required")
	}
	if c.Woo.ConsumerKey == "" {
		return fmt.Errorf("woo.consumer_key is required")
	}
	if c.Woo.ConsumerSecret == "" {
		return fmt.Errorf("woo.consumer_secret is required")
	}
	if c.Woo.RetryAttempts < 0 {
		return fmt.Errorf("woo.retry_attempts must not be negative")
	}
	if c.Woo.MaxPages < 0 {
		return fmt.Errorf("woo.max_pages must not be negative")
	}
	return nil
}

// SnapshotPath возвращает путь к базе снимка с учётом дефолта.
func (c *AppConfig) SnapshotPath() string {
	if c.Snapshot.Path == "" {
		return "products.db"
	}
	return c.Snapshot.Path
}

// ExportPrefix возвращает префикс ключей экспорта в S3.
func (c *AppConfig) ExportPrefix() string {
	if c.S3.Prefix == "" {
		return "exports"
	}
	return strings.Trim(c.S3.Prefix, "/")
}

// FindConfigPath находит путь к config.yaml.
//
// Порядок поиска:
//  1. Флаг -config (если указан)
//  2. Текущая директория (./config.yaml)
//  3. Директория бинарника
//  4. Родительская директория (для запуска из cmd/)
//
// Если ничего не найдено, возвращает "config.yaml" - Load вернёт понятную ошибку.
func FindConfigPath(flagValue string) string {
	if flagValue != "" {
		return resolveAbsPath(flagValue)
	}

	candidates := []string{"config.yaml"}
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), "config.yaml"))
	}
	candidates = append(candidates,
		filepath.Join("..", "config.yaml"),
		filepath.Join("..", "..", "config.yaml"),
	)

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return resolveAbsPath(p)
		}
	}
	return "config.yaml"
}

func resolveAbsPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
