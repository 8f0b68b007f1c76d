// Package utils предоставляет файловый логгер и graceful shutdown для утилит.
//
// Логгер создаёт .log файл с timestamp в имени и пишет в него JSON строки
// через zerolog. До вызова InitLogger все функции логирования — no-op.
package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger      = zerolog.Nop()
	logFile     *os.File
	logMutex    sync.RWMutex
	initialized bool
)

// InitLogger создает/открывает .log файл в директории dir (пусто = текущая).
//
// Имя файла: woo-YYYY-MM-DD-HH-MM.log (например, woo-2026-10-18-15-30.log).
// Повторный вызов ничего не делает.
func InitLogger(dir string) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	if initialized {
		return nil
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
	}

	timestamp := time.Now().Format("2006-01-02-15-04")
	filename := filepath.Join(dir, fmt.Sprintf("woo-%s.log", timestamp))

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	logger = zerolog.New(f).With().Timestamp().Logger()
	initialized = true

	logger.Info().Str("file", filename).Msg("Logger initialized")
	return nil
}

// SetOutput направляет лог в произвольный writer (тесты, stderr).
func SetOutput(w io.Writer) {
	logMutex.Lock()
	defer logMutex.Unlock()

	logger = zerolog.New(w).With().Timestamp().Logger()
	initialized = true
}

// SetDebug включает или выключает DEBUG сообщения.
func SetDebug(enabled bool) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if enabled {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	log(zerolog.InfoLevel, msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	log(zerolog.ErrorLevel, msg, keyvals...)
}

// Debug - отладочное сообщение.
func Debug(msg string, keyvals ...any) {
	log(zerolog.DebugLevel, msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	log(zerolog.WarnLevel, msg, keyvals...)
}

// log - внутренняя функция записи в лог.
//
// keyvals читаются парами key, value; непарный хвост отбрасывается.
func log(level zerolog.Level, msg string, keyvals ...any) {
	logMutex.RLock()
	l := logger
	logMutex.RUnlock()

	ev := l.WithLevel(level)
	if ev == nil {
		return
	}

	for i := 0; i+1 < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		switch v := keyvals[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

// Close закрывает лог-файл.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
		}
		logFile = nil
	}
	logger = zerolog.Nop()
	initialized = false
}
