package woo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrRequestExhausted — все попытки запроса завершились транзиентной ошибкой.
	ErrRequestExhausted = errors.New("woo: request failed after all attempts")

	// ErrPageLimit — агрегатор прочитал MaxPages непустых страниц и так и не увидел пустую.
	ErrPageLimit = errors.New("woo: page limit reached before an empty page")

	// ErrUnknownCharset — имя кодировки не найдено в WHATWG индексе.
	ErrUnknownCharset = errors.New("woo: unknown charset")

	// ErrUnsupportedMethod — метод не из GET/POST/PUT/DELETE.
	ErrUnsupportedMethod = errors.New("woo: unsupported http method")
)

// ErrorKind представляет тип ошибки одной попытки.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthFailed
	KindTimeout
	KindNetwork
	KindRateLimit
	KindHTTPStatus
)

// String возвращает строковое представление типа ошибки.
func (k ErrorKind) String() string {
	switch k {
	case KindAuthFailed:
		return "authentication_failed"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network_error"
	case KindRateLimit:
		return "rate_limit"
	case KindHTTPStatus:
		return "http_status"
	default:
		return "unknown"
	}
}

// HumanMessage возвращает человекочитаемое сообщение для типа ошибки.
func (k ErrorKind) HumanMessage() string {
	switch k {
	case KindAuthFailed:
		return "Ключи REST API недействительны или без прав. Проверьте woo.consumer_key и woo.consumer_secret."
	case KindTimeout:
		return "Превышено время ожидания. Магазин не отвечает или проблемы с сетью."
	case KindNetwork:
		return "Магазин недоступен. Проверьте woo.base_url и подключение к интернету."
	case KindRateLimit:
		return "Магазин ограничил частоту запросов. Повторите позже."
	case KindHTTPStatus:
		return "Магазин вернул HTTP ошибку."
	default:
		return "Неизвестная ошибка при обращении к WooCommerce API."
	}
}

// StatusError — ответ с HTTP статусом >= 400.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("woo api error: status %d %s, body: %s",
		e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// AttemptError — неудача одной попытки.
type AttemptError struct {
	Attempt int
	Kind    ErrorKind
	Err     error
}

func (e AttemptError) Error() string {
	return fmt.Sprintf("attempt %d (%s): %v", e.Attempt, e.Kind, e.Err)
}

func (e AttemptError) Unwrap() error { return e.Err }

// ExhaustedError возвращается, когда исчерпаны все попытки.
//
// Хранит историю всех попыток, а не только последнюю:
// errors.As по *StatusError или net.Error находит причину любой из них.
type ExhaustedError struct {
	Method   string
	Endpoint string
	Attempts int
	Failures []AttemptError
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "woo: %s %s failed after %d attempts", e.Method, e.Endpoint, e.Attempts)
	if last := e.Last(); last != nil {
		fmt.Fprintf(&b, ": %v", last)
	}
	return b.String()
}

// Is делает errors.Is(err, ErrRequestExhausted) истинным.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRequestExhausted
}

// Unwrap раскрывает ошибки всех попыток.
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Last возвращает ошибку последней попытки.
func (e *ExhaustedError) Last() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[len(e.Failures)-1].Err
}

// Kinds возвращает типы ошибок по попыткам.
func (e *ExhaustedError) Kinds() []ErrorKind {
	kinds := make([]ErrorKind, len(e.Failures))
	for i, f := range e.Failures {
		kinds[i] = f.Kind
	}
	return kinds
}

// DecodeError — успешный ответ не разобрался как JSON. Не ретраится.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("woo: decode response: %v", e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// ClassifyError классифицирует ошибку попытки по типу для диагностики.
//
//   - KindAuthFailed: статус 401 или 403
//   - KindRateLimit: статус 429
//   - KindHTTPStatus: прочие статусы >= 400
//   - KindTimeout: deadline exceeded, net.Error с Timeout()
//   - KindNetwork: прочие ошибки транспорта
//   - KindUnknown: всё остальное
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAuthFailed
		case http.StatusTooManyRequests:
			return KindRateLimit
		default:
			return KindHTTPStatus
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}

	var ue *url.Error
	var oe *net.OpError
	var de *net.DNSError
	if errors.As(err, &oe) || errors.As(err, &de) || errors.As(err, &ue) {
		return KindNetwork
	}

	return KindUnknown
}
