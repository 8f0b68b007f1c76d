package woo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxErrorBody ограничивает тело ответа, попадающее в StatusError.
const maxErrorBody = 2048

// rawResponse — тело успешного ответа до декодирования.
type rawResponse struct {
	body        []byte
	contentType string
}

// Request выполняет один логический запрос к API с ограниченным числом повторов.
//
// Параметры:
//   - ctx: контекст для отмены (отмена не считается транзиентной ошибкой)
//   - method: GET, POST, PUT или DELETE
//   - endpoint: путь относительно /wp-json/wc/v3/ (например, "products/42")
//   - body: тело запроса (будет сериализовано в JSON), nil — без тела
//   - params: query параметры (может быть nil)
//   - dest: указатель для unmarshal результата (nil — результат отбрасывается)
//
// Транспортная ошибка, timeout или статус >= 400 — транзиентная ошибка:
// попытка логируется и сразу повторяется без задержки. После MaxRetries
// неудач возвращается *ExhaustedError. Ошибка декодирования успешного
// ответа возвращается сразу как *DecodeError.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any, params url.Values, dest any) error {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	reqURL, err := c.buildURL(endpoint, params)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
	}

	failures := make([]AttemptError, 0, c.maxRetries)

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		raw, err := c.attempt(ctx, method, reqURL, payload)
		if err == nil {
			return c.decodeInto(raw, dest)
		}

		// Отмена снаружи — не повод тратить оставшиеся попытки
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("woo: %s %s: %w", method, endpoint, ctxErr)
		}

		kind := ClassifyError(err)
		failures = append(failures, AttemptError{Attempt: attempt, Kind: kind, Err: err})

		c.logger.Warn("woo request attempt failed",
			"attempt", attempt,
			"max_attempts", c.maxRetries,
			"method", method,
			"endpoint", endpoint,
			"kind", kind.String(),
			"error", err,
		)
	}

	return &ExhaustedError{
		Method:   method,
		Endpoint: endpoint,
		Attempts: c.maxRetries,
		Failures: failures,
	}
}

// attempt выполняет одну попытку. Ошибка означает транзиентную неудачу.
func (c *Client) attempt(ctx context.Context, method, reqURL string, payload []byte) (*rawResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, reqURL, bodyReader)
	if err != nil {
		return nil, err
	}

	httpReq.SetBasicAuth(c.consumerKey, c.consumerSecret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	return &rawResponse{body: data, contentType: resp.Header.Get("Content-Type")}, nil
}

// buildURL склеивает base + /wp-json/wc/v3/ + endpoint и добавляет params
// к query, уже присутствующему в endpoint.
func (c *Client) buildURL(endpoint string, params url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + APIPrefix + strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// Get выполняет GET запрос. params передаются как query.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, dest any) error {
	return c.Request(ctx, http.MethodGet, endpoint, nil, params, dest)
}

// Post выполняет POST запрос с JSON телом.
func (c *Client) Post(ctx context.Context, endpoint string, body any, dest any) error {
	return c.Request(ctx, http.MethodPost, endpoint, body, nil, dest)
}

// Put выполняет PUT запрос с JSON телом.
func (c *Client) Put(ctx context.Context, endpoint string, body any, dest any) error {
	return c.Request(ctx, http.MethodPut, endpoint, body, nil, dest)
}

// Delete выполняет DELETE запрос.
func (c *Client) Delete(ctx context.Context, endpoint string, params url.Values, dest any) error {
	return c.Request(ctx, http.MethodDelete, endpoint, nil, params, dest)
}
