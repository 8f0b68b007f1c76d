package woo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// EachPage листает endpoint страницами page=1,2,... и отдаёт каждую непустую страницу в fn.
//
// Параметры:
//   - ctx: контекст для отмены
//   - c: клиент
//   - endpoint: ресурс-список (например, "products")
//   - perPage: размер страницы (<= 0 — размер по умолчанию клиента)
//   - params: дополнительные query параметры (может быть nil)
//   - fn: обработчик страницы (возвращает ошибку для прерывания)
//
// Цикл завершается только на пустой странице: [], null или {}. Страницы запрашиваются строго
// последовательно. Если у клиента задан MaxPages и страница с номером больше
// MaxPages оказалась непустой, возвращается ErrPageLimit.
//
// Возвращает общее количество обработанных элементов.
func EachPage[T any](ctx context.Context, c *Client, endpoint string, perPage int, params url.Values, fn func(page int, items []T) error) (int, error) {
	if perPage <= 0 {
		perPage = c.perPage
	}

	total := 0
	for page := 1; ; page++ {
		q := url.Values{}
		for k, vs := range params {
			q[k] = append([]string(nil), vs...)
		}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))

		var raw json.RawMessage
		if err := c.Get(ctx, endpoint, q, &raw); err != nil {
			return total, err
		}
		items, err := decodePage[T](raw)
		if err != nil {
			return total, err
		}

		// Пустая страница = конец пагинации
		if len(items) == 0 {
			return total, nil
		}

		if c.maxPages > 0 && page > c.maxPages {
			return total, fmt.Errorf("%w: %s, max_pages=%d", ErrPageLimit, endpoint, c.maxPages)
		}

		if err := fn(page, items); err != nil {
			return total, err
		}
		total += len(items)
	}
}

// decodePage разбирает страницу списка. Пустой объект считается пустой страницей.
func decodePage[T any](raw json.RawMessage) ([]T, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && len(obj) == 0 {
		return nil, nil
	}

	var items []T
	if err := DecodeJSON(raw, &items); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return items, nil
}

// GetAll выкачивает весь список endpoint, склеивая страницы в порядке получения.
//
// При ошибке любой страницы частичный результат не возвращается.
func GetAll[T any](ctx context.Context, c *Client, endpoint string, perPage int, params url.Values) ([]T, error) {
	all := make([]T, 0)

	_, err := EachPage(ctx, c, endpoint, perPage, params, func(_ int, items []T) error {
		all = append(all, items...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}
