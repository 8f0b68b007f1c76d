package woo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paginatedShop отдаёт K товаров страницами согласно page/per_page.
func paginatedShop(t *testing.T, total int) *mockShop {
	t.Helper()
	return newMockShop(t, func(w http.ResponseWriter, r *http.Request, n int) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if page < 1 {
			page = 1
		}
		if perPage < 1 {
			perPage = 10
		}

		start := (page - 1) * perPage
		end := start + perPage
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}

		items := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, map[string]any{"id": i + 1, "name": fmt.Sprintf("item-%d", i+1)})
		}
		body, _ := json.Marshal(items)
		writeJSON(w, http.StatusOK, string(body))
	})
}

// TestGetAllProducts_CollectsEveryPage — K элементов по порядку за ceil(K/P)+1 запросов.
func TestGetAllProducts_CollectsEveryPage(t *testing.T) {
	tests := []struct {
		total   int
		perPage int
	}{
		{0, 100},
		{1, 100},
		{99, 100},
		{100, 100},
		{101, 100},
		{250, 100},
		{23, 7},
		{21, 7},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("K=%d,P=%d", tt.total, tt.perPage), func(t *testing.T) {
			shop := paginatedShop(t, tt.total)
			c := newTestClient(t, shop.URL)

			products, err := c.GetAllProducts(context.Background(), tt.perPage)
			require.NoError(t, err)
			require.NotNil(t, products)
			require.Len(t, products, tt.total)

			for i, p := range products {
				assert.Equal(t, int64(i+1), p.ID())
			}

			wantRequests := (tt.total+tt.perPage-1)/tt.perPage + 1
			assert.Equal(t, wantRequests, shop.Count())

			for i, r := range shop.Requests() {
				q, err := url.ParseQuery(r.RawQuery)
				require.NoError(t, err)
				assert.Equal(t, strconv.Itoa(i+1), q.Get("page"))
				assert.Equal(t, strconv.Itoa(tt.perPage), q.Get("per_page"))
				assert.Equal(t, "/wp-json/wc/v3/products", r.Path)
			}
		})
	}
}

func TestGetAllProducts_DefaultPerPage(t *testing.T) {
	shop := paginatedShop(t, 5)
	c := newTestClient(t, shop.URL)

	_, err := c.GetAllProducts(context.Background(), 0)
	require.NoError(t, err)

	q, err := url.ParseQuery(shop.Requests()[0].RawQuery)
	require.NoError(t, err)
	assert.Equal(t, "100", q.Get("per_page"))
}

// TestGetAll_ErrorDropsPartialResult — ошибка на странице прерывает цикл без частичного результата.
func TestGetAll_ErrorDropsPartialResult(t *testing.T) {
	shop := newMockShop(t, func(w http.ResponseWriter, r *http.Request, n int) {
		if r.URL.Query().Get("page") == "1" {
			writeJSON(w, http.StatusOK, `[{"id":1},{"id":2}]`)
			return
		}
		writeJSON(w, http.StatusInternalServerError, `{}`)
	})
	c := newTestClient(t, shop.URL, WithMaxRetries(2))

	products, err := GetAll[Product](context.Background(), c, "products", 2, nil)
	assert.Nil(t, products)
	assert.True(t, errors.Is(err, ErrRequestExhausted))
	assert.Equal(t, 1+2, shop.Count())
}

func TestGetAll_NullPageTerminates(t *testing.T) {
	shop := newMockShop(t, func(w http.ResponseWriter, r *http.Request, n int) {
		writeJSON(w, http.StatusOK, `null`)
	})
	c := newTestClient(t, shop.URL)

	products, err := c.GetAllProducts(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 1, shop.Count())
}

// TestGetAll_EmptyObjectPageTerminates — {} вместо массива тоже конец списка.
func TestGetAll_EmptyObjectPageTerminates(t *testing.T) {
	shop := newMockShop(t, func(w http.ResponseWriter, r *http.Request, n int) {
		if r.URL.Query().Get("page") == "1" {
			writeJSON(w, http.StatusOK, `[{"id":1}]`)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	})
	c := newTestClient(t, shop.URL)

	products, err := c.GetAllProducts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(1), products[0].ID())
	assert.Equal(t, 2, shop.Count())
}

func TestGetAll_NonEmptyObjectPageIsDecodeError(t *testing.T) {
	shop := newMockShop(t, func(w http.ResponseWriter, r *http.Request, n int) {
		writeJSON(w, http.StatusOK, `{"code":"woocommerce_rest_invalid"}`)
	})
	c := newTestClient(t, shop.URL)

	_, err := c.GetAllProducts(context.Background(), 10)
	var decErr *DecodeError
	assert.ErrorAs(t, err, &decErr)
	assert.Equal(t, 1, shop.Count())
}

func TestGetAll_MaxPages(t *testing.T) {
	t.Run("limit hit", func(t *testing.T) {
		shop := paginatedShop(t, 30)
		c := newTestClient(t, shop.URL, WithMaxPages(2))

		_, err := c.GetAllProducts(context.Background(), 10)
		assert.True(t, errors.Is(err, ErrPageLimit))
		assert.Equal(t, 3, shop.Count())
	})

	t.Run("exact fit still sees empty page", func(t *testing.T) {
		shop := paginatedShop(t, 30)
		c := newTestClient(t, shop.URL, WithMaxPages(3))

		products, err := c.GetAllProducts(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, products, 30)
		assert.Equal(t, 4, shop.Count())
	})
}

func TestEachPage_PassesParamsAndStops(t *testing.T) {
	shop := paginatedShop(t, 50)
	c := newTestClient(t, shop.URL)

	stop := errors.New("stop")
	var pages []int
	total, err := EachPage(context.Background(), c, "products", 10, url.Values{"status": {"publish"}},
		func(page int, items []Product) error {
			pages = append(pages, page)
			if page == 2 {
				return stop
			}
			return nil
		})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 10, total)
	assert.Equal(t, []int{1, 2}, pages)

	for _, r := range shop.Requests() {
		q, _ := url.ParseQuery(r.RawQuery)
		assert.Equal(t, "publish", q.Get("status"))
	}
}
