package woo

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoShop(t *testing.T) *mockShop {
	t.Helper()
	return newMockShop(t, func(w http.ResponseWriter, r *http.Request, n int) {
		writeJSON(w, http.StatusOK, `{"id":42,"name":"Футболка","sku":"TS-42","status":"publish","price":"990"}`)
	})
}

// TestDeleteProduct_ForceFlag — force уходит как литерал true/false.
func TestDeleteProduct_ForceFlag(t *testing.T) {
	tests := []struct {
		force     bool
		wantQuery string
	}{
		{true, "force=true"},
		{false, "force=false"},
	}

	for _, tt := range tests {
		t.Run(tt.wantQuery, func(t *testing.T) {
			shop := echoShop(t)
			c := newTestClient(t, shop.URL)

			_, err := c.DeleteProduct(context.Background(), 42, tt.force)
			require.NoError(t, err)

			reqs := shop.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, http.MethodDelete, reqs[0].Method)
			assert.Equal(t, "/wp-json/wc/v3/products/42", reqs[0].Path)
			assert.Equal(t, tt.wantQuery, reqs[0].RawQuery)
			assert.Empty(t, reqs[0].Body)
		})
	}
}

// TestUpdateProduct_PutsPayload — PUT products/<id> с телом как есть.
func TestUpdateProduct_PutsPayload(t *testing.T) {
	shop := echoShop(t)
	c := newTestClient(t, shop.URL)

	payload := map[string]any{"regular_price": "1090", "stock_quantity": 3}
	product, err := c.UpdateProduct(context.Background(), 42, payload)
	require.NoError(t, err)
	assert.Equal(t, int64(42), product.ID())

	reqs := shop.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/wp-json/wc/v3/products/42", reqs[0].Path)
	assert.JSONEq(t, `{"regular_price":"1090","stock_quantity":3}`, string(reqs[0].Body))
}

func TestCreateProduct(t *testing.T) {
	shop := echoShop(t)
	c := newTestClient(t, shop.URL)

	_, err := c.CreateProduct(context.Background(), map[string]any{"name": "Футболка", "type": "simple"})
	require.NoError(t, err)

	reqs := shop.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/wp-json/wc/v3/products", reqs[0].Path)
	assert.JSONEq(t, `{"name":"Футболка","type":"simple"}`, string(reqs[0].Body))
}

func TestGetProducts_SinglePageNoParams(t *testing.T) {
	shop := newMockShop(t, func(w http.ResponseWriter, r *http.Request, n int) {
		writeJSON(w, http.StatusOK, `[{"id":1},{"id":2}]`)
	})
	c := newTestClient(t, shop.URL)

	products, err := c.GetProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)

	reqs := shop.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Empty(t, reqs[0].RawQuery)
}

func TestGetProductsPage(t *testing.T) {
	shop := newMockShop(t, func(w http.ResponseWriter, r *http.Request, n int) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	c := newTestClient(t, shop.URL)

	_, err := c.GetProductsPage(context.Background(), 3, 25)
	require.NoError(t, err)
	assert.Equal(t, "page=3&per_page=25", shop.Requests()[0].RawQuery)
}

func TestGetProduct_Accessors(t *testing.T) {
	shop := echoShop(t)
	c := newTestClient(t, shop.URL)

	p, err := c.GetProduct(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, "/wp-json/wc/v3/products/42", shop.Requests()[0].Path)
	assert.Equal(t, int64(42), p.ID())
	assert.Equal(t, "Футболка", p.Name())
	assert.Equal(t, "TS-42", p.SKU())
	assert.Equal(t, "publish", p.Status())
	assert.Equal(t, "990", p.Price())
}

func TestProduct_AccessorsOnOddShapes(t *testing.T) {
	p := Product{"id": "17", "price": 12.5}
	assert.Equal(t, int64(17), p.ID())
	assert.Equal(t, "12.5", p.Price())
	assert.Equal(t, "", p.Name())
	assert.Equal(t, int64(0), Product{}.ID())
}

// TestProducts_LargeNumbersKeepPrecision — числа больше 2^53 доходят до вызывающего без округления.
func TestProducts_LargeNumbersKeepPrecision(t *testing.T) {
	const item = `{"id":9007199254740993,"meta_data":[{"id":1,"value":12345678901234567}]}`

	shop := newMockShop(t, func(w http.ResponseWriter, r *http.Request, n int) {
		switch {
		case r.URL.Path == "/wp-json/wc/v3/products/9007199254740993":
			writeJSON(w, http.StatusOK, item)
		case r.URL.Query().Get("page") == "1":
			writeJSON(w, http.StatusOK, "["+item+"]")
		default:
			writeJSON(w, http.StatusOK, `[]`)
		}
	})
	c := newTestClient(t, shop.URL)

	t.Run("GetProduct", func(t *testing.T) {
		p, err := c.GetProduct(context.Background(), 9007199254740993)
		require.NoError(t, err)
		assert.Equal(t, int64(9007199254740993), p.ID())

		data, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, item, string(data))
		assert.Contains(t, string(data), "12345678901234567")
	})

	t.Run("GetAllProducts", func(t *testing.T) {
		products, err := c.GetAllProducts(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, int64(9007199254740993), products[0].ID())

		data, err := json.Marshal(products)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"id":9007199254740993`)
		assert.Contains(t, string(data), `"value":12345678901234567`)
	})
}
