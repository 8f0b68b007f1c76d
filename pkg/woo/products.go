package woo

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

const productsEndpoint = "products"

// Product — товар в том виде, в каком его вернул магазин.
//
// Клиент не интерпретирует и не меняет полезную нагрузку; аксессоры ниже
// только читают часто используемые поля для вывода.
type Product map[string]any

// ID возвращает поле id (0 если отсутствует).
func (p Product) ID() int64 {
	switch v := p["id"].(type) {
	case json.Number:
		n, _ := v.Int64()
		return n
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Name возвращает название товара.
func (p Product) Name() string { return p.str("name") }

// SKU возвращает артикул.
func (p Product) SKU() string { return p.str("sku") }

// Status возвращает статус публикации (publish, draft...).
func (p Product) Status() string { return p.str("status") }

// Price возвращает текущую цену. WooCommerce отдаёт цены строками.
func (p Product) Price() string { return p.str("price") }

func (p Product) str(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func productPath(id int64) string {
	return productsEndpoint + "/" + strconv.FormatInt(id, 10)
}

// GetProducts возвращает одну страницу товаров с размером страницы магазина по умолчанию.
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.Get(ctx, productsEndpoint, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductsPage возвращает страницу page размером perPage.
func (c *Client) GetProductsPage(ctx context.Context, page, perPage int) ([]Product, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		params.Set("per_page", strconv.Itoa(perPage))
	}

	var products []Product
	if err := c.Get(ctx, productsEndpoint, params, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetAllProducts выкачивает все товары магазина (perPage <= 0 — 100 по умолчанию).
func (c *Client) GetAllProducts(ctx context.Context, perPage int) ([]Product, error) {
	return GetAll[Product](ctx, c, productsEndpoint, perPage, nil)
}

// GetProduct возвращает товар по id.
func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var product Product
	if err := c.Get(ctx, productPath(id), nil, &product); err != nil {
		return nil, err
	}
	return product, nil
}

// CreateProduct создаёт товар. data сериализуется в JSON как есть.
func (c *Client) CreateProduct(ctx context.Context, data any) (Product, error) {
	var product Product
	if err := c.Post(ctx, productsEndpoint, data, &product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct заменяет поля товара id (PUT products/<id>).
func (c *Client) UpdateProduct(ctx context.Context, id int64, data any) (Product, error) {
	var product Product
	if err := c.Put(ctx, productPath(id), data, &product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct удаляет товар id. force=true удаляет навсегда,
// force=false переносит в корзину. Флаг уходит как литерал "true"/"false".
func (c *Client) DeleteProduct(ctx context.Context, id int64, force bool) (Product, error) {
	params := url.Values{}
	params.Set("force", strconv.FormatBool(force))

	var product Product
	if err := c.Delete(ctx, productPath(id), params, &product); err != nil {
		return nil, err
	}
	return product, nil
}
