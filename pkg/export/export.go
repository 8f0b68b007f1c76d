// Package export выгружает весь каталог товаров и раскладывает его по приёмникам:
// JSON документ в S3 и/или локальный снимок SQLite.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/ilkoid/woo-sdk/pkg/utils"
	"github.com/ilkoid/woo-sdk/pkg/woo"
)

// ProductSource — откуда берутся товары (*woo.Client).
type ProductSource interface {
	GetAllProducts(ctx context.Context, perPage int) ([]woo.Product, error)
}

// Uploader — куда кладётся JSON выгрузка (*s3storage.Client).
type Uploader interface {
	PutJSON(ctx context.Context, key string, data []byte) error
}

// SnapshotWriter — локальный снимок (*snapshot.Store).
type SnapshotWriter interface {
	Save(ctx context.Context, products []woo.Product, fetchedAt time.Time) (int, error)
}

// Exporter связывает источник с приёмниками. Uploader и Store необязательны.
type Exporter struct {
	Source   ProductSource
	Uploader Uploader
	Store    SnapshotWriter
}

// Options — параметры одного запуска.
type Options struct {
	PerPage   int              // размер страницы (<= 0 — дефолт клиента)
	KeyPrefix string           // префикс ключа в S3 (default: "exports")
	Now       func() time.Time // для тестов
}

// Result — итог запуска.
type Result struct {
	Count     int       `json:"count"`         // сколько товаров выгружено из магазина
	Key       string    `json:"key,omitempty"` // ключ в S3 (пусто, если Uploader не задан)
	Saved     int       `json:"saved"`         // сколько строк записано в снимок
	FetchedAt time.Time `json:"fetched_at"`
}

// Run выгружает все товары и отдаёт их приёмникам.
//
// Ошибка любого шага прерывает запуск; при ошибке выгрузки из магазина
// приёмники не трогаются.
func (e *Exporter) Run(ctx context.Context, opts Options) (*Result, error) {
	if e.Source == nil {
		return nil, fmt.Errorf("export: product source is required")
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "exports"
	}

	start := now()
	products, err := e.Source.GetAllProducts(ctx, opts.PerPage)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	utils.Info("Products fetched", "count", len(products), "duration", now().Sub(start))

	res := &Result{Count: len(products), FetchedAt: start}

	if e.Uploader != nil {
		data, err := json.Marshal(products)
		if err != nil {
			return nil, fmt.Errorf("marshal products: %w", err)
		}
		key := ObjectKey(prefix, start)
		if err := e.Uploader.PutJSON(ctx, key, data); err != nil {
			return nil, fmt.Errorf("upload export: %w", err)
		}
		res.Key = key
		utils.Info("Export uploaded", "key", key, "bytes", len(data))
	}

	if e.Store != nil {
		saved, err := e.Store.Save(ctx, products, start)
		if err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
		res.Saved = saved
		utils.Info("Snapshot saved", "rows", saved)
	}

	return res, nil
}

// ObjectKey строит ключ выгрузки: <prefix>/products-YYYYMMDD-HHMMSS.json (UTC).
func ObjectKey(prefix string, t time.Time) string {
	return path.Join(prefix, "products-"+t.UTC().Format("20060102-150405")+".json")
}
