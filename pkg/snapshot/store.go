// Package snapshot хранит локальный снимок каталога товаров в SQLite.
//
// Полезная нагрузка товара сохраняется как есть (JSON), рядом — несколько
// колонок для быстрого просмотра.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ilkoid/woo-sdk/pkg/woo"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	sku        TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	price      TEXT NOT NULL DEFAULT '',
	payload    TEXT NOT NULL,
	fetched_at TIMESTAMP NOT NULL
);`

// Row — строка снимка.
type Row struct {
	ID        int64
	Name      string
	SKU       string
	Status    string
	Price     string
	Payload   woo.Product
	FetchedAt time.Time
}

// Store — снимок в файле SQLite.
type Store struct {
	db *sql.DB
}

// Open открывает (или создаёт) базу по пути path и применяет схему.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	// Один писатель на файл
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply snapshot schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save записывает товары одной транзакцией (upsert по id).
// Товары без id пропускаются. Возвращает число записанных строк.
func (s *Store) Save(ctx context.Context, products []woo.Product, fetchedAt time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO products (id, name, sku, status, price, payload, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	sku = excluded.sku,
	status = excluded.status,
	price = excluded.price,
	payload = excluded.payload,
	fetched_at = excluded.fetched_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, p := range products {
		id := p.ID()
		if id == 0 {
			continue
		}
		payload, err := json.Marshal(p)
		if err != nil {
			return 0, fmt.Errorf("marshal product %d: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, p.Name(), p.SKU(), p.Status(), p.Price(), string(payload), fetchedAt.UTC()); err != nil {
			return 0, fmt.Errorf("upsert product %d: %w", id, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

// List возвращает все строки снимка, упорядоченные по id.
func (s *Store) List(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, sku, status, price, payload, fetched_at FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var payload string
		if err := rows.Scan(&r.ID, &r.Name, &r.SKU, &r.Status, &r.Price, &payload, &r.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		if err := woo.DecodeJSON([]byte(payload), &r.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Products возвращает полезные нагрузки снимка в порядке id.
func (s *Store) Products(ctx context.Context) ([]woo.Product, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]woo.Product, len(rows))
	for i, r := range rows {
		products[i] = r.Payload
	}
	return products, nil
}

// Count возвращает число товаров в снимке.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshot: %w", err)
	}
	return n, nil
}

// Close закрывает базу.
func (s *Store) Close() error {
	return s.db.Close()
}
