package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ilkoid/woo-sdk/pkg/config"
	"github.com/ilkoid/woo-sdk/pkg/export"
	"github.com/ilkoid/woo-sdk/pkg/s3storage"
	"github.com/ilkoid/woo-sdk/pkg/snapshot"
	"github.com/ilkoid/woo-sdk/pkg/utils"
	"github.com/ilkoid/woo-sdk/pkg/woo"
)

// productAPI — операции клиента, которые использует CLI (*woo.Client).
type productAPI interface {
	GetProductsPage(ctx context.Context, page, perPage int) ([]woo.Product, error)
	GetAllProducts(ctx context.Context, perPage int) ([]woo.Product, error)
	GetProduct(ctx context.Context, id int64) (woo.Product, error)
	CreateProduct(ctx context.Context, data any) (woo.Product, error)
	UpdateProduct(ctx context.Context, id int64, data any) (woo.Product, error)
	DeleteProduct(ctx context.Context, id int64, force bool) (woo.Product, error)
}

type cli struct {
	cfg     *config.AppConfig
	client  productAPI
	storage func() (s3storage.ClientInterface, error) // S3 создаётся только по запросу команды
	out     io.Writer
}

// newStorage — фабрика S3 клиента по конфигу.
func newStorage(cfg config.S3Config) func() (s3storage.ClientInterface, error) {
	return func() (s3storage.ClientInterface, error) {
		c, err := s3storage.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		return c, nil
	}
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "products":
		return c.products(ctx, args)
	case "all":
		return c.all(ctx, args)
	case "get":
		return c.get(ctx, args)
	case "create":
		return c.create(ctx, args)
	case "update":
		return c.update(ctx, args)
	case "delete":
		return c.delete(ctx, args)
	case "export":
		return c.export(ctx, args)
	case "exports":
		return c.exports(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c *cli) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	page := fs.Int("page", 0, "Page number (0 = API default)")
	perPage := fs.Int("per-page", 0, "Page size (0 = API default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := c.client.GetProductsPage(ctx, *page, *perPage)
	if err != nil {
		return err
	}
	return printJSON(c.out, items)
}

func (c *cli) all(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("all", flag.ContinueOnError)
	perPage := fs.Int("per-page", 0, "Page size (0 = config per_page)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := c.client.GetAllProducts(ctx, *perPage)
	if err != nil {
		return err
	}
	utils.Info("Fetched all products", "count", len(items))
	return printJSON(c.out, items)
}

func (c *cli) get(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	id := fs.Int64("id", 0, "Product ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("get: -id is required")
	}

	p, err := c.client.GetProduct(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(c.out, p)
}

func (c *cli) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	file := fs.String("file", "", "JSON file with product data")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := readPayload(*file)
	if err != nil {
		return err
	}
	p, err := c.client.CreateProduct(ctx, data)
	if err != nil {
		return err
	}
	utils.Info("Product created", "id", p.ID())
	return printJSON(c.out, p)
}

func (c *cli) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	id := fs.Int64("id", 0, "Product ID")
	file := fs.String("file", "", "JSON file with fields to update")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("update: -id is required")
	}

	data, err := readPayload(*file)
	if err != nil {
		return err
	}
	p, err := c.client.UpdateProduct(ctx, *id, data)
	if err != nil {
		return err
	}
	utils.Info("Product updated", "id", *id)
	return printJSON(c.out, p)
}

func (c *cli) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.Int64("id", 0, "Product ID")
	force := fs.Bool("force", true, "Delete permanently instead of moving to trash")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("delete: -id is required")
	}

	p, err := c.client.DeleteProduct(ctx, *id, *force)
	if err != nil {
		return err
	}
	utils.Info("Product deleted", "id", *id, "force", *force)
	return printJSON(c.out, p)
}

func (c *cli) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	toS3 := fs.Bool("s3", false, "Upload JSON export to S3")
	toSnapshot := fs.Bool("snapshot", false, "Save products to local SQLite snapshot")
	perPage := fs.Int("per-page", 0, "Page size (0 = config per_page)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	exp := &export.Exporter{Source: c.client}

	if *toS3 {
		store, err := c.storage()
		if err != nil {
			return err
		}
		exp.Uploader = store
	}
	if *toSnapshot {
		store, err := snapshot.Open(c.cfg.SnapshotPath())
		if err != nil {
			return err
		}
		defer store.Close()
		exp.Store = store
	}

	res, err := exp.Run(ctx, export.Options{
		PerPage:   *perPage,
		KeyPrefix: c.cfg.ExportPrefix(),
	})
	if err != nil {
		return err
	}
	return printJSON(c.out, res)
}

// exports перечисляет выгрузки под префиксом экспорта или печатает одну из них (-get).
func (c *cli) exports(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("exports", flag.ContinueOnError)
	get := fs.String("get", "", "Object key of the export to download and print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := c.storage()
	if err != nil {
		return err
	}

	if *get != "" {
		data, err := store.DownloadFile(ctx, *get)
		if err != nil {
			return fmt.Errorf("download %s: %w", *get, err)
		}
		var products []woo.Product
		if err := woo.DecodeJSON(data, &products); err != nil {
			return fmt.Errorf("parse export %s: %w", *get, err)
		}
		return printJSON(c.out, products)
	}

	objects, err := store.ListFiles(ctx, c.cfg.ExportPrefix())
	if err != nil {
		return fmt.Errorf("list exports: %w", err)
	}
	utils.Info("Exports listed", "prefix", c.cfg.ExportPrefix(), "count", len(objects))

	type exportEntry struct {
		Key          string    `json:"key"`
		Size         int64     `json:"size"`
		LastModified time.Time `json:"last_modified"`
	}
	entries := make([]exportEntry, 0, len(objects))
	for _, o := range objects {
		entries = append(entries, exportEntry{Key: o.Key, Size: o.Size, LastModified: o.LastModified})
	}
	return printJSON(c.out, entries)
}

// readPayload читает JSON объект товара из файла ("-" — stdin).
func readPayload(file string) (map[string]any, error) {
	if file == "" {
		return nil, fmt.Errorf("-file is required")
	}

	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse payload %s: %w", file, err)
	}
	return payload, nil
}

// printJSON выводит результат в JSON формате.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
