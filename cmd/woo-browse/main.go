// woo-browse — интерактивный просмотр каталога товаров WooCommerce.
//
// Использование:
//
//	./woo-browse
//	./woo-browse -config /path/to/config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ilkoid/woo-sdk/pkg/config"
	"github.com/ilkoid/woo-sdk/pkg/tui"
	"github.com/ilkoid/woo-sdk/pkg/utils"
	"github.com/ilkoid/woo-sdk/pkg/woo"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (default: ./config.yaml)")
	flag.Parse()

	// 1. Загружаем конфиг
	cfgPath := config.FindConfigPath(*configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	// Логи только в файл: терминал занят TUI
	if err := utils.InitLogger(cfg.App.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	utils.SetDebug(cfg.App.Debug)

	// SIGTERM отменяет загрузку и закрывает TUI
	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	// 2. Инициализируем клиент
	client, err := woo.NewFromConfig(cfg.Woo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating WooCommerce client: %v\n", err)
		os.Exit(1)
	}

	// 3. Запускаем TUI
	load := func(ctx context.Context) ([]woo.Product, error) {
		return client.GetAllProducts(ctx, 0)
	}
	if err := tui.Run(ctx, client.BaseURL(), load); err != nil && ctx.Err() == nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		shutdown()
		os.Exit(1)
	}
}
