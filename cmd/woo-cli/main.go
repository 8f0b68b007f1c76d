// woo-cli — CLI утилита для работы с товарами WooCommerce.
//
// Использование:
//
//	./woo-cli products -page 2 -per-page 20
//	./woo-cli all
//	./woo-cli get -id 42
//	./woo-cli create -file product.json
//	./woo-cli update -id 42 -file patch.json
//	./woo-cli delete -id 42 -force=false
//	./woo-cli export -s3 -snapshot
//	./woo-cli exports
//	./woo-cli exports -get exports/products-20261018-120000.json
//
// config.yaml ищется рядом с бинарником (или задаётся флагом -config).
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ilkoid/woo-sdk/pkg/config"
	"github.com/ilkoid/woo-sdk/pkg/utils"
	"github.com/ilkoid/woo-sdk/pkg/woo"
)

// Version — версия утилиты (заполняется при сборке)
var Version = "dev"

func main() {
	// 1. Парсим глобальные флаги
	var (
		configPath  = flag.String("config", "", "Path to config.yaml (default: ./config.yaml)")
		debugFlag   = flag.Bool("debug", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Show version")
	)
	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		fmt.Printf("woo-cli version %s\n", Version)
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: command is required")
		printHelp()
		os.Exit(1)
	}

	// 2. Загружаем конфигурацию
	cfgPath := config.FindConfigPath(*configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	// 3. Логгер пишет в файл, stdout остаётся под JSON
	if err := utils.InitLogger(cfg.App.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	utils.SetDebug(*debugFlag || cfg.App.Debug)
	utils.Info("Starting woo-cli", "version", Version, "config", cfgPath)

	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	// 4. Клиент магазина
	client, err := woo.NewFromConfig(cfg.Woo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating WooCommerce client: %v\n", err)
		utils.Error("Client initialization failed", "error", err)
		os.Exit(1)
	}

	app := &cli{cfg: cfg, client: client, storage: newStorage(cfg.S3), out: os.Stdout}
	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		reportError(err)
		shutdown()
		os.Exit(1)
	}
}

// reportError печатает ошибку и, для исчерпанных попыток, подсказку по последней причине.
func reportError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	utils.Error("Command failed", "error", err)

	var exhausted *woo.ExhaustedError
	if errors.As(err, &exhausted) && len(exhausted.Failures) > 0 {
		last := exhausted.Failures[len(exhausted.Failures)-1]
		fmt.Fprintf(os.Stderr, "Hint: %s\n", last.Kind.HumanMessage())
	}
}

// printHelp выводит справку
func printHelp() {
	fmt.Println("woo-cli — утилита для работы с товарами WooCommerce")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  woo-cli [flags] <command> [command flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  products [-page N] [-per-page N]   One page of products")
	fmt.Println("  all [-per-page N]                  All products (follows pagination)")
	fmt.Println("  get -id N                          Single product")
	fmt.Println("  create -file product.json          Create product")
	fmt.Println("  update -id N -file patch.json      Update product")
	fmt.Println("  delete -id N [-force=false]        Delete product (force by default)")
	fmt.Println("  export [-s3] [-snapshot]           Export all products to S3 and/or SQLite")
	fmt.Println("  exports [-get key]                 List S3 exports or print one of them")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -config string  Path to config.yaml (default \"./config.yaml\")")
	fmt.Println("  -debug          Enable debug logging")
	fmt.Println("  -version        Show version")
}
