package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"price-tracker/adapters"
	"price-tracker/extractor"
	"price-tracker/internal/logging"
	"price-tracker/internal/shell"
	"price-tracker/internal/types"
	"price-tracker/store"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	config := types.DefaultConfig()
	types.ApplyEnv(config)

	var (
		queryFlag   = flag.String("query", "", "Run a single search, print JSON and exit")
		outputFlag  = flag.String("output", "", "Output file path for -query results (default: stdout)")
		dbFlag      = flag.String("db", config.DBPath, "Price history database file")
		logFileFlag = flag.String("log-file", config.LogFile, "Log file path (empty disables file logging)")
		minDelay    = flag.Duration("min-delay", config.MinDelay, "Minimum delay before each request")
		maxDelay    = flag.Duration("max-delay", config.MaxDelay, "Maximum delay before each request")
		timeout     = flag.Duration("timeout", config.Timeout, "Request timeout")
		useBrowser  = flag.Bool("browser", config.UseHeadlessBrowser, "Fetch pages with a headless browser")
		noClear     = flag.Bool("no-clear", false, "Do not clear the terminal between menus")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	config.DBPath = *dbFlag
	config.LogFile = *logFileFlag
	config.MinDelay = *minDelay
	config.MaxDelay = *maxDelay
	config.Timeout = *timeout
	config.UseHeadlessBrowser = *useBrowser

	logger, logCloser, err := logging.New(logging.Options{
		File:    config.LogFile,
		Level:   os.Getenv("LOG_LEVEL"),
		Verbose: *verbose,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := store.Open(ctx, config.DBPath)
	if err != nil {
		logger.Fatalf("Failed to open price history: %v", err)
	}
	defer db.Close()

	ext := extractor.NewExtractor(adapters.All(config, logger), logger)
	defer ext.Close()

	if *queryFlag != "" {
		if err := runOnce(ctx, ext, db, *queryFlag, *outputFlag, logger); err != nil {
			logger.Errorf("Search failed: %v", err)
			os.Exit(1)
		}
		return
	}

	sh := shell.New(os.Stdin, os.Stdout, ext, db, logger)
	sh.ClearScreen = !*noClear
	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("Shell stopped: %v", err)
	}
	if ctx.Err() != nil {
		fmt.Println("\n👋 Program terminated by user.")
	}
}

// runOnce searches, saves valid records and writes the result as JSON
func runOnce(ctx context.Context, ext *extractor.Extractor, db *store.Store, query, output string, logger types.Logger) error {
	startTime := time.Now()

	result, err := ext.SearchReport(ctx, query)
	if err != nil {
		return err
	}

	saved, err := db.SaveAll(ctx, result.AllRecords())
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	logger.Infof("Saved %d observations in %v", saved, time.Since(startTime))

	if output != "" {
		if err := extractor.ExportToJSON(output, result); err != nil {
			return err
		}
		logger.Infof("Results written to: %s", output)
		return nil
	}
	return extractor.WriteJSON(os.Stdout, result)
}
