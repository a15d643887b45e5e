package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collectrip/api"
	"collectrip/config"
	"collectrip/httputil"
	"collectrip/importer"
	"collectrip/logging"
	"collectrip/models"
	"collectrip/scheduler"
	"collectrip/services"
	"collectrip/storage"
	"collectrip/tourapi"
	"collectrip/workers"
)

var (
	importNow     = flag.Bool("import", false, "Run one import and exit")
	runAll        = flag.Bool("all", false, "Import the full area x content-type cross product")
	areaCode      = flag.Int("area", 0, "Area code for -import")
	contentTypeID = flag.Int("content-type", 0, "Content type id for -import")
	cat2          = flag.String("cat2", "", "Category (cat2) filter for -import")
	dryRun        = flag.Bool("dry-run", false, "Classify and log without writing")
	categories    = flag.Bool("categories", false, "Print the category code tree and exit")
	serve         = flag.Bool("serve", false, "Run the HTTP API alongside the import daemon")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogFile, 0)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting collectrip...")

	if err := cfg.RequireTourAPIKey(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	clients := httputil.NewClients()
	apiClient := tourapi.New(cfg.TourAPI, clients.TourAPI)

	ctx := context.Background()

	// Category discovery needs no database.
	if *categories {
		printCategoryTree(ctx, apiClient, *contentTypeID)
		return
	}

	if err := cfg.RequireDatabase(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	pgStore, err := storage.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Database.URL))

	sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	metrics := importer.NewMetrics()

	imp := importer.New(cfg, apiClient, pgStore)
	imp.SetOps(sqliteStore)
	imp.SetMetrics(metrics)
	imp.SetDryRun(*dryRun)

	// One-shot import modes.
	if *importNow || *runAll {
		var err error
		if *runAll {
			log.Println("Running full import...")
			_, err = imp.RunAll(ctx)
		} else {
			_, err = imp.Run(ctx, importer.Selection{
				AreaCode:      *areaCode,
				ContentTypeID: *contentTypeID,
				Cat2:          *cat2,
			})
		}
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Println("Import complete!")
		return
	}

	// Daemon mode.
	badgeService := services.NewBadgeService(pgStore)
	if err := badgeService.Seed(ctx, cfg.Badges); err != nil {
		log.Printf("Warning: badge seeding failed: %v", err)
	}
	userService := services.NewUserService(pgStore)
	authService := services.NewAuthService(cfg, pgStore, clients.External)

	var uploader *storage.S3Uploader
	if cfg.S3.Bucket != "" {
		uploader, err = storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to set up photo storage: %v", err)
		}
		log.Printf("Photo storage: s3://%s", cfg.S3.Bucket)
	} else {
		log.Println("No S3 bucket configured, photo uploads disabled")
	}
	collectorService := services.NewCollectorService(cfg, pgStore, uploader)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg, imp, sqliteStore)

	opsLog := func(level models.LogLevel, source, message string) {
		sqliteStore.Log(nil, level, message, source)
	}

	badgeWorker := workers.NewBadgeWorker(badgeService)
	badgeWorker.SetLogger(opsLog)
	go badgeWorker.Run(ctx, 5*time.Minute)
	log.Println("Badge worker started")

	photoWorker := workers.NewPhotoWorker(collectorService)
	photoWorker.SetLogger(opsLog)
	go photoWorker.Run(ctx, 20, 2*time.Minute) // batch of 20 every 2 min
	log.Println("Photo worker started")

	sched.SetWorkers(badgeWorker, photoWorker)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	if *serve {
		server := api.NewServer(cfg, pgStore, authService, userService, collectorService, badgeService, metrics)
		go func() {
			if err := server.Start(ctx); err != nil {
				log.Printf("HTTP server error: %v", err)
				cancel()
			}
		}()
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	cancel()
	sched.Stop()
	log.Println("Goodbye!")
}

// printCategoryTree walks two levels of the category code tree and prints
// code/name pairs, indented by depth. Feed for the classification table.
func printCategoryTree(ctx context.Context, client *tourapi.Client, contentTypeID int) {
	level1 := client.FetchCategoryCodes(ctx, tourapi.CategoryQuery{ContentTypeID: contentTypeID})
	if level1 == nil {
		log.Fatal("Failed to fetch category codes")
	}

	for _, c1 := range level1 {
		fmt.Printf("%s  %s\n", c1.Code, c1.Name)
		level2 := client.FetchCategoryCodes(ctx, tourapi.CategoryQuery{
			ContentTypeID: contentTypeID,
			Cat1:          c1.Code,
		})
		for _, c2 := range level2 {
			fmt.Printf("  %s  %s\n", c2.Code, c2.Name)
		}
	}
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
