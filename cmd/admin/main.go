package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/picorama/server/internal/config"
	"github.com/picorama/server/internal/observability"
	"github.com/picorama/server/internal/repository"
	"github.com/picorama/server/internal/services"
)

func main() {
	create := flag.Bool("create", false, "create the database schema and exit")
	runImport := flag.Bool("import", false, "rebuild the database from originals in the media path")
	deleteDay := flag.String("delete", "", "delete all entries for the given YYYY-MM-DD day")
	flag.Parse()

	if !*create && !*runImport && *deleteDay == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var photoRepo repository.PhotoRepo
	if cfg.UsePostgres() {
		db, err := repository.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
		}
		defer db.Close()
		photoRepo = repository.NewPhotoRepositoryPostgres(db)
	} else {
		db, err := repository.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite database: %v", err)
		}
		defer db.Close()
		photoRepo = repository.NewPhotoRepository(db)
	}

	// Opening the database creates the schema, so --create is done already
	if *create {
		fmt.Println("Database schema created")
	}

	ctx := context.Background()
	logger := observability.GetLogger()

	if *runImport {
		storage, err := services.NewStorageService(cfg.Media.MediaPath, cfg.Media.ThumbsPath, cfg.Media.MaxFileSizeMB)
		if err != nil {
			log.Fatalf("Failed to initialize storage service: %v", err)
		}

		names := services.NewNameService()
		normalizer := services.NewNormalizerService(storage, services.NewEXIFService())
		palette := services.NewPaletteService()
		importer := services.NewImportService(names, normalizer, palette, storage, photoRepo, logger)

		result, err := importer.Run(ctx)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %d entries, skipped %d\n", result.Imported, result.Skipped)
	}

	if *deleteDay != "" {
		storage, err := services.NewStorageService(cfg.Media.MediaPath, cfg.Media.ThumbsPath, cfg.Media.MaxFileSizeMB)
		if err != nil {
			log.Fatalf("Failed to initialize storage service: %v", err)
		}

		deleter := services.NewDeleteService(storage, photoRepo, logger)
		count, err := deleter.DeleteDay(ctx, *deleteDay)
		if err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		fmt.Printf("Deleted %d entries for %s\n", count, *deleteDay)
	}
}
