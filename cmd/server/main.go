package main

import (
	"log"
	"net/http"
	"os"

	"gamelens/internal/api"
	"gamelens/internal/config"
	"gamelens/internal/database"
	"gamelens/internal/storage"
	"gamelens/internal/viewer"
)

func main() {
	cfg, err := config.Load(os.Getenv("GAMELENS_CONFIG"))
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	store, err := storage.NewLocalStore(cfg.Server.ScreenshotDir)
	if err != nil {
		log.Fatal("Failed to initialize screenshot store:", err)
	}

	dbConfig := database.Config{
		Type:       cfg.Database.Type,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		Name:       cfg.Database.Name,
		SQLitePath: cfg.Database.Path,
	}

	db, err := database.NewDB(dbConfig)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if dbConfig.Type == "postgres" {
		log.Printf("Running database migrations from %s", cfg.Database.MigrationsPath)
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
	}

	archive := database.NewReviewRepository(db)

	app := &api.App{
		Store:         store,
		DB:            db,
		Archive:       archive,
		Viewer:        viewer.NewService(archive),
		MaxUploadSize: cfg.Server.MaxUploadSize,
	}

	router := api.NewRouter(app)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	log.Printf("Screenshot directory: %s", cfg.Server.ScreenshotDir)
	log.Printf("Database type: %s", dbConfig.Type)
	if dbConfig.Type == "postgres" {
		log.Printf("Database connection: %s@%s:%d/%s", dbConfig.User, dbConfig.Host, dbConfig.Port, dbConfig.Name)
	} else {
		log.Printf("Database path: %s", dbConfig.SQLitePath)
	}
	log.Printf("Max upload size: %d bytes", cfg.Server.MaxUploadSize)

	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		log.Fatal(err)
	}
}
