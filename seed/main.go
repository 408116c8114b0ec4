package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/seed/seeders"
	"github.com/lac-hong-legacy/study_api/services"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, courses, demo")
		catalog  = flag.String("catalog", "seed/courses.yaml", "Course catalog YAML file")
		demo     = flag.Bool("demo", false, "Also seed a demo user with flashcards (type=all)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	store, err := openStore()
	if err != nil {
		log.WithError(err).Fatal("Failed to open store")
	}

	mainSeeder := seeders.NewMainSeeder(store)

	switch *seedType {
	case "all":
		err = mainSeeder.SeedAll(*catalog, *demo)
	case "courses":
		err = mainSeeder.SeedCoursesOnly(*catalog)
	case "demo":
		err = mainSeeder.SeedDemoOnly()
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'courses' or 'demo'", *seedType)
	}
	if err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}
}

// openStore follows the same STORE_DRIVER settings as the API.
func openStore() (*services.StoreService, error) {
	driver := os.Getenv("STORE_DRIVER")

	switch driver {
	case services.StoreDriverSqlite, services.StoreDriverPostgres:
		var dialector gorm.Dialector
		if driver == services.StoreDriverSqlite {
			path := os.Getenv("DB_DATABASE")
			if path == "" {
				path = "study.db"
			}
			dialector = sqlite.Open(path)
		} else {
			dialector = postgres.Open(os.Getenv("DATABASE_URL"))
		}

		db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&model.DocumentRecord{}); err != nil {
			return nil, err
		}
		return services.NewGormStore(db, driver)
	default:
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "./data"
		}
		log.WithField("data_dir", dataDir).Info("Seeding file store")
		return services.NewFileStore(dataDir)
	}
}

func showHelp() {
	log.Info(`
Seeding tool for the study API

Usage: go run ./seed [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, courses, demo
  -catalog string
        Course catalog YAML file (default "seed/courses.yaml")
  -demo
        Also seed a demo user with flashcards
  -help
        Show this help message

Environment Variables:
  STORE_DRIVER - file (default), sqlite or postgres
  DATA_DIR     - Directory of the file store (default: ./data)
  DB_DATABASE  - Sqlite database path (default: study.db)
  DATABASE_URL - Postgres connection string
`)
}
