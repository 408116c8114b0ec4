package services

import (
	"os"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/study_api/model"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SqliteService struct {
	context.DefaultService
	db *gorm.DB

	database string
	enabled  bool
}

const SQLITE_SVC = "sqlite_svc"

// Id returns Service ID
func (ds SqliteService) Id() string {
	return SQLITE_SVC
}

// Db Access to raw SqliteService db
func (ds SqliteService) Db() *gorm.DB {
	return ds.db
}

// Configure the service
func (ds *SqliteService) Configure(ctx *context.Context) error {
	ds.enabled = os.Getenv("STORE_DRIVER") == StoreDriverSqlite

	ds.database = os.Getenv("DB_DATABASE")
	if ds.database == "" {
		ds.database = "study.db"
	}

	return ds.DefaultService.Configure(ctx)
}

// Start the service and open connection to the database
// Migrate any tables that have changed since last runtime
func (ds *SqliteService) Start() (err error) {
	if !ds.enabled {
		return nil
	}

	ds.db, err = gorm.Open(sqlite.Open(ds.database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return err
	}
	err = ds.db.AutoMigrate(&model.DocumentRecord{})
	if err != nil {
		log.WithError(err).Error("Failed to migrate database")
		return err
	}

	log.WithField("database", ds.database).Info("Database connected and migrated successfully")
	return nil
}

func (ds *SqliteService) Shutdown() {
	if ds.db == nil {
		return
	}
	if sqlDB, err := ds.db.DB(); err == nil {
		sqlDB.Close()
	}
}
