package postgres

import (
	"fmt"
	"log"

	"github.com/squeakroad/case-service/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.CaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.CaseDB.Dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	return db, nil
}

func MustInitDB(cfg *config.CaseConfig) *gorm.DB {
	db, err := InitDB(cfg)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	return db
}
