package config

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/helpers"
	"github.com/onlyplans/server/internal/mailer"
	"github.com/onlyplans/server/internal/models"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

func LoadConfig() (*Config, error) {
	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
	}, nil
}

func LoadMailConfig() mailer.Config {
	port := 587
	if p, err := helpers.StringToInt(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	return mailer.Config{
		Host:       os.Getenv("SMTP_HOST"),
		Port:       port,
		Username:   os.Getenv("EMAIL_USER"),
		Password:   os.Getenv("EMAIL_PASS"),
		From:       os.Getenv("SMTP_FROM"),
		AdminEmail: os.Getenv("ADMIN_EMAIL"),
		ClientURL:  os.Getenv("CLIENT_URL"),
	}
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := enableUUIDExtension(db); err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&models.User{}, &models.Event{}, &models.Registration{}, &models.Review{}, &models.Form{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
