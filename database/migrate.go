package database

import (
	"fmt"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/models/chat"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect открывает пул и проверяет соединение
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	return db, nil
}

// Models - порядок важен: у таблиц есть внешние ключи
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.Profile{},
		&models.ProfileImage{},
		&models.ProfileView{},
		&models.Like{},

		&models.Category{},
		&models.Post{},
		&models.Comment{},
		&models.PostRating{},

		&chat.Thread{},
		&chat.ThreadParticipant{},
		&chat.Message{},

		&models.Document{},
		&models.Transaction{},
		&models.PremiumSubscription{},
		&models.DownloadCredit{},

		&models.ContactMessage{},
	}
}

// AutoMigrate - uuid_generate_v4() нужен для BaseModel
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("AutoMigrate completed", "tables", len(Models()))
	return nil
}
