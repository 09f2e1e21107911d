package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/logging"
	"github.com/mrlokans/foodgram/internal/utils"
)

var defaultTags = []entities.Tag{
	{Name: "Breakfast", Color: "#E26C2D"},
	{Name: "Lunch", Color: "#49B64E"},
	{Name: "Dinner", Color: "#8775D2"},
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the sqlite database at dbPath, enables foreign keys and
// migrates the schema. Default tags are seeded into an empty tags table.
func NewDatabase(dbPath string, logSQL bool) (*Database, error) {
	logLevel := logger.Silent
	if logSQL {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Subscription{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.CartEntry{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedTags(); err != nil {
		return nil, fmt.Errorf("failed to seed tags: %w", err)
	}

	logging.Info().Str("path", dbPath).Msg("database initialized")

	return database, nil
}

// dsn appends the sqlite connection options to a path or file: URI.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) seedTags() error {
	var count int64
	if err := d.DB.Model(&entities.Tag{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, tag := range defaultTags {
		tag.Slug = utils.Slugify(tag.Name)
		if err := d.DB.Create(&tag).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create tag %s: %w", tag.Name, err)
		}
		logging.Debug().Str("tag", tag.Name).Msg("created default tag")
	}
	return nil
}
