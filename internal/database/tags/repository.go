// Package tags provides database operations for recipe tags.
//
// # Usage
//
//	repo := tags.NewRepository(db)
//	tag, err := repo.CreateTag(ctx, "Brunch", "#FFAA00", "")
package tags

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/utils"
)

var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag with this name, color or slug already exists")
	ErrInvalidTag  = errors.New("invalid tag")
)

// Repository handles all tag database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tags repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTag creates a new tag. The color is normalized to #RRGGBB and an
// empty slug is derived from the name.
func (r *Repository) CreateTag(ctx context.Context, name, color, slug string) (*entities.Tag, error) {
	tag, err := buildTag(name, color, slug)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagExists
		}
		return nil, err
	}
	return tag, nil
}

// GetOrCreateTag returns the tag with the given name (case-insensitive),
// creating it when missing. The second return value reports creation.
func (r *Repository) GetOrCreateTag(ctx context.Context, name, color, slug string) (*entities.Tag, bool, error) {
	var tag entities.Tag
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&tag).Error
	if err == nil {
		return &tag, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created, err := r.CreateTag(ctx, name, color, slug)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// GetTags returns all tags ordered by name.
func (r *Repository) GetTags(ctx context.Context) ([]entities.Tag, error) {
	var tags []entities.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

// GetTagByID retrieves a tag by ID.
func (r *Repository) GetTagByID(ctx context.Context, id uint) (*entities.Tag, error) {
	var tag entities.Tag
	err := r.db.WithContext(ctx).First(&tag, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func buildTag(name, color, slug string) (*entities.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTag)
	}
	normalized, err := utils.NormalizeHexColor(color)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTag, err)
	}
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: cannot derive slug from %q", ErrInvalidTag, name)
	}
	return &entities.Tag{Name: name, Color: normalized, Slug: slug}, nil
}
