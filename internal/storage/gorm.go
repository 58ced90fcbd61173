package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/shortyhq/shorty/internal/errors"
	"github.com/shortyhq/shorty/internal/models"
)

// GormStore is the indexed database backend. The unique index on the code
// column provides duplicate rejection and a single SQL UPDATE provides the
// atomic click increment.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens (creating if needed) the SQLite database and runs the
// automatic migrations for the link and click tables.
func NewGormStore(name string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, apperrors.StorageError{Backend: "sqlite", Op: "open", Err: err}
	}
	if err := db.AutoMigrate(&models.Link{}, &models.Click{}); err != nil {
		return nil, apperrors.StorageError{Backend: "sqlite", Op: "migrate", Err: err}
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	var link models.Link
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrShortCodeNotFound
		}
		return nil, apperrors.StorageError{Backend: "sqlite", Op: "find", Err: err}
	}
	return &link, nil
}

func (s *GormStore) Insert(ctx context.Context, link *models.Link) error {
	err := s.db.WithContext(ctx).Create(link).Error
	if err != nil {
		if isDuplicate(err) {
			return apperrors.ErrDuplicateCode
		}
		return apperrors.StorageError{Backend: "sqlite", Op: "insert", Err: err}
	}
	return nil
}

func (s *GormStore) IncrementClicks(ctx context.Context, code string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("code = ?", code).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if res.Error != nil {
		return apperrors.StorageError{Backend: "sqlite", Op: "increment", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrShortCodeNotFound
	}
	return nil
}

func (s *GormStore) ListAll(ctx context.Context) ([]models.Link, error) {
	var links []models.Link
	if err := s.db.WithContext(ctx).Find(&links).Error; err != nil {
		return nil, apperrors.StorageError{Backend: "sqlite", Op: "list", Err: err}
	}
	return links, nil
}

func (s *GormStore) RecordClick(ctx context.Context, click *models.Click) error {
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		return apperrors.StorageError{Backend: "sqlite", Op: "record click", Err: err}
	}
	return nil
}

// CountClicksByCode returns the number of access events recorded for a code.
// Used by the stats surfaces; the click counter on the link itself stays the
// source of truth for redirects.
func (s *GormStore) CountClicksByCode(ctx context.Context, code string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Click{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return 0, apperrors.StorageError{Backend: "sqlite", Op: "count clicks", Err: err}
	}
	return count, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isDuplicate matches a unique-constraint violation. TranslateError covers
// the common case; the string match catches drivers that don't translate.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ Store = (*GormStore)(nil)
