package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hxzhou/filebin/models"
)

// ErrNotFound is returned when a queried record does not exist.
var ErrNotFound = errors.New("record not found")

// PageSize is the fixed number of records per listing page.
const PageSize = 20

// DocumentStore persists user and file metadata. Implementations must be
// safe for concurrent use; callers hold no copies across requests.
type DocumentStore interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)

	CreateFile(ctx context.Context, f *models.File) error
	FileByID(ctx context.Context, id uint) (*models.File, error)
	UserFileByID(ctx context.Context, id, userID uint) (*models.File, error)
	ListUserFiles(ctx context.Context, userID uint, parentID *uint, page int) ([]models.File, error)
	SetFilePublic(ctx context.Context, id, userID uint, public bool) (int64, error)

	IsAlive(ctx context.Context) bool
}

// GormDocumentStore is the MySQL implementation backed by a pooled gorm handle.
type GormDocumentStore struct {
	db *gorm.DB
}

func NewGormDocumentStore(db *gorm.DB) *GormDocumentStore {
	return &GormDocumentStore{db: db}
}

func (s *GormDocumentStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &user, nil
}

func (s *GormDocumentStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &user, nil
}

func (s *GormDocumentStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

func (s *GormDocumentStore) CountFiles(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.File{}).Count(&n).Error
	return n, err
}

func (s *GormDocumentStore) CreateFile(ctx context.Context, f *models.File) error {
	return s.db.WithContext(ctx).Create(f).Error
}

func (s *GormDocumentStore) FileByID(ctx context.Context, id uint) (*models.File, error) {
	var f models.File
	if err := s.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &f, nil
}

func (s *GormDocumentStore) UserFileByID(ctx context.Context, id, userID uint) (*models.File, error) {
	var f models.File
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&f).Error
	if err != nil {
		return nil, mapGormErr(err)
	}
	return &f, nil
}

// ListUserFiles returns page `page` of the user's files in creation order,
// optionally restricted to one parent folder (parentID 0 filters root files).
func (s *GormDocumentStore) ListUserFiles(ctx context.Context, userID uint, parentID *uint, page int) ([]models.File, error) {
	if page < 0 {
		page = 0
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if parentID != nil {
		q = q.Where("parent_id = ?", *parentID)
	}
	var files []models.File
	err := q.Order("id ASC").Offset(page * PageSize).Limit(PageSize).Find(&files).Error
	return files, err
}

// SetFilePublic flips the visibility flag and reports how many rows matched.
// The owner filter lives in the UPDATE itself so a non-owner update is a no-op.
func (s *GormDocumentStore) SetFilePublic(ctx context.Context, id, userID uint, public bool) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_public", public)
	return res.RowsAffected, res.Error
}

// IsAlive reports whether the underlying connection pool answers a ping.
func (s *GormDocumentStore) IsAlive(ctx context.Context) bool {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func mapGormErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
