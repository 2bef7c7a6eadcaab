package storage

import (
	"context"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mytheresa/go-bulk-cart/models"
)

// DBStore keeps the cart as one row of the cart_records table.
type DBStore struct {
	db  *gorm.DB
	key string
}

func NewDBStore(db *gorm.DB, key string) *DBStore {
	return &DBStore{db: db, key: key}
}

// Migrate creates the cart_records table if needed.
func (s *DBStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.CartRecord{}); err != nil {
		return errors.Wrap(err, "migrate cart_records")
	}
	return nil
}

func (s *DBStore) Load(ctx context.Context) ([]byte, error) {
	var record models.CartRecord
	err := s.db.WithContext(ctx).Where(&models.CartRecord{Key: s.key}).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "key %q", s.key)
		}
		return nil, errors.Wrapf(err, "load cart %q", s.key)
	}
	return record.Payload, nil
}

func (s *DBStore) Save(ctx context.Context, data []byte) error {
	record := models.CartRecord{Key: s.key, Payload: data}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return errors.Wrapf(err, "save cart %q", s.key)
	}
	return nil
}
