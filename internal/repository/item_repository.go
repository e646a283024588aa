package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/model"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(item *model.Item) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("create item failed: %w", err)
	}
	return nil
}

// GetByID loads an item with its owner, or nil when it does not exist.
func (r *ItemRepository) GetByID(id uint) (*model.Item, error) {
	var item model.Item
	if err := r.db.Preload("User").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query item by id failed: %w", err)
	}
	return &item, nil
}

// List returns items newest first with owners preloaded. An empty kind
// lists both news and recipes. Visibility filtering is the caller's job.
func (r *ItemRepository) List(kind string) ([]model.Item, error) {
	query := r.db.Preload("User").Order("created_date DESC, id DESC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var items []model.Item
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list items failed: %w", err)
	}
	return items, nil
}

// UpdateOwned applies fields to the item only when userID owns it. The
// boolean reports whether a row matched; a miss does not say whether the
// item was absent or owned by someone else.
func (r *ItemRepository) UpdateOwned(id, userID uint, fields map[string]interface{}) (bool, error) {
	result := r.db.Model(&model.Item{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return false, fmt.Errorf("update item failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteOwned removes the item only when userID owns it, with the same
// single-round-trip semantics as UpdateOwned.
func (r *ItemRepository) DeleteOwned(id, userID uint) (bool, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Item{})
	if result.Error != nil {
		return false, fmt.Errorf("delete item failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
