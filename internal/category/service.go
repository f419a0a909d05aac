package category

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"gorm.io/gorm"
)

// Service manages categories. Products carry the category name rather than a
// foreign key, so rename and delete cascade over matching products with a
// bulk rewrite. Cascades are not ledger events; no stock history is written.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Rename updates the category and rewrites the category field on every
// product that carried the old name.
func (s *Service) Rename(categoryID uuid.UUID, newName string) (*database.Category, error) {
	category, err := s.load(categoryID)
	if err != nil {
		return nil, err
	}

	oldName := category.Name
	if oldName == newName {
		return category, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(category).Update("name", newName).Error; err != nil {
			return err
		}
		return tx.Model(&database.Product{}).
			Where("category = ?", oldName).
			Update("category", newName).Error
	})
	if err != nil {
		return nil, err
	}

	category.Name = newName
	return category, nil
}

// Delete removes the category and clears the category field on referencing
// products. The products themselves survive.
func (s *Service) Delete(categoryID uuid.UUID) error {
	category, err := s.load(categoryID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(category).Error; err != nil {
			return err
		}
		return tx.Model(&database.Product{}).
			Where("category = ?", category.Name).
			Update("category", "").Error
	})
}

func (s *Service) load(categoryID uuid.UUID) (*database.Category, error) {
	var category database.Category
	if err := s.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}
