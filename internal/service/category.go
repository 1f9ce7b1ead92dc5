package service

import (
	"fmt"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/repository"
)

// CategoryService manages named file bundles and their deep links.
type CategoryService struct {
	categories  repository.CategoryRepository
	botUsername string
}

func NewCategoryService(categories repository.CategoryRepository, botUsername string) *CategoryService {
	return &CategoryService{
		categories:  categories,
		botUsername: botUsername,
	}
}

func (s *CategoryService) Create(name string, ownerID int64) (*model.Category, error) {
	cat, err := s.categories.Create(name, ownerID)
	if err == repository.ErrDuplicateCategory {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return cat, nil
}

func (s *CategoryService) ByID(id string) (*model.Category, error) {
	return s.categories.ByID(id)
}

func (s *CategoryService) All() ([]*model.Category, error) {
	return s.categories.All()
}

// Delete removes the category and, via the store's cascade, its files.
func (s *CategoryService) Delete(id string) error {
	return s.categories.Delete(id)
}

// AddFiles persists accumulated upload drafts in order and returns how many
// were inserted; drafts whose file id already exists are skipped.
func (s *CategoryService) AddFiles(categoryID string, files []model.File) (int, error) {
	count, err := s.categories.AddFiles(categoryID, files)
	if err != nil {
		return count, fmt.Errorf("failed to store files: %w", err)
	}
	return count, nil
}

// Link returns the public deep link for a category.
func (s *CategoryService) Link(categoryID string) string {
	return fmt.Sprintf("https://t.me/%s?start=cat_%s", s.botUsername, categoryID)
}
