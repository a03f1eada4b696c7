package service

import (
	"fmt"
	"strings"

	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/repository"
)

// CategoryService category management
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates the category service
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CategoryWithCount public listing entry
type CategoryWithCount struct {
	models.Category
	ProductCount int64 `json:"product_count"`
}

// CategoryInput create/update payload
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ParentID    *uint  `json:"parent_id"`
	SortOrder   *int   `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// ListPublic active categories with live product counts
func (s *CategoryService) ListPublic() ([]CategoryWithCount, error) {
	categories, err := s.categoryRepo.List(true)
	if err != nil {
		return nil, err
	}
	counts, err := s.categoryRepo.ProductCounts()
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byID[c.CategoryID] = c.Count
	}
	result := make([]CategoryWithCount, 0, len(categories))
	for _, category := range categories {
		result = append(result, CategoryWithCount{
			Category:     category,
			ProductCount: byID[category.ID],
		})
	}
	return result, nil
}

// ListAll every category, for admin management
func (s *CategoryService) ListAll() ([]models.Category, error) {
	return s.categoryRepo.List(false)
}

// GetBySlug public detail view
func (s *CategoryService) GetBySlug(slug string) (*CategoryWithCount, error) {
	category, err := s.categoryRepo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if category == nil || !category.IsActive {
		return nil, ErrCategoryNotFound
	}
	count, err := s.categoryRepo.CountProducts(category.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryWithCount{Category: *category, ProductCount: count}, nil
}

// Create adds a category
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	taken, err := s.categoryRepo.CountBySlug(slug, nil)
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrSlugTaken
	}

	level := 0
	if input.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(*input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrCategoryNotFound
		}
		level = parent.Level + 1
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		Image:       input.Image,
		ParentID:    input.ParentID,
		Level:       level,
		IsActive:    input.IsActive == nil || *input.IsActive,
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update edits a category
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	if slug := strings.TrimSpace(input.Slug); slug != "" && slug != category.Slug {
		taken, err := s.categoryRepo.CountBySlug(slug, &id)
		if err != nil {
			return nil, err
		}
		if taken > 0 {
			return nil, ErrSlugTaken
		}
		category.Slug = slug
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	if input.Image != "" {
		category.Image = input.Image
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category that no longer holds products
func (s *CategoryService) Delete(id uint) error {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryHasProducts
	}
	return s.categoryRepo.Delete(id)
}
