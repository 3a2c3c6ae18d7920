// internal/services/category_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ermimobile/emobile-backend/internal/models"
)

type CategoryService struct {
	db *gorm.DB
}

type CreateCategoryRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=100"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=100"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

// CategoryNode is a category with its nested children.
type CategoryNode struct {
	models.Category
	Children []*CategoryNode `json:"children"`
}

// FlatCategory is one depth-annotated row of a flattened tree.
type FlatCategory struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Depth       int        `json:"depth"`
	HasChildren bool       `json:"has_children"`
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) CreateCategory(req *CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)

	taken, err := s.nameTaken(s.db, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	if req.ParentID != nil {
		if err := s.requireParent(s.db, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Name:        name,
		Description: req.Description,
		ParentID:    req.ParentID,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"category_id": category.ID,
		"name":        category.Name,
	}).Info("Category created")

	return category, nil
}

func (s *CategoryService) GetCategory(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) UpdateCategory(id uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if req.ParentID != nil && *req.ParentID == id {
		return nil, ErrSelfParent
	}

	var category models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if req.ParentID != nil {
			if err := s.requireParent(tx, *req.ParentID); err != nil {
				return err
			}
		}

		name := strings.TrimSpace(req.Name)
		taken, err := s.nameTaken(tx, name, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		if req.ParentID != nil {
			cyclic, err := s.isAncestor(tx, id, *req.ParentID)
			if err != nil {
				return err
			}
			if cyclic {
				return ErrCategoryCycle
			}
		}

		updates := map[string]interface{}{
			"name":        name,
			"description": req.Description,
			"parent_id":   req.ParentID,
		}
		if err := tx.Model(&category).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}

		return tx.Where("id = ?", id).First(&category).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("category_id", id).Info("Category updated")
	return &category, nil
}

// DeleteCategory detaches children and uncategorizes products before removing the row.
func (s *CategoryService) DeleteCategory(id uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach child categories: %w", err)
		}

		if err := tx.Unscoped().Model(&models.Product{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to uncategorize products: %w", err)
		}

		if err := tx.Unscoped().Where("id = ?", id).Delete(&models.Category{}).Error; err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithField("category_id", id).Info("Category deleted")
	return nil
}

// SetImage records the uploaded image for a category.
func (s *CategoryService) SetImage(id uuid.UUID, imageURL string) (*models.Category, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(category).Update("image", imageURL).Error; err != nil {
		return nil, fmt.Errorf("failed to update category image: %w", err)
	}
	category.Image = imageURL
	return category, nil
}

// ListFlat orders by (parent_id, name). Parents are not guaranteed to precede children.
func (s *CategoryService) ListFlat() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("parent_id").Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// BuildTree loads all categories once and nests those under rootParentID.
func (s *CategoryService) BuildTree(rootParentID *uuid.UUID) ([]*CategoryNode, error) {
	categories, err := s.ListFlat()
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(categories, rootParentID)
}

func (s *CategoryService) nameTaken(db *gorm.DB, name string, exceptID uuid.UUID) (bool, error) {
	query := db.Model(&models.Category{}).Where("name = ?", name)
	if exceptID != uuid.Nil {
		query = query.Where("id <> ?", exceptID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

func (s *CategoryService) requireParent(db *gorm.DB, parentID uuid.UUID) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", parentID).Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return ErrInvalidParent
	}
	return nil
}

// isAncestor walks up from start and reports whether target appears in the chain.
// The walk is bounded by the number of categories so corrupt data cannot loop forever.
func (s *CategoryService) isAncestor(db *gorm.DB, target, start uuid.UUID) (bool, error) {
	var rows []models.Category
	if err := db.Select("id", "parent_id").Find(&rows).Error; err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}

	parents := make(map[uuid.UUID]*uuid.UUID, len(rows))
	for _, row := range rows {
		parents[row.ID] = row.ParentID
	}

	current := &start
	for steps := 0; current != nil && steps <= len(rows); steps++ {
		if *current == target {
			return true, nil
		}
		current = parents[*current]
	}

	// Chain longer than the table means the stored data already loops
	return current != nil, nil
}

// BuildCategoryTree nests categories under rootParentID (nil for top level).
// Reaching a category twice, or finding categories whose parents loop with no
// root, fails with ErrCyclicCategoryGraph.
func BuildCategoryTree(categories []models.Category, rootParentID *uuid.UUID) ([]*CategoryNode, error) {
	children := make(map[uuid.UUID][]models.Category)
	var roots []models.Category
	for _, category := range categories {
		if category.ParentID == nil {
			roots = append(roots, category)
			continue
		}
		children[*category.ParentID] = append(children[*category.ParentID], category)
	}

	visited := make(map[uuid.UUID]bool, len(categories))

	var build func(level []models.Category) ([]*CategoryNode, error)
	build = func(level []models.Category) ([]*CategoryNode, error) {
		nodes := make([]*CategoryNode, 0, len(level))
		for _, category := range level {
			if visited[category.ID] {
				return nil, fmt.Errorf("%w: category %s reached twice", ErrCyclicCategoryGraph, category.ID)
			}
			visited[category.ID] = true

			sub, err := build(children[category.ID])
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &CategoryNode{Category: category, Children: sub})
		}
		return nodes, nil
	}

	if rootParentID != nil {
		return build(children[*rootParentID])
	}

	nodes, err := build(roots)
	if err != nil {
		return nil, err
	}

	// Rows on a closed parent loop never hang off a root
	parents := make(map[uuid.UUID]*uuid.UUID, len(categories))
	for _, category := range categories {
		parents[category.ID] = category.ParentID
	}
	for _, category := range categories {
		if !visited[category.ID] && onParentLoop(category.ID, parents) {
			return nil, fmt.Errorf("%w: category %s is on a parent loop", ErrCyclicCategoryGraph, category.ID)
		}
	}
	return nodes, nil
}

// onParentLoop walks up from id and reports whether the chain never ends.
// Chains leaving the loaded set end there.
func onParentLoop(id uuid.UUID, parents map[uuid.UUID]*uuid.UUID) bool {
	current := parents[id]
	for steps := 0; current != nil; steps++ {
		if steps > len(parents) {
			return true
		}
		next, ok := parents[*current]
		if !ok {
			return false
		}
		current = next
	}
	return false
}

// FlattenTree lists nodes depth-first with their depth.
func FlattenTree(nodes []*CategoryNode) []FlatCategory {
	var flat []FlatCategory

	var walk func(level []*CategoryNode, depth int)
	walk = func(level []*CategoryNode, depth int) {
		for _, node := range level {
			flat = append(flat, FlatCategory{
				ID:          node.ID,
				Name:        node.Name,
				ParentID:    node.ParentID,
				Depth:       depth,
				HasChildren: len(node.Children) > 0,
			})
			walk(node.Children, depth+1)
		}
	}
	walk(nodes, 0)

	return flat
}
