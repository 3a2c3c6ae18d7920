// internal/services/category_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ermimobile/emobile-backend/internal/models"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	service *CategoryService
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	suite.service = NewCategoryService(newTestDB(suite.T()))
}

func (suite *CategoryServiceTestSuite) create(name string, parent *uuid.UUID) *models.Category {
	category, err := suite.service.CreateCategory(&CreateCategoryRequest{Name: name, ParentID: parent})
	suite.Require().NoError(err)
	return category
}

func (suite *CategoryServiceTestSuite) TestCreateRejectsDuplicateName() {
	suite.create("Chargers", nil)

	_, err := suite.service.CreateCategory(&CreateCategoryRequest{Name: "  Chargers "})
	suite.ErrorIs(err, ErrDuplicateName)
}

func (suite *CategoryServiceTestSuite) TestCreateRejectsUnknownParent() {
	missing := uuid.New()
	_, err := suite.service.CreateCategory(&CreateCategoryRequest{Name: "Orphan", ParentID: &missing})
	suite.ErrorIs(err, ErrInvalidParent)
}

func (suite *CategoryServiceTestSuite) TestUpdateRejectsSelfParent() {
	category := suite.create("Cases", nil)

	_, err := suite.service.UpdateCategory(category.ID, &UpdateCategoryRequest{Name: "Cases", ParentID: &category.ID})
	suite.ErrorIs(err, ErrSelfParent)
}

func (suite *CategoryServiceTestSuite) TestUpdateRejectsCycleAndLeavesStoreUnchanged() {
	a := suite.create("A", nil)
	b := suite.create("B", &a.ID)
	c := suite.create("C", &b.ID)

	_, err := suite.service.UpdateCategory(a.ID, &UpdateCategoryRequest{Name: "A", ParentID: &c.ID})
	suite.ErrorIs(err, ErrCategoryCycle)

	stored, err := suite.service.GetCategory(a.ID)
	suite.Require().NoError(err)
	suite.Nil(stored.ParentID)
}

func (suite *CategoryServiceTestSuite) TestUpdateRenamesAndMoves() {
	a := suite.create("A", nil)
	b := suite.create("B", nil)

	updated, err := suite.service.UpdateCategory(b.ID, &UpdateCategoryRequest{Name: "B2", Description: "moved", ParentID: &a.ID})
	suite.Require().NoError(err)
	suite.Equal("B2", updated.Name)
	suite.Require().NotNil(updated.ParentID)
	suite.Equal(a.ID, *updated.ParentID)

	_, err = suite.service.UpdateCategory(b.ID, &UpdateCategoryRequest{Name: "A"})
	suite.ErrorIs(err, ErrDuplicateName)

	_, err = suite.service.UpdateCategory(uuid.New(), &UpdateCategoryRequest{Name: "X"})
	suite.ErrorIs(err, ErrCategoryNotFound)
}

func (suite *CategoryServiceTestSuite) TestDeleteDetachesChildrenAndProducts() {
	parent := suite.create("Audio", nil)
	child := suite.create("Earbuds", &parent.ID)
	product := createProduct(suite.T(), suite.service.db, "Buds", 1500, &parent.ID)

	suite.Require().NoError(suite.service.DeleteCategory(parent.ID))

	stored, err := suite.service.GetCategory(child.ID)
	suite.Require().NoError(err)
	suite.Nil(stored.ParentID)

	var reloaded models.Product
	suite.Require().NoError(suite.service.db.First(&reloaded, "id = ?", product.ID).Error)
	suite.Nil(reloaded.CategoryID)

	suite.ErrorIs(suite.service.DeleteCategory(parent.ID), ErrCategoryNotFound)
}

func (suite *CategoryServiceTestSuite) TestBuildTreeNestsChildren() {
	a := suite.create("A", nil)
	b := suite.create("B", &a.ID)
	suite.create("C", &b.ID)
	suite.create("D", nil)

	tree, err := suite.service.BuildTree(nil)
	suite.Require().NoError(err)
	suite.Require().Len(tree, 2)
	suite.Equal("A", tree[0].Name)
	suite.Require().Len(tree[0].Children, 1)
	suite.Equal("B", tree[0].Children[0].Name)
	suite.Require().Len(tree[0].Children[0].Children, 1)
	suite.Equal("C", tree[0].Children[0].Children[0].Name)
	suite.Empty(tree[1].Children)

	subtree, err := suite.service.BuildTree(&a.ID)
	suite.Require().NoError(err)
	suite.Require().Len(subtree, 1)
	suite.Equal(b.ID, subtree[0].ID)
}

func (suite *CategoryServiceTestSuite) TestSetImage() {
	category := suite.create("Cables", nil)

	updated, err := suite.service.SetImage(category.ID, "/uploads/categories/cables.png")
	suite.Require().NoError(err)
	suite.Equal("/uploads/categories/cables.png", updated.Image)

	_, err = suite.service.SetImage(uuid.New(), "x")
	suite.ErrorIs(err, ErrCategoryNotFound)
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}

func TestBuildCategoryTreeDetectsCycle(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	root := uuid.New()

	// a and b are each other's parent
	categories := []models.Category{
		{BaseModel: models.BaseModel{ID: root}, Name: "root"},
		{BaseModel: models.BaseModel{ID: a}, Name: "a", ParentID: &b},
		{BaseModel: models.BaseModel{ID: b}, Name: "b", ParentID: &a},
	}

	_, err := BuildCategoryTree(categories, &a)
	assert.ErrorIs(t, err, ErrCyclicCategoryGraph)
}

func TestBuildCategoryTreeFromTopLevelDetectsDetachedCycle(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	root := uuid.New()
	child := uuid.New()

	// The loop has no path to any top-level category
	categories := []models.Category{
		{BaseModel: models.BaseModel{ID: root}, Name: "root"},
		{BaseModel: models.BaseModel{ID: child}, Name: "child", ParentID: &root},
		{BaseModel: models.BaseModel{ID: a}, Name: "a", ParentID: &b},
		{BaseModel: models.BaseModel{ID: b}, Name: "b", ParentID: &a},
	}

	nodes, err := BuildCategoryTree(categories, nil)
	assert.ErrorIs(t, err, ErrCyclicCategoryGraph)
	assert.Nil(t, nodes)

	// Without the loop the same rows build cleanly
	tree, err := BuildCategoryTree(categories[:2], nil)
	require.NoError(t, err)
	assert.Len(t, FlattenTree(tree), 2)
}

func TestBuildCategoryTreeIgnoresUnknownParents(t *testing.T) {
	missing := uuid.New()
	orphan := uuid.New()
	below := uuid.New()

	categories := []models.Category{
		{BaseModel: models.BaseModel{ID: orphan}, Name: "orphan", ParentID: &missing},
		{BaseModel: models.BaseModel{ID: below}, Name: "below", ParentID: &orphan},
	}

	tree, err := BuildCategoryTree(categories, nil)
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestFlattenTreeRoundTrip(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()
	categories := []models.Category{
		{BaseModel: models.BaseModel{ID: c}, Name: "C", ParentID: &b},
		{BaseModel: models.BaseModel{ID: a}, Name: "A"},
		{BaseModel: models.BaseModel{ID: b}, Name: "B", ParentID: &a},
	}

	tree, err := BuildCategoryTree(categories, nil)
	require.NoError(t, err)

	flat := FlattenTree(tree)
	require.Len(t, flat, 3)
	assert.Equal(t, []uuid.UUID{a, b, c}, []uuid.UUID{flat[0].ID, flat[1].ID, flat[2].ID})
	assert.Equal(t, []int{0, 1, 2}, []int{flat[0].Depth, flat[1].Depth, flat[2].Depth})
	assert.True(t, flat[1].HasChildren)
	assert.False(t, flat[2].HasChildren)

	// Rebuilding from the flat rows yields the same nesting
	rebuilt := make([]models.Category, 0, len(flat))
	for _, row := range flat {
		rebuilt = append(rebuilt, models.Category{BaseModel: models.BaseModel{ID: row.ID}, Name: row.Name, ParentID: row.ParentID})
	}
	again, err := BuildCategoryTree(rebuilt, nil)
	require.NoError(t, err)
	assert.Equal(t, FlattenTree(tree), FlattenTree(again))
}

func TestCategoryFilterToggle(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()
	d := uuid.New()
	categories := []models.Category{
		{BaseModel: models.BaseModel{ID: a}, Name: "A"},
		{BaseModel: models.BaseModel{ID: b}, Name: "B", ParentID: &a},
		{BaseModel: models.BaseModel{ID: c}, Name: "C", ParentID: &b},
		{BaseModel: models.BaseModel{ID: d}, Name: "D"},
	}
	tree, err := BuildCategoryTree(categories, nil)
	require.NoError(t, err)

	filter := NewCategoryFilter(tree)
	visibleIDs := func() []uuid.UUID {
		var ids []uuid.UUID
		for _, entry := range filter.Visible() {
			ids = append(ids, entry.ID)
		}
		return ids
	}

	assert.Equal(t, []uuid.UUID{a, d}, visibleIDs())

	// Hidden categories cannot be toggled
	filter.Toggle(b)
	assert.False(t, filter.IsExpanded(b))

	filter.Toggle(a)
	assert.True(t, filter.IsExpanded(a))
	assert.Equal(t, []uuid.UUID{a, b, d}, visibleIDs())

	filter.Toggle(b)
	assert.Equal(t, []uuid.UUID{a, b, c, d}, visibleIDs())

	// Leaves do nothing
	filter.Toggle(d)
	assert.False(t, filter.IsExpanded(d))

	// Collapsing a hides and collapses every descendant
	filter.Toggle(a)
	assert.False(t, filter.IsExpanded(a))
	assert.False(t, filter.IsExpanded(b))
	assert.Equal(t, []uuid.UUID{a, d}, visibleIDs())

	filter.Toggle(a)
	assert.Equal(t, []uuid.UUID{a, b, d}, visibleIDs())
}
