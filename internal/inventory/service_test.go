package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/farmstock/internal/domain"
)

func TestCreateProduct(t *testing.T) {
	svc, db, pub := newTestService(t)
	dairy := seedCategory(t, db, "Dairy")
	ctx := WithActor(context.Background(), Actor{Name: "admin", IP: "10.0.0.1"})

	t.Run("success", func(t *testing.T) {
		p, ev, err := svc.CreateProduct(ctx, ProductInput{
			Name: " Milk ", Price: "2.5", Quantity: "3", Category: "1", Description: "whole",
		})
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.Equal(t, "Milk", p.Name)
		assert.Equal(t, "2.50", p.Price.StringFixed(2))
		assert.Equal(t, dairy.ID, p.CategoryID)
		assert.Equal(t, "Dairy", p.CategoryName())
		assert.Equal(t, `Product "Milk" added successfully!`, ev.Message())
		assert.Equal(t, "admin", ev.Operator)

		stored, err := svc.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.Quantity)
		assert.Equal(t, "whole", stored.Description)
	})

	t.Run("missing category is not found", func(t *testing.T) {
		before := len(pub.events)
		_, _, err := svc.CreateProduct(ctx, ProductInput{Name: "Eggs", Price: "4", Quantity: "10", Category: "999"})
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Len(t, pub.events, before)
	})

	t.Run("validation errors are reported per field", func(t *testing.T) {
		_, _, err := svc.CreateProduct(ctx, ProductInput{Price: "abc", Quantity: "-1"})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "name")
		assert.Contains(t, verr.Fields, "price")
		assert.Contains(t, verr.Fields, "quantity")
		assert.Contains(t, verr.Fields, "category")
	})

	var count int64
	db.Model(&domain.Product{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProduct(t *testing.T) {
	svc, db, pub := newTestService(t)
	dairy := seedCategory(t, db, "Dairy")
	bakery := seedCategory(t, db, "Bakery")
	milk := seedProduct(t, db, "Milk", "2.50", 3, dairy)
	ctx := context.Background()

	p, ev, err := svc.UpdateProduct(ctx, milk.ID, ProductInput{
		Name: "Oat Milk", Price: "3.20", Quantity: "12", Category: "2",
	})
	require.NoError(t, err)
	assert.Equal(t, bakery.ID, p.CategoryID)
	assert.Equal(t, ActionUpdate, ev.Action)

	stored, err := svc.GetProduct(ctx, milk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oat Milk", stored.Name)
	assert.Equal(t, 12, stored.Quantity)
	assert.Equal(t, "Bakery", stored.CategoryName())

	_, _, err = svc.UpdateProduct(ctx, 404, ProductInput{Name: "x", Price: "1", Quantity: "1", Category: "1"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	// not found takes precedence over validation
	_, _, err = svc.UpdateProduct(ctx, 404, ProductInput{})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, _, err = svc.UpdateProduct(ctx, milk.ID, ProductInput{Name: "x", Price: "1", Quantity: "1", Category: "77"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Len(t, pub.events, 1)
}

func TestDeleteProduct(t *testing.T) {
	svc, db, _ := newTestService(t)
	dairy := seedCategory(t, db, "Dairy")
	milk := seedProduct(t, db, "Milk", "2.50", 3, dairy)
	ctx := context.Background()

	deleted, ev, err := svc.DeleteProduct(ctx, milk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Milk", deleted.Name)
	assert.Equal(t, `Product "Milk" deleted successfully!`, ev.Message())

	_, err = svc.GetProduct(ctx, milk.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, _, err = svc.DeleteProduct(ctx, milk.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCategoryLifecycle(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	c, ev, err := svc.CreateCategory(ctx, CategoryInput{Name: "  Dairy "})
	require.NoError(t, err)
	assert.Equal(t, "Dairy", c.Name)
	assert.Equal(t, `Category "Dairy" added successfully!`, ev.Message())

	_, _, err = svc.CreateCategory(ctx, CategoryInput{Name: "dairy"})
	assert.ErrorIs(t, err, ErrCategoryExists)

	_, _, err = svc.CreateCategory(ctx, CategoryInput{Name: " "})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "This field is required.", verr.Fields["name"])

	updated, _, err := svc.UpdateCategory(ctx, c.ID, CategoryInput{Name: "Dairy & Eggs"})
	require.NoError(t, err)
	assert.Equal(t, "Dairy & Eggs", updated.Name)

	// renaming to its own name with different case is allowed
	_, _, err = svc.UpdateCategory(ctx, c.ID, CategoryInput{Name: "DAIRY & EGGS"})
	require.NoError(t, err)

	_, _, err = svc.UpdateCategory(ctx, 999, CategoryInput{Name: "x"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, _, err = svc.DeleteCategory(ctx, c.ID)
	require.NoError(t, err)
	_, err = svc.GetCategory(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Len(t, pub.events, 4)
}

func TestDeleteReferencedCategoryIsRefused(t *testing.T) {
	svc, db, pub := newTestService(t)
	dairy := seedCategory(t, db, "Dairy")
	seedProduct(t, db, "Milk", "2.50", 3, dairy)
	seedProduct(t, db, "Eggs", "4.00", 10, dairy)
	ctx := context.Background()

	_, _, err := svc.DeleteCategory(ctx, dairy.ID)
	assert.ErrorIs(t, err, ErrCategoryInUse)
	var inUse *CategoryInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, int64(2), inUse.Products)
	assert.Empty(t, pub.events)

	// nothing changed: the category and both products are still there
	detail, err := svc.GetCategory(ctx, dairy.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.ProductCount)

	var orphans int64
	db.Model(&domain.Product{}).
		Where("category_id NOT IN (?)", db.Model(&domain.Category{}).Select("id")).
		Count(&orphans)
	assert.Zero(t, orphans)
}

func TestListProductsReportsSortFallback(t *testing.T) {
	svc, db, _ := newTestService(t)
	dairy := seedCategory(t, db, "Dairy")
	seedProduct(t, db, "Milk", "2.50", 3, dairy)

	list, err := svc.ListProducts(context.Background(), ProductQuery{Search: " mil ", Sort: "secret"}, "", DefaultPageSize)
	require.NoError(t, err)
	assert.True(t, list.SortFallback)
	assert.Equal(t, ProductQuery{Search: "mil", Sort: "name"}, list.Query)
	assert.Equal(t, []string{"Milk"}, productNames(list.Items))

	list, err = svc.ListProducts(context.Background(), ProductQuery{Sort: "-price"}, "", DefaultPageSize)
	require.NoError(t, err)
	assert.False(t, list.SortFallback)
	assert.Equal(t, "-price", list.Query.Sort)
}

func TestCategoryNameIndexIgnoresCase(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRepository(db).Categories()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Category{Name: "Dairy"}))
	// writes that skip NameTaken, as a racing request would, still hit the index
	assert.ErrorIs(t, repo.Create(ctx, &domain.Category{Name: "Dairy"}), ErrCategoryExists)
	assert.ErrorIs(t, repo.Create(ctx, &domain.Category{Name: "dairy"}), ErrCategoryExists)

	feed := &domain.Category{Name: "Feed"}
	require.NoError(t, repo.Create(ctx, feed))
	feed.Name = "DAIRY"
	assert.ErrorIs(t, repo.Update(ctx, feed), ErrCategoryExists)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: index 'idx_category_name_lower'")))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_category_name_lower" (SQLSTATE 23505)`)))
}
