package inventory

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/talkincode/farmstock/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository handles database operations for products
type ProductRepository interface {
	// Search returns one page of products matching q, with their category loaded
	Search(ctx context.Context, q ProductQuery, page string, size int) ([]domain.Product, Page, error)

	// All returns every product ordered by name, with its category loaded
	All(ctx context.Context) ([]domain.Product, error)

	// GetByID retrieves a product with its category
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error

	// Count returns the number of products
	Count(ctx context.Context) (int64, error)

	// LowStock returns products with quantity <= threshold, lowest quantity first
	LowStock(ctx context.Context, threshold int) ([]domain.Product, error)

	// Prices returns every product price
	Prices(ctx context.Context) ([]float64, error)

	// TotalQuantity sums the quantity of all products
	TotalQuantity(ctx context.Context) (int64, error)
}

// CategoryRepository handles database operations for categories
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)

	// NameTaken reports whether another category (id != excludeID) already uses name, ignoring case
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)

	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id int64) error

	Count(ctx context.Context) (int64, error)

	// CountProducts returns how many products reference the category
	CountProducts(ctx context.Context, id int64) (int64, error)

	// ProductCounts returns every category with its product count, ordered by name
	ProductCounts(ctx context.Context) ([]CategoryCount, error)
}

// Repository groups the inventory repositories and the transactions spanning them.
type Repository interface {
	Products() ProductRepository
	Categories() CategoryRepository

	// Transaction runs fn inside a read-write transaction
	Transaction(ctx context.Context, fn func(Repository) error) error

	// Snapshot runs fn inside a read-only transaction giving one consistent view of the store
	Snapshot(ctx context.Context, fn func(Repository) error) error
}

// GormRepository is the GORM implementation of Repository
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM-based repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Products() ProductRepository {
	return &GormProductRepository{db: r.db}
}

func (r *GormRepository) Categories() CategoryRepository {
	return &GormCategoryRepository{db: r.db}
}

func (r *GormRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

func (r *GormRepository) Snapshot(ctx context.Context, fn func(Repository) error) error {
	run := func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	}
	db := r.db.WithContext(ctx)
	if strings.EqualFold(db.Dialector.Name(), "postgres") {
		return db.Transaction(run, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return db.Transaction(run)
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func (r *GormProductRepository) Search(ctx context.Context, q ProductQuery, page string, size int) ([]domain.Product, Page, error) {
	db := r.db.WithContext(ctx).Model(&domain.Product{})

	var total int64
	if err := q.Filter(db).Count(&total).Error; err != nil {
		return nil, Page{}, errors.Wrap(err, "count products")
	}

	pg := NewPage(total, page, size)
	var products []domain.Product
	err := q.Apply(r.db.WithContext(ctx).Model(&domain.Product{})).
		Preload("Category").
		Offset(pg.Offset()).
		Limit(pg.Limit()).
		Find(&products).Error
	if err != nil {
		return nil, Page{}, errors.Wrap(err, "query products")
	}
	return products, pg, nil
}

func (r *GormProductRepository) All(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("name ASC, id ASC").
		Find(&products).Error
	return products, errors.Wrap(err, "query products")
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}
	return &p, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return errors.Wrap(r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error, "create product")
}

func (r *GormProductRepository) Update(ctx context.Context, p *domain.Product) error {
	return errors.Wrap(r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error, "update product")
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error
	return total, errors.Wrap(err, "count products")
}

func (r *GormProductRepository) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("quantity <= ?", threshold).
		Order("quantity ASC, name ASC, id ASC").
		Find(&products).Error
	return products, errors.Wrap(err, "query low stock products")
}

func (r *GormProductRepository) Prices(ctx context.Context) ([]float64, error) {
	var prices []float64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Pluck("price", &prices).Error
	return prices, errors.Wrap(err, "query product prices")
}

func (r *GormProductRepository) TotalQuantity(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Select("COALESCE(SUM(quantity),0)").
		Scan(&total).Error
	return total, errors.Wrap(err, "sum product quantity")
}

// GormCategoryRepository is the GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

func (r *GormCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&categories).Error
	return categories, errors.Wrap(err, "query categories")
}

func (r *GormCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query category")
	}
	return &c, nil
}

func (r *GormCategoryRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "query category name")
}

func (r *GormCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if isUniqueViolation(err) {
		return ErrCategoryExists
	}
	return errors.Wrap(err, "create category")
}

func (r *GormCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	err := r.db.WithContext(ctx).Save(c).Error
	if isUniqueViolation(err) {
		return ErrCategoryExists
	}
	return errors.Wrap(err, "update category")
}

// isUniqueViolation recognises unique index failures from postgres (SQLSTATE 23505) and sqlite.
// It backs up NameTaken when two writers race past the check.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func (r *GormCategoryRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Category{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete category")
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *GormCategoryRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).Count(&total).Error
	return total, errors.Wrap(err, "count categories")
}

func (r *GormCategoryRepository) CountProducts(ctx context.Context, id int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("category_id = ?", id).Count(&total).Error
	return total, errors.Wrap(err, "count category products")
}

func (r *GormCategoryRepository) ProductCounts(ctx context.Context) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := r.db.WithContext(ctx).
		Table("category").
		Select("category.id AS category_id, category.name AS name, COUNT(product.id) AS product_count").
		Joins("LEFT JOIN product ON product.category_id = category.id").
		Group("category.id, category.name").
		Order("category.name ASC, category.id ASC").
		Scan(&counts).Error
	return counts, errors.Wrap(err, "count products per category")
}
