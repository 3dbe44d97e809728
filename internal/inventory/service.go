package inventory

import (
	"context"

	"github.com/talkincode/farmstock/internal/domain"
)

// Service implements the product and category operations on top of a Repository.
type Service struct {
	repo      Repository
	publisher Publisher
}

// NewService creates the inventory service; a nil publisher discards events.
func NewService(repo Repository, publisher Publisher) *Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher}
}

// ProductList is one page of the product list.
type ProductList struct {
	Items []domain.Product `json:"items"`
	Page  Page             `json:"page"`
	Query ProductQuery     `json:"query"`
	// SortFallback is true when the requested sort key was unknown and DefaultSort was used
	SortFallback bool `json:"sort_fallback"`
}

// CategoryDetail is a category with the number of products referencing it.
type CategoryDetail struct {
	domain.Category
	ProductCount int64 `json:"product_count"`
}

func (s *Service) emit(ctx context.Context, action, entity string, id int64, name string) Event {
	actor := ActorFrom(ctx)
	ev := Event{Action: action, Entity: entity, ID: id, Name: name, Operator: actor.Name, IP: actor.IP}
	s.publisher.Publish(ctx, ev)
	return ev
}

// ListProducts returns the requested page of products matching q.
func (s *Service) ListProducts(ctx context.Context, q ProductQuery, page string, size int) (*ProductList, error) {
	_, known := ResolveSort(q.Sort)
	q = q.Normalize()
	items, pg, err := s.repo.Products().Search(ctx, q, page, size)
	if err != nil {
		return nil, err
	}
	return &ProductList{Items: items, Page: pg, Query: q, SortFallback: !known}, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.Products().GetByID(ctx, id)
}

// CreateProduct validates in, checks the category exists and stores the product.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, Event, error) {
	fields, err := in.Parse()
	if err != nil {
		return nil, Event{}, err
	}

	var product domain.Product
	err = s.repo.Transaction(ctx, func(r Repository) error {
		category, err := r.Categories().GetByID(ctx, fields.CategoryID)
		if err != nil {
			return err
		}
		product = domain.Product{
			Name:        fields.Name,
			Price:       fields.Price,
			Quantity:    fields.Quantity,
			CategoryID:  category.ID,
			Description: fields.Description,
		}
		if err := r.Products().Create(ctx, &product); err != nil {
			return err
		}
		product.Category = category
		return nil
	})
	if err != nil {
		return nil, Event{}, err
	}
	return &product, s.emit(ctx, ActionCreate, EntityProduct, product.ID, product.Name), nil
}

// UpdateProduct loads the product, applies in and stores it.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, Event, error) {
	var product *domain.Product
	err := s.repo.Transaction(ctx, func(r Repository) error {
		var err error
		product, err = r.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		fields, err := in.Parse()
		if err != nil {
			return err
		}
		category, err := r.Categories().GetByID(ctx, fields.CategoryID)
		if err != nil {
			return err
		}
		product.Name = fields.Name
		product.Price = fields.Price
		product.Quantity = fields.Quantity
		product.CategoryID = category.ID
		product.Category = category
		product.Description = fields.Description
		return r.Products().Update(ctx, product)
	})
	if err != nil {
		return nil, Event{}, err
	}
	return product, s.emit(ctx, ActionUpdate, EntityProduct, product.ID, product.Name), nil
}

// DeleteProduct removes the product and returns it as it was before deletion.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (*domain.Product, Event, error) {
	var product *domain.Product
	err := s.repo.Transaction(ctx, func(r Repository) error {
		var err error
		product, err = r.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		return r.Products().Delete(ctx, id)
	})
	if err != nil {
		return nil, Event{}, err
	}
	return product, s.emit(ctx, ActionDelete, EntityProduct, product.ID, product.Name), nil
}

// ExportProducts returns every product ordered by name, with categories loaded.
func (s *Service) ExportProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.Products().All(ctx)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.Categories().List(ctx)
}

// GetCategory returns the category with the number of products referencing it.
func (s *Service) GetCategory(ctx context.Context, id int64) (*CategoryDetail, error) {
	var detail *CategoryDetail
	err := s.repo.Snapshot(ctx, func(r Repository) error {
		c, err := r.Categories().GetByID(ctx, id)
		if err != nil {
			return err
		}
		n, err := r.Categories().CountProducts(ctx, id)
		if err != nil {
			return err
		}
		detail = &CategoryDetail{Category: *c, ProductCount: n}
		return nil
	})
	return detail, err
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, Event, error) {
	name, err := in.Parse()
	if err != nil {
		return nil, Event{}, err
	}
	category := domain.Category{Name: name}
	err = s.repo.Transaction(ctx, func(r Repository) error {
		taken, err := r.Categories().NameTaken(ctx, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrCategoryExists
		}
		return r.Categories().Create(ctx, &category)
	})
	if err != nil {
		return nil, Event{}, err
	}
	return &category, s.emit(ctx, ActionCreate, EntityCategory, category.ID, category.Name), nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*domain.Category, Event, error) {
	var category *domain.Category
	err := s.repo.Transaction(ctx, func(r Repository) error {
		var err error
		category, err = r.Categories().GetByID(ctx, id)
		if err != nil {
			return err
		}
		name, err := in.Parse()
		if err != nil {
			return err
		}
		taken, err := r.Categories().NameTaken(ctx, name, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrCategoryExists
		}
		category.Name = name
		return r.Categories().Update(ctx, category)
	})
	if err != nil {
		return nil, Event{}, err
	}
	return category, s.emit(ctx, ActionUpdate, EntityCategory, category.ID, category.Name), nil
}

// DeleteCategory removes an unreferenced category.
// A category still referenced by products is left untouched and *CategoryInUseError is returned.
func (s *Service) DeleteCategory(ctx context.Context, id int64) (*domain.Category, Event, error) {
	var category *domain.Category
	err := s.repo.Transaction(ctx, func(r Repository) error {
		var err error
		category, err = r.Categories().GetByID(ctx, id)
		if err != nil {
			return err
		}
		n, err := r.Categories().CountProducts(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &CategoryInUseError{CategoryID: id, Products: n}
		}
		return r.Categories().Delete(ctx, id)
	})
	if err != nil {
		return nil, Event{}, err
	}
	return category, s.emit(ctx, ActionDelete, EntityCategory, category.ID, category.Name), nil
}
