package services

import (
	"context"
	"fmt"

	"storefront/internal/analytics"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo     repositories.ProductRepository
	tracker  *analytics.Tracker
	validate *validator.Validate
}

// NewProductService creates a new ProductService. tracker may be nil.
func NewProductService(repo repositories.ProductRepository, tracker *analytics.Tracker) *ProductService {
	return &ProductService{
		repo:     repo,
		tracker:  tracker,
		validate: NewValidator(),
	}
}

// GetAllProducts retrieves the products currently on sale.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	active := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// ViewProduct retrieves a product for its detail page and reports the view.
func (s *ProductService) ViewProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.tracker.Track(ctx, analytics.Event{
		Name:      analytics.ViewContent,
		ProductID: product.ID,
		Value:     product.Price,
	})
	return product, nil
}

// CreateProduct validates and stores a catalog product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("invalid product %q: %w", product.ID, err)
	}
	return s.repo.Create(product)
}
