package service

import (
	"context"
	"fmt"

	"quickcart/internal/model"
	"quickcart/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List clamps the page size to [1, maxPageSize] and the offset to >= 0.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultPageSize
	case filter.Limit > maxPageSize:
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, model.WrapPersistence("Failed to load products", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", filter.Limit).
		Int("offset", filter.Offset).
		Bool("in_stock", filter.InStock).
		Msg("listed products")

	return products, nil
}

func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, model.WrapPersistence("Failed to load product", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// CheckAvailability compares cart lines with current stock. Lines for the
// same product are summed first, so a cart cannot pass by splitting a
// quantity across lines. Unknown products make the cart unavailable rather
// than failing the call.
func (s *productService) CheckAvailability(ctx context.Context, items []model.CartItem) (*model.Availability, error) {
	if len(items) == 0 {
		return nil, model.NewValidationError("at least one item is required")
	}

	order := make([]string, 0, len(items))
	requested := make(map[string]int, len(items))
	for i, item := range items {
		if item.ProductID == "" {
			return nil, model.NewValidationError(fmt.Sprintf("item %d: productId is required", i))
		}
		if item.Quantity <= 0 {
			return nil, model.NewValidationError(fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if _, seen := requested[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	products, err := s.productRepo.GetByIDs(ctx, order)
	if err != nil {
		return nil, model.WrapPersistence("Failed to check stock", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	result := &model.Availability{Available: true, Lines: make([]model.StockLine, 0, len(order))}
	for _, id := range order {
		line := model.StockLine{ProductID: id, Requested: requested[id]}
		if p, ok := byID[id]; ok {
			line.Known = true
			line.Title = p.Title
			line.Available = p.TotalStock
		}
		if !line.Sufficient() {
			result.Available = false
		}
		result.Lines = append(result.Lines, line)
	}

	if !result.Available {
		s.logger.Debug().Int("line_count", len(result.Lines)).Msg("cart exceeds available stock")
	}

	return result, nil
}
