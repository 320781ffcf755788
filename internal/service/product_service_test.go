package service

import (
	"context"
	"errors"
	"testing"

	"quickcart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogue() []model.Product {
	return []model.Product{
		{ID: "P001", Title: "Basmati Rice 5kg", Price: decimal.RequireFromString("649.00"), TotalStock: 40},
		{ID: "P002", Title: "Groundnut Oil 1L", Price: decimal.RequireFromString("289.50"), TotalStock: 2},
		{ID: "P005", Title: "Alphonso Mango Box", Price: decimal.RequireFromString("1199.00"), TotalStock: 0},
	}
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		in   model.ProductFilter
		want model.ProductFilter
	}{
		{
			name: "page passed through",
			in:   model.ProductFilter{Limit: 20, Offset: 40},
			want: model.ProductFilter{Limit: 20, Offset: 40},
		},
		{
			name: "zero limit uses default page",
			in:   model.ProductFilter{},
			want: model.ProductFilter{Limit: 10},
		},
		{
			name: "negative limit uses default page",
			in:   model.ProductFilter{Limit: -5},
			want: model.ProductFilter{Limit: 10},
		},
		{
			name: "limit capped",
			in:   model.ProductFilter{Limit: 500},
			want: model.ProductFilter{Limit: 100},
		},
		{
			name: "negative offset reset",
			in:   model.ProductFilter{Limit: 10, Offset: -3},
			want: model.ProductFilter{Limit: 10},
		},
		{
			name: "in stock flag kept",
			in:   model.ProductFilter{InStock: true},
			want: model.ProductFilter{Limit: 10, InStock: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			repo.On("List", ctx, tt.want).Return(catalogue(), nil)

			products, err := NewProductService(repo, zerolog.Nop()).List(ctx, tt.in)

			require.NoError(t, err)
			assert.Len(t, products, 3)
			repo.AssertExpectations(t)
		})
	}
}

func TestProductService_List_RepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	repo.On("List", ctx, model.ProductFilter{Limit: 10}).Return(nil, errors.New("database error"))

	products, err := NewProductService(repo, zerolog.Nop()).List(ctx, model.ProductFilter{})

	require.Error(t, err)
	assert.Nil(t, products)
	assert.Equal(t, model.KindPersistence, model.KindOf(err))
}

func TestProductService_GetByID(t *testing.T) {
	ctx := context.Background()
	product := &catalogue()[1]

	tests := []struct {
		name      string
		productID string
		setup     func(repo *MockProductRepository)
		wantStock int
		wantErr   error
		wantKind  model.ErrorKind
	}{
		{
			name:      "returns current stock",
			productID: "P002",
			setup: func(repo *MockProductRepository) {
				repo.On("GetByID", ctx, "P002").Return(product, nil)
			},
			wantStock: 2,
		},
		{
			name:      "unknown product",
			productID: "P999",
			setup: func(repo *MockProductRepository) {
				repo.On("GetByID", ctx, "P999").Return(nil, nil)
			},
			wantErr: model.ErrProductNotFound,
		},
		{
			name:      "empty id never reaches the store",
			productID: "",
			setup:     func(repo *MockProductRepository) {},
			wantErr:   model.ErrProductNotFound,
		},
		{
			name:      "store failure",
			productID: "P002",
			setup: func(repo *MockProductRepository) {
				repo.On("GetByID", ctx, "P002").Return(nil, errors.New("database error"))
			},
			wantKind: model.KindPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			tt.setup(repo)

			got, err := NewProductService(repo, zerolog.Nop()).GetByID(ctx, tt.productID)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantKind != 0:
				assert.Equal(t, tt.wantKind, model.KindOf(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantStock, got.TotalStock)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestProductService_CheckAvailability(t *testing.T) {
	ctx := context.Background()

	line := func(id string, qty int) model.CartItem {
		return model.CartItem{ProductID: id, Quantity: qty}
	}

	t.Run("all lines covered", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetByIDs", ctx, []string{"P001", "P002"}).Return(catalogue()[:2], nil)

		got, err := NewProductService(repo, zerolog.Nop()).
			CheckAvailability(ctx, []model.CartItem{line("P001", 1), line("P002", 2)})

		require.NoError(t, err)
		assert.True(t, got.Available)
		assert.Equal(t, []model.StockLine{
			{ProductID: "P001", Title: "Basmati Rice 5kg", Requested: 1, Available: 40, Known: true},
			{ProductID: "P002", Title: "Groundnut Oil 1L", Requested: 2, Available: 2, Known: true},
		}, got.Lines)
		repo.AssertExpectations(t)
	})

	t.Run("repeated lines are summed before comparing", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetByIDs", ctx, []string{"P002", "P001"}).Return(catalogue()[:2], nil)

		got, err := NewProductService(repo, zerolog.Nop()).
			CheckAvailability(ctx, []model.CartItem{line("P002", 2), line("P001", 1), line("P002", 1)})

		require.NoError(t, err)
		assert.False(t, got.Available)
		require.Len(t, got.Lines, 2)
		assert.Equal(t, "P002", got.Lines[0].ProductID)
		assert.Equal(t, 3, got.Lines[0].Requested)
		assert.False(t, got.Lines[0].Sufficient())
		assert.True(t, got.Lines[1].Sufficient())
	})

	t.Run("sold out and unknown products", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetByIDs", ctx, []string{"P005", "P404"}).Return(catalogue()[2:], nil)

		got, err := NewProductService(repo, zerolog.Nop()).
			CheckAvailability(ctx, []model.CartItem{line("P005", 1), line("P404", 1)})

		require.NoError(t, err)
		assert.False(t, got.Available)
		assert.Equal(t, model.StockLine{ProductID: "P005", Title: "Alphonso Mango Box", Requested: 1, Known: true}, got.Lines[0])
		assert.Equal(t, model.StockLine{ProductID: "P404", Requested: 1}, got.Lines[1])
	})

	t.Run("invalid lines", func(t *testing.T) {
		for name, items := range map[string][]model.CartItem{
			"no items":          nil,
			"missing product":   {line("", 1)},
			"zero quantity":     {line("P001", 0)},
			"negative quantity": {line("P001", -2)},
		} {
			t.Run(name, func(t *testing.T) {
				repo := new(MockProductRepository)

				got, err := NewProductService(repo, zerolog.Nop()).CheckAvailability(ctx, items)

				assert.Nil(t, got)
				assert.Equal(t, model.KindValidation, model.KindOf(err))
				repo.AssertExpectations(t)
			})
		}
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("GetByIDs", ctx, []string{"P001"}).Return(nil, errors.New("database error"))

		got, err := NewProductService(repo, zerolog.Nop()).CheckAvailability(ctx, []model.CartItem{line("P001", 1)})

		assert.Nil(t, got)
		assert.Equal(t, model.KindPersistence, model.KindOf(err))
	})
}
