package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/db"
	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
)

// Service exposes catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ListProductsOutput, error)
	ListLowStock(ctx context.Context) ([]ProductDTO, error)
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (*ProductDTO, error)
}

type eventPublisher interface {
	PublishValue(ctx context.Context, eventType enums.EventType, payload any) error
}

// StockChangedPayload is the event body emitted after a manual adjustment.
type StockChangedPayload struct {
	ProductID uuid.UUID `json:"product_id"`
	Delta     int       `json:"delta"`
	Stock     int       `json:"stock"`
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	events   eventPublisher
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, events eventPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, events: events}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductFields(input.Name, input.Price, input.Stock, input.LowStockThreshold); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	product := &models.Product{
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		SKU:               input.SKU,
		Barcode:           input.Barcode,
		Category:          input.Category,
		Price:             input.Price,
		Cost:              input.Cost,
		Stock:             input.Stock,
		LowStockThreshold: input.LowStockThreshold,
		ImageURL:          input.ImageURL,
		IsActive:          isActive,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return toProductDTO(created), nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
		}
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.SKU != nil {
		product.SKU = input.SKU
	}
	if input.Barcode != nil {
		product.Barcode = input.Barcode
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.Cost != nil {
		product.Cost = input.Cost
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold cannot be negative")
		}
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return toProductDTO(updated), nil
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ListProductsOutput, error) {
	result, err := s.repo.ListProducts(ctx, listQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	out := &ListProductsOutput{
		Products:   make([]ProductDTO, 0, len(result.Products)),
		NextCursor: result.NextCursor,
	}
	for i := range result.Products {
		out.Products = append(out.Products, *toProductDTO(&result.Products[i]))
	}
	return out, nil
}

func (s *service) ListLowStock(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *toProductDTO(&rows[i]))
	}
	return dtos, nil
}

// AdjustStock applies a manual delta to a product's stock. Negative deltas go
// through the conditional decrement so stock can never cross zero.
func (s *service) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (*ProductDTO, error) {
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}

	var updated *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		if delta > 0 {
			if err := txRepo.IncrementStock(ctx, productID, delta); err != nil {
				return err
			}
		} else {
			ok, err := txRepo.DecrementStock(ctx, productID, -delta)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.InsufficientStock(product.Name, -delta, product.Stock)
			}
		}

		updated, err = txRepo.FindByID(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		_ = s.events.PublishValue(ctx, enums.EventStockChanged, StockChangedPayload{
			ProductID: productID,
			Delta:     delta,
			Stock:     updated.Stock,
		})
	}

	return toProductDTO(updated), nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func validateProductFields(name string, price float64, stock, threshold int) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if threshold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold cannot be negative")
	}
	return nil
}
