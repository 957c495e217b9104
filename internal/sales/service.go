package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/internal/cart"
	"github.com/angeldelarosa/garagepos-backend/internal/catalog"
	"github.com/angeldelarosa/garagepos-backend/internal/customers"
	"github.com/angeldelarosa/garagepos-backend/pkg/config"
	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/money"
	"github.com/angeldelarosa/garagepos-backend/pkg/numbering"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventPublisher interface {
	PublishValue(ctx context.Context, eventType enums.EventType, payload any) error
}

// Service owns the checkout transaction and the immutable sales log.
type Service interface {
	Complete(ctx context.Context, operatorID uuid.UUID) (*SaleDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*SaleDTO, error)
	List(ctx context.Context, input ListSalesInput) (*ListSalesOutput, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateSaleInput) (*SaleDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      *Repository
	carts     *cart.Repository
	catalog   *catalog.Repository
	customers *customers.Repository
	tx        txRunner
	numbers   numbering.Generator
	events    eventPublisher
	cfg       config.SalesConfig
	now       func() time.Time
}

func NewService(
	repo *Repository,
	carts *cart.Repository,
	catalogRepo *catalog.Repository,
	customersRepo *customers.Repository,
	tx txRunner,
	numbers numbering.Generator,
	events eventPublisher,
	cfg config.SalesConfig,
) (Service, error) {
	if repo == nil || carts == nil || catalogRepo == nil || customersRepo == nil {
		return nil, fmt.Errorf("sales service requires all repositories")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("number generator required")
	}
	return &service{
		repo:      repo,
		carts:     carts,
		catalog:   catalogRepo,
		customers: customersRepo,
		tx:        tx,
		numbers:   numbers,
		events:    events,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Complete converts the operator's active cart into a sale. Every line is
// re-validated against live stock and decremented inside one transaction, so
// a sale either commits with all its stock taken or leaves nothing changed.
func (s *service) Complete(ctx context.Context, operatorID uuid.UUID) (*SaleDTO, error) {
	if operatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator id is required")
	}

	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		record, err := cartRepo.FindActiveByOperator(ctx, operatorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
			}
			return err
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}
		if record.CustomerID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "a customer is required to complete the sale")
		}

		customerRepo := s.customers.WithTx(tx)
		customer, err := customerRepo.FindByID(ctx, *record.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart customer no longer exists")
			}
			return err
		}

		catalogRepo := s.catalog.WithTx(tx)
		moneyLines := make([]money.Line, 0, len(record.Items))
		saleItems := make([]models.SaleItem, 0, len(record.Items))
		for _, item := range record.Items {
			ok, err := catalogRepo.DecrementStock(ctx, item.ProductID, item.Qty)
			if err != nil {
				return err
			}
			if !ok {
				available := 0
				if product, lookupErr := catalogRepo.FindByID(ctx, item.ProductID); lookupErr == nil {
					available = product.Stock
				}
				return pkgerrors.InsufficientStock(item.Name, item.Qty, available)
			}
			moneyLines = append(moneyLines, money.Line{UnitPrice: item.UnitPrice, Qty: item.Qty})
			saleItems = append(saleItems, models.SaleItem{
				ProductID: item.ProductID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Qty:       item.Qty,
				Subtotal:  item.Subtotal(),
			})
		}

		totals, err := money.Compute(moneyLines, record.DiscountPercent, record.TaxPercent)
		if err != nil {
			return err
		}

		now := s.now()
		sale = &models.Sale{
			SaleNumber:    s.numbers.Next(s.cfg.NumberPrefixSale),
			Date:          now,
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
			CustomerPhone: customer.Phone,
			Items:         saleItems,
			Subtotal:      totals.Subtotal,
			Discount:      totals.Discount,
			Tax:           totals.Tax,
			Total:         totals.Total,
			PaymentMethod: record.PaymentMethod,
			Notes:         record.Notes,
			Status:        enums.SaleStatusCompleted,
			OperatorID:    operatorID,
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, sale); err != nil {
			return err
		}

		if err := customerRepo.RecordPurchase(ctx, customer.ID, totals.Total, now); err != nil {
			return err
		}

		if err := cartRepo.DeleteItems(ctx, record.ID); err != nil {
			return err
		}
		return cartRepo.UpdateStatus(ctx, record.ID, enums.CartStatusConverted)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete sale")
	}

	if s.events != nil {
		_ = s.events.PublishValue(ctx, enums.EventSaleCompleted, CompletedPayload{
			SaleID:     sale.ID,
			SaleNumber: sale.SaleNumber,
			OperatorID: sale.OperatorID,
			CustomerID: sale.CustomerID,
			Total:      sale.Total,
			Date:       sale.Date,
		})
	}
	return toSaleDTO(sale), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SaleDTO, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return toSaleDTO(sale), nil
}

func (s *service) List(ctx context.Context, input ListSalesInput) (*ListSalesOutput, error) {
	input.Pagination.Limit = pagination.NormalizeLimit(input.Pagination.Limit)
	result, err := s.repo.List(ctx, listQuery{Pagination: input.Pagination, Filters: input.Filters})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	out := &ListSalesOutput{
		Sales:      make([]SaleDTO, 0, len(result.Sales)),
		NextCursor: result.NextCursor,
	}
	for i := range result.Sales {
		out.Sales = append(out.Sales, *toSaleDTO(&result.Sales[i]))
	}
	return out, nil
}

// Update touches only the mutable header fields. The financial snapshot is
// append-only.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateSaleInput) (*SaleDTO, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sale status")
	}

	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}

	if input.Status != nil {
		sale.Status = *input.Status
	}
	if input.Notes != nil {
		sale.Notes = input.Notes
	}

	updated, err := s.repo.Update(ctx, sale)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale")
	}
	return toSaleDTO(updated), nil
}

// Delete removes a sale and returns its stock to the catalog in the same
// transaction. Products removed since the sale are skipped; their units no
// longer have anywhere to go.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	var removed *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		sale, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return err
		}

		catalogRepo := s.catalog.WithTx(tx)
		for _, item := range sale.Items {
			if err := catalogRepo.IncrementStock(ctx, item.ProductID, item.Qty); err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
					continue
				}
				return err
			}
		}

		if err := s.customers.WithTx(tx).RollbackPurchase(ctx, sale.CustomerID, sale.Total); err != nil {
			return err
		}

		if err := txRepo.Delete(ctx, sale.ID); err != nil {
			return err
		}
		removed = sale
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sale")
	}

	if s.events != nil {
		_ = s.events.PublishValue(ctx, enums.EventSaleDeleted, DeletedPayload{
			SaleID:     removed.ID,
			SaleNumber: removed.SaleNumber,
			CustomerID: removed.CustomerID,
			Total:      removed.Total,
		})
	}
	return nil
}
