package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the operator cart operations. Stock checks here are
// advisory only: an add that would oversell is skipped and reported as a
// warning, and the checkout transaction re-validates everything.
type Service interface {
	GetActive(ctx context.Context, operatorID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, operatorID, productID uuid.UUID, qty int) (*CartDTO, error)
	SetQuantity(ctx context.Context, operatorID, productID uuid.UUID, qty int) (*CartDTO, error)
	RemoveItem(ctx context.Context, operatorID, productID uuid.UUID) (*CartDTO, error)
	SetAdjustments(ctx context.Context, operatorID uuid.UUID, input AdjustmentsInput) (*CartDTO, error)
	Clear(ctx context.Context, operatorID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// GetActive returns the operator's active cart, creating an empty one on
// first touch.
func (s *service) GetActive(ctx context.Context, operatorID uuid.UUID) (*CartDTO, error) {
	record, err := s.getOrCreate(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	return toCartDTO(record, nil), nil
}

// AddItem merges qty into the line for the product. If the resulting
// quantity cannot be covered by current stock the cart is left untouched and
// a warning is attached to the returned snapshot.
func (s *service) AddItem(ctx context.Context, operatorID, productID uuid.UUID, qty int) (*CartDTO, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	var saved *models.CartRecord
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.getOrCreateTx(ctx, txRepo, operatorID)
		if err != nil {
			return err
		}

		existingQty := 0
		var line *models.CartItem
		for i := range record.Items {
			if record.Items[i].ProductID == productID {
				line = &record.Items[i]
				existingQty = line.Qty
				break
			}
		}

		if warning := softCheck(product, existingQty+qty); warning != nil {
			warnings = append(warnings, *warning)
			saved = record
			return nil
		}

		if line != nil {
			line.Qty += qty
			if err := txRepo.UpsertItem(ctx, line); err != nil {
				return err
			}
		} else {
			item := &models.CartItem{
				CartID:    record.ID,
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Qty:       qty,
			}
			if err := txRepo.UpsertItem(ctx, item); err != nil {
				return err
			}
		}

		saved, err = txRepo.FindActiveByOperator(ctx, operatorID)
		return err
	})
	if err != nil {
		return nil, wrapCartErr(err, "add cart item")
	}
	return toCartDTO(saved, warnings), nil
}

// SetQuantity replaces the line quantity. Zero or negative removes the line.
func (s *service) SetQuantity(ctx context.Context, operatorID, productID uuid.UUID, qty int) (*CartDTO, error) {
	if qty <= 0 {
		return s.RemoveItem(ctx, operatorID, productID)
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	var saved *models.CartRecord
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.getOrCreateTx(ctx, txRepo, operatorID)
		if err != nil {
			return err
		}

		var line *models.CartItem
		for i := range record.Items {
			if record.Items[i].ProductID == productID {
				line = &record.Items[i]
				break
			}
		}
		if line == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
		}

		if warning := softCheck(product, qty); warning != nil {
			warnings = append(warnings, *warning)
			saved = record
			return nil
		}

		line.Qty = qty
		if err := txRepo.UpsertItem(ctx, line); err != nil {
			return err
		}

		saved, err = txRepo.FindActiveByOperator(ctx, operatorID)
		return err
	})
	if err != nil {
		return nil, wrapCartErr(err, "set cart quantity")
	}
	return toCartDTO(saved, warnings), nil
}

// RemoveItem drops the line for the product if present.
func (s *service) RemoveItem(ctx context.Context, operatorID, productID uuid.UUID) (*CartDTO, error) {
	var saved *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.getOrCreateTx(ctx, txRepo, operatorID)
		if err != nil {
			return err
		}
		if err := txRepo.DeleteItem(ctx, record.ID, productID); err != nil {
			return err
		}
		saved, err = txRepo.FindActiveByOperator(ctx, operatorID)
		return err
	})
	if err != nil {
		return nil, wrapCartErr(err, "remove cart item")
	}
	return toCartDTO(saved, nil), nil
}

// SetAdjustments updates the cart-level discount/tax/customer/payment state.
func (s *service) SetAdjustments(ctx context.Context, operatorID uuid.UUID, input AdjustmentsInput) (*CartDTO, error) {
	if input.DiscountPercent != nil {
		if err := money.ValidatePercent("discount", *input.DiscountPercent); err != nil {
			return nil, err
		}
	}
	if input.TaxPercent != nil {
		if err := money.ValidatePercent("tax", *input.TaxPercent); err != nil {
			return nil, err
		}
	}
	if input.PaymentMethod != nil && !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	var saved *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.getOrCreateTx(ctx, txRepo, operatorID)
		if err != nil {
			return err
		}

		if input.CustomerID != nil {
			record.CustomerID = input.CustomerID
		}
		if input.DiscountPercent != nil {
			record.DiscountPercent = *input.DiscountPercent
		}
		if input.TaxPercent != nil {
			record.TaxPercent = *input.TaxPercent
		}
		if input.PaymentMethod != nil {
			record.PaymentMethod = *input.PaymentMethod
		}
		if input.Notes != nil {
			record.Notes = input.Notes
		}

		if _, err := txRepo.Update(ctx, record); err != nil {
			return err
		}
		saved, err = txRepo.FindActiveByOperator(ctx, operatorID)
		return err
	})
	if err != nil {
		return nil, wrapCartErr(err, "set cart adjustments")
	}
	return toCartDTO(saved, nil), nil
}

// Clear empties the lines and resets the cart-level state. Invoked on
// explicit cancel; checkout performs the same reset inside its own
// transaction.
func (s *service) Clear(ctx context.Context, operatorID uuid.UUID) (*CartDTO, error) {
	var saved *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.getOrCreateTx(ctx, txRepo, operatorID)
		if err != nil {
			return err
		}
		if err := ResetTx(ctx, txRepo, record); err != nil {
			return err
		}
		saved, err = txRepo.FindActiveByOperator(ctx, operatorID)
		return err
	})
	if err != nil {
		return nil, wrapCartErr(err, "clear cart")
	}
	return toCartDTO(saved, nil), nil
}

// ResetTx empties the cart's lines and restores the default adjustment
// state, inside the caller's transaction. Checkout uses this after a sale
// commits so the reset rides the same transaction.
func ResetTx(ctx context.Context, txRepo *Repository, record *models.CartRecord) error {
	if err := txRepo.DeleteItems(ctx, record.ID); err != nil {
		return err
	}
	record.CustomerID = nil
	record.DiscountPercent = 0
	record.TaxPercent = 0
	record.PaymentMethod = enums.PaymentMethodCash
	record.Notes = nil
	_, err := txRepo.Update(ctx, record)
	return err
}

func (s *service) getOrCreate(ctx context.Context, operatorID uuid.UUID) (*models.CartRecord, error) {
	if operatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator id is required")
	}
	record, err := s.repo.FindActiveByOperator(ctx, operatorID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	created, err := s.repo.Create(ctx, &models.CartRecord{
		OperatorID:    operatorID,
		PaymentMethod: enums.PaymentMethodCash,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) getOrCreateTx(ctx context.Context, txRepo *Repository, operatorID uuid.UUID) (*models.CartRecord, error) {
	if operatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator id is required")
	}
	record, err := txRepo.FindActiveByOperator(ctx, operatorID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return txRepo.Create(ctx, &models.CartRecord{
		OperatorID:    operatorID,
		PaymentMethod: enums.PaymentMethodCash,
	})
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func softCheck(product *models.Product, wantQty int) *Warning {
	if !product.IsActive {
		return &Warning{
			Type:      enums.CartWarningProductInactive,
			ProductID: product.ID,
			Product:   product.Name,
		}
	}
	if product.Stock <= 0 {
		return &Warning{
			Type:      enums.CartWarningOutOfStock,
			ProductID: product.ID,
			Product:   product.Name,
			Requested: wantQty,
			Available: product.Stock,
		}
	}
	if wantQty > product.Stock {
		return &Warning{
			Type:      enums.CartWarningInsufficientStock,
			ProductID: product.ID,
			Product:   product.Name,
			Requested: wantQty,
			Available: product.Stock,
		}
	}
	return nil
}

func wrapCartErr(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
