package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/config"
	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/money"
	"github.com/angeldelarosa/garagepos-backend/pkg/numbering"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

type saleLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
}

type customerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type eventPublisher interface {
	PublishValue(ctx context.Context, eventType enums.EventType, payload any) error
}

// Service manages billing documents. Invoices copy everything they need
// from the sale at generation time; a later edit or delete of the sale never
// reaches the invoice.
type Service interface {
	GenerateFromSale(ctx context.Context, saleID uuid.UUID) (*InvoiceDTO, error)
	CreateStandalone(ctx context.Context, input CreateStandaloneInput) (*InvoiceDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*InvoiceDTO, error)
	List(ctx context.Context, input ListInvoicesInput) (*ListInvoicesOutput, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]InvoiceDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*InvoiceDTO, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*InvoiceDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      *Repository
	sales     saleLoader
	customers customerLoader
	numbers   numbering.Generator
	events    eventPublisher
	cfg       config.SalesConfig
	now       func() time.Time
}

func NewService(
	repo *Repository,
	sales saleLoader,
	customersRepo customerLoader,
	numbers numbering.Generator,
	events eventPublisher,
	cfg config.SalesConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if sales == nil || customersRepo == nil {
		return nil, fmt.Errorf("sale and customer loaders required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("number generator required")
	}
	return &service{
		repo:      repo,
		sales:     sales,
		customers: customersRepo,
		numbers:   numbers,
		events:    events,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// GenerateFromSale derives an invoice from a completed sale. Calling it
// twice produces two invoices; deduplication is the caller's concern.
func (s *service) GenerateFromSale(ctx context.Context, saleID uuid.UUID) (*InvoiceDTO, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}

	items := make([]models.InvoiceItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, models.InvoiceItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
			Subtotal:  item.Subtotal,
		})
	}

	// Cash sales are settled at the register.
	paymentStatus := enums.PaymentStatusPending
	if sale.PaymentMethod == enums.PaymentMethodCash {
		paymentStatus = enums.PaymentStatusPaid
	}

	now := s.now()
	invoice := &models.Invoice{
		InvoiceNumber: s.numbers.Next(s.cfg.NumberPrefixInvoice),
		SaleID:        &sale.ID,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, s.cfg.InvoiceDueDays),
		CustomerID:    sale.CustomerID,
		CustomerName:  sale.CustomerName,
		CustomerEmail: sale.CustomerEmail,
		CustomerPhone: sale.CustomerPhone,
		Items:         items,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Tax:           sale.Tax,
		TaxRate:       effectiveTaxRate(sale.Subtotal, sale.Discount, sale.Tax),
		Total:         sale.Total,
		Notes:         sale.Notes,
		Status:        enums.InvoiceStatusSent,
		PaymentStatus: paymentStatus,
	}

	created, err := s.repo.Create(ctx, invoice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
	}
	s.publishCreated(ctx, created)
	return toInvoiceDTO(created), nil
}

// CreateStandalone builds an invoice that has no backing sale, for work not
// rung through the register.
func (s *service) CreateStandalone(ctx context.Context, input CreateStandaloneInput) (*InvoiceDTO, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for _, item := range input.Items {
		if item.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item unit price cannot be negative")
		}
	}

	customer, err := s.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	moneyLines := make([]money.Line, 0, len(input.Items))
	items := make([]models.InvoiceItem, 0, len(input.Items))
	for _, item := range input.Items {
		moneyLines = append(moneyLines, money.Line{UnitPrice: item.UnitPrice, Qty: item.Qty})
		items = append(items, models.InvoiceItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
			Subtotal:  money.LineSubtotal(item.UnitPrice, item.Qty),
		})
	}
	totals, err := money.Compute(moneyLines, input.DiscountPercent, input.TaxPercent)
	if err != nil {
		return nil, err
	}

	now := s.now()
	invoice := &models.Invoice{
		InvoiceNumber: s.numbers.Next(s.cfg.NumberPrefixInvoice),
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, s.cfg.InvoiceDueDays),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Tax:           totals.Tax,
		TaxRate:       input.TaxPercent / 100,
		Total:         totals.Total,
		Notes:         input.Notes,
		Status:        enums.InvoiceStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
	}

	created, err := s.repo.Create(ctx, invoice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
	}
	s.publishCreated(ctx, created)
	return toInvoiceDTO(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return toInvoiceDTO(invoice), nil
}

func (s *service) List(ctx context.Context, input ListInvoicesInput) (*ListInvoicesOutput, error) {
	input.Pagination.Limit = pagination.NormalizeLimit(input.Pagination.Limit)
	result, err := s.repo.List(ctx, listQuery{Pagination: input.Pagination, Filters: input.Filters})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}

	out := &ListInvoicesOutput{
		Invoices:   make([]InvoiceDTO, 0, len(result.Invoices)),
		NextCursor: result.NextCursor,
	}
	for i := range result.Invoices {
		out.Invoices = append(out.Invoices, *toInvoiceDTO(&result.Invoices[i]))
	}
	return out, nil
}

func (s *service) ListBySale(ctx context.Context, saleID uuid.UUID) ([]InvoiceDTO, error) {
	rows, err := s.repo.FindBySale(ctx, saleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices by sale")
	}
	out := make([]InvoiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toInvoiceDTO(&rows[i]))
	}
	return out, nil
}

// Update touches the mutable header fields. Amounts and items are frozen at
// creation.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*InvoiceDTO, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice status")
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}

	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}

	if input.Status != nil {
		invoice.Status = *input.Status
	}
	if input.PaymentStatus != nil {
		invoice.PaymentStatus = *input.PaymentStatus
	}
	if input.Notes != nil {
		invoice.Notes = input.Notes
	}
	if input.DueDate != nil {
		invoice.DueDate = *input.DueDate
	}

	updated, err := s.repo.Update(ctx, invoice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice")
	}
	return toInvoiceDTO(updated), nil
}

// MarkPaid settles the invoice in full.
func (s *service) MarkPaid(ctx context.Context, id uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}

	invoice.Status = enums.InvoiceStatusPaid
	invoice.PaymentStatus = enums.PaymentStatusPaid
	updated, err := s.repo.Update(ctx, invoice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark invoice paid")
	}

	if s.events != nil {
		_ = s.events.PublishValue(ctx, enums.EventInvoicePaid, PaidPayload{
			InvoiceID:     updated.ID,
			InvoiceNumber: updated.InvoiceNumber,
			Total:         updated.Total,
		})
	}
	return toInvoiceDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete invoice")
	}
	return nil
}

func (s *service) publishCreated(ctx context.Context, invoice *models.Invoice) {
	if s.events == nil {
		return
	}
	_ = s.events.PublishValue(ctx, enums.EventInvoiceCreated, CreatedPayload{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		SaleID:        invoice.SaleID,
		CustomerID:    invoice.CustomerID,
		Total:         invoice.Total,
	})
}

// effectiveTaxRate backs the rate out of the recorded amounts. A fully
// discounted sale has no taxable base, so the rate reads as zero.
func effectiveTaxRate(subtotal, discount, tax float64) float64 {
	base := subtotal - discount
	if base <= money.Tolerance {
		return 0
	}
	return tax / base
}
