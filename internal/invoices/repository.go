package invoices

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

// Repository persists invoices and their line snapshots.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository onto the caller's transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&invoice).
		Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindBySale returns every invoice derived from the sale, oldest first.
func (r *Repository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// Create inserts the invoice together with its items.
func (r *Repository) Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// Update persists the invoice header, leaving the item snapshots alone.
func (r *Repository) Update(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Save(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invoice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFilters describe the supported filter knobs for the invoice list.
type ListFilters struct {
	From          *time.Time
	To            *time.Time
	CustomerID    *uuid.UUID
	Status        *string
	PaymentStatus *string
	Query         string
}

type listQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// List returns a filtered, cursor-paginated slice of invoices, newest first.
func (r *Repository) List(ctx context.Context, query listQuery) (*ListResult, error) {
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	qb := r.db.WithContext(ctx).Model(&models.Invoice{}).Preload("Items")

	filter := query.Filters
	if filter.From != nil {
		qb = qb.Where("issue_date >= ?", *filter.From)
	}
	if filter.To != nil {
		qb = qb.Where("issue_date < ?", *filter.To)
	}
	if filter.CustomerID != nil {
		qb = qb.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		qb = qb.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(invoice_number) LIKE ? OR LOWER(customer_name) LIKE ?)", pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Invoice
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	page := pagination.BuildPage(rows, query.Pagination.Limit, func(i models.Invoice) pagination.Cursor {
		return pagination.Cursor{CreatedAt: i.CreatedAt, ID: i.ID}
	})

	return &ListResult{Invoices: page.Items, NextCursor: page.NextCursor}, nil
}
