package sales

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

// Repository persists completed sales and their line snapshots.
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

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&sale).
		Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *Repository) FindByNumber(ctx context.Context, saleNumber string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("sale_number = ?", saleNumber).
		First(&sale).
		Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// Create inserts the sale together with its items.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// Update persists the sale header, leaving the item snapshots alone.
func (r *Repository) Update(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Save(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// Delete removes the sale and, through the cascade, its items.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Sale{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RevenueSince sums completed sales from the given instant. The dashboard
// projection uses it for the running daily total.
func (r *Repository) RevenueSince(ctx context.Context, from time.Time) (int64, float64, error) {
	var row struct {
		SaleCount    int64
		TotalRevenue float64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS sale_count, COALESCE(SUM(total), 0) AS total_revenue
		FROM sales
		WHERE status = ? AND date >= ?
	`, enums.SaleStatusCompleted, from).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.SaleCount, row.TotalRevenue, nil
}

// ListFilters describe the supported filter knobs for the sales list.
type ListFilters struct {
	From       *time.Time
	To         *time.Time
	CustomerID *uuid.UUID
	OperatorID *uuid.UUID
	Status     *string
	Query      string
}

type listQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// List returns a filtered, cursor-paginated slice of the sales log, newest
// first.
func (r *Repository) List(ctx context.Context, query listQuery) (*ListResult, error) {
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	qb := r.db.WithContext(ctx).Model(&models.Sale{}).Preload("Items")

	filter := query.Filters
	if filter.From != nil {
		qb = qb.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		qb = qb.Where("date < ?", *filter.To)
	}
	if filter.CustomerID != nil {
		qb = qb.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.OperatorID != nil {
		qb = qb.Where("operator_id = ?", *filter.OperatorID)
	}
	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(sale_number) LIKE ? OR LOWER(customer_name) LIKE ?)", pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Sale
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	page := pagination.BuildPage(rows, query.Pagination.Limit, func(s models.Sale) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	})

	return &ListResult{Sales: page.Items, NextCursor: page.NextCursor}, nil
}
