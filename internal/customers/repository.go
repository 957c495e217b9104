package customers

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

// Repository wires together customer and vehicle persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a customer with vehicles preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("Vehicles", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&customer, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Create inserts the customer together with any nested vehicles.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// Update persists the customer row (vehicles are managed separately).
func (r *Repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Omit("Vehicles").Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete removes the customer; vehicles cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Vehicles").Delete(&models.Customer{ID: id}).Error
}

// RecordPurchase bumps the lifetime rollup after a completed sale.
func (r *Repository) RecordPurchase(ctx context.Context, customerID uuid.UUID, amount float64, at time.Time) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE customers
		SET total_purchases = total_purchases + ?,
			last_purchase_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, amount, at, customerID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "record purchase")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return nil
}

// RollbackPurchase reverses a rollup contribution when a sale is deleted. The
// last purchase date is left alone; it is informational, not an invariant.
func (r *Repository) RollbackPurchase(ctx context.Context, customerID uuid.UUID, amount float64) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE customers
		SET total_purchases = total_purchases - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, amount, customerID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "rollback purchase")
	}
	return nil
}

// AddVehicle attaches a vehicle to the customer.
func (r *Repository) AddVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// UpdateVehicle persists the vehicle row.
func (r *Repository) UpdateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.db.WithContext(ctx).Save(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// FindVehicle loads one vehicle scoped to its owner.
func (r *Repository) FindVehicle(ctx context.Context, customerID, vehicleID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		First(&vehicle, "id = ? AND customer_id = ?", vehicleID, customerID).
		Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// DeleteVehicle removes one vehicle scoped to its owner.
func (r *Repository) DeleteVehicle(ctx context.Context, customerID, vehicleID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", vehicleID, customerID).
		Delete(&models.Vehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TopByPurchases returns the biggest-spending customers, ties broken by the
// most recent purchase.
func (r *Repository) TopByPurchases(ctx context.Context, limit int) ([]models.Customer, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Where("total_purchases > 0").
		Order("total_purchases DESC").
		Order("last_purchase_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListFilters describe the supported customer list filters.
type ListFilters struct {
	Status *string
	Query  string
}

type listQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// List returns a filtered, cursor-paginated slice of customers.
func (r *Repository) List(ctx context.Context, query listQuery) (*ListResult, error) {
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	qb := r.db.WithContext(ctx).Model(&models.Customer{}).Preload("Vehicles")

	filter := query.Filters
	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?)", pattern, pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Customer
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	page := pagination.BuildPage(rows, query.Pagination.Limit, func(c models.Customer) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})

	return &ListResult{Customers: page.Items, NextCursor: page.NextCursor}, nil
}
