package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
)

// Repository runs the read-only aggregates behind the reporting endpoints.
// Everything here queries the sales snapshot tables, never the live cart.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type salesTotalsRow struct {
	SaleCount     int64
	TotalRevenue  float64
	TotalDiscount float64
	TotalTax      float64
}

type paymentMethodRow struct {
	PaymentMethod enums.PaymentMethod
	SaleCount     int64
	TotalRevenue  float64
}

func (r *Repository) salesTotals(ctx context.Context, from, to time.Time) (*salesTotalsRow, error) {
	var row salesTotalsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                  AS sale_count,
			COALESCE(SUM(total), 0)    AS total_revenue,
			COALESCE(SUM(discount), 0) AS total_discount,
			COALESCE(SUM(tax), 0)      AS total_tax
		FROM sales
		WHERE status = ? AND date >= ? AND date < ?
	`, enums.SaleStatusCompleted, from, to).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) salesByPaymentMethod(ctx context.Context, from, to time.Time) ([]paymentMethodRow, error) {
	var rows []paymentMethodRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT payment_method,
			COUNT(*)               AS sale_count,
			COALESCE(SUM(total), 0) AS total_revenue
		FROM sales
		WHERE status = ? AND date >= ? AND date < ?
		GROUP BY payment_method
		ORDER BY total_revenue DESC
	`, enums.SaleStatusCompleted, from, to).Scan(&rows).Error
	return rows, err
}

type topProductRow struct {
	ProductID    uuid.UUID
	Name         string
	UnitsSold    int64
	TotalRevenue float64
}

func (r *Repository) topProducts(ctx context.Context, from, to time.Time, limit int) ([]topProductRow, error) {
	var rows []topProductRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT si.product_id,
			si.name,
			COALESCE(SUM(si.qty), 0)      AS units_sold,
			COALESCE(SUM(si.subtotal), 0) AS total_revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.status = ? AND s.date >= ? AND s.date < ?
		GROUP BY si.product_id, si.name
		ORDER BY units_sold DESC, total_revenue DESC
		LIMIT ?
	`, enums.SaleStatusCompleted, from, to, limit).Scan(&rows).Error
	return rows, err
}

type inventoryTotalsRow struct {
	ProductCount int64
	TotalUnits   int64
	TotalValue   float64
}

func (r *Repository) inventoryTotals(ctx context.Context) (*inventoryTotalsRow, error) {
	var row inventoryTotalsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                        AS product_count,
			COALESCE(SUM(stock), 0)          AS total_units,
			COALESCE(SUM(price * stock), 0)  AS total_value
		FROM products
		WHERE is_active = ?
	`, true).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) lowStock(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("stock <= low_stock_threshold").
		Order("stock ASC").
		Find(&rows).
		Error
	return rows, err
}

type taxDayRow struct {
	Day          string
	SaleCount    int64
	TaxCollected float64
}

func (r *Repository) taxByDay(ctx context.Context, from, to time.Time) ([]taxDayRow, error) {
	var rows []taxDayRow
	// DATE() is understood by both engines we run on.
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(date)            AS day,
			COUNT(*)               AS sale_count,
			COALESCE(SUM(tax), 0)  AS tax_collected
		FROM sales
		WHERE status = ? AND date >= ? AND date < ?
		GROUP BY DATE(date)
		ORDER BY day ASC
	`, enums.SaleStatusCompleted, from, to).Scan(&rows).Error
	return rows, err
}
