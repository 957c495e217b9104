package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
)

const defaultTopLimit = 10

// Range is a half-open [From, To) reporting window.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "both from and to are required")
	}
	if !r.To.After(r.From) {
		return pkgerrors.New(pkgerrors.CodeValidation, "to must be after from")
	}
	return nil
}

// PaymentMethodBreakdown is revenue attributed to one tender type.
type PaymentMethodBreakdown struct {
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	SaleCount     int64               `json:"sale_count"`
	TotalRevenue  float64             `json:"total_revenue"`
}

// SalesSummary aggregates the completed sales inside a window.
type SalesSummary struct {
	From          time.Time                `json:"from"`
	To            time.Time                `json:"to"`
	SaleCount     int64                    `json:"sale_count"`
	TotalRevenue  float64                  `json:"total_revenue"`
	TotalDiscount float64                  `json:"total_discount"`
	TotalTax      float64                  `json:"total_tax"`
	AverageTicket float64                  `json:"average_ticket"`
	ByMethod      []PaymentMethodBreakdown `json:"by_payment_method"`
}

// TopProduct is one row of the best-sellers report.
type TopProduct struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	UnitsSold    int64     `json:"units_sold"`
	TotalRevenue float64   `json:"total_revenue"`
}

// LowStockItem flags a product at or below its reorder threshold.
type LowStockItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	SKU       *string   `json:"sku,omitempty"`
	Stock     int       `json:"stock"`
	Threshold int       `json:"threshold"`
}

// InventoryReport values the active catalog at current prices.
type InventoryReport struct {
	ProductCount int64          `json:"product_count"`
	TotalUnits   int64          `json:"total_units"`
	TotalValue   float64        `json:"total_value"`
	LowStock     []LowStockItem `json:"low_stock"`
}

// TaxDay is tax collected across one calendar day.
type TaxDay struct {
	Day          string  `json:"day"`
	SaleCount    int64   `json:"sale_count"`
	TaxCollected float64 `json:"tax_collected"`
}

// TaxReport totals tax collected inside a window, broken out by day.
type TaxReport struct {
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	TaxCollected float64   `json:"tax_collected"`
	Days         []TaxDay  `json:"days"`
}

// Service serves the read-only reporting surface.
type Service interface {
	SalesSummary(ctx context.Context, window Range) (*SalesSummary, error)
	TopProducts(ctx context.Context, window Range, limit int) ([]TopProduct, error)
	Inventory(ctx context.Context) (*InventoryReport, error)
	Tax(ctx context.Context, window Range) (*TaxReport, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SalesSummary(ctx context.Context, window Range) (*SalesSummary, error) {
	if err := window.validate(); err != nil {
		return nil, err
	}

	totals, err := s.repo.salesTotals(ctx, window.From, window.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sales totals")
	}
	byMethod, err := s.repo.salesByPaymentMethod(ctx, window.From, window.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sales by payment method")
	}

	summary := &SalesSummary{
		From:          window.From,
		To:            window.To,
		SaleCount:     totals.SaleCount,
		TotalRevenue:  totals.TotalRevenue,
		TotalDiscount: totals.TotalDiscount,
		TotalTax:      totals.TotalTax,
		ByMethod:      make([]PaymentMethodBreakdown, 0, len(byMethod)),
	}
	if totals.SaleCount > 0 {
		summary.AverageTicket = totals.TotalRevenue / float64(totals.SaleCount)
	}
	for _, row := range byMethod {
		summary.ByMethod = append(summary.ByMethod, PaymentMethodBreakdown{
			PaymentMethod: row.PaymentMethod,
			SaleCount:     row.SaleCount,
			TotalRevenue:  row.TotalRevenue,
		})
	}
	return summary, nil
}

func (s *service) TopProducts(ctx context.Context, window Range, limit int) ([]TopProduct, error) {
	if err := window.validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}

	rows, err := s.repo.topProducts(ctx, window.From, window.To, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products")
	}
	out := make([]TopProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopProduct{
			ProductID:    row.ProductID,
			Name:         row.Name,
			UnitsSold:    row.UnitsSold,
			TotalRevenue: row.TotalRevenue,
		})
	}
	return out, nil
}

func (s *service) Inventory(ctx context.Context) (*InventoryReport, error) {
	totals, err := s.repo.inventoryTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inventory totals")
	}
	low, err := s.repo.lowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "low stock")
	}

	report := &InventoryReport{
		ProductCount: totals.ProductCount,
		TotalUnits:   totals.TotalUnits,
		TotalValue:   totals.TotalValue,
		LowStock:     make([]LowStockItem, 0, len(low)),
	}
	for _, product := range low {
		report.LowStock = append(report.LowStock, LowStockItem{
			ProductID: product.ID,
			Name:      product.Name,
			SKU:       product.SKU,
			Stock:     product.Stock,
			Threshold: product.LowStockThreshold,
		})
	}
	return report, nil
}

func (s *service) Tax(ctx context.Context, window Range) (*TaxReport, error) {
	if err := window.validate(); err != nil {
		return nil, err
	}

	rows, err := s.repo.taxByDay(ctx, window.From, window.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "tax by day")
	}

	report := &TaxReport{From: window.From, To: window.To, Days: make([]TaxDay, 0, len(rows))}
	for _, row := range rows {
		report.TaxCollected += row.TaxCollected
		report.Days = append(report.Days, TaxDay{
			Day:          row.Day,
			SaleCount:    row.SaleCount,
			TaxCollected: row.TaxCollected,
		})
	}
	return report, nil
}
