package reports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:reports_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Sale{}, &models.SaleItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedSale(t *testing.T, conn *gorm.DB, date time.Time, method enums.PaymentMethod, status enums.SaleStatus, items ...models.SaleItem) *models.Sale {
	t.Helper()

	subtotal := 0.0
	for i := range items {
		items[i].Subtotal = items[i].UnitPrice * float64(items[i].Qty)
		subtotal += items[i].Subtotal
	}
	tax := subtotal * 0.08
	sale := &models.Sale{
		SaleNumber:    fmt.Sprintf("SALE-%s", uuid.NewString()[:8]),
		Date:          date,
		CustomerID:    uuid.New(),
		CustomerName:  "Walk-in",
		CustomerEmail: "walkin@example.com",
		CustomerPhone: "555-0100",
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal + tax,
		PaymentMethod: method,
		Status:        status,
		OperatorID:    uuid.New(),
	}
	if err := conn.Create(sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	return sale
}

func TestSalesSummary(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	seedSale(t, conn, day, enums.PaymentMethodCash, enums.SaleStatusCompleted,
		models.SaleItem{ProductID: uuid.New(), Name: "Oil Filter", UnitPrice: 10, Qty: 2})
	seedSale(t, conn, day.Add(time.Hour), enums.PaymentMethodCard, enums.SaleStatusCompleted,
		models.SaleItem{ProductID: uuid.New(), Name: "Wiper Blades", UnitPrice: 20, Qty: 1})
	// Cancelled sales are excluded.
	seedSale(t, conn, day, enums.PaymentMethodCash, enums.SaleStatusCancelled,
		models.SaleItem{ProductID: uuid.New(), Name: "Battery", UnitPrice: 120, Qty: 1})
	// Outside the window.
	seedSale(t, conn, day.AddDate(0, 1, 0), enums.PaymentMethodCash, enums.SaleStatusCompleted,
		models.SaleItem{ProductID: uuid.New(), Name: "Coolant", UnitPrice: 12, Qty: 1})

	summary, err := svc.SalesSummary(context.Background(), Range{
		From: day.Add(-time.Hour),
		To:   day.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.SaleCount != 2 {
		t.Fatalf("sale count = %d", summary.SaleCount)
	}
	// 20*1.08 + 20*1.08 = 43.20
	if diff := summary.TotalRevenue - 43.20; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("revenue = %v", summary.TotalRevenue)
	}
	if diff := summary.AverageTicket - 21.60; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("average = %v", summary.AverageTicket)
	}
	if len(summary.ByMethod) != 2 {
		t.Fatalf("by method = %+v", summary.ByMethod)
	}
}

func TestSalesSummaryValidatesRange(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)

	now := time.Now()
	_, err := svc.SalesSummary(context.Background(), Range{From: now, To: now})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTopProducts(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	filterID := uuid.New()
	padID := uuid.New()

	seedSale(t, conn, day, enums.PaymentMethodCash, enums.SaleStatusCompleted,
		models.SaleItem{ProductID: filterID, Name: "Oil Filter", UnitPrice: 10, Qty: 4},
		models.SaleItem{ProductID: padID, Name: "Brake Pads", UnitPrice: 45, Qty: 1})
	seedSale(t, conn, day.Add(time.Hour), enums.PaymentMethodCard, enums.SaleStatusCompleted,
		models.SaleItem{ProductID: filterID, Name: "Oil Filter", UnitPrice: 10, Qty: 2})

	top, err := svc.TopProducts(context.Background(), Range{From: day.Add(-time.Hour), To: day.Add(24 * time.Hour)}, 5)
	if err != nil {
		t.Fatalf("top products: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("rows = %+v", top)
	}
	if top[0].ProductID != filterID || top[0].UnitsSold != 6 {
		t.Fatalf("leader = %+v", top[0])
	}
	if top[0].TotalRevenue != 60 {
		t.Fatalf("leader revenue = %v", top[0].TotalRevenue)
	}
}

func TestInventoryReport(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)

	products := []models.Product{
		{Name: "Oil Filter", Price: 10, Stock: 20, LowStockThreshold: 5, IsActive: true},
		{Name: "Brake Pads", Price: 45, Stock: 2, LowStockThreshold: 4, IsActive: true},
		{Name: "Old Belt", Price: 9, Stock: 1, LowStockThreshold: 4, IsActive: false},
	}
	for i := range products {
		if err := conn.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	report, err := svc.Inventory(context.Background())
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if report.ProductCount != 2 {
		t.Fatalf("product count = %d", report.ProductCount)
	}
	if report.TotalUnits != 22 {
		t.Fatalf("units = %d", report.TotalUnits)
	}
	// 10*20 + 45*2
	if report.TotalValue != 290 {
		t.Fatalf("value = %v", report.TotalValue)
	}
	if len(report.LowStock) != 1 || report.LowStock[0].Name != "Brake Pads" {
		t.Fatalf("low stock = %+v", report.LowStock)
	}
}

func TestTaxReport(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	monday := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	seedSale(t, conn, monday, enums.PaymentMethodCash, enums.SaleStatusCompleted,
		models.SaleItem{ProductID: uuid.New(), Name: "Oil Filter", UnitPrice: 10, Qty: 5})
	seedSale(t, conn, tuesday, enums.PaymentMethodCard, enums.SaleStatusCompleted,
		models.SaleItem{ProductID: uuid.New(), Name: "Coolant", UnitPrice: 25, Qty: 2})

	report, err := svc.Tax(context.Background(), Range{From: monday.Add(-time.Hour), To: tuesday.Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("tax report: %v", err)
	}
	if len(report.Days) != 2 {
		t.Fatalf("days = %+v", report.Days)
	}
	// 50*0.08 + 50*0.08
	if diff := report.TaxCollected - 8.0; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("collected = %v", report.TaxCollected)
	}
}
