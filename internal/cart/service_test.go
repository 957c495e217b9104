package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/internal/catalog"
	"github.com/angeldelarosa/garagepos-backend/pkg/db"
	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:cart_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.CartRecord{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(conn), db.FromConn(conn), catalog.NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedProduct(t *testing.T, conn *gorm.DB, name string, price float64, stock int, active bool) *models.Product {
	t.Helper()

	sku := fmt.Sprintf("SKU-%s", uuid.NewString()[:8])
	product := &models.Product{
		Name:     name,
		SKU:      &sku,
		Price:    price,
		Stock:    stock,
		IsActive: active,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestGetActiveCreatesEmptyCart(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	operatorID := uuid.New()

	cart, err := svc.GetActive(context.Background(), operatorID)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if cart.OperatorID != operatorID {
		t.Fatalf("operator mismatch: %s", cart.OperatorID)
	}
	if len(cart.Lines) != 0 || cart.Total != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}

	again, err := svc.GetActive(context.Background(), operatorID)
	if err != nil {
		t.Fatalf("get active again: %v", err)
	}
	if again.ID != cart.ID {
		t.Fatalf("expected same active cart, got %s and %s", cart.ID, again.ID)
	}
}

func TestAddItemMergesQuantity(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	operatorID := uuid.New()
	product := seedProduct(t, conn, "Oil Filter", 12.50, 10, true)

	if _, err := svc.AddItem(context.Background(), operatorID, product.ID, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddItem(context.Background(), operatorID, product.ID, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Qty != 5 {
		t.Fatalf("expected merged qty 5, got %d", cart.Lines[0].Qty)
	}
	if cart.Subtotal != 62.5 {
		t.Fatalf("subtotal = %v, want 62.5", cart.Subtotal)
	}
	if len(cart.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", cart.Warnings)
	}
}

func TestAddItemInsufficientStockIsNoOp(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	operatorID := uuid.New()
	product := seedProduct(t, conn, "Brake Pads", 45.00, 2, true)

	cart, err := svc.AddItem(context.Background(), operatorID, product.ID, 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(cart.Lines) != 0 {
		t.Fatalf("expected the line to be skipped, got %+v", cart.Lines)
	}
	if len(cart.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", cart.Warnings)
	}
	warning := cart.Warnings[0]
	if warning.Type != enums.CartWarningInsufficientStock {
		t.Fatalf("warning type = %s", warning.Type)
	}
	if warning.Requested != 3 || warning.Available != 2 {
		t.Fatalf("warning = %+v", warning)
	}
}

func TestAddItemOutOfStock(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	operatorID := uuid.New()
	product := seedProduct(t, conn, "Wiper Blades", 18.00, 0, true)

	cart, err := svc.AddItem(context.Background(), operatorID, product.ID, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected no lines, got %+v", cart.Lines)
	}
	if len(cart.Warnings) != 1 || cart.Warnings[0].Type != enums.CartWarningOutOfStock {
		t.Fatalf("warnings = %+v", cart.Warnings)
	}
}

func TestAddItemInactiveProduct(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	operatorID := uuid.New()
	product := seedProduct(t, conn, "Discontinued Belt", 9.99, 5, false)

	cart, err := svc.AddItem(context.Background(), operatorID, product.ID, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(cart.Warnings) != 1 || cart.Warnings[0].Type != enums.CartWarningProductInactive {
		t.Fatalf("warnings = %+v", cart.Warnings)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetQuantity(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	operatorID := uuid.New()
	product := seedProduct(t, conn, "Air Filter", 22.00, 8, true)

	if _, err := svc.AddItem(context.Background(), operatorID, product.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := svc.SetQuantity(context.Background(), operatorID, product.ID, 6)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if cart.Lines[0].Qty != 6 {
		t.Fatalf("qty = %d, want 6", cart.Lines[0].Qty)
	}

	// Over stock leaves the existing quantity in place.
	cart, err = svc.SetQuantity(context.Background(), operatorID, product.ID, 9)
	if err != nil {
		t.Fatalf("set over stock: %v", err)
	}
	if cart.Lines[0].Qty != 6 {
		t.Fatalf("qty changed to %d despite warning", cart.Lines[0].Qty)
	}
	if len(cart.Warnings) != 1 || cart.Warnings[0].Type != enums.CartWarningInsufficientStock {
		t.Fatalf("warnings = %+v", cart.Warnings)
	}

	// Zero removes the line.
	cart, err = svc.SetQuantity(context.Background(), operatorID, product.ID, 0)
	if err != nil {
		t.Fatalf("set zero: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected line removed, got %+v", cart.Lines)
	}
}

func TestSetQuantityMissingLine(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, "Spark Plug", 4.50, 30, true)

	_, err := svc.SetQuantity(context.Background(), uuid.New(), product.ID, 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetAdjustmentsAndTotals(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	operatorID := uuid.New()
	a := seedProduct(t, conn, "Coolant", 10.00, 50, true)
	b := seedProduct(t, conn, "Oil Quart", 5.00, 50, true)

	if _, err := svc.AddItem(context.Background(), operatorID, a.ID, 2); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), operatorID, b.ID, 2); err != nil {
		t.Fatalf("add b: %v", err)
	}

	discount := 10.0
	tax := 8.0
	method := enums.PaymentMethodCard
	notes := "regular customer"
	customerID := uuid.New()
	cart, err := svc.SetAdjustments(context.Background(), operatorID, AdjustmentsInput{
		CustomerID:      &customerID,
		DiscountPercent: &discount,
		TaxPercent:      &tax,
		PaymentMethod:   &method,
		Notes:           &notes,
	})
	if err != nil {
		t.Fatalf("set adjustments: %v", err)
	}

	// 30.00 gross, 3.00 discount, 2.16 tax on the 27.00 base.
	if cart.Subtotal != 30.0 {
		t.Fatalf("subtotal = %v", cart.Subtotal)
	}
	if diff := cart.DiscountAmount - 3.0; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("discount = %v", cart.DiscountAmount)
	}
	if diff := cart.TaxAmount - 2.16; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("tax = %v", cart.TaxAmount)
	}
	if diff := cart.Total - 29.16; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("total = %v", cart.Total)
	}
	if cart.PaymentMethod != enums.PaymentMethodCard {
		t.Fatalf("payment method = %s", cart.PaymentMethod)
	}
	if cart.CustomerID == nil || *cart.CustomerID != customerID {
		t.Fatalf("customer = %v", cart.CustomerID)
	}
}

func TestSetAdjustmentsValidation(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	operatorID := uuid.New()

	bad := 120.0
	_, err := svc.SetAdjustments(context.Background(), operatorID, AdjustmentsInput{DiscountPercent: &bad})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	method := enums.PaymentMethod("barter")
	_, err = svc.SetAdjustments(context.Background(), operatorID, AdjustmentsInput{PaymentMethod: &method})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClearResetsCart(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	operatorID := uuid.New()
	product := seedProduct(t, conn, "Radiator Hose", 28.00, 6, true)

	if _, err := svc.AddItem(context.Background(), operatorID, product.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	discount := 15.0
	notes := "clearance"
	if _, err := svc.SetAdjustments(context.Background(), operatorID, AdjustmentsInput{
		DiscountPercent: &discount,
		Notes:           &notes,
	}); err != nil {
		t.Fatalf("set adjustments: %v", err)
	}

	cart, err := svc.Clear(context.Background(), operatorID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("lines remain: %+v", cart.Lines)
	}
	if cart.DiscountPercent != 0 || cart.TaxPercent != 0 {
		t.Fatalf("adjustments remain: %+v", cart)
	}
	if cart.Notes != nil {
		t.Fatalf("notes remain: %v", *cart.Notes)
	}
	if cart.Total != 0 {
		t.Fatalf("total = %v", cart.Total)
	}
}
