package catalog

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate products: %v", err)
	}
	return conn
}

func mustCreateTestProduct(t *testing.T, conn *gorm.DB, stock int) *models.Product {
	t.Helper()
	sku := "SKU-" + uuid.NewString()
	product := &models.Product{
		Name:              "Oil Filter",
		SKU:               &sku,
		Price:             12.49,
		Stock:             stock,
		LowStockThreshold: 2,
		IsActive:          true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
