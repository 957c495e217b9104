package projection

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/internal/catalog"
	"github.com/angeldelarosa/garagepos-backend/internal/sales"
	"github.com/angeldelarosa/garagepos-backend/pkg/config"
	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
	"github.com/angeldelarosa/garagepos-backend/pkg/pubsub"
)

// repoLister serves the recent-sales query straight off the table, standing
// in for the full sales service.
type repoLister struct {
	conn *gorm.DB
}

func (r repoLister) List(ctx context.Context, input sales.ListSalesInput) (*sales.ListSalesOutput, error) {
	var rows []models.Sale
	err := r.conn.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(input.Pagination.Limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := &sales.ListSalesOutput{}
	for _, row := range rows {
		out.Sales = append(out.Sales, sales.SaleDTO{
			ID:         row.ID,
			SaleNumber: row.SaleNumber,
			Total:      row.Total,
			Date:       row.Date,
		})
	}
	return out, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:projection_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Sale{}, &models.SaleItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedSale(t *testing.T, conn *gorm.DB, number string, total float64, date time.Time) *models.Sale {
	t.Helper()

	sale := &models.Sale{
		SaleNumber:    number,
		Date:          date,
		CustomerID:    uuid.New(),
		CustomerName:  "Walk-in",
		CustomerEmail: "walkin@example.com",
		CustomerPhone: "555-0100",
		Subtotal:      total,
		Total:         total,
		PaymentMethod: enums.PaymentMethodCash,
		Status:        enums.SaleStatusCompleted,
		OperatorID:    uuid.New(),
	}
	if err := conn.Create(sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	return sale
}

type projectorEnv struct {
	conn      *gorm.DB
	projector *Projector
	bus       *pubsub.Bus
	salesRepo *sales.Repository
}

func newProjectorEnv(t *testing.T, recentSize int) *projectorEnv {
	t.Helper()

	conn := newTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "projection-test", Level: zerolog.ErrorLevel})
	salesRepo := sales.NewRepository(conn)

	svc := repoLister{conn: conn}

	projector, err := New(
		config.ProjectionConfig{Channel: "test-events", RecentSalesSize: recentSize},
		svc,
		salesRepo,
		catalog.NewRepository(conn),
		nil,
		logg,
	)
	if err != nil {
		t.Fatalf("new projector: %v", err)
	}

	bus := pubsub.New(logg)
	projector.Register(bus)
	return &projectorEnv{conn: conn, projector: projector, bus: bus, salesRepo: salesRepo}
}

func TestRebuildPopulatesSnapshot(t *testing.T) {
	t.Parallel()

	env := newProjectorEnv(t, 5)
	ctx := context.Background()
	now := time.Now()

	seedSale(t, env.conn, "SALE-0001", 50.00, now)
	seedSale(t, env.conn, "SALE-0002", 25.00, now)
	lowProduct := &models.Product{Name: "Brake Pads", Price: 45, Stock: 1, LowStockThreshold: 3, IsActive: true}
	if err := env.conn.Create(lowProduct).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	snapshot, err := env.projector.Rebuild(ctx)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if snapshot.TodaySaleCount != 2 {
		t.Fatalf("today count = %d", snapshot.TodaySaleCount)
	}
	if snapshot.TodayRevenue != 75.00 {
		t.Fatalf("today revenue = %v", snapshot.TodayRevenue)
	}
	if len(snapshot.RecentSales) != 2 {
		t.Fatalf("recent = %+v", snapshot.RecentSales)
	}
	if len(snapshot.LowStock) != 1 || snapshot.LowStock[0].Name != "Brake Pads" {
		t.Fatalf("low stock = %+v", snapshot.LowStock)
	}
}

func TestSaleCompletedUpdatesIncrementally(t *testing.T) {
	t.Parallel()

	env := newProjectorEnv(t, 2)
	ctx := context.Background()

	if _, err := env.projector.Rebuild(ctx); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	for i := 1; i <= 3; i++ {
		payload := sales.CompletedPayload{
			SaleID:     uuid.New(),
			SaleNumber: fmt.Sprintf("SALE-%04d", i),
			OperatorID: uuid.New(),
			CustomerID: uuid.New(),
			Total:      10.00,
			Date:       time.Now(),
		}
		event, err := pubsub.NewEvent(enums.EventSaleCompleted, payload)
		if err != nil {
			t.Fatalf("new event: %v", err)
		}
		if err := env.bus.Publish(ctx, event); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	snapshot := env.projector.Snapshot()
	if snapshot.TodayRevenue != 30.00 {
		t.Fatalf("revenue = %v", snapshot.TodayRevenue)
	}
	if snapshot.TodaySaleCount != 3 {
		t.Fatalf("count = %d", snapshot.TodaySaleCount)
	}
	// The feed is capped at the configured size, newest first.
	if len(snapshot.RecentSales) != 2 {
		t.Fatalf("recent = %+v", snapshot.RecentSales)
	}
	if snapshot.RecentSales[0].SaleNumber != "SALE-0003" {
		t.Fatalf("head = %s", snapshot.RecentSales[0].SaleNumber)
	}
}

func TestSaleDeletedTriggersRebuild(t *testing.T) {
	t.Parallel()

	env := newProjectorEnv(t, 5)
	ctx := context.Background()
	sale := seedSale(t, env.conn, "SALE-0001", 40.00, time.Now())

	if _, err := env.projector.Rebuild(ctx); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if env.projector.Snapshot().TodaySaleCount != 1 {
		t.Fatal("expected one sale before delete")
	}

	if err := env.conn.Where("id = ?", sale.ID).Delete(&models.Sale{}).Error; err != nil {
		t.Fatalf("remove sale: %v", err)
	}
	event, err := pubsub.NewEvent(enums.EventSaleDeleted, sales.DeletedPayload{SaleID: sale.ID, SaleNumber: sale.SaleNumber})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := env.bus.Publish(ctx, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	snapshot := env.projector.Snapshot()
	if snapshot.TodaySaleCount != 0 || len(snapshot.RecentSales) != 0 {
		t.Fatalf("snapshot not rebuilt: %+v", snapshot)
	}
}
