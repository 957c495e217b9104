// Package projection maintains the read-only dashboard snapshot. It feeds off
// the event bus and is never part of the write path; a stale or empty
// snapshot only affects the dashboard, not sales.
package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/internal/sales"
	"github.com/angeldelarosa/garagepos-backend/pkg/config"
	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
	"github.com/angeldelarosa/garagepos-backend/pkg/pubsub"
)

const snapshotName = "dashboard"
const snapshotTTL = 10 * time.Minute

type recentSalesLister interface {
	List(ctx context.Context, input sales.ListSalesInput) (*sales.ListSalesOutput, error)
}

type revenueSummer interface {
	RevenueSince(ctx context.Context, from time.Time) (int64, float64, error)
}

type lowStockLister interface {
	ListLowStock(ctx context.Context) ([]models.Product, error)
}

type snapshotCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SnapshotKey(name string) string
}

type subscriber interface {
	Subscribe(eventType enums.EventType, handler pubsub.Handler)
}

// RecentSale is one line of the dashboard's latest-sales feed.
type RecentSale struct {
	SaleID     uuid.UUID `json:"sale_id"`
	SaleNumber string    `json:"sale_number"`
	Total      float64   `json:"total"`
	Date       time.Time `json:"date"`
}

// LowStockAlert flags a product that needs reordering.
type LowStockAlert struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Threshold int       `json:"threshold"`
}

// Snapshot is the dashboard read model.
type Snapshot struct {
	GeneratedAt    time.Time       `json:"generated_at"`
	TodayRevenue   float64         `json:"today_revenue"`
	TodaySaleCount int64           `json:"today_sale_count"`
	RecentSales    []RecentSale    `json:"recent_sales"`
	LowStock       []LowStockAlert `json:"low_stock"`
}

// Projector keeps the snapshot current from domain events.
type Projector struct {
	sales   recentSalesLister
	revenue revenueSummer
	catalog lowStockLister
	cache   snapshotCache
	logg    *logger.Logger
	cfg     config.ProjectionConfig
	now     func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
}

func New(
	cfg config.ProjectionConfig,
	salesSvc recentSalesLister,
	revenue revenueSummer,
	catalog lowStockLister,
	cache snapshotCache,
	logg *logger.Logger,
) (*Projector, error) {
	if salesSvc == nil || revenue == nil || catalog == nil {
		return nil, fmt.Errorf("projection requires sales, revenue and catalog sources")
	}
	if cfg.RecentSalesSize <= 0 {
		cfg.RecentSalesSize = 10
	}
	return &Projector{
		sales:   salesSvc,
		revenue: revenue,
		catalog: catalog,
		cache:   cache,
		logg:    logg,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// Register wires the projector onto the bus. sale.completed is applied
// incrementally; everything else triggers a rebuild because the change can
// touch rows outside the snapshot window.
func (p *Projector) Register(bus subscriber) {
	bus.Subscribe(enums.EventSaleCompleted, p.onSaleCompleted)
	bus.Subscribe(enums.EventSaleDeleted, p.rebuildHandler)
	bus.Subscribe(enums.EventStockChanged, p.rebuildHandler)
	bus.Subscribe(enums.EventInvoiceCreated, p.rebuildHandler)
	bus.Subscribe(enums.EventInvoicePaid, p.rebuildHandler)
}

// Snapshot returns a copy of the current dashboard state.
func (p *Projector) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := p.snapshot
	out.RecentSales = append([]RecentSale(nil), p.snapshot.RecentSales...)
	out.LowStock = append([]LowStockAlert(nil), p.snapshot.LowStock...)
	return out
}

// Rebuild recomputes the snapshot from the store.
func (p *Projector) Rebuild(ctx context.Context) (Snapshot, error) {
	recent, err := p.sales.List(ctx, sales.ListSalesInput{
		Pagination: pagination.Params{Limit: p.cfg.RecentSalesSize},
	})
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent sales")
	}

	now := p.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, revenue, err := p.revenue.RevenueSince(ctx, midnight)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum today revenue")
	}

	low, err := p.catalog.ListLowStock(ctx)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load low stock")
	}

	snapshot := Snapshot{
		GeneratedAt:    now,
		TodayRevenue:   revenue,
		TodaySaleCount: count,
		RecentSales:    make([]RecentSale, 0, len(recent.Sales)),
		LowStock:       make([]LowStockAlert, 0, len(low)),
	}
	for _, sale := range recent.Sales {
		snapshot.RecentSales = append(snapshot.RecentSales, RecentSale{
			SaleID:     sale.ID,
			SaleNumber: sale.SaleNumber,
			Total:      sale.Total,
			Date:       sale.Date,
		})
	}
	for _, product := range low {
		snapshot.LowStock = append(snapshot.LowStock, LowStockAlert{
			ProductID: product.ID,
			Name:      product.Name,
			Stock:     product.Stock,
			Threshold: product.LowStockThreshold,
		})
	}

	p.mu.Lock()
	p.snapshot = snapshot
	p.mu.Unlock()

	p.persist(ctx, snapshot)
	return snapshot, nil
}

func (p *Projector) onSaleCompleted(ctx context.Context, event pubsub.Event) error {
	var payload sales.CompletedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode sale.completed: %w", err)
	}

	p.mu.Lock()
	entry := RecentSale{
		SaleID:     payload.SaleID,
		SaleNumber: payload.SaleNumber,
		Total:      payload.Total,
		Date:       payload.Date,
	}
	p.snapshot.RecentSales = append([]RecentSale{entry}, p.snapshot.RecentSales...)
	if len(p.snapshot.RecentSales) > p.cfg.RecentSalesSize {
		p.snapshot.RecentSales = p.snapshot.RecentSales[:p.cfg.RecentSalesSize]
	}
	now := p.now()
	if sameDay(payload.Date, now) {
		p.snapshot.TodayRevenue += payload.Total
		p.snapshot.TodaySaleCount++
	}
	p.snapshot.GeneratedAt = now
	snapshot := p.snapshot
	p.mu.Unlock()

	// Low stock may have changed with the sale; refresh that slice only.
	if low, err := p.catalog.ListLowStock(ctx); err == nil {
		alerts := make([]LowStockAlert, 0, len(low))
		for _, product := range low {
			alerts = append(alerts, LowStockAlert{
				ProductID: product.ID,
				Name:      product.Name,
				Stock:     product.Stock,
				Threshold: product.LowStockThreshold,
			})
		}
		p.mu.Lock()
		p.snapshot.LowStock = alerts
		snapshot = p.snapshot
		p.mu.Unlock()
	}

	p.persist(ctx, snapshot)
	return nil
}

func (p *Projector) rebuildHandler(ctx context.Context, _ pubsub.Event) error {
	_, err := p.Rebuild(ctx)
	return err
}

// persist caches the snapshot so freshly started instances can serve the
// dashboard before their first event arrives. Failures are logged and
// swallowed.
func (p *Projector) persist(ctx context.Context, snapshot Snapshot) {
	if p.cache == nil {
		return
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, p.cache.SnapshotKey(snapshotName), body, snapshotTTL); err != nil && p.logg != nil {
		p.logg.Warn(ctx, fmt.Sprintf("cache dashboard snapshot: %v", err))
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
