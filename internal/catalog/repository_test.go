package catalog

import (
	"context"
	"testing"

	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

func TestDecrementStock(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	product := mustCreateTestProduct(t, conn, 5)

	ok, err := repo.DecrementStock(ctx, product.ID, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !ok {
		t.Fatal("expected decrement to apply")
	}

	ok, err = repo.DecrementStock(ctx, product.ID, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if ok {
		t.Fatal("expected decrement past available stock to be rejected")
	}

	reloaded, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("stock = %d, want 2", reloaded.Stock)
	}
}

func TestDecrementStockOneWinner(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	product := mustCreateTestProduct(t, conn, 1)

	// both requests want the last unit; the conditional WHERE lets one through
	winners := 0
	for i := 0; i < 2; i++ {
		ok, err := repo.DecrementStock(ctx, product.ID, 1)
		if err != nil {
			t.Fatalf("decrement: %v", err)
		}
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	reloaded, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("stock = %d, want 0", reloaded.Stock)
	}
}

func TestIncrementStock(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	product := mustCreateTestProduct(t, conn, 2)

	if err := repo.IncrementStock(ctx, product.ID, 4); err != nil {
		t.Fatalf("increment: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stock != 6 {
		t.Fatalf("stock = %d, want 6", reloaded.Stock)
	}
}

func TestListLowStock(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	low := mustCreateTestProduct(t, conn, 1)
	mustCreateTestProduct(t, conn, 50)
	inactive := mustCreateTestProduct(t, conn, 0)
	if err := conn.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	rows, err := repo.ListLowStock(ctx)
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].ID != low.ID {
		t.Fatalf("unexpected product %s", rows[0].ID)
	}
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		mustCreateTestProduct(t, conn, 10)
	}

	first, err := repo.ListProducts(ctx, listQuery{Pagination: pagination.Params{Limit: 3}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first.Products) != 3 {
		t.Fatalf("page size = %d, want 3", len(first.Products))
	}
	if first.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}

	second, err := repo.ListProducts(ctx, listQuery{Pagination: pagination.Params{Limit: 3, Cursor: first.NextCursor}})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Products) != 1 {
		t.Fatalf("second page size = %d, want 1", len(second.Products))
	}
	if second.NextCursor != "" {
		t.Fatal("expected no cursor on the final page")
	}

	seen := map[string]bool{}
	for _, p := range append(first.Products, second.Products...) {
		if seen[p.ID.String()] {
			t.Fatalf("product %s appeared twice", p.ID)
		}
		seen[p.ID.String()] = true
	}
}

func TestListProductsSearch(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	match := mustCreateTestProduct(t, conn, 10)
	if err := conn.Model(match).Update("name", "Brake Pad Set").Error; err != nil {
		t.Fatalf("rename: %v", err)
	}
	mustCreateTestProduct(t, conn, 10)

	result, err := repo.ListProducts(ctx, listQuery{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ListFilters{Query: "brake"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Products) != 1 || result.Products[0].ID != match.ID {
		t.Fatalf("unexpected search result: %+v", result.Products)
	}
}
