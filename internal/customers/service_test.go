package customers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:customers_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Customer{}, &models.Vehicle{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestCreateWithVehicles(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	plate := "ABC-1234"
	created, err := svc.Create(ctx, CreateCustomerInput{
		Name:  "Maria Lopez",
		Email: "maria@example.com",
		Phone: "555-0101",
		Vehicles: []VehicleInput{
			{Make: "Toyota", Model: "Corolla", Year: 2019, LicensePlate: &plate},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != enums.CustomerStatusActive {
		t.Errorf("status = %s, want active", created.Status)
	}
	if len(created.Vehicles) != 1 || created.Vehicles[0].Make != "Toyota" {
		t.Fatalf("unexpected vehicles %+v", created.Vehicles)
	}
	if created.TotalPurchases != 0 {
		t.Errorf("new customers start with zero purchases")
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateCustomerInput
	}{
		{"blank name", CreateCustomerInput{Email: "a@b.c", Phone: "1"}},
		{"blank email", CreateCustomerInput{Name: "A", Phone: "1"}},
		{"blank phone", CreateCustomerInput{Name: "A", Email: "a@b.c"}},
		{"bad vehicle year", CreateCustomerInput{
			Name: "A", Email: "a@b.c", Phone: "1",
			Vehicles: []VehicleInput{{Make: "Ford", Model: "F150", Year: 1776}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestVehicleLifecycle(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCustomerInput{Name: "Sam", Email: "sam@example.com", Phone: "555-0102"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	withVehicle, err := svc.AddVehicle(ctx, created.ID, VehicleInput{Make: "Honda", Model: "Civic", Year: 2021})
	if err != nil {
		t.Fatalf("add vehicle: %v", err)
	}
	if len(withVehicle.Vehicles) != 1 {
		t.Fatalf("vehicles = %d, want 1", len(withVehicle.Vehicles))
	}
	vehicleID := withVehicle.Vehicles[0].ID

	updated, err := svc.UpdateVehicle(ctx, created.ID, vehicleID, VehicleInput{Make: "Honda", Model: "Accord", Year: 2022})
	if err != nil {
		t.Fatalf("update vehicle: %v", err)
	}
	if updated.Vehicles[0].Model != "Accord" || updated.Vehicles[0].Year != 2022 {
		t.Fatalf("unexpected vehicle %+v", updated.Vehicles[0])
	}

	after, err := svc.RemoveVehicle(ctx, created.ID, vehicleID)
	if err != nil {
		t.Fatalf("remove vehicle: %v", err)
	}
	if len(after.Vehicles) != 0 {
		t.Fatalf("vehicles = %d, want 0", len(after.Vehicles))
	}
}

func TestUpdateVehicleWrongOwner(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateCustomerInput{
		Name: "A", Email: "a@example.com", Phone: "1",
		Vehicles: []VehicleInput{{Make: "Kia", Model: "Rio", Year: 2018}},
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, CreateCustomerInput{Name: "B", Email: "b@example.com", Phone: "2"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	_, err = svc.UpdateVehicle(ctx, second.ID, first.Vehicles[0].ID, VehicleInput{Make: "Kia", Model: "Rio", Year: 2018})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for cross-owner access, got %v", err)
	}
}

func TestRecordAndRollbackPurchase(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCustomerInput{Name: "Dee", Email: "dee@example.com", Phone: "555-0103"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	saleTime := time.Now().UTC()
	if err := repo.RecordPurchase(ctx, created.ID, 129.90, saleTime); err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalPurchases != 129.90 {
		t.Fatalf("total purchases = %v, want 129.90", got.TotalPurchases)
	}
	if got.LastPurchaseAt == nil {
		t.Fatal("last purchase date should be set")
	}

	if err := repo.RollbackPurchase(ctx, created.ID, 129.90); err != nil {
		t.Fatalf("rollback purchase: %v", err)
	}
	got, err = svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalPurchases != 0 {
		t.Fatalf("total purchases = %v, want 0 after rollback", got.TotalPurchases)
	}
}

func TestRecordPurchaseUnknownCustomer(t *testing.T) {
	t.Parallel()

	_, repo := newTestService(t)
	err := repo.RecordPurchase(context.Background(), uuid.New(), 10, time.Now())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListSearchAndStatusFilter(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateCustomerInput{Name: "Grace Hopper", Email: "grace@example.com", Phone: "555-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	blocked, err := svc.Create(ctx, CreateCustomerInput{Name: "Mallory", Email: "mallory@example.com", Phone: "555-2"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	blockedStatus := enums.CustomerStatusBlocked
	if _, err := svc.Update(ctx, blocked.ID, UpdateCustomerInput{Status: &blockedStatus}); err != nil {
		t.Fatalf("update status: %v", err)
	}

	byName, err := svc.List(ctx, ListCustomersInput{
		Filters:    ListFilters{Query: "grace"},
		Pagination: pagination.Params{Limit: 10},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byName.Customers) != 1 || byName.Customers[0].Name != "Grace Hopper" {
		t.Fatalf("unexpected search result %+v", byName.Customers)
	}

	status := enums.CustomerStatusBlocked.String()
	byStatus, err := svc.List(ctx, ListCustomersInput{
		Filters:    ListFilters{Status: &status},
		Pagination: pagination.Params{Limit: 10},
	})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus.Customers) != 1 || byStatus.Customers[0].ID != blocked.ID {
		t.Fatalf("unexpected status filter result %+v", byStatus.Customers)
	}
}

func TestDeleteCascadesVehicles(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCustomerInput{
		Name: "Cass", Email: "cass@example.com", Phone: "555-3",
		Vehicles: []VehicleInput{{Make: "Mazda", Model: "3", Year: 2020}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(ctx, created.ID); pkgerrors.As(err) == nil {
		t.Fatal("expected customer to be gone")
	}
	if _, err := repo.FindVehicle(ctx, created.ID, created.Vehicles[0].ID); err == nil {
		t.Fatal("expected vehicles to cascade on delete")
	}
}
