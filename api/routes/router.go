package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angeldelarosa/garagepos-backend/api/controllers"
	"github.com/angeldelarosa/garagepos-backend/api/middleware"
	cartsvc "github.com/angeldelarosa/garagepos-backend/internal/cart"
	catalogsvc "github.com/angeldelarosa/garagepos-backend/internal/catalog"
	customersvc "github.com/angeldelarosa/garagepos-backend/internal/customers"
	invoicesvc "github.com/angeldelarosa/garagepos-backend/internal/invoices"
	"github.com/angeldelarosa/garagepos-backend/internal/projection"
	reportsvc "github.com/angeldelarosa/garagepos-backend/internal/reports"
	salessvc "github.com/angeldelarosa/garagepos-backend/internal/sales"
	"github.com/angeldelarosa/garagepos-backend/pkg/auth/session"
	"github.com/angeldelarosa/garagepos-backend/pkg/config"
	"github.com/angeldelarosa/garagepos-backend/pkg/db"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
	"github.com/angeldelarosa/garagepos-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. cmd/api fills it once at
// boot; tests fill only the pieces the route under test touches.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     *redis.Client
	Sessions  *session.Manager
	Catalog   catalogsvc.Service
	Customers customersvc.Service
	Cart      cartsvc.Service
	Sales     salessvc.Service
	Invoices  invoicesvc.Service
	Reports   reportsvc.Service
	Projector *projection.Projector
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/token", controllers.DevToken(cfg, deps.Sessions, logg))
		}
		r.Post("/logout", controllers.Logout(deps.Sessions, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Catalog, logg))
			r.Get("/low-stock", controllers.ProductLowStock(deps.Catalog, logg))
			r.Get("/{productID}", controllers.ProductGet(deps.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.OperatorRoleAdmin.String(), logg))
				r.Post("/", controllers.ProductCreate(deps.Catalog, logg))
				r.Put("/{productID}", controllers.ProductUpdate(deps.Catalog, logg))
				r.Delete("/{productID}", controllers.ProductDelete(deps.Catalog, logg))
				r.Post("/{productID}/stock", controllers.ProductAdjustStock(deps.Catalog, logg))
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(deps.Customers, logg))
			r.Get("/top", controllers.CustomerTop(deps.Customers, logg))
			r.Post("/", controllers.CustomerCreate(deps.Customers, logg))
			r.Get("/{customerID}", controllers.CustomerGet(deps.Customers, logg))
			r.Put("/{customerID}", controllers.CustomerUpdate(deps.Customers, logg))
			r.Delete("/{customerID}", controllers.CustomerDelete(deps.Customers, logg))
			r.Post("/{customerID}/vehicles", controllers.CustomerAddVehicle(deps.Customers, logg))
			r.Put("/{customerID}/vehicles/{vehicleID}", controllers.CustomerUpdateVehicle(deps.Customers, logg))
			r.Delete("/{customerID}/vehicles/{vehicleID}", controllers.CustomerRemoveVehicle(deps.Customers, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Put("/", controllers.CartSetAdjustments(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Put("/items/{productID}", controllers.CartSetQuantity(deps.Cart, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/checkout", controllers.SaleCheckout(deps.Sales, logg))
			r.Get("/", controllers.SaleList(deps.Sales, logg))
			r.Get("/{saleID}", controllers.SaleGet(deps.Sales, logg))
			r.Patch("/{saleID}", controllers.SaleUpdate(deps.Sales, logg))
			r.Post("/{saleID}/invoice", controllers.InvoiceFromSale(deps.Invoices, logg))
			r.Get("/{saleID}/invoices", controllers.InvoiceListForSale(deps.Invoices, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.OperatorRoleAdmin.String(), logg))
				r.Delete("/{saleID}", controllers.SaleDelete(deps.Sales, logg))
			})
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.InvoiceList(deps.Invoices, logg))
			r.Post("/", controllers.InvoiceCreate(deps.Invoices, logg))
			r.Get("/{invoiceID}", controllers.InvoiceGet(deps.Invoices, logg))
			r.Patch("/{invoiceID}", controllers.InvoiceUpdate(deps.Invoices, logg))
			r.Post("/{invoiceID}/pay", controllers.InvoiceMarkPaid(deps.Invoices, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.OperatorRoleAdmin.String(), logg))
				r.Delete("/{invoiceID}", controllers.InvoiceDelete(deps.Invoices, logg))
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.OperatorRoleAdmin.String(), logg))
			r.Get("/sales", controllers.ReportSales(deps.Reports, logg))
			r.Get("/top-products", controllers.ReportTopProducts(deps.Reports, logg))
			r.Get("/inventory", controllers.ReportInventory(deps.Reports, logg))
			r.Get("/tax", controllers.ReportTax(deps.Reports, logg))
		})

		r.Get("/dashboard", controllers.Dashboard(deps.Projector, logg))
	})

	return r
}
