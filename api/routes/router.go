package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tavola-app/tavola-backend/api/controllers"
	"github.com/tavola-app/tavola-backend/api/middleware"
	accountssvc "github.com/tavola-app/tavola-backend/internal/accounts"
	authsvc "github.com/tavola-app/tavola-backend/internal/auth"
	cartsvc "github.com/tavola-app/tavola-backend/internal/cart"
	catalogsvc "github.com/tavola-app/tavola-backend/internal/catalog"
	orderssvc "github.com/tavola-app/tavola-backend/internal/orders"
	"github.com/tavola-app/tavola-backend/pkg/auth/session"
	"github.com/tavola-app/tavola-backend/pkg/config"
	"github.com/tavola-app/tavola-backend/pkg/enums"
	"github.com/tavola-app/tavola-backend/pkg/logger"
	"github.com/tavola-app/tavola-backend/pkg/metrics"
	"github.com/tavola-app/tavola-backend/pkg/redis"
)

// Deps collects everything the router wires together.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry

	Accounts accountssvc.Service
	Auth     authsvc.Service
	Catalog  catalogsvc.Service
	Cart     cartsvc.Service
	Orders   orderssvc.Service
}

// NewRouter assembles the full HTTP surface.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(d.Registry)

	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(d.DB, d.Redis, d.Logger))
	})
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	throttle := middleware.Throttle(d.Config.Throttle, d.Redis, d.Logger)
	authed := middleware.Auth(d.Config.JWT, d.Sessions, d.Accounts, d.Logger)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(throttle)
		r.Post("/register", controllers.Register(d.Auth, d.Logger))
		r.Post("/login", controllers.Login(d.Auth, d.Logger))
		r.With(authed).Post("/logout", controllers.Logout(d.Auth, d.Logger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authed, throttle)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(d.Catalog, d.Logger))
			r.Post("/", controllers.CreateCategory(d.Catalog, d.Logger))
		})

		r.Route("/menu-items", func(r chi.Router) {
			r.Get("/", controllers.ListMenuItems(d.Catalog, d.Logger))
			r.Post("/", controllers.CreateMenuItem(d.Catalog, d.Logger))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetMenuItem(d.Catalog, d.Logger))
				r.Put("/", controllers.UpdateMenuItem(d.Catalog, d.Logger))
				r.Patch("/", controllers.UpdateMenuItem(d.Catalog, d.Logger))
				r.Delete("/", controllers.DeleteMenuItem(d.Catalog, d.Logger))
			})
		})

		r.Route("/cart/menu-items", func(r chi.Router) {
			r.Get("/", controllers.GetCart(d.Cart, d.Logger))
			r.Post("/", controllers.AddCartLine(d.Cart, d.Logger))
			r.Delete("/", controllers.ClearCart(d.Cart, d.Logger))
		})

		r.Route("/groups", func(r chi.Router) {
			registerGroup(r, "/manager/users", d, enums.RoleManager)
			registerGroup(r, "/delivery-crew/users", d, enums.RoleDeliveryCrew)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(d.Orders, d.Logger))
			r.Post("/", controllers.Checkout(d.Orders, d.Logger))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.GetOrder(d.Orders, d.Logger))
				r.Put("/", controllers.UpdateOrder(d.Orders, d.Logger))
				r.Patch("/", controllers.UpdateOrder(d.Orders, d.Logger))
				r.Delete("/", controllers.DeleteOrder(d.Orders, d.Logger))
				r.Route("/menu-items/{itemId}", func(r chi.Router) {
					r.Get("/", controllers.GetOrderLine(d.Orders, d.Logger))
					r.Patch("/", controllers.UpdateOrderLine(d.Orders, d.Logger))
					r.Delete("/", controllers.DeleteOrderLine(d.Orders, d.Logger))
				})
			})
		})
	})

	return r
}

func registerGroup(r chi.Router, prefix string, d Deps, role enums.Role) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", controllers.ListGroupMembers(d.Accounts, role, d.Logger))
		r.Post("/", controllers.AddGroupMember(d.Accounts, role, d.Logger))
		r.Delete("/{userId}", controllers.RemoveGroupMember(d.Accounts, role, d.Logger))
	})
}
