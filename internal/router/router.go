package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vismay-core/internal/config"
	"vismay-core/internal/handler"
	"vismay-core/internal/middleware"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Role     *handler.RoleHandler
	Tenant   *handler.TenantHandler
	District *handler.DistrictHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Audit    *handler.AuditHandler
}

// route is one row of the protected-endpoint table: method, pattern, the
// permission the Access Guard enforces, and the handler. No handler performs
// its own permission check.
type route struct {
	method     string
	pattern    string
	permission string
	handlerFn  http.HandlerFunc
}

func New(cfg *config.Config, guard *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics)
	r.Use(rateLimit.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	protected := []route{
		{http.MethodGet, "/users", "users:view", h.User.List},
		{http.MethodGet, "/users/{user_id}", "users:view", h.User.Get},
		{http.MethodPost, "/users", "users:create", h.User.Create},
		{http.MethodPatch, "/users/{user_id}", "users:update", h.User.Update},
		{http.MethodDelete, "/users/{user_id}", "users:delete", h.User.Disable},

		{http.MethodGet, "/roles", "roles:view", h.Role.List},
		{http.MethodGet, "/roles/{role_id}", "roles:view", h.Role.Get},
		{http.MethodPost, "/roles", "roles:create", h.Role.Create},
		{http.MethodPatch, "/roles/{role_id}", "roles:update", h.Role.Update},
		{http.MethodDelete, "/roles/{role_id}", "roles:delete", h.Role.Delete},
		{http.MethodPut, "/roles/{role_id}/permissions", "roles:assign", h.Role.AssignPermissions},

		{http.MethodGet, "/permissions", "permissions:view", h.Role.ListPermissions},
		{http.MethodGet, "/permissions/{permission_id}", "permissions:view", h.Role.GetPermission},
		{http.MethodPost, "/permissions", "permissions:create", h.Role.CreatePermission},
		{http.MethodPatch, "/permissions/{permission_id}", "permissions:update", h.Role.UpdatePermission},
		{http.MethodDelete, "/permissions/{permission_id}", "permissions:delete", h.Role.DeletePermission},

		{http.MethodGet, "/tenants", "tenants:view", h.Tenant.List},
		{http.MethodGet, "/tenants/{tenant_id}", "tenants:view", h.Tenant.Get},
		{http.MethodPost, "/tenants", "tenants:create", h.Tenant.Create},
		{http.MethodPatch, "/tenants/{tenant_id}", "tenants:update", h.Tenant.Update},
		{http.MethodDelete, "/tenants/{tenant_id}", "tenants:delete", h.Tenant.Delete},

		{http.MethodGet, "/districts", "districts:view", h.District.List},
		{http.MethodGet, "/districts/{district_id}", "districts:view", h.District.Get},
		{http.MethodPost, "/districts", "districts:create", h.District.Create},
		{http.MethodPatch, "/districts/{district_id}", "districts:update", h.District.Update},
		{http.MethodDelete, "/districts/{district_id}", "districts:delete", h.District.Delete},

		{http.MethodGet, "/categories", "categories:view", h.Category.List},
		{http.MethodGet, "/categories/{category_id}", "categories:view", h.Category.Get},
		{http.MethodPost, "/categories", "categories:create", h.Category.Create},
		{http.MethodPatch, "/categories/{category_id}", "categories:update", h.Category.Update},
		{http.MethodDelete, "/categories/{category_id}", "categories:delete", h.Category.Delete},

		{http.MethodGet, "/products", "products:view", h.Product.List},
		{http.MethodGet, "/products/{product_id}", "products:view", h.Product.Get},
		{http.MethodPost, "/products", "products:create", h.Product.Create},
		{http.MethodPatch, "/products/{product_id}", "products:update", h.Product.Update},
		{http.MethodDelete, "/products/{product_id}", "products:delete", h.Product.Delete},

		{http.MethodGet, "/audit", "audit:view", h.Audit.List},
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(a chi.Router) {
			a.Post("/login", h.Auth.Login)
			a.Post("/refresh", h.Auth.Refresh)
			a.With(guard.RequireAuth).Post("/logout", h.Auth.Logout)
			a.With(guard.RequireAuth).Get("/me", h.Auth.Me)
			a.With(guard.RequireAuth).Post("/password", h.Auth.ChangePassword)
		})

		for _, rt := range protected {
			api.With(guard.RequireAuth, guard.RequirePermission(rt.permission)).
				Method(rt.method, rt.pattern, rt.handlerFn)
		}
	})

	return r
}
