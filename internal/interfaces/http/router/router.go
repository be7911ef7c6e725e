package router

import (
	"net/http"

	"github.com/arahumroh/backend/internal/interfaces/http/handler"
	"github.com/arahumroh/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one domain under a shared prefix and middleware chain
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{
		name:   name,
		prefix: prefix,
	}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle registers a route for an arbitrary method
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		method:   method,
		path:     path,
		handlers: handlers,
	})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, handlers...)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, path, handlers...)
}

// Group creates a sub-group within this domain. The sub-group inherits the
// parent's middleware and may add its own.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}

	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Handlers bundles the HTTP handlers of the payment backend
type Handlers struct {
	Payment      *handler.PaymentHandler
	Webhook      *handler.WebhookHandler
	Credit       *handler.CreditHandler
	Notification *handler.InboxHandler
}

// Config holds the middleware that differs between account and provider routes
type Config struct {
	// Auth authenticates account requests, normally the JWT middleware
	Auth gin.HandlerFunc
	// RateLimit is applied after Auth so accounts are limited by id. Optional.
	RateLimit gin.HandlerFunc
	// WebhookMaxBodySize caps provider notification bodies
	WebhookMaxBodySize int64
}

// RegisterAPI wires every /api/v1 route of the service onto r
func RegisterAPI(r *Router, h Handlers, cfg Config) {
	accountChain := []gin.HandlerFunc{cfg.Auth}
	if cfg.RateLimit != nil {
		accountChain = append(accountChain, cfg.RateLimit)
	}
	accountChain = append(accountChain, middleware.TracingAttributeInjector())

	payments := NewDomainGroup("payments", "/payments")
	payments.Group("midtrans", "/midtrans").
		POST("/notification",
			middleware.BodyLimit(cfg.WebhookMaxBodySize, handler.PayloadTooLarge),
			h.Webhook.HandleMidtrans)
	payments.Group("transactions", "/transactions").
		Use(accountChain...).
		POST("", h.Payment.Initiate).
		GET("", h.Payment.List).
		GET("/:order_id", h.Payment.Get)

	credits := NewDomainGroup("credits", "/credits").
		Use(accountChain...).
		GET("/balance", h.Credit.Balance).
		GET("/entries", h.Credit.Entries)

	notifications := NewDomainGroup("notifications", "/notifications").
		Use(accountChain...).
		GET("", h.Notification.List).
		PATCH("/:id/read", h.Notification.MarkRead)

	r.Register(payments).
		Register(credits).
		Register(notifications)
}
