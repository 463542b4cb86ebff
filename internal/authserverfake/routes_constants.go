package authserverfake

// Route path constants served by the fake auth service
const (
	// Pages
	RouteIndex     = "/"
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
	RouteHealth    = "/health"

	// Auth Routes
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthMe      = "/auth/me"

	// API Routes
	RouteAPIItems = "/api/items"
)
