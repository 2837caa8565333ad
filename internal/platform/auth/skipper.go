package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that should bypass authentication. These are
// infrastructure endpoints (health checks, metrics) that must be reachable
// without credentials.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// AuthSkipper returns true for requests whose matched route path is a public
// path that skips authentication. JWTMiddleware and DevAuthMiddleware take no
// Skipper option; the server keeps health-check and metrics endpoints
// reachable without a bearer token by checking IsPublicPath before
// JWTMiddleware runs.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given path is a public infrastructure
// endpoint that should bypass auth middleware.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
