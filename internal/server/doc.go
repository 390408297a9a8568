// Package server provides HTTP routing, middleware and an in-memory development
// backend for the design-analysis API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
// Paths may use [http.ServeMux] wildcards such as /api/delete/{id}; handlers read them with [http.Request.PathValue].
//
// # Development Stub
//
// [StubAPI] implements every endpoint the client uses: registration with an
// email-verification step, login, logout, canned scrape results and per-user
// saved sites. Tokens are opaque random strings checked by [RequireBearer].
// Nothing is persisted; restarting the stub forgets all accounts.
//
// The stub is started by `swatch stub` and used by tests that need a real
// HTTP round trip.
package server
