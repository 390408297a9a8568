// Package services implements the HTTP client for the remote design-analysis API.
//
// # Client Interface
//
// [Client] exposes one method per endpoint so the state holders can be tested against fakes:
//   - Scrape : POST /api/scrape
//   - Login / Register / Logout : POST /api/login, /api/register, /api/logout
//   - Save : POST /api/save
//   - Previews : GET /api/saved-sites-preview
//   - SiteDetails : GET /api/site-details/{id}
//   - Delete : DELETE /api/delete/{id}
//
// [APIService] is the net/http implementation. Authenticated calls wrap the base transport in an
// [oauth2.Transport] backed by a static token source, so the bearer header is set in one place.
//
// # Raw Requests
//
// [APIService.Get] and [APIService.Post] return an [APIResponse] with the undecoded body. They back the
// `swatch api` passthrough commands.
//
// # Error Handling
//
// Non-2xx responses become an [*APIError] carrying the status code and the server's message
// (from the "message", "error" or "detail" JSON keys). APIError matches [shared.ErrAPIRequest] with [errors.Is].
// Transport failures are wrapped with [shared.ErrServiceUnavailable].
//
// There are no retries. An optional [rate.Limiter] throttles outgoing requests when configured.
package services
