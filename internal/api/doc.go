// Package api is the HTTP client for the traffic lab backend.
//
// Each operation is a single JSON round trip to a fixed endpoint under the
// configured base URL:
//   - POST /api/test-nmap        {"target": ...}
//   - POST /api/http-load-test   {"url": ..., "requests": ...}
//   - POST /api/capacity-test    {"url": ..., "steps": ...}
//
// plus the backend's diagnostic endpoints (ping, ping-stats, traceroute,
// dns-lookup).
//
// A non-2xx status becomes a *RequestError carrying the status code and the
// raw body text. A 2xx body is returned unchanged as a Response once it has
// been checked to be valid JSON. Transport failures are returned exactly as
// the underlying HTTP client produced them.
//
// There are no retries and no client-side timeouts; callers bound a request
// through its context.
package api
