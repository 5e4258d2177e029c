package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Canned backend bodies, shaped like the real service's responses.
const (
	PingBody = `{"status":"ok"}`

	NmapBody = `{"target":"10.0.0.5","exit_code":0,"output":"PORT   STATE SERVICE VERSION\n22/tcp open  ssh     OpenSSH 9.6\n"}`

	LoadTestBody = `{"url":"http://10.0.0.5:8000/","total_requests":50,"success":48,"failures":2,` +
		`"avg_latency_ms":12.5,"min_latency_ms":3.25,"max_latency_ms":140.75}`

	CapacityBody = `{"url":"http://10.0.0.5:8000/","steps":[10,25,50],"results":[` +
		`{"requests":10,"success":10,"failures":0,"success_rate":1.0,"avg_latency_ms":8.5,"min_latency_ms":4.0,"max_latency_ms":20.0,"healthy":true},` +
		`{"requests":25,"success":25,"failures":0,"success_rate":1.0,"avg_latency_ms":15.0,"min_latency_ms":5.0,"max_latency_ms":60.0,"healthy":true},` +
		`{"requests":50,"success":40,"failures":10,"success_rate":0.8,"avg_latency_ms":420.0,"min_latency_ms":6.0,"max_latency_ms":1800.0,"healthy":false}` +
		`],"max_healthy_requests":25,"thresholds":{"min_success_rate":0.95,"max_avg_latency_ms":300.0,"max_max_latency_ms":1000.0}}`

	PingStatsBody = `{"target":"10.0.0.1","exit_code":0,"output":"4 packets transmitted, 4 received, 0% packet loss\n",` +
		`"packet_loss":"0%","min_rtt_ms":0.5,"avg_rtt_ms":0.75,"max_rtt_ms":1.25}`

	TracerouteBody = `{"target":"example.com","exit_code":0,"output":" 1  10.0.0.1  0.512 ms\n 2  93.184.216.34  9.871 ms\n"}`

	DNSBody = `{"hostname":"example.com","addresses":["2606:2800:220:1:248:1893:25c8:1946","93.184.216.34"]}`
)

// RecordedRequest is one request seen by a Backend.
type RecordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// Reply is a scripted response for one path.
type Reply struct {
	Status int
	Body   string
}

// Backend is an httptest server that imitates the traffic lab backend.
// It records every request and answers from a per-path reply table.
// Unknown paths get 404 with a JSON error body.
type Backend struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	replies  map[string]Reply
}

// NewBackend starts a Backend preloaded with the canned bodies.
// The server is closed when the test finishes.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		replies: map[string]Reply{
			"/api/ping":           {Status: http.StatusOK, Body: PingBody},
			"/api/test-nmap":      {Status: http.StatusOK, Body: NmapBody},
			"/api/http-load-test": {Status: http.StatusOK, Body: LoadTestBody},
			"/api/capacity-test":  {Status: http.StatusOK, Body: CapacityBody},
			"/api/ping-stats":     {Status: http.StatusOK, Body: PingStatsBody},
			"/api/traceroute":     {Status: http.StatusOK, Body: TracerouteBody},
			"/api/dns-lookup":     {Status: http.StatusOK, Body: DNSBody},
		},
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the base URL of the server.
func (b *Backend) URL() string {
	return b.server.URL
}

// Reply replaces the scripted response for path.
func (b *Backend) Reply(path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[path] = Reply{Status: status, Body: body}
}

// Requests returns a copy of every request received so far, in arrival order.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestsTo returns the recorded requests whose path is path.
func (b *Backend) RequestsTo(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range b.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	reply, ok := b.replies[r.URL.Path]
	b.mu.Unlock()

	if !ok {
		reply = Reply{Status: http.StatusNotFound, Body: `{"error":"not found"}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	_, _ = io.WriteString(w, reply.Body)
}
