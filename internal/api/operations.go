package api

import "context"

type nmapRequest struct {
	Target string `json:"target"`
}

type loadTestRequest struct {
	URL      string   `json:"url"`
	Requests int      `json:"requests"`
	Timeout  *float64 `json:"timeout,omitempty"`
}

type capacityTestRequest struct {
	URL     string   `json:"url"`
	Steps   int      `json:"steps"`
	Timeout *float64 `json:"timeout,omitempty"`
}

type capacityPlanRequest struct {
	URL     string   `json:"url"`
	Steps   []int    `json:"steps"`
	Timeout *float64 `json:"timeout,omitempty"`
}

type pingStatsRequest struct {
	Target string `json:"target"`
	Count  int    `json:"count"`
}

type tracerouteRequest struct {
	Target  string `json:"target"`
	MaxHops int    `json:"max_hops"`
}

type dnsLookupRequest struct {
	Hostname string `json:"hostname"`
}

// TestNmap asks the backend to run a service/version scan against target.
func (c *Client) TestNmap(ctx context.Context, target string) (Response, error) {
	return c.post(ctx, OpNmap, PathTestNmap, nmapRequest{Target: target})
}

// HTTPLoadTest asks the backend to send requests GETs to url and report latency statistics.
func (c *Client) HTTPLoadTest(ctx context.Context, url string, requests int) (Response, error) {
	return c.post(ctx, OpHTTPLoad, PathHTTPLoadTest, loadTestRequest{
		URL:      url,
		Requests: requests,
		Timeout:  c.timeoutSeconds(),
	})
}

// CapacityTest asks the backend to run a capacity test against url.
// steps is sent as a single number.
func (c *Client) CapacityTest(ctx context.Context, url string, steps int) (Response, error) {
	return c.post(ctx, OpCapacity, PathCapacityTest, capacityTestRequest{
		URL:     url,
		Steps:   steps,
		Timeout: c.timeoutSeconds(),
	})
}

// CapacityPlan runs a capacity test with an explicit ladder of request counts.
// The backend stops at the first unhealthy step.
func (c *Client) CapacityPlan(ctx context.Context, url string, steps []int) (Response, error) {
	if steps == nil {
		steps = []int{}
	}
	return c.post(ctx, OpCapacity, PathCapacityTest, capacityPlanRequest{
		URL:     url,
		Steps:   steps,
		Timeout: c.timeoutSeconds(),
	})
}

// Ping checks that the backend is up.
func (c *Client) Ping(ctx context.Context) (Response, error) {
	return c.get(ctx, OpPing, PathPing)
}

// PingStats asks the backend to ping target count times.
func (c *Client) PingStats(ctx context.Context, target string, count int) (Response, error) {
	return c.post(ctx, OpPingStats, PathPingStats, pingStatsRequest{Target: target, Count: count})
}

// Traceroute asks the backend to trace the route to target.
func (c *Client) Traceroute(ctx context.Context, target string, maxHops int) (Response, error) {
	return c.post(ctx, OpTraceroute, PathTraceroute, tracerouteRequest{Target: target, MaxHops: maxHops})
}

// DNSLookup asks the backend to resolve hostname.
func (c *Client) DNSLookup(ctx context.Context, hostname string) (Response, error) {
	return c.post(ctx, OpDNSLookup, PathDNSLookup, dnsLookupRequest{Hostname: hostname})
}
