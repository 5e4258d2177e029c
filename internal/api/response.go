package api

import (
	"encoding/json"
	"fmt"
)

// Response is a backend response body, already checked to be valid JSON.
// It marshals back out byte-for-byte.
type Response json.RawMessage

// MarshalJSON returns r unchanged.
func (r Response) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON stores a copy of data.
func (r *Response) UnmarshalJSON(data []byte) error {
	if r == nil {
		return fmt.Errorf("api.Response: UnmarshalJSON on nil pointer")
	}
	*r = append((*r)[0:0], data...)
	return nil
}

// Decode unmarshals the response into v.
func (r Response) Decode(v any) error {
	if err := json.Unmarshal(r, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Value returns the response parsed into generic JSON values.
func (r Response) Value() (any, error) {
	var v any
	if err := r.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// NmapResult is the body returned by /api/test-nmap.
type NmapResult struct {
	Target   string `json:"target"`
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"`
}

// LoadTestResult is the body returned by /api/http-load-test.
// Latency fields are nil when no request completed.
type LoadTestResult struct {
	URL           string   `json:"url"`
	TotalRequests int      `json:"total_requests"`
	Success       int      `json:"success"`
	Failures      int      `json:"failures"`
	AvgLatencyMS  *float64 `json:"avg_latency_ms"`
	MinLatencyMS  *float64 `json:"min_latency_ms"`
	MaxLatencyMS  *float64 `json:"max_latency_ms"`
}

// StepResult is one rung of a capacity test.
type StepResult struct {
	Requests     int      `json:"requests"`
	Success      int      `json:"success"`
	Failures     int      `json:"failures"`
	SuccessRate  float64  `json:"success_rate"`
	AvgLatencyMS *float64 `json:"avg_latency_ms"`
	MinLatencyMS *float64 `json:"min_latency_ms"`
	MaxLatencyMS *float64 `json:"max_latency_ms"`
	Healthy      bool     `json:"healthy"`
}

// Thresholds are the health limits the backend applied to each step.
type Thresholds struct {
	MinSuccessRate  float64 `json:"min_success_rate"`
	MaxAvgLatencyMS float64 `json:"max_avg_latency_ms"`
	MaxMaxLatencyMS float64 `json:"max_max_latency_ms"`
}

// CapacityResult is the body returned by /api/capacity-test.
type CapacityResult struct {
	URL                string       `json:"url"`
	Steps              []int        `json:"steps"`
	Results            []StepResult `json:"results"`
	MaxHealthyRequests int          `json:"max_healthy_requests"`
	Thresholds         Thresholds   `json:"thresholds"`
}

// PingResult is the body returned by /api/ping.
type PingResult struct {
	Status string `json:"status"`
}

// PingStatsResult is the body returned by /api/ping-stats.
type PingStatsResult struct {
	Target     string   `json:"target"`
	ExitCode   int      `json:"exit_code"`
	Output     string   `json:"output"`
	PacketLoss *string  `json:"packet_loss"`
	MinRTTMS   *float64 `json:"min_rtt_ms"`
	AvgRTTMS   *float64 `json:"avg_rtt_ms"`
	MaxRTTMS   *float64 `json:"max_rtt_ms"`
}

// TracerouteResult is the body returned by /api/traceroute.
type TracerouteResult struct {
	Target   string `json:"target"`
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"`
}

// DNSResult is the body returned by /api/dns-lookup.
type DNSResult struct {
	Hostname  string   `json:"hostname"`
	Addresses []string `json:"addresses"`
	Error     string   `json:"error,omitempty"`
}
