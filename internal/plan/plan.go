package plan

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the backend operation a step performs.
type Kind string

// Step kinds.
const (
	KindNmap       Kind = "nmap"
	KindLoad       Kind = "load"
	KindCapacity   Kind = "capacity"
	KindPing       Kind = "ping"
	KindPingStats  Kind = "ping-stats"
	KindTraceroute Kind = "traceroute"
	KindDNS        Kind = "dns"
)

// Kinds lists every supported step kind.
var Kinds = []Kind{KindNmap, KindLoad, KindCapacity, KindPing, KindPingStats, KindTraceroute, KindDNS}

// Defaults the backend itself would apply.
const (
	DefaultRequests = 50
	DefaultCount    = 4
	DefaultMaxHops  = 20
)

// DefaultLadder is the capacity ladder used when a step names neither steps nor ladder.
var DefaultLadder = []int{10, 25, 50, 100}

// Plan is a named, ordered batch of steps.
type Plan struct {
	// Name identifies the plan in logs and reports.
	Name string `yaml:"name"`

	// Description says what the plan is for.
	Description string `yaml:"description,omitempty"`

	// ContinueOnError runs the remaining steps after a failure.
	ContinueOnError bool `yaml:"continue_on_error,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`
}

// Step is one backend call. Only the fields its Kind uses are meaningful.
// Steps are recorded in history as the params of the record.
type Step struct {
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Kind     Kind   `yaml:"kind" json:"kind"`
	Target   string `yaml:"target,omitempty" json:"target,omitempty"`
	URL      string `yaml:"url,omitempty" json:"url,omitempty"`
	Requests int    `yaml:"requests,omitempty" json:"requests,omitempty"`
	Steps    int    `yaml:"steps,omitempty" json:"steps,omitempty"`
	Ladder   []int  `yaml:"ladder,omitempty" json:"ladder,omitempty"`
	Count    int    `yaml:"count,omitempty" json:"count,omitempty"`
	MaxHops  int    `yaml:"max_hops,omitempty" json:"max_hops,omitempty"`
	Hostname string `yaml:"hostname,omitempty" json:"hostname,omitempty"`
}

// Load reads and parses a plan file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
func Load(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a plan, fills in defaults and validates it.
func Parse(r io.Reader) (*Plan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	var p Plan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catch typos like "request:" vs "requests:"
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range p.Steps {
		p.Steps[i] = p.Steps[i].WithDefaults()
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &p, nil
}

// Validate checks that required fields are present.
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, s := range p.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

// WithDefaults returns a copy of s with unset counts replaced by the
// backend's defaults.
func (s Step) WithDefaults() Step {
	switch s.Kind {
	case KindLoad:
		if s.Requests == 0 {
			s.Requests = DefaultRequests
		}
	case KindCapacity:
		if s.Steps == 0 && len(s.Ladder) == 0 {
			s.Ladder = append([]int(nil), DefaultLadder...)
		}
	case KindPingStats:
		if s.Count == 0 {
			s.Count = DefaultCount
		}
	case KindTraceroute:
		if s.MaxHops == 0 {
			s.MaxHops = DefaultMaxHops
		}
	}
	return s
}

// Validate checks that the fields the step's kind needs are set.
// Numeric ranges are left to the backend.
func (s Step) Validate() error {
	switch s.Kind {
	case KindNmap, KindPingStats, KindTraceroute:
		if s.Target == "" {
			return fmt.Errorf("target is required for %s", s.Kind)
		}
	case KindLoad:
		if s.URL == "" {
			return fmt.Errorf("url is required for %s", s.Kind)
		}
	case KindCapacity:
		if s.URL == "" {
			return fmt.Errorf("url is required for %s", s.Kind)
		}
		if s.Steps != 0 && len(s.Ladder) > 0 {
			return fmt.Errorf("steps and ladder are mutually exclusive for %s", s.Kind)
		}
	case KindDNS:
		if s.Hostname == "" {
			return fmt.Errorf("hostname is required for %s", s.Kind)
		}
	case KindPing:
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind %q: must be one of %v", s.Kind, Kinds)
	}
	return nil
}

// Describe returns a short human-readable label for the step.
func (s Step) Describe() string {
	if s.Name != "" {
		return s.Name
	}
	switch s.Kind {
	case KindNmap:
		return fmt.Sprintf("nmap scan of %s", s.Target)
	case KindLoad:
		return fmt.Sprintf("HTTP load test of %s (%d requests)", s.URL, s.Requests)
	case KindCapacity:
		if len(s.Ladder) > 0 {
			return fmt.Sprintf("capacity test of %s (ladder %s)", s.URL, joinInts(s.Ladder))
		}
		return fmt.Sprintf("capacity test of %s (steps %d)", s.URL, s.Steps)
	case KindPing:
		return "backend ping"
	case KindPingStats:
		return fmt.Sprintf("ping of %s (%d packets)", s.Target, s.Count)
	case KindTraceroute:
		return fmt.Sprintf("traceroute to %s (max %d hops)", s.Target, s.MaxHops)
	case KindDNS:
		return fmt.Sprintf("DNS lookup of %s", s.Hostname)
	default:
		return string(s.Kind)
	}
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}
