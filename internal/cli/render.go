package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/trafficlab/internal/api"
	"github.com/roach88/trafficlab/internal/plan"
)

// printer groups digits in counts and latencies ("1,500 requests").
var printer = message.NewPrinter(language.English)

// renderResult writes a backend result for step in human-readable form.
// Bodies that don't match the expected shape are printed as indented JSON.
func renderResult(w io.Writer, step plan.Step, resp api.Response) error {
	var err error
	switch step.Kind {
	case plan.KindNmap:
		err = renderCommandOutput(w, "Nmap scan of", resp)
	case plan.KindLoad:
		err = renderLoadTest(w, resp)
	case plan.KindCapacity:
		err = renderCapacity(w, resp)
	case plan.KindPing:
		err = renderPing(w, resp)
	case plan.KindPingStats:
		err = renderPingStats(w, resp)
	case plan.KindTraceroute:
		err = renderCommandOutput(w, "Traceroute to", resp)
	case plan.KindDNS:
		err = renderDNS(w, resp)
	default:
		err = fmt.Errorf("no text form for %q", step.Kind)
	}
	if err != nil {
		return renderRawJSON(w, resp)
	}
	return nil
}

func renderRawJSON(w io.Writer, resp api.Response) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, resp, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(resp))
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

// renderCommandOutput prints results that carry a command's raw output (nmap, traceroute).
func renderCommandOutput(w io.Writer, title string, resp api.Response) error {
	var r api.NmapResult
	if err := resp.Decode(&r); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s\n", title, r.Target)
	fmt.Fprintf(w, "Exit code: %d\n", r.ExitCode)
	writeOutput(w, r.Output)
	return nil
}

func renderLoadTest(w io.Writer, resp api.Response) error {
	var r api.LoadTestResult
	if err := resp.Decode(&r); err != nil {
		return err
	}
	fmt.Fprintf(w, "HTTP load test of %s\n", r.URL)
	fmt.Fprintf(w, "  Requests:    %s\n", formatInt(r.TotalRequests))
	fmt.Fprintf(w, "  Success:     %s\n", formatInt(r.Success))
	fmt.Fprintf(w, "  Failures:    %s\n", formatInt(r.Failures))
	fmt.Fprintf(w, "  Avg latency: %s\n", formatMS(r.AvgLatencyMS))
	fmt.Fprintf(w, "  Min latency: %s\n", formatMS(r.MinLatencyMS))
	fmt.Fprintf(w, "  Max latency: %s\n", formatMS(r.MaxLatencyMS))
	return nil
}

func renderCapacity(w io.Writer, resp api.Response) error {
	var r api.CapacityResult
	if err := resp.Decode(&r); err != nil {
		return err
	}
	fmt.Fprintf(w, "Capacity test of %s\n", r.URL)
	fmt.Fprintf(w, "Thresholds: success rate >= %s, avg latency <= %s, max latency <= %s\n",
		formatPercent(r.Thresholds.MinSuccessRate),
		formatMS(&r.Thresholds.MaxAvgLatencyMS),
		formatMS(&r.Thresholds.MaxMaxLatencyMS))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %8s  %8s  %8s  %8s  %12s  %12s  %s\n",
		"REQUESTS", "SUCCESS", "FAILURES", "RATE", "AVG", "MAX", "HEALTHY")
	for _, s := range r.Results {
		fmt.Fprintf(w, "  %8s  %8s  %8s  %8s  %12s  %12s  %s\n",
			formatInt(s.Requests),
			formatInt(s.Success),
			formatInt(s.Failures),
			formatPercent(s.SuccessRate),
			formatMS(s.AvgLatencyMS),
			formatMS(s.MaxLatencyMS),
			yesNo(s.Healthy))
	}
	fmt.Fprintln(w)

	if r.MaxHealthyRequests > 0 {
		fmt.Fprintf(w, "Max healthy load: %s requests\n", formatInt(r.MaxHealthyRequests))
	} else {
		fmt.Fprintln(w, "Max healthy load: none (first step was unhealthy)")
	}
	return nil
}

func renderPing(w io.Writer, resp api.Response) error {
	var r api.PingResult
	if err := resp.Decode(&r); err != nil {
		return err
	}
	if r.Status == "" {
		return fmt.Errorf("missing status")
	}
	fmt.Fprintf(w, "Backend status: %s\n", r.Status)
	return nil
}

func renderPingStats(w io.Writer, resp api.Response) error {
	var r api.PingStatsResult
	if err := resp.Decode(&r); err != nil {
		return err
	}
	loss := "n/a"
	if r.PacketLoss != nil {
		loss = *r.PacketLoss
	}
	fmt.Fprintf(w, "Ping of %s\n", r.Target)
	fmt.Fprintf(w, "Exit code: %d\n", r.ExitCode)
	fmt.Fprintf(w, "  Packet loss: %s\n", loss)
	fmt.Fprintf(w, "  RTT min/avg/max: %s / %s / %s\n", formatMS(r.MinRTTMS), formatMS(r.AvgRTTMS), formatMS(r.MaxRTTMS))
	writeOutput(w, r.Output)
	return nil
}

func renderDNS(w io.Writer, resp api.Response) error {
	var r api.DNSResult
	if err := resp.Decode(&r); err != nil {
		return err
	}
	fmt.Fprintf(w, "DNS lookup of %s\n", r.Hostname)
	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Error)
		return nil
	}
	if len(r.Addresses) == 0 {
		fmt.Fprintln(w, "  (no addresses)")
		return nil
	}
	for _, addr := range r.Addresses {
		fmt.Fprintf(w, "  %s\n", addr)
	}
	return nil
}

// writeOutput prints a command's captured output after a blank line.
func writeOutput(w io.Writer, output string) {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, output)
}

func formatInt(n int) string {
	return printer.Sprintf("%d", n)
}

func formatMS(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return printer.Sprintf("%.2f ms", *v)
}

func formatPercent(rate float64) string {
	return printer.Sprintf("%.1f%%", rate*100)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
