package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wesleyorama2/inferbench/internal/benchmark"
	"github.com/wesleyorama2/inferbench/internal/executor"
	"github.com/wesleyorama2/inferbench/internal/history"
)

const ruleWidth = 40

// Version is printed in the console banner.
var Version = "0.1.0"

// Console prints human-readable output.
type Console struct {
	writer io.Writer
	colors *ColorScheme
}

// ConsoleConfig contains configuration for Console.
type ConsoleConfig struct {
	Writer      io.Writer
	NoColor     bool
	ForceColors bool
}

// NewConsole creates a console printer. Colors are used when the writer is
// a terminal that supports them, unless disabled.
func NewConsole(config ConsoleConfig) *Console {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}

	useColors := !config.NoColor && (config.ForceColors || (isTerminal(config.Writer) && supportsColors()))
	colors := NoColorScheme()
	if useColors {
		colors = DefaultColorScheme().forced()
	}

	return &Console{writer: config.Writer, colors: colors}
}

// PrintHeader prints the banner and the run configuration.
func (c *Console) PrintHeader(model string, cfg benchmark.Config) {
	c.rule("=")
	c.writeln(c.colors.Title.Sprintf(" InferBench v%s ", Version))
	c.rule("=")
	c.field("Model", model)
	c.field("Threads", fmt.Sprint(cfg.Threads))
	c.field("Requests", fmt.Sprint(cfg.Requests))
	c.field("Warmup", fmt.Sprint(cfg.WarmupRounds))
	c.rule("-")
}

// PrintResult prints the five headline figures with two decimals.
func (c *Console) PrintResult(r *benchmark.Result) {
	c.rule("-")
	c.writeln(c.colors.Title.Sprint(" Benchmark Results "))
	c.rule("-")

	c.metric("QPS:", r.QPS, "")
	c.metric("Avg Latency:", r.AvgLatencyMs, " ms")
	c.metric("P99 Latency:", r.P99LatencyMs, " ms")
	c.metric("Avg CPU Usage:", r.AvgCPUUsage, " %")
	c.metric("Peak Memory:", r.PeakMemoryMB, " MB")

	if r.Failures > 0 {
		c.writeln(fmt.Sprintf("%-16s%s", "Failures:", c.colors.Error.Sprint(r.Failures)))
	}
	switch r.Outcome {
	case benchmark.OutcomeCancelled:
		c.writeln(c.colors.Warning.Sprintf("Run interrupted after %d units (%s)", r.Completed, formatDuration(r.Elapsed)))
	case benchmark.OutcomeMemoryLimit:
		c.writeln(c.colors.Error.Sprintf("Run aborted: memory limit exceeded after %d units", r.Completed))
	}

	if r.Latency.Count > 0 {
		c.writeln("")
		c.writeln(c.colors.Title.Sprint("Latency Distribution:"))
		c.writeln(fmt.Sprintf("  Min:  %s", formatMillis(r.Latency.Min)))
		c.writeln(fmt.Sprintf("  P50:  %s", formatMillis(r.Latency.P50)))
		c.writeln(fmt.Sprintf("  P90:  %s", formatMillis(r.Latency.P90)))
		c.writeln(fmt.Sprintf("  P95:  %s", formatMillis(r.Latency.P95)))
		c.writeln(fmt.Sprintf("  Max:  %s", formatMillis(r.Latency.Max)))
	}
	c.rule("=")
}

// PrintProbe prints a loaded model's summary.
func (c *Console) PrintProbe(info executor.ModelInfo) {
	c.writeln(c.colors.Title.Sprint("[Probe] Model Inspector:"))
	c.writeln(fmt.Sprintf("  Name:                  %s", info.Name))
	c.writeln(fmt.Sprintf("  Input Size (elements): %d", info.InputSize))
	c.writeln(fmt.Sprintf("  Input Dims:            %v", info.InputDims))
	c.writeln(fmt.Sprintf("  Output Size:           %d", info.OutputSize))
	c.writeln(fmt.Sprintf("  Parameters:            %s", formatNumber(info.Parameters)))
	c.writeln(fmt.Sprintf("  Optimization:          %s", info.OptLevel))
	for i, l := range info.Layers {
		c.writeln(fmt.Sprintf("  Layer %d:               %d -> %d (%s)", i, l.In, l.Out, l.Activation))
	}
}

// PrintSweep prints one table row per sweep step.
func (c *Console) PrintSweep(s *benchmark.SweepResult) {
	c.rule("-")
	c.writeln(c.colors.Title.Sprintf("%-8s %-10s %12s %14s %14s  %s", "Threads", "Requests", "QPS", "Avg Lat (ms)", "P99 Lat (ms)", "Outcome"))
	c.rule("-")
	for _, step := range s.Steps {
		if step.Error != "" {
			c.writeln(fmt.Sprintf("%-8d %-10d %s", step.Threads, step.Requests, c.colors.Error.Sprint("failed: "+step.Error)))
			continue
		}

		outcome := c.colors.Success.Sprint(benchmark.OutcomeCompleted)
		if step.Result.Outcome != benchmark.OutcomeCompleted {
			outcome = c.colors.Warning.Sprintf("%s (%d/%d)", step.Result.Outcome, step.Result.Completed, step.Requests)
		}
		c.writeln(fmt.Sprintf("%-8d %-10d %12.2f %14.2f %14.2f  %s",
			step.Threads, step.Requests, step.Result.QPS, step.Result.AvgLatencyMs, step.Result.P99LatencyMs, outcome))
	}
	if len(s.Skipped) > 0 {
		c.writeln(c.colors.Warning.Sprintf("Skipped thread counts: %v", s.Skipped))
	}
	c.rule("-")
}

// PrintComparison prints metric deltas between two reports.
func (c *Console) PrintComparison(deltas []Delta) {
	c.writeln(c.colors.Title.Sprintf("%-16s %12s %12s %10s", "Metric", "Base", "Candidate", "Change"))
	c.rule("-")
	for _, d := range deltas {
		change := fmt.Sprintf("%+.2f%%", d.Percent)
		switch {
		case d.Percent == 0:
		case d.Improved():
			change = c.colors.Success.Sprint(change)
		default:
			change = c.colors.Error.Sprint(change)
		}
		c.writeln(fmt.Sprintf("%-16s %12.2f %12.2f %10s", d.Metric, d.Base, d.Candidate, change))
	}
}

// PrintHistory prints stored runs, newest first.
func (c *Console) PrintHistory(records []history.Record) {
	if len(records) == 0 {
		c.writeln("No runs recorded.")
		return
	}
	c.writeln(c.colors.Title.Sprintf("%-20s %-8s %-24s %8s %10s %10s", "Time", "ID", "Model", "Threads", "QPS", "P99 (ms)"))
	for _, r := range records {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		c.writeln(fmt.Sprintf("%-20s %-8s %-24s %8d %10.2f %10.2f",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			id,
			truncate(r.Model, 24),
			r.Config.Threads,
			r.Result.QPS,
			r.Result.P99LatencyMs,
		))
	}
}

// Infof prints an informational line.
func (c *Console) Infof(format string, args ...any) {
	c.writeln(fmt.Sprintf(format, args...))
}

// Warnf prints a formatted line in the warning colour.
func (c *Console) Warnf(format string, args ...any) {
	c.writeln(c.colors.Warning.Sprintf(format, args...))
}

func (c *Console) metric(label string, value float64, unit string) {
	c.writeln(fmt.Sprintf("%-16s%s%s", label, c.colors.Value.Sprintf("%.2f", value), unit))
}

func (c *Console) field(label, value string) {
	c.writeln(fmt.Sprintf("%s: %s", label, c.colors.Highlight.Sprint(value)))
}

func (c *Console) rule(ch string) {
	c.writeln(c.colors.Rule.Sprint(strings.Repeat(ch, ruleWidth)))
}

// writeln writes to the output with a newline.
func (c *Console) writeln(s string) {
	fmt.Fprintln(c.writer, s)
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %02ds", m, s)
}

// formatMillis formats a latency given in milliseconds.
func formatMillis(ms float64) string {
	switch {
	case ms < 1:
		return fmt.Sprintf("%.0fµs", ms*1000)
	case ms < 1000:
		return fmt.Sprintf("%.2fms", ms)
	default:
		return fmt.Sprintf("%.2fs", ms/1000)
	}
}

// formatNumber formats a number with thousands separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	offset := len(str) % 3
	if offset > 0 {
		result.WriteString(str[:offset])
	}
	for i := offset; i < len(str); i += 3 {
		if result.Len() > 0 {
			result.WriteString(",")
		}
		result.WriteString(str[i : i+3])
	}
	return result.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n+3:]
}
