package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
)

// sweepData contains all data needed to render the sweep HTML report.
type sweepData struct {
	*SweepReport
	ChartJSON template.JS
}

// sweepPoint is one chart point, in thread order.
type sweepPoint struct {
	Threads      int     `json:"threads"`
	QPS          float64 `json:"qps"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	P99LatencyMs float64 `json:"p99LatencyMs"`
	AvgCPUUsage  float64 `json:"avgCpuUsage"`
	PeakMemoryMB float64 `json:"peakMemoryMb"`
}

// GenerateHTML renders a sweep report as HTML and writes it to a file.
func GenerateHTML(rep *SweepReport, outputPath string) error {
	html, err := GenerateHTMLString(rep)
	if err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return nil
}

// GenerateHTMLString renders a sweep report as HTML. Failed steps appear in
// the table but are left out of the charts.
func GenerateHTMLString(rep *SweepReport) (string, error) {
	if rep == nil {
		return "", fmt.Errorf("report cannot be nil")
	}

	tmpl, err := template.New("sweep").Funcs(templateFuncs()).Parse(sweepTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	chartJSON, err := sweepChartJSON(rep)
	if err != nil {
		return "", fmt.Errorf("failed to convert sweep steps: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, sweepData{SweepReport: rep, ChartJSON: template.JS(chartJSON)}); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func sweepChartJSON(rep *SweepReport) (string, error) {
	points := make([]sweepPoint, 0, len(rep.Steps))
	for _, step := range rep.Steps {
		if step.Error != "" {
			continue
		}
		points = append(points, sweepPoint{
			Threads:      step.Threads,
			QPS:          step.Result.QPS,
			AvgLatencyMs: step.Result.AvgLatencyMs,
			P99LatencyMs: step.Result.P99LatencyMs,
			AvgCPUUsage:  step.Result.AvgCPUUsage,
			PeakMemoryMB: step.Result.PeakMemoryMB,
		})
	}

	data, err := json.Marshal(points)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// templateFuncs returns the template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatMillis": formatMillis,
		"fixed2":       func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}
}
