package report

// sweepTemplate renders throughput and latency against thread count.
const sweepTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Model}} - Thread Sweep Report</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f8fafc;
            --text-primary: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
            --accent-primary: #3b82f6;
            --accent-error: #ef4444;
            --shadow: 0 1px 3px rgba(0, 0, 0, 0.1);
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-secondary);
            color: var(--text-primary);
            line-height: 1.5;
        }
        .container { max-width: 1200px; margin: 0 auto; padding: 2rem; }
        .header { margin-bottom: 2rem; }
        .header h1 { font-size: 1.75rem; }
        .header .meta { color: var(--text-secondary); font-size: 0.875rem; }
        .section {
            background: var(--bg-primary);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            box-shadow: var(--shadow);
            padding: 1.5rem;
            margin-bottom: 1.5rem;
        }
        .section-title { font-size: 1.125rem; margin-bottom: 1rem; }
        .chart-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(450px, 1fr)); gap: 1.5rem; }
        .chart-title { font-weight: 600; margin-bottom: 0.5rem; }
        .chart-wrapper { position: relative; height: 300px; }
        .stats-table { width: 100%; border-collapse: collapse; font-size: 0.875rem; }
        .stats-table th, .stats-table td { padding: 0.5rem 0.75rem; border-bottom: 1px solid var(--border-color); text-align: right; }
        .stats-table th:first-child, .stats-table td:first-child { text-align: left; }
        .stats-table th { color: var(--text-secondary); font-weight: 600; }
        .failed { color: var(--accent-error); }
        .footer { text-align: center; color: var(--text-secondary); font-size: 0.75rem; padding: 1rem; }
    </style>
</head>
<body>
    <div class="container">
        <header class="header">
            <h1>Thread Sweep: {{.Model}}</h1>
            <div class="meta">{{.Timestamp.Format "2006-01-02 15:04:05 MST"}}</div>
        </header>

        <section class="section">
            <h2 class="section-title">Scaling</h2>
            <div class="chart-grid">
                <div class="chart-container">
                    <div class="chart-title">Throughput (QPS) vs Threads</div>
                    <div class="chart-wrapper"><canvas id="qpsChart"></canvas></div>
                </div>
                <div class="chart-container">
                    <div class="chart-title">Latency (ms) vs Threads</div>
                    <div class="chart-wrapper"><canvas id="latencyChart"></canvas></div>
                </div>
            </div>
        </section>

        <section class="section">
            <h2 class="section-title">Steps</h2>
            <table class="stats-table">
                <thead>
                    <tr>
                        <th>Threads</th>
                        <th>Requests</th>
                        <th>QPS</th>
                        <th>Avg Latency</th>
                        <th>P99 Latency</th>
                        <th>Avg CPU %</th>
                        <th>Peak Memory MB</th>
                        <th>Outcome</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Steps}}
                    <tr>
                        <td>{{.Threads}}</td>
                        <td>{{.Requests}}</td>
                        {{if .Error}}
                        <td colspan="6" class="failed">failed: {{.Error}}</td>
                        {{else}}
                        <td>{{fixed2 .Result.QPS}}</td>
                        <td>{{formatMillis .Result.AvgLatencyMs}}</td>
                        <td>{{formatMillis .Result.P99LatencyMs}}</td>
                        <td>{{fixed2 .Result.AvgCPUUsage}}</td>
                        <td>{{fixed2 .Result.PeakMemoryMB}}</td>
                        {{if eq (print .Result.Outcome) "completed"}}
                        <td>completed</td>
                        {{else}}
                        <td class="failed">{{.Result.Outcome}} ({{.Result.Completed}}/{{.Requests}})</td>
                        {{end}}
                        {{end}}
                    </tr>
                    {{end}}
                </tbody>
            </table>
            {{if .Skipped}}
            <p class="failed">Skipped thread counts: {{.Skipped}}</p>
            {{end}}
        </section>

        <footer class="footer">
            <p>Generated by InferBench</p>
        </footer>
    </div>

    <script>
        const points = {{.ChartJSON}};
        const labels = points.map(p => p.threads);
        const commonOptions = {
            responsive: true,
            maintainAspectRatio: false,
            scales: {
                x: { title: { display: true, text: 'Threads' } },
                y: { beginAtZero: true },
            },
        };

        new Chart(document.getElementById('qpsChart').getContext('2d'), {
            type: 'line',
            data: {
                labels: labels,
                datasets: [{
                    label: 'QPS',
                    data: points.map(p => p.qps),
                    borderColor: '#3b82f6',
                    backgroundColor: '#3b82f620',
                    fill: true,
                    tension: 0.2,
                }]
            },
            options: commonOptions
        });

        new Chart(document.getElementById('latencyChart').getContext('2d'), {
            type: 'line',
            data: {
                labels: labels,
                datasets: [
                    {
                        label: 'Avg',
                        data: points.map(p => p.avgLatencyMs),
                        borderColor: '#22c55e',
                        backgroundColor: 'transparent',
                        tension: 0.2,
                    },
                    {
                        label: 'P99',
                        data: points.map(p => p.p99LatencyMs),
                        borderColor: '#ef4444',
                        backgroundColor: 'transparent',
                        tension: 0.2,
                    },
                ]
            },
            options: commonOptions
        });
    </script>
</body>
</html>
`
