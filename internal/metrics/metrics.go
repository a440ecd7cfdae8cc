package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Ingestion metrics
	UploadsTotal        int64
	UploadErrorsTotal   int64
	RowsNormalizedTotal int64
	RowsDroppedTotal    int64
	QueueFallbacksTotal int64
	StoreRescuesTotal   int64
	AmbiguousDatesTotal int64

	// Reporting metrics
	ReportsServedTotal int64
	ExportsTotal       int64
	ExportErrorsTotal  int64

	// HTTP metrics
	httpRequestsTotal    map[string]map[int]int64 // endpoint -> status -> count
	httpRequestDurations map[string][]float64     // endpoint -> durations

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			httpRequestsTotal:    make(map[string]map[int]int64),
			httpRequestDurations: make(map[string][]float64),
			startTime:            time.Now(),
		}
	})
	return instance
}

// RecordUpload records a processed upload with its row outcome
func (m *Metrics) RecordUpload(normalized, dropped int) {
	m.mu.Lock()
	m.UploadsTotal++
	m.RowsNormalizedTotal += int64(normalized)
	m.RowsDroppedTotal += int64(dropped)
	m.mu.Unlock()
}

// RecordUploadError increments the upload error counter
func (m *Metrics) RecordUploadError() {
	m.mu.Lock()
	m.UploadErrorsTotal++
	m.mu.Unlock()
}

// RecordQueueFallback counts uploads where queue filtering matched nothing
func (m *Metrics) RecordQueueFallback() {
	m.mu.Lock()
	m.QueueFallbacksTotal++
	m.mu.Unlock()
}

// RecordStoreRescue counts uploads that needed the per-row store scan
func (m *Metrics) RecordStoreRescue() {
	m.mu.Lock()
	m.StoreRescuesTotal++
	m.mu.Unlock()
}

// RecordAmbiguousDates counts uploads with an ambiguous day-first guess
func (m *Metrics) RecordAmbiguousDates() {
	m.mu.Lock()
	m.AmbiguousDatesTotal++
	m.mu.Unlock()
}

// RecordReportServed increments the report counter
func (m *Metrics) RecordReportServed() {
	m.mu.Lock()
	m.ReportsServedTotal++
	m.mu.Unlock()
}

// RecordExport records a workbook export attempt
func (m *Metrics) RecordExport(err error) {
	m.mu.Lock()
	if err != nil {
		m.ExportErrorsTotal++
	} else {
		m.ExportsTotal++
	}
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++

	// Keep last 100 durations for percentile calculation
	if len(m.httpRequestDurations[endpoint]) >= 100 {
		m.httpRequestDurations[endpoint] = m.httpRequestDurations[endpoint][1:]
	}
	m.httpRequestDurations[endpoint] = append(m.httpRequestDurations[endpoint], duration.Seconds())
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("telereport_uptime_seconds", time.Since(m.startTime).Seconds())

		// Ingestion metrics
		write("telereport_uploads_total", m.UploadsTotal)
		write("telereport_upload_errors_total", m.UploadErrorsTotal)
		write("telereport_rows_normalized_total", m.RowsNormalizedTotal)
		write("telereport_rows_dropped_total", m.RowsDroppedTotal)
		write("telereport_queue_fallbacks_total", m.QueueFallbacksTotal)
		write("telereport_store_rescues_total", m.StoreRescuesTotal)
		write("telereport_ambiguous_dates_total", m.AmbiguousDatesTotal)

		// Reporting metrics
		write("telereport_reports_served_total", m.ReportsServedTotal)
		write("telereport_exports_total", m.ExportsTotal)
		write("telereport_export_errors_total", m.ExportErrorsTotal)

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("telereport_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}
