package api

import (
	"errors"
	"net/http"
	"regexp"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/estrelalabs/telereport/internal/aggregator"
	"github.com/estrelalabs/telereport/internal/ingestion"
	"github.com/estrelalabs/telereport/internal/metrics"
	"github.com/estrelalabs/telereport/internal/storage"
	"github.com/estrelalabs/telereport/internal/types"
)

var storeTrailingNumber = regexp.MustCompile(`(\d+)$`)

// ReportRow is one store in the monthly report payload. Percentages are
// computed against the admin-entered volume; with no volume yet they stay
// at zero rather than misreporting against the received count.
type ReportRow struct {
	Store      string  `json:"store"`
	Received   int     `json:"received"`
	Lost       int     `json:"lost"`
	Volume     int     `json:"volume"`
	PctLost    float64 `json:"pctLost"`
	PctHandled float64 `json:"pctHandled"`
}

// ReportHandler serves the public reporting endpoints
type ReportHandler struct {
	store    storage.Store
	pipeline *ingestion.Pipeline
	files    *CallFiles
	logger   zerolog.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(store storage.Store, pipeline *ingestion.Pipeline, files *CallFiles, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		store:    store,
		pipeline: pipeline,
		files:    files,
		logger:   logger.With().Str("component", "report").Logger(),
	}
}

// HandleListMonths handles GET /months
func (h *ReportHandler) HandleListMonths(w http.ResponseWriter, r *http.Request) {
	months, err := h.store.ListMonths()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list months")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if months == nil {
		months = []types.MonthSummary{}
	}
	respondJSON(w, http.StatusOK, months)
}

// HandleReport handles GET /report/{ym}
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ym := sanitizeYM(chi.URLParam(r, "ym"))
	if ym == "" {
		respondError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	aggs, err := h.store.GetMonthMetrics(ym)
	if err != nil {
		if errors.Is(err, storage.ErrMonthNotFound) {
			respondError(w, http.StatusNotFound, "no consolidated data for this month")
			return
		}
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to load metrics")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rows := make([]ReportRow, 0, len(aggs))
	for _, a := range aggs {
		row := ReportRow{
			Store:    a.Store,
			Received: a.Received,
			Lost:     a.Lost,
			Volume:   a.TotalVolume,
		}
		if a.TotalVolume > 0 {
			row.PctLost = float64(a.Lost) / float64(a.TotalVolume) * 100
			row.PctHandled = float64(a.TotalVolume-a.Lost) / float64(a.TotalVolume) * 100
		}
		rows = append(rows, row)
	}

	order := orderAlias(r.URL.Query().Get("order"))
	sortReportRows(rows, order)

	metrics.Get().RecordReportServed()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ym":    ym,
		"order": order,
		"rows":  rows,
	})
}

// orderAlias maps legacy order names onto their canonical form
func orderAlias(order string) string {
	switch order {
	case "":
		return "loja"
	case "pct_desc", "pct_perda_desc":
		return "pct_perdidas_desc"
	case "pct_asc", "pct_perda_asc":
		return "pct_perdidas_asc"
	}
	return order
}

func sortReportRows(rows []ReportRow, order string) {
	switch order {
	case "pct_perdidas_desc":
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a].PctLost != rows[b].PctLost {
				return rows[a].PctLost > rows[b].PctLost
			}
			return rows[a].Store < rows[b].Store
		})
	case "pct_perdidas_asc":
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a].PctLost != rows[b].PctLost {
				return rows[a].PctLost < rows[b].PctLost
			}
			return rows[a].Store < rows[b].Store
		})
	case "pct_atendidas_desc":
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a].PctHandled != rows[b].PctHandled {
				return rows[a].PctHandled > rows[b].PctHandled
			}
			return rows[a].Store < rows[b].Store
		})
	case "pct_atendidas_asc":
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a].PctHandled != rows[b].PctHandled {
				return rows[a].PctHandled < rows[b].PctHandled
			}
			return rows[a].Store < rows[b].Store
		})
	case "volume_desc":
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a].Volume != rows[b].Volume {
				return rows[a].Volume > rows[b].Volume
			}
			return rows[a].Store < rows[b].Store
		})
	case "volume_asc":
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a].Volume != rows[b].Volume {
				return rows[a].Volume < rows[b].Volume
			}
			return rows[a].Store < rows[b].Store
		})
	case "loja_desc":
		sort.SliceStable(rows, func(a, b int) bool {
			na, nb := reportStoreNumber(rows[a].Store), reportStoreNumber(rows[b].Store)
			if na != nb {
				return na > nb
			}
			return rows[a].Store > rows[b].Store
		})
	default: // "loja"
		sort.SliceStable(rows, func(a, b int) bool {
			na, nb := reportStoreNumber(rows[a].Store), reportStoreNumber(rows[b].Store)
			if na != nb {
				return na < nb
			}
			return rows[a].Store < rows[b].Store
		})
	}
}

func reportStoreNumber(label string) int {
	m := storeTrailingNumber.FindStringSubmatch(label)
	if m == nil {
		return 1 << 30
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1 << 30
	}
	return n
}

// HandleStoreDetail handles GET /report/{ym}/store/{storeSlug}
func (h *ReportHandler) HandleStoreDetail(w http.ResponseWriter, r *http.Request) {
	ym := sanitizeYM(chi.URLParam(r, "ym"))
	if ym == "" {
		respondError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	calls, err := h.monthCalls(ym)
	if err != nil {
		h.respondCallsError(w, ym, err)
		return
	}

	seen := make(map[string]bool)
	var stores []string
	for _, c := range calls {
		if !seen[c.Store] {
			seen[c.Store] = true
			stores = append(stores, c.Store)
		}
	}

	store, ok := deslug(chi.URLParam(r, "storeSlug"), stores)
	if !ok {
		respondError(w, http.StatusNotFound, "store not found in this month")
		return
	}

	var lost int
	badges := map[string]int{
		"atendida": 0,
		"expulsa":  0,
		"desistiu": 0,
		"outros":   0,
	}
	for _, c := range calls {
		if c.Store != store {
			continue
		}
		if c.IsLost {
			lost++
		}
		switch c.Status {
		case ingestion.StatusHandled:
			badges["atendida"]++
		case ingestion.StatusEvicted:
			badges["expulsa"]++
		case ingestion.StatusAbandoned:
			badges["desistiu"]++
		default:
			badges["outros"]++
		}
	}

	rows := aggregator.Detail(calls, store)
	filter := r.URL.Query().Get("f")
	if filter != "" {
		rows = filterDetailRows(rows, filter)
	}
	if rows == nil {
		rows = []types.DetailRow{}
	}

	volume := 0
	if m, err := h.store.GetStoreMetric(ym, store); err == nil && m != nil {
		volume = m.TotalVolume
	}
	pctReal := 0.0
	if volume > 0 {
		pctReal = float64(lost) / float64(volume) * 100
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ym":      ym,
		"store":   store,
		"filter":  filter,
		"rows":    rows,
		"badges":  badges,
		"volume":  volume,
		"lost":    lost,
		"pctLost": pctReal,
	})
}

func filterDetailRows(rows []types.DetailRow, filter string) []types.DetailRow {
	keep := func(status string) bool {
		switch filter {
		case "atendida":
			return status == ingestion.StatusHandled
		case "expulsa":
			return status == ingestion.StatusEvicted
		case "desistiu":
			return status == ingestion.StatusAbandoned
		case "outros":
			return status != ingestion.StatusHandled &&
				status != ingestion.StatusEvicted &&
				status != ingestion.StatusAbandoned
		}
		return true
	}

	out := rows[:0:0]
	for _, r := range rows {
		if keep(r.Status) {
			out = append(out, r)
		}
	}
	return out
}

// monthCalls re-reads the latest uploaded file for a month through the
// ingestion pipeline.
func (h *ReportHandler) monthCalls(ym string) ([]types.NormalizedCall, error) {
	filename, err := h.store.LatestUpload(ym)
	if err != nil {
		return nil, err
	}
	if filename == "" {
		return nil, storage.ErrMonthNotFound
	}

	f, err := h.files.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := h.pipeline.Normalize(f)
	if err != nil {
		return nil, err
	}
	return res.Calls, nil
}

func (h *ReportHandler) respondCallsError(w http.ResponseWriter, ym string, err error) {
	if errors.Is(err, storage.ErrMonthNotFound) {
		respondError(w, http.StatusNotFound, "no uploaded file for this month")
		return
	}
	h.logger.Error().Err(err).Str("ym", ym).Msg("failed to load month calls")
	respondError(w, http.StatusInternalServerError, "internal error")
}
