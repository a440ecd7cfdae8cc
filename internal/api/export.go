package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/estrelalabs/telereport/internal/aggregator"
	"github.com/estrelalabs/telereport/internal/exporter"
	"github.com/estrelalabs/telereport/internal/ingestion"
	"github.com/estrelalabs/telereport/internal/metrics"
	"github.com/estrelalabs/telereport/internal/storage"
	"github.com/estrelalabs/telereport/internal/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves the monthly workbook download
type ExportHandler struct {
	store    storage.Store
	pipeline *ingestion.Pipeline
	files    *CallFiles
	logger   zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(store storage.Store, pipeline *ingestion.Pipeline, files *CallFiles, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		store:    store,
		pipeline: pipeline,
		files:    files,
		logger:   logger.With().Str("component", "export").Logger(),
	}
}

// HandleExport handles GET /export/{ym}.xlsx. Exports are blocked until
// every store has an admin-entered volume.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ym := sanitizeYM(chi.URLParam(r, "ym"))
	if ym == "" {
		respondError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	pending, err := h.store.PendingVolumes(ym)
	if err != nil {
		if errors.Is(err, storage.ErrMonthNotFound) {
			respondError(w, http.StatusNotFound, "month not found")
			return
		}
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to check volumes")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if pending > 0 {
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":   "stores without a volume, fill in volumes before exporting",
			"pending": pending,
		})
		return
	}

	summary, err := h.store.GetMonthMetrics(ym)
	if err != nil {
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to load metrics")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	filtered, all, err := h.monthCalls(ym)
	if err != nil {
		if errors.Is(err, storage.ErrMonthNotFound) {
			respondError(w, http.StatusNotFound, "no uploaded file for this month")
			return
		}
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to load month calls")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	adjusted := aggregator.AdjustedLosses(all, h.pipeline.MatchesQueue)

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="relatorio_televendas_%s.xlsx"`, ym))

	err = exporter.Write(w, summary, adjusted, func(store string) []types.DetailRow {
		return aggregator.Detail(filtered, store)
	})
	metrics.Get().RecordExport(err)
	if err != nil {
		// Headers are already out; log and drop the connection state.
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to write workbook")
		return
	}

	h.logger.Info().Str("ym", ym).Int("stores", len(summary)).Msg("workbook exported")
}

// monthCalls re-reads the latest uploaded file twice: once queue-filtered
// for the per-store detail sheets, once unfiltered for adjusted losses.
func (h *ExportHandler) monthCalls(ym string) (filtered, all []types.NormalizedCall, err error) {
	filename, err := h.store.LatestUpload(ym)
	if err != nil {
		return nil, nil, err
	}
	if filename == "" {
		return nil, nil, storage.ErrMonthNotFound
	}

	f, err := h.files.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	res, err := h.pipeline.Normalize(f)
	f.Close()
	if err != nil {
		return nil, nil, err
	}
	filtered = res.Calls

	f, err = h.files.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	resAll, err := h.pipeline.NormalizeAll(f)
	f.Close()
	if err != nil {
		return nil, nil, err
	}
	return filtered, resAll.Calls, nil
}
