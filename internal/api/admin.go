package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/estrelalabs/telereport/internal/aggregator"
	"github.com/estrelalabs/telereport/internal/ingestion"
	"github.com/estrelalabs/telereport/internal/metrics"
	"github.com/estrelalabs/telereport/internal/storage"
)

// maxUploadBytes caps multipart uploads at 64 MiB
const maxUploadBytes = 64 << 20

// AdminHandler owns the upload, volume and month-management endpoints
type AdminHandler struct {
	store    storage.Store
	pipeline *ingestion.Pipeline
	files    *CallFiles
	logger   zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(store storage.Store, pipeline *ingestion.Pipeline, files *CallFiles, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		store:    store,
		pipeline: pipeline,
		files:    files,
		logger:   logger.With().Str("component", "admin").Logger(),
	}
}

// HandleUpload handles POST /admin/upload. The file is normalized and the
// month consolidated in one step; any failure leaves previously stored
// metrics untouched.
func (h *AdminHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	ym := sanitizeYM(r.FormValue("ym"))
	if ym == "" {
		respondError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	filename, err := h.files.Save(ym, header.Filename, file)
	if err != nil {
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to save upload")
		respondError(w, http.StatusInternalServerError, "failed to save upload")
		return
	}

	saved, err := h.files.Open(filename)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reopen upload")
		return
	}
	defer saved.Close()

	res, err := h.pipeline.Normalize(saved)
	if err != nil {
		// A failed normalization must not change what is already stored,
		// including which file counts as the month's latest upload.
		h.files.Remove(filename)
		metrics.Get().RecordUploadError()
		h.respondIngestionError(w, ym, err)
		return
	}

	aggs := aggregator.Aggregate(res.Calls)
	if err := h.store.ReplaceMonthMetrics(ym, filename, aggs); err != nil {
		h.files.Remove(filename)
		metrics.Get().RecordUploadError()
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to store metrics")
		respondError(w, http.StatusInternalServerError, "failed to store metrics")
		return
	}

	m := metrics.Get()
	m.RecordUpload(len(res.Calls), res.RowsRead-len(res.Calls))
	if !res.QueueFilterApplied {
		m.RecordQueueFallback()
	}
	if res.StoreColumnRescued {
		m.RecordStoreRescue()
	}
	if res.TimestampAmbiguous {
		m.RecordAmbiguousDates()
	}

	h.logger.Info().
		Str("ym", ym).
		Str("filename", filename).
		Int("stores", len(aggs)).
		Int("calls", len(res.Calls)).
		Msg("month consolidated")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ym":                 ym,
		"stores":             len(aggs),
		"calls":              len(res.Calls),
		"rowsRead":           res.RowsRead,
		"delimiter":          res.Delimiter,
		"roles":              res.Roles,
		"queueFilterApplied": res.QueueFilterApplied,
		"storeColumnRescued": res.StoreColumnRescued,
		"timestampAmbiguous": res.TimestampAmbiguous,
	})
}

// respondIngestionError maps pipeline failures to actionable responses
func (h *AdminHandler) respondIngestionError(w http.ResponseWriter, ym string, err error) {
	var delimErr *ingestion.DelimiterDetectionError
	if errors.As(err, &delimErr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "could not detect a column delimiter",
			"tried": delimErr.Tried,
		})
		return
	}

	var emptyErr *ingestion.EmptyResultError
	if errors.As(err, &emptyErr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":         "no usable rows after normalization",
			"roles":         emptyErr.Roles,
			"storeSamples":  emptyErr.StoreSamples,
			"queueSamples":  emptyErr.QueueSamples,
			"statusSamples": emptyErr.StatusSamples,
		})
		return
	}

	h.logger.Error().Err(err).Str("ym", ym).Msg("upload normalization failed")
	respondError(w, http.StatusInternalServerError, "failed to process file")
}

// HandleGetVolumes handles GET /admin/volumes/{ym}
func (h *AdminHandler) HandleGetVolumes(w http.ResponseWriter, r *http.Request) {
	ym := sanitizeYM(chi.URLParam(r, "ym"))
	if ym == "" {
		respondError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	aggs, err := h.store.GetMonthMetrics(ym)
	if err != nil {
		if errors.Is(err, storage.ErrMonthNotFound) {
			respondError(w, http.StatusNotFound, "month not found")
			return
		}
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to load metrics")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pending := 0
	for _, a := range aggs {
		if a.TotalVolume == 0 {
			pending++
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ym":      ym,
		"rows":    aggs,
		"pending": pending,
	})
}

// HandlePutVolumes handles PUT /admin/volumes/{ym}. Every store of the
// month must get a volume of at least 1; partial updates are rejected so
// the export gate stays meaningful.
func (h *AdminHandler) HandlePutVolumes(w http.ResponseWriter, r *http.Request) {
	ym := sanitizeYM(chi.URLParam(r, "ym"))
	if ym == "" {
		respondError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	var req struct {
		Volumes map[string]int `json:"volumes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	aggs, err := h.store.GetMonthMetrics(ym)
	if err != nil {
		if errors.Is(err, storage.ErrMonthNotFound) {
			respondError(w, http.StatusNotFound, "month not found")
			return
		}
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to load metrics")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var missing []string
	for _, a := range aggs {
		if req.Volumes[a.Store] < 1 {
			missing = append(missing, a.Store)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "every store needs a volume of at least 1",
			"missing": missing,
		})
		return
	}

	if err := h.store.UpdateVolumes(ym, req.Volumes); err != nil {
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to update volumes")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	updated, err := h.store.GetMonthMetrics(ym)
	if err != nil {
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to reload metrics")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ym":   ym,
		"rows": updated,
	})
}

// HandleDeleteMonth handles DELETE /admin/months/{ym}
func (h *AdminHandler) HandleDeleteMonth(w http.ResponseWriter, r *http.Request) {
	ym := sanitizeYM(chi.URLParam(r, "ym"))
	if ym == "" {
		respondError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	if err := h.store.DeleteMonth(ym); err != nil {
		h.logger.Error().Err(err).Str("ym", ym).Msg("failed to delete month")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.files.RemoveMonth(ym); err != nil {
		h.logger.Warn().Err(err).Str("ym", ym).Msg("failed to remove month files")
	}

	h.logger.Info().Str("ym", ym).Msg("month removed")
	respondJSON(w, http.StatusOK, map[string]string{"deleted": ym})
}
