package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/star/sattrack/internal/catalog"
	"github.com/star/sattrack/internal/ingest"
	"github.com/star/sattrack/internal/position"
	"github.com/star/sattrack/internal/tle"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// satelliteDTO is the wire shape of one catalog entry.
type satelliteDTO struct {
	NoradID      int     `json:"norad_id"`
	Name         string  `json:"name"`
	ObjectID     string  `json:"object_id"`
	Epoch        string  `json:"epoch"`
	Inclination  float64 `json:"inclination"`
	Eccentricity float64 `json:"eccentricity"`
	MeanMotion   float64 `json:"mean_motion"`
	Bstar        float64 `json:"bstar"`
	LastUpdated  string  `json:"last_updated"`
}

func toDTO(set tle.ElementSet) satelliteDTO {
	return satelliteDTO{
		NoradID:      set.CatalogID,
		Name:         set.Name,
		ObjectID:     set.ObjectID,
		Epoch:        set.Epoch.UTC().Format(time.RFC3339Nano),
		Inclination:  set.InclinationDeg,
		Eccentricity: set.Eccentricity,
		MeanMotion:   set.MeanMotion,
		Bstar:        set.Bstar,
		LastUpdated:  set.LastUpdated.UTC().Format(time.RFC3339Nano),
	}
}

// refreshHandler triggers a manual ingestion run.
func refreshHandler(logger *slog.Logger, pipeline *ingest.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := pipeline.Run(r.Context())
		if err != nil {
			logger.Error("manual refresh failed", "error", err)

			var fetchErr *ingest.FetchError
			status := http.StatusInternalServerError
			if errors.As(err, &fetchErr) {
				status = http.StatusBadGateway
			}
			writeJSON(w, status, map[string]any{
				"status":  "error",
				"message": err.Error(),
				"time":    time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": "completed",
			"run_id": report.RunID.String(),
			"count":  len(report.Succeeded),
			"failed": len(report.Failed),
			"time":   report.FinishedAt.Format(time.RFC3339),
		})
	}
}

// listSatellitesHandler returns the catalog with optional paging and
// updated-since filtering.
func listSatellitesHandler(logger *slog.Logger, store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts catalog.ListOptions
		q := r.URL.Query()

		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			opts.Limit = n
		}
		if v := q.Get("offset"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid offset")
				return
			}
			opts.Offset = n
		}
		if v := q.Get("updated_since"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid updated_since, want RFC 3339")
				return
			}
			opts.UpdatedSince = t
		}

		sets, err := store.List(r.Context(), opts)
		if err != nil {
			logger.Error("catalog list failed", "error", err)
			writeError(w, http.StatusInternalServerError, "catalog unavailable")
			return
		}

		dtos := make([]satelliteDTO, 0, len(sets))
		for _, set := range sets {
			dtos = append(dtos, toDTO(set))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":      len(dtos),
			"updated":    time.Now().UTC().Format(time.RFC3339),
			"satellites": dtos,
		})
	}
}

// getSatelliteHandler returns one catalog entry by NORAD id.
func getSatelliteHandler(logger *slog.Logger, store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("norad_id"))
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid NORAD id")
			return
		}

		set, err := store.Get(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "satellite not found")
			return
		}
		if err != nil {
			logger.Error("catalog get failed", "catalog_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "catalog unavailable")
			return
		}

		writeJSON(w, http.StatusOK, toDTO(*set))
	}
}

// positionsHandler computes current subpoints for a comma-separated id list.
// An optional "at" parameter (RFC 3339) overrides "now".
func positionsHandler(logger *slog.Logger, positions *position.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("norad_ids")
		var ids []int
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid NORAD ids")
				return
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			writeError(w, http.StatusBadRequest, "no NORAD ids provided")
			return
		}

		var at time.Time
		if v := r.URL.Query().Get("at"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid at, want RFC 3339")
				return
			}
			at = t
		}

		snapshot, err := positions.Query(r.Context(), ids, at)
		if err != nil {
			logger.Error("position query failed", "error", err)
			writeError(w, http.StatusInternalServerError, "position query failed")
			return
		}

		writeJSON(w, http.StatusOK, snapshot)
	}
}
