package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/tana/internal/export"
	"github.com/hyperjump/tana/internal/models"
	"github.com/hyperjump/tana/internal/storage"
)

const defaultSearchLimit = 50

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	query := &models.ExploreQuery{
		Query:    r.URL.Query().Get("q"),
		Category: models.MediaCategory(r.URL.Query().Get("type")),
	}
	s.logger.Debug("explore request", zap.String("q", query.Query), zap.String("type", string(query.Category)))
	results, err := s.explore.Search(r.Context(), query)
	if err != nil {
		// Search only fails on bad input; provider failures degrade to
		// fewer results instead of an error.
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ListFilter{
		MediaType: models.MediaType(q.Get("type")),
		Status:    models.Status(q.Get("status")),
		Tag:       q.Get("tag"),
	}
	if filter.MediaType != "" && !filter.MediaType.Valid() {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown media_type: %s", filter.MediaType))
		return
	}
	if filter.Status != "" && !filter.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown status: %s", filter.Status))
		return
	}
	if v := q.Get("favorite"); v != "" {
		fav := v == "true" || v == "1"
		filter.Favorite = &fav
	}

	items, err := s.storage.ListItems(r.Context(), filter, intParam(q.Get("offset"), 0), intParam(q.Get("limit"), 0))
	if err != nil {
		s.logger.Error("list items failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []*models.MediaItem{}
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var item models.MediaItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := item.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("create item request", zap.String("id", item.ID), zap.String("title", item.Title))
	if err := s.storage.CreateItem(r.Context(), &item); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("create item failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.indexItem(r, &item)
	s.respondJSON(w, http.StatusCreated, &item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := s.storage.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.Error("get item failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

// itemUpdate carries a partial item update. Nil fields stay unchanged.
type itemUpdate struct {
	Title      *string        `json:"title"`
	Status     *models.Status `json:"status"`
	Progress   *int           `json:"progress"`
	Score      *float64       `json:"score"`
	Notes      *string        `json:"notes"`
	Favorite   *bool          `json:"favorite"`
	Tags       *[]string      `json:"tags"`
	TotalUnits *int           `json:"total_episodes"`
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var upd itemUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.storage.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.Error("update item failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if upd.Title != nil {
		item.Title = *upd.Title
	}
	if upd.Progress != nil {
		item.Progress = *upd.Progress
	}
	if upd.Score != nil {
		item.Score = upd.Score
	}
	if upd.Notes != nil {
		item.Notes = upd.Notes
	}
	if upd.Favorite != nil {
		item.Favorite = *upd.Favorite
	}
	if upd.Tags != nil {
		item.Tags = *upd.Tags
	}
	if upd.TotalUnits != nil {
		item.TotalUnits = upd.TotalUnits
	}
	if upd.Status != nil {
		item.Status = *upd.Status
		// Marking an item completed snaps progress to the total unless
		// the request also sets progress.
		if *upd.Status == models.StatusCompleted && upd.Progress == nil {
			item.ForceComplete()
		}
	}

	if err := item.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("update item request", zap.String("id", id))
	if err := s.storage.UpdateItem(r.Context(), item); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("update item failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.indexItem(r, item)
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete item request", zap.String("id", id))
	if err := s.storage.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.Error("delete item failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.index != nil {
		if err := s.index.Delete(r.Context(), id); err != nil {
			s.logger.Warn("failed to remove item from index", zap.String("id", id), zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	mediaType := models.MediaType(r.URL.Query().Get("type"))
	if mediaType != "" && !mediaType.Valid() {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown media_type: %s", mediaType))
		return
	}
	limit := intParam(r.URL.Query().Get("limit"), defaultSearchLimit)

	hits, err := s.index.Search(r.Context(), query, mediaType, limit)
	if err != nil {
		s.logger.Error("library search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]*models.MediaItem, 0, len(hits))
	for _, hit := range hits {
		item, err := s.storage.GetItem(r.Context(), hit.ID)
		if err != nil {
			// The index can trail storage briefly after a delete.
			continue
		}
		items = append(items, item)
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.storage.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListItems(r.Context(), storage.ListFilter{}, 0, 0)
	if err != nil {
		s.logger.Error("export failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="library.xlsx"`)
	if err := export.WriteXLSX(w, items); err != nil {
		// The response is already streaming; all we can do is log.
		s.logger.Error("export write failed", zap.Error(err))
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	itemCount, err := s.storage.CountItems(r.Context())
	if err != nil {
		s.logger.Error("status: count items failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"items": itemCount,
	}
	if s.index != nil {
		if docCount, err := s.index.DocCount(); err == nil {
			resp["index_docs"] = docCount
		}
	}
	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"database_path":           s.config.Storage.DatabasePath,
			"index_path":              s.config.Storage.IndexPath,
			"explore_timeout_seconds": s.config.Explore.TimeoutSeconds,
			"explore_max_results":     s.config.Explore.MaxResults,
		}
		dbBytes, dbErr := storage.DatabaseSizeBytes(s.config.Storage.DatabasePath)
		idxBytes, idxErr := storage.DiskUsageBytes(s.config.Storage.IndexPath)
		if dbErr == nil && idxErr == nil {
			resp["disk_usage_bytes"] = dbBytes + idxBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// indexItem keeps the search index in step with storage. Index failures are
// logged, not returned; storage stays the source of truth.
func (s *Server) indexItem(r *http.Request, item *models.MediaItem) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(r.Context(), item); err != nil {
		s.logger.Warn("failed to index item", zap.String("id", item.ID), zap.Error(err))
	}
}

func intParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
