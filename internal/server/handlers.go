package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mnakhyar/pasal/internal/ingest"
	"github.com/mnakhyar/pasal/internal/models"
	"github.com/mnakhyar/pasal/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request",
		zap.String("query", query.Query),
		zap.Int("match_count", query.MatchCount))

	flat, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response, err := s.engine.Group(r.Context(), flat, query.Page, query.PerPage)
	if err != nil {
		s.logger.Error("grouping failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleIngestRegulation(w http.ResponseWriter, r *http.Request) {
	if s.ingestor == nil {
		s.respondError(w, http.StatusNotImplemented, "ingest not enabled")
		return
	}
	var input ingest.RegulationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	workID, err := s.ingestor.Ingest(r.Context(), &input)
	if err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"work_id": workID, "status": "ingested"})
}

func (s *Server) handleDeleteWork(w http.ResponseWriter, r *http.Request) {
	if s.ingestor == nil {
		s.respondError(w, http.StatusNotImplemented, "ingest not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.storage.GetWork(r.Context(), id); err != nil {
		s.respondError(w, http.StatusNotFound, "work not found")
		return
	}
	if err := s.ingestor.RemoveWork(r.Context(), id); err != nil {
		s.logger.Error("work deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"work_id": id, "status": "deleted"})
}

func (s *Server) handleGetWork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	work, err := s.storage.GetWork(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "work not found")
		return
	}
	s.respondJSON(w, http.StatusOK, work)
}

// handleWorkNodes returns every node of a work in document order, so a
// client can render the full regulation structure.
func (s *Server) handleWorkNodes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.storage.GetWork(r.Context(), id); err != nil {
		s.respondError(w, http.StatusNotFound, "work not found")
		return
	}
	nodes, err := s.storage.NodesByWork(r.Context(), id)
	if err != nil {
		s.logger.Error("node listing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"work_id": id,
		"nodes":   nodes,
		"total":   len(nodes),
	})
}

func (s *Server) handleRegulationTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.storage.ListRegulationTypes(r.Context())
	if err != nil {
		s.logger.Error("type listing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"regulation_types": types,
		"total":            len(types),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workCount, err := s.storage.CountWorks(ctx)
	if err != nil {
		s.logger.Error("status: count works failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	nodeCount, err := s.storage.CountNodes(ctx)
	if err != nil {
		s.logger.Error("status: count nodes failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"works": workCount,
		"nodes": nodeCount,
		"config": map[string]interface{}{
			"database_path":        s.config.Storage.DatabasePath,
			"work_index_path":      s.config.Storage.WorkIndexPath,
			"provision_index_path": s.config.Storage.ProvisionIndexPath,
			"default_match_count":  s.config.Search.DefaultMatchCount,
		},
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.WorkIndexPath,
		s.config.Storage.ProvisionIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
