package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/podiumreach/speaker-directory-go/internal/store"
	dirErrors "github.com/podiumreach/speaker-directory-go/pkg/errors"
)

func isValidationError(err error) bool {
	var verr *dirErrors.ValidationError
	return errors.As(err, &verr)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, lastRefresh := s.directory.Stats()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"speakers":    count,
		"lastRefresh": lastRefresh,
	})
}

func (s *Server) handleListSpeakers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.directory.GetAllSpeakers(r.Context()))
}

func (s *Server) handleFeaturedSpeakers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	s.writeJSON(w, http.StatusOK, s.directory.GetFeaturedSpeakers(r.Context(), limit))
}

func (s *Server) handleSearchSpeakers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	s.writeJSON(w, http.StatusOK, s.directory.SearchSpeakers(r.Context(), query))
}

func (s *Server) handleGetSpeaker(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	speaker, ok := s.directory.GetSpeakerBySlug(r.Context(), slug)
	if !ok {
		s.writeError(w, http.StatusNotFound, "speaker not found")
		return
	}
	s.writeJSON(w, http.StatusOK, speaker)
}

func (s *Server) handleListIndustries(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.directory.GetUniqueIndustries(r.Context()))
}

func (s *Server) handleSpeakersByIndustry(w http.ResponseWriter, r *http.Request) {
	industry := chi.URLParam(r, "industry")
	s.writeJSON(w, http.StatusOK, s.directory.GetSpeakersByIndustry(r.Context(), industry))
}

type suggestRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.suggester == nil {
		// No AI configured; suggestion degrades to a plain search.
		s.writeJSON(w, http.StatusOK, map[string]any{
			"query":    req.Query,
			"speakers": s.directory.SearchSpeakers(r.Context(), req.Query),
			"source":   "basic",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, s.suggester.Suggest(r.Context(), req.Query))
}

type createInquiryRequest struct {
	SpeakerSlug  string `json:"speakerSlug"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Message      string `json:"message"`
	EventDate    string `json:"eventDate"`
}

func (s *Server) handleCreateInquiry(w http.ResponseWriter, r *http.Request) {
	if s.inquiries == nil {
		s.writeError(w, http.StatusServiceUnavailable, "inquiry store not available")
		return
	}

	var req createInquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, ok := s.directory.GetSpeakerBySlug(r.Context(), req.SpeakerSlug); !ok {
		s.writeError(w, http.StatusNotFound, "speaker not found")
		return
	}

	inquiry := &store.Inquiry{
		SpeakerSlug:  req.SpeakerSlug,
		Name:         req.Name,
		Email:        req.Email,
		Organization: req.Organization,
		Message:      req.Message,
	}
	if req.EventDate != "" {
		eventDate, err := time.Parse("2006-01-02", req.EventDate)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "eventDate must be YYYY-MM-DD")
			return
		}
		inquiry.EventDate = &eventDate
	}

	if err := s.inquiries.Create(r.Context(), inquiry); err != nil {
		if isValidationError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Failed to create inquiry", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to create inquiry")
		return
	}

	s.writeJSON(w, http.StatusCreated, inquiry)
}

func (s *Server) handleListInquiries(w http.ResponseWriter, r *http.Request) {
	if s.inquiries == nil {
		s.writeError(w, http.StatusServiceUnavailable, "inquiry store not available")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	inquiries, err := s.inquiries.ListRecent(r.Context(), r.URL.Query().Get("speaker"), limit)
	if err != nil {
		s.logger.Error("Failed to list inquiries", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list inquiries")
		return
	}
	s.writeJSON(w, http.StatusOK, inquiries)
}

func (s *Server) handleGetInquiry(w http.ResponseWriter, r *http.Request) {
	if s.inquiries == nil {
		s.writeError(w, http.StatusServiceUnavailable, "inquiry store not available")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid inquiry id")
		return
	}

	inquiry, found, err := s.inquiries.GetByID(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to load inquiry", zap.Int64("id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load inquiry")
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "inquiry not found")
		return
	}
	s.writeJSON(w, http.StatusOK, inquiry)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateInquiryStatus(w http.ResponseWriter, r *http.Request) {
	if s.inquiries == nil {
		s.writeError(w, http.StatusServiceUnavailable, "inquiry store not available")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid inquiry id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !store.ValidStatus(req.Status) {
		s.writeError(w, http.StatusBadRequest, "unknown inquiry status")
		return
	}

	updated, err := s.inquiries.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		s.logger.Error("Failed to update inquiry status", zap.Int64("id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to update inquiry")
		return
	}
	if !updated {
		s.writeError(w, http.StatusNotFound, "inquiry not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}
