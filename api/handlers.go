package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"collectrip/models"
	"collectrip/services"
	"collectrip/storage"
)

// =============================================================================
// Auth
// =============================================================================

func (s *Server) handleKakaoLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "authorization code is required")
		return
	}

	user, tokens, isNew, err := s.auth.LoginWithKakao(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAuthCode) {
			writeError(w, http.StatusUnauthorized, "authorization code rejected")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{
		"user":   user,
		"tokens": tokens,
		"is_new": isNew,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	tokens, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "refresh token rejected")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// =============================================================================
// Users
// =============================================================================

func (s *Server) handleCheckNickname(w http.ResponseWriter, r *http.Request) {
	nickname := r.URL.Query().Get("nickname")

	available, err := s.users.CheckNickname(r.Context(), nickname)
	if err != nil {
		if errors.Is(err, services.ErrNicknameInvalid) {
			writeError(w, http.StatusBadRequest, "nickname must be 2-12 hangul, latin or digit characters")
			return
		}
		writeError(w, http.StatusInternalServerError, "nickname check failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), userIDFrom(r))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "profile lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handlePatchMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "nickname is required")
		return
	}

	user, err := s.users.UpdateNickname(r.Context(), userIDFrom(r), req.Nickname)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNicknameInvalid):
			writeError(w, http.StatusBadRequest, "nickname must be 2-12 hangul, latin or digit characters")
		case errors.Is(err, services.ErrNicknameTaken):
			writeError(w, http.StatusConflict, "nickname already in use")
		default:
			writeError(w, http.StatusInternalServerError, "nickname update failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// =============================================================================
// Contents
// =============================================================================

func (s *Server) handleListContents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ContentFilter{
		AreaCode: q.Get("areacode"),
		Cat2:     q.Get("cat2"),
	}
	if ct := q.Get("content_type_id"); ct != "" {
		id, err := strconv.Atoi(ct)
		if err != nil {
			writeError(w, http.StatusBadRequest, "content_type_id must be numeric")
			return
		}
		filter.ContentTypeID = id
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	contents, err := s.store.ListContents(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "content listing failed")
		return
	}
	if contents == nil {
		contents = []models.Content{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contents": contents,
		"count":    len(contents),
	})
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	contentID, err := strconv.ParseInt(chi.URLParam(r, "contentID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "content id must be numeric")
		return
	}

	content, err := s.store.GetContent(r.Context(), contentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "content lookup failed")
		return
	}
	if content == nil {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}

	detail, err := s.store.GetDetail(r.Context(), contentID, content.ContentTypeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "detail lookup failed")
		return
	}

	resp := map[string]interface{}{"content": content}
	if detail != nil {
		resp["detail"] = detail
		resp["detail_kind"] = detail.Kind()
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Collectors
// =============================================================================

func (s *Server) handleCheckin(w http.ResponseWriter, r *http.Request) {
	var req services.CheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ContentID == 0 {
		writeError(w, http.StatusBadRequest, "content_id and verified_by are required")
		return
	}

	collector, err := s.collectors.Checkin(r.Context(), userIDFrom(r), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContentNotFound):
			writeError(w, http.StatusNotFound, "content not found")
		case errors.Is(err, services.ErrAlreadyCollected):
			writeError(w, http.StatusConflict, "content already collected")
		case errors.Is(err, services.ErrTooFarAway):
			writeError(w, http.StatusUnprocessableEntity, "position is outside the check-in radius")
		case errors.Is(err, services.ErrBadVerification):
			writeError(w, http.StatusBadRequest, "verified_by must be GPS or Photo")
		default:
			writeError(w, http.StatusInternalServerError, "check-in failed")
		}
		return
	}

	// New check-ins may complete a badge condition right away. A failure here
	// is picked up by the badge worker sweep.
	if s.badges != nil {
		if _, err := s.badges.EvaluateUser(r.Context(), collector.UserID); err != nil {
			log.Printf("Warning: badge evaluation after check-in failed: %v", err)
		}
	}

	writeJSON(w, http.StatusCreated, collector)
}

func (s *Server) handleMyCollectors(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	collectors, err := s.collectors.ListMine(r.Context(), userIDFrom(r), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "collector listing failed")
		return
	}
	if collectors == nil {
		collectors = []models.Collector{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"collectors": collectors,
		"count":      len(collectors),
	})
}

// =============================================================================
// Badges
// =============================================================================

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.badges.ListBadges(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "badge listing failed")
		return
	}
	if badges == nil {
		badges = []models.Badge{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"badges": badges})
}

func (s *Server) handleMyBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.badges.ListUserBadges(r.Context(), userIDFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "badge listing failed")
		return
	}
	if badges == nil {
		badges = []models.UserBadge{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"badges": badges})
}
