// media-service/internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"media-service/internal/domain"
	"media-service/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// MediaHandler содержит зависимости для HTTP обработчиков каталога.
type MediaHandler struct {
	store     store.MediaStore
	logger    *slog.Logger
	validator *validator.Validate
}

// NewMediaHandler создает новый экземпляр MediaHandler.
func NewMediaHandler(s store.MediaStore, l *slog.Logger, v *validator.Validate) *MediaHandler {
	if v == nil {
		v = domain.NewValidator()
	}
	return &MediaHandler{
		store:     s,
		logger:    l,
		validator: v,
	}
}

// Pagination описывает страницу в ответе списка.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type successEnvelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type errorEnvelope struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	Details []domain.Violation `json:"details,omitempty"`
}

// --- Вспомогательные функции ---
func (h *MediaHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, r, h.logger, status, data)
}

func (h *MediaHandler) respondSuccess(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	h.respondJSON(w, r, status, successEnvelope{Success: true, Data: data, Message: message})
}

func (h *MediaHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, errorEnvelope{Error: message})
}

func (h *MediaHandler) respondValidation(w http.ResponseWriter, r *http.Request, verr *domain.ValidationError) {
	h.respondJSON(w, r, http.StatusBadRequest, errorEnvelope{Error: "Validation error", Details: verr.Violations})
}

func writeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

// decodeMediaRequest читает тело запроса и проверяет его.
// Возвращает false, если ответ с ошибкой уже отправлен.
func (h *MediaHandler) decodeMediaRequest(w http.ResponseWriter, r *http.Request) (domain.MediaRequest, bool) {
	ctx := r.Context()
	var req domain.MediaRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// encoding/json дочитывает объект после несовпадения типа, поэтому остальные поля тоже проверяются.
		if typeErr, ok := domain.DecodeViolation(err); ok {
			h.logger.WarnContext(ctx, "Media request has a field of wrong type", slog.String("error", err.Error()))
			var fieldErrs *domain.ValidationError
			if vErr := domain.ValidateMediaRequest(ctx, h.validator, req); errors.As(vErr, &fieldErrs) {
				typeErr = typeErr.Merge(fieldErrs)
			}
			h.respondValidation(w, r, typeErr)
			return req, false
		}
		h.logger.WarnContext(ctx, "Failed to decode media request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return req, false
	}

	if err := domain.ValidateMediaRequest(ctx, h.validator, req); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			h.logger.WarnContext(ctx, "Media request validation failed", slog.String("error", err.Error()))
			h.respondValidation(w, r, verr)
			return req, false
		}
		h.logger.ErrorContext(ctx, "Validator failed unexpectedly", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return req, false
	}
	return req, true
}

// parsePositiveInt разбирает параметр запроса. Пустое значение дает def.
func parsePositiveInt(values map[string][]string, name string, def int) (int, *domain.Violation) {
	raw := ""
	if v, ok := values[name]; ok && len(v) > 0 {
		raw = v[0]
	}
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &domain.Violation{Field: name, Message: name + " must be a positive integer"}
	}
	return n, nil
}

// --- Обработчики ---

// CreateMedia создает новую запись каталога.
func (h *MediaHandler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP CreateMedia request received", slog.String("path", r.URL.Path))

	req, ok := h.decodeMediaRequest(w, r)
	if !ok {
		return
	}

	media := req.ToMedia()
	if err := h.store.Create(ctx, media); err != nil {
		h.logger.ErrorContext(ctx, "Failed to create media in store", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to create media")
		return
	}

	h.logger.InfoContext(ctx, "Media created", slog.String("mediaID", media.ID))
	h.respondSuccess(w, r, http.StatusCreated, media, "Media created successfully")
}

// ListMedia возвращает страницу записей с необязательным поиском.
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	h.logger.InfoContext(ctx, "ListMedia endpoint hit", slog.String("query", query.Encode()))

	var violations []domain.Violation
	page, v := parsePositiveInt(query, "page", store.DefaultPage)
	if v != nil {
		violations = append(violations, *v)
	}
	limit, v := parsePositiveInt(query, "limit", store.DefaultPageSize)
	if v != nil {
		violations = append(violations, *v)
	}
	if len(violations) > 0 {
		h.respondValidation(w, r, domain.NewValidationError(violations...))
		return
	}
	if limit > store.MaxPageSize {
		limit = store.MaxPageSize
	}

	params := store.MediaListParams{
		Page:     page,
		PageSize: limit,
		Search:   query.Get("search"),
	}

	items, total, err := h.store.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list media from store", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to fetch media")
		return
	}
	if items == nil {
		items = []*domain.Media{}
	}

	h.logger.InfoContext(ctx, "Media list retrieved successfully", slog.Int("count_returned", len(items)), slog.Int("total_available", total))
	h.respondJSON(w, r, http.StatusOK, successEnvelope{
		Success: true,
		Data:    items,
		Pagination: &Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
		},
	})
}

// GetMedia возвращает запись по ID.
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mediaID := mux.Vars(r)["id"]
	h.logger.InfoContext(ctx, "GetMedia endpoint hit", slog.String("mediaID", mediaID))

	media, err := h.store.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, store.ErrMediaNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Media not found")
		} else {
			h.logger.ErrorContext(ctx, "Error finding media by ID", slog.String("mediaID", mediaID), slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Failed to fetch media")
		}
		return
	}
	h.respondSuccess(w, r, http.StatusOK, media, "")
}

// UpdateMedia заменяет все изменяемые поля записи. Проверка тела идет раньше поиска записи.
func (h *MediaHandler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mediaID := mux.Vars(r)["id"]
	h.logger.InfoContext(ctx, "UpdateMedia endpoint hit", slog.String("mediaID", mediaID))

	req, ok := h.decodeMediaRequest(w, r)
	if !ok {
		return
	}

	media := req.ToMedia()
	media.ID = mediaID
	if err := h.store.Update(ctx, media); err != nil {
		if errors.Is(err, store.ErrMediaNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Media not found")
		} else {
			h.logger.ErrorContext(ctx, "Failed to update media in store", slog.String("mediaID", mediaID), slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Failed to update media")
		}
		return
	}

	h.logger.InfoContext(ctx, "Media updated", slog.String("mediaID", mediaID))
	h.respondSuccess(w, r, http.StatusOK, media, "Media updated successfully")
}

// DeleteMedia удаляет запись.
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mediaID := mux.Vars(r)["id"]
	h.logger.InfoContext(ctx, "DeleteMedia endpoint hit", slog.String("mediaID", mediaID))

	if err := h.store.Delete(ctx, mediaID); err != nil {
		if errors.Is(err, store.ErrMediaNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Media not found")
		} else {
			h.logger.ErrorContext(ctx, "Failed to delete media in store", slog.String("mediaID", mediaID), slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Failed to delete media")
		}
		return
	}

	h.logger.InfoContext(ctx, "Media deleted", slog.String("mediaID", mediaID))
	h.respondSuccess(w, r, http.StatusOK, nil, "Media deleted successfully")
}

// Health проверяет доступность хранилища.
func (h *MediaHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Health check: store ping failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	count, err := h.store.Count(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Health check: count failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	h.respondSuccess(w, r, http.StatusOK, map[string]any{"status": "ok", "records": count}, "")
}

// NotFound отвечает конвертом для неизвестных маршрутов.
func (h *MediaHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed отвечает конвертом для неподдерживаемых методов.
func (h *MediaHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}
