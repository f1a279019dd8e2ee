package transport

import (
	"net/http"

	"product-catalog/internal/apierror"
	"product-catalog/internal/middleware"
	"product-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryRequest represents the admin category create/rename payload
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

// CategoryHandler handles HTTP requests for catalog categories
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
	redacted        bool
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger, redacted bool) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
		redacted:        redacted,
	}
}

// RegisterRoutes registers public reads and admin mutations.
func (h *CategoryHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Rename)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		apierror.WriteError(w, err, h.redacted)
		return
	}
	RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, apierror.CodeNotFound, "category not found")
		return
	}

	category, err := h.categoryService.GetByID(r.Context(), id)
	if err != nil {
		apierror.WriteError(w, err, h.redacted)
		return
	}
	RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeName(w, r)
	if !ok {
		return
	}

	category, err := h.categoryService.Create(r.Context(), name)
	if err != nil {
		apierror.WriteError(w, err, h.redacted)
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	RespondWithJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, apierror.CodeNotFound, "category not found")
		return
	}

	name, ok := h.decodeName(w, r)
	if !ok {
		return
	}

	category, err := h.categoryService.Rename(r.Context(), id, name)
	if err != nil {
		apierror.WriteError(w, err, h.redacted)
		return
	}
	RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, apierror.CodeNotFound, "category not found")
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		apierror.WriteError(w, err, h.redacted)
		return
	}

	h.logger.Info("Category deleted", zap.String("category_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category payload validation failed", zap.Error(err))
		apierror.Write(w, apierror.CodeValidationError, middleware.FormatValidationError(err))
		return "", false
	}
	return req.Name, true
}
