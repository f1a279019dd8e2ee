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

// ProductRequest represents the admin product create/update payload
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"required,max=1000"`
	Price       float64 `json:"price" validate:"gte=0"`
	CategoryID  *string `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	ImageURL    string  `json:"imageUrl" validate:"required"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// ProductHandler handles HTTP requests for catalog products
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
	redacted       bool
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger, redacted bool) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
		redacted:       redacted,
	}
}

// RegisterRoutes registers public reads and admin mutations.
func (h *ProductHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns catalog products, optionally filtered by category or a
// case-insensitive name search.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID *uuid.UUID
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierror.Write(w, apierror.CodeValidationError, "category must be a valid UUID")
			return
		}
		categoryID = &id
	}

	products, err := h.productService.List(r.Context(), categoryID, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		apierror.WriteError(w, err, h.redacted)
		return
	}

	RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, apierror.CodeNotFound, "product not found")
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		apierror.WriteError(w, err, h.redacted)
		return
	}

	RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		apierror.WriteError(w, err, h.redacted)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, apierror.CodeNotFound, "product not found")
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		apierror.WriteError(w, err, h.redacted)
		return
	}

	RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, apierror.CodeNotFound, "product not found")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		apierror.WriteError(w, err, h.redacted)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) decodeInput(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product payload validation failed", zap.Error(err))
		apierror.Write(w, apierror.CodeValidationError, middleware.FormatValidationError(err))
		return service.ProductInput{}, false
	}

	input := service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			apierror.Write(w, apierror.CodeValidationError, "categoryId must be a valid UUID")
			return service.ProductInput{}, false
		}
		input.CategoryID = &id
	}
	return input, true
}
