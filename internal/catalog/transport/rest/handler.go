// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gocatalog/catalog/internal/catalog"
	cerrors "github.com/gocatalog/catalog/internal/catalog/errors"
	"github.com/gocatalog/catalog/internal/catalog/service"
	"github.com/gocatalog/catalog/internal/catalog/validation"
	"github.com/gocatalog/catalog/pkg/web"
)

// maxMultipartMemory caps the in-memory portion of a parsed multipart form;
// larger file parts spill to temporary files.
const maxMultipartMemory = 32 << 20

const productsPath = "/api/v1/products"
const categoriesPath = "/api/v1/categories"

type Handler struct {
	service  service.CatalogService
	validate *validation.Validator
	logger   *slog.Logger
}

// NewHandler creates a new instance of the catalog API with the provided service.
func NewHandler(service service.CatalogService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validation.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route(productsPath, func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
			r.Post("/photo", h.UploadPhoto)
		})
	})

	r.Route(categoriesPath, func(r chi.Router) {
		r.Get("/", h.FindAllCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/{id}", h.FindCategoryByID)
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll streams the full product collection as a JSON array, one document at
// a time, so a slow consumer never forces the whole collection into memory.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	cursor, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	defer func() { _ = cursor.Close(r.Context()) }()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	_, _ = w.Write([]byte("["))
	first := true
	for cursor.Next(r.Context()) {
		var p catalog.Product
		if err := cursor.Decode(&p); err != nil {
			mLogger.ErrorContext(r.Context(), "Error decoding product document", "error", err)
			break
		}
		doc, err := json.Marshal(p)
		if err != nil {
			mLogger.ErrorContext(r.Context(), "Error encoding product to JSON", "error", err)
			break
		}
		if !first {
			_, _ = w.Write([]byte(","))
		}
		_, _ = w.Write(doc)
		first = false
		if flusher != nil {
			flusher.Flush()
		}
	}
	if err := cursor.Err(); err != nil {
		// The status line is already on the wire; all we can do is log.
		mLogger.ErrorContext(r.Context(), "Cursor iteration failed", "error", err)
	}
	_, _ = w.Write([]byte("]"))
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, cerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product. A JSON body carries a
// structured entity; a multipart body carries discrete form fields plus a
// photo file that is ingested before persistence.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		h.createWithPhoto(w, r)
		return
	}
	mLogger := h.loggerWithReqID(r)
	var product catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if messages := h.validate.Validate(product); messages != nil {
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", messages)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, messages)
		return
	}

	created, err := h.service.Create(r.Context(), product)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondCreated(w, mLogger, productsPath+"/"+created.ID, created)
}

// createWithPhoto assembles the candidate entity from an enumerated set of
// form fields and a file part, rejecting the request with a message naming
// the field when any of them is missing or unparseable.
func (h *Handler) createWithPhoto(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		mLogger.ErrorContext(r.Context(), "Error parsing multipart form", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	product, err := decodeProductForm(r.MultipartForm)
	if err != nil {
		mLogger.WarnContext(r.Context(), "Malformed multipart form", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
		return
	}
	if messages := h.validate.Validate(product); messages != nil {
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", messages)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, messages)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		mLogger.WarnContext(r.Context(), "Missing file part", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "missing file part: file")
		return
	}
	defer func() { _ = file.Close() }()

	created, err := h.service.CreateWithPhoto(r.Context(), product, header.Filename, file)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product with photo", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name, "Photo", created.Photo)
	web.RespondCreated(w, mLogger, productsPath+"/"+created.ID, created)
}

// Update merges name, price and category from the payload into an existing
// product; id, createdAt and photo on the stored entity are never touched.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	var incoming catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, incoming)
	if err != nil {
		if errors.Is(err, cerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondCreated(w, mLogger, productsPath+"/"+updated.ID, updated)
}

// DeleteByID deletes a product by its ID. The stored photo file, if any,
// stays on disk.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, cerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto attaches an uploaded file to an existing product. Only the
// photo field changes; the product is looked up before the file is written.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		mLogger.ErrorContext(r.Context(), "Error parsing multipart form", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		mLogger.WarnContext(r.Context(), "Missing file part", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "missing file part: file")
		return
	}
	defer func() { _ = file.Close() }()

	updated, err := h.service.AttachPhoto(r.Context(), id, header.Filename, file)
	if err != nil {
		if errors.Is(err, cerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for photo upload", "ID", id)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error attaching photo", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to attach photo to product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Photo attached successfully", "ID", updated.ID, "Photo", updated.Photo)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// FindAllCategories retrieves a list of all categories.
func (h *Handler) FindAllCategories(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.Categories(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving category list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindCategoryByID retrieves a category by its ID.
func (h *Handler) FindCategoryByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	found, err := h.service.CategoryByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, cerrors.ErrCategoryNotFound) {
			mLogger.WarnContext(r.Context(), "Category not found", "ID", id)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving category", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve category with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// CreateCategory handles the creation of a new category.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var category catalog.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if category.Name == "" {
		web.RespondJSON(w, mLogger, http.StatusBadRequest, []string{"Field name must not be empty"})
		return
	}

	created, err := h.service.CreateCategory(r.Context(), category)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating category", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create category")
		return
	}
	mLogger.InfoContext(r.Context(), "Category created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondCreated(w, mLogger, categoriesPath+"/"+created.ID, created)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeProductForm builds the candidate entity from the exact expected form
// field set; a missing field or an unparseable price yields an error naming
// the field.
func decodeProductForm(form *multipart.Form) (catalog.Product, error) {
	var product catalog.Product

	value := func(key string) (string, error) {
		vals := form.Value[key]
		if len(vals) == 0 {
			return "", fmt.Errorf("missing form field: %s", key)
		}
		return vals[0], nil
	}

	name, err := value("name")
	if err != nil {
		return product, err
	}
	priceRaw, err := value("price")
	if err != nil {
		return product, err
	}
	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil {
		return product, fmt.Errorf("form field price must be numeric: %q", priceRaw)
	}
	categoryID, err := value("category.id")
	if err != nil {
		return product, err
	}
	categoryName, err := value("category.name")
	if err != nil {
		return product, err
	}

	product.Name = name
	product.Price = price
	product.Category = catalog.Category{ID: categoryID, Name: categoryName}
	return product, nil
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}
