package handlers

import (
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aaravmahajanofficial/product-catalog/internal/api/middleware"
	"github.com/aaravmahajanofficial/product-catalog/internal/config"
	"github.com/aaravmahajanofficial/product-catalog/internal/errors"
	"github.com/aaravmahajanofficial/product-catalog/internal/models"
	service "github.com/aaravmahajanofficial/product-catalog/internal/services"
	"github.com/aaravmahajanofficial/product-catalog/internal/utils/response"
	"github.com/google/uuid"
)

const (
	uploadField       = "file"
	uploadSucceeded   = "CSV processed successfully"
	fileRequired      = "CSV file is required"
	fileTooLarge      = "CSV file is too large"
	invalidPagination = "Invalid page or limit"
	invalidPrice      = "Invalid price filter"
	routeNotFound     = "Could not find this route"

	// multipart overhead allowed on top of the file itself
	formOverhead = 1 << 20
)

type ProductHandler struct {
	productService service.ProductService
	upload         config.UploadConfig
}

func NewProductHandler(productService service.ProductService, upload config.UploadConfig) *ProductHandler {
	return &ProductHandler{productService: productService, upload: upload}
}

// UploadProducts godoc
//	@Summary		Upload a product CSV
//	@Description	Parses the uploaded CSV, stores every valid row and reports the rows that were rejected. Rows whose sku already exists are skipped.
//	@Tags			Products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file					true	"CSV file with header sku,name,brand,color,size,mrp,price,quantity"
//	@Success		200		{object}	models.UploadResponse	"CSV processed"
//	@Failure		400		{object}	response.ErrorResponse	"No file uploaded"
//	@Failure		413		{object}	response.ErrorResponse	"File too large"
//	@Failure		429		{object}	response.ErrorResponse	"Too many uploads in progress"
//	@Failure		500		{object}	response.ErrorResponse	"CSV could not be processed"
//	@Router			/product/upload [post]
func (h *ProductHandler) UploadProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if h.upload.MaxFileSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxFileSize+formOverhead)
		}

		file, fileHeader, err := r.FormFile(uploadField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if stdErrors.As(err, &tooLarge) {
				logger.Warn("Upload rejected, body too large", slog.Int64("limit", tooLarge.Limit))
				response.Error(w, errors.NewAppError(errors.ErrCodeBadRequest, fileTooLarge, http.StatusRequestEntityTooLarge))
				return
			}
			logger.Warn("Upload without a file", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError(fileRequired))
			return
		}
		defer file.Close()
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}

		logger = logger.With(slog.String("filename", fileHeader.Filename), slog.Int64("size", fileHeader.Size))

		path, err := h.saveUpload(file)
		if err != nil {
			logger.Error("Failed to store uploaded file", slog.String("error", err.Error()))
			response.Error(w, errors.InternalError(errors.UnknownErrorMessage).WithError(err))
			return
		}

		result, err := h.productService.UploadProducts(r.Context(), path)
		if err != nil {
			logger.Error("Failed to process CSV", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("CSV processed successfully", slog.Int("total", result.Total), slog.Int("failed", result.Failed))
		response.WriteJson(w, http.StatusOK, models.UploadResponse{Message: uploadSucceeded, UploadResult: result})
	}
}

// saveUpload copies the upload into the upload directory under a fresh name.
func (h *ProductHandler) saveUpload(src io.Reader) (string, error) {
	if err := os.MkdirAll(h.upload.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	path := filepath.Join(h.upload.TempDir, uuid.NewString()+".csv")

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing upload file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing upload file: %w", err)
	}

	return path, nil
}

// ListProducts godoc
//	@Summary		List products
//	@Description	Returns one page of products ordered by id.
//	@Tags			Products
//	@Produce		json
//	@Param			page	query		int							true	"Page number"		minimum(1)
//	@Param			limit	query		int							true	"Products per page"	minimum(1)	maximum(100)
//	@Success		200		{object}	models.ListProductsResponse	"One page of products"
//	@Failure		400		{object}	response.ErrorResponse		"Invalid page or limit"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Router			/product [get]
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		query := r.URL.Query()
		page, pageErr := strconv.Atoi(query.Get("page"))
		limit, limitErr := strconv.Atoi(query.Get("limit"))
		if pageErr != nil || limitErr != nil {
			logger.Warn("Invalid pagination", slog.String("page", query.Get("page")), slog.String("limit", query.Get("limit")))
			response.Error(w, errors.ValidationError(invalidPagination))
			return
		}

		logger = logger.With(slog.Int("page", page), slog.Int("limit", limit))

		products, err := h.productService.ListProducts(r.Context(), page, limit)
		if err != nil {
			logger.Error("Failed to list products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Products listed", slog.Int("count", len(products)))
		response.WriteJson(w, http.StatusOK, models.ListProductsResponse{
			Page:     page,
			Limit:    limit,
			Products: products,
		})
	}
}

// SearchProducts godoc
//	@Summary		Search products
//	@Description	Filters products by brand, color and price range. Every filter is optional; absent filters are not applied.
//	@Tags			Products
//	@Produce		json
//	@Param			brand		query		string							false	"Exact brand"
//	@Param			color		query		string							false	"Exact color"
//	@Param			minPrice	query		number							false	"Lowest price, inclusive"
//	@Param			maxPrice	query		number							false	"Highest price, inclusive"
//	@Success		200			{object}	models.SearchProductsResponse	"Matching products"
//	@Failure		400			{object}	response.ErrorResponse			"Price filter is not a number"
//	@Failure		500			{object}	response.ErrorResponse			"Internal server error"
//	@Router			/product/search [get]
func (h *ProductHandler) SearchProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		query := r.URL.Query()
		echo := models.SearchFilterEcho{
			Brand:    query.Get("brand"),
			Color:    query.Get("color"),
			MinPrice: query.Get("minPrice"),
			MaxPrice: query.Get("maxPrice"),
		}

		var filter models.SearchFilter
		if echo.Brand != "" {
			filter.Brand = &echo.Brand
		}
		if echo.Color != "" {
			filter.Color = &echo.Color
		}

		var err error
		if filter.MinPrice, err = parsePrice(echo.MinPrice); err != nil {
			logger.Warn("Invalid minPrice", slog.String("minPrice", echo.MinPrice))
			response.Error(w, errors.ValidationError(invalidPrice))
			return
		}
		if filter.MaxPrice, err = parsePrice(echo.MaxPrice); err != nil {
			logger.Warn("Invalid maxPrice", slog.String("maxPrice", echo.MaxPrice))
			response.Error(w, errors.ValidationError(invalidPrice))
			return
		}

		products, err := h.productService.SearchProducts(r.Context(), filter)
		if err != nil {
			logger.Error("Failed to search products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Products searched", slog.Int("count", len(products)))
		response.WriteJson(w, http.StatusOK, models.SearchProductsResponse{
			Count:    len(products),
			Filters:  echo,
			Products: products,
		})
	}
}

// parsePrice returns nil for an empty value.
func parsePrice(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("price %q is not finite", raw)
	}

	return &v, nil
}

// NotFound answers every request no route matched.
func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.LoggerFromContext(r.Context()).Warn("Route not found")
		response.Error(w, errors.NotFoundError(routeNotFound))
	}
}
