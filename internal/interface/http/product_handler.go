package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gymbro/gymbro-api/internal/application"
	"github.com/gymbro/gymbro-api/pkg/response"
	"github.com/gymbro/gymbro-api/pkg/validation"
)

type ProductHandler struct {
	Svc    *application.ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

type productForm struct {
	Title       string  `form:"title" binding:"required"`
	Description string  `form:"description" binding:"required"`
	Category    string  `form:"category" binding:"required,category"`
	Gender      string  `form:"gender" binding:"required,gender"`
	Price       float64 `form:"price" binding:"required,gt=0"`
}

func (f productForm) input() application.ProductInput {
	return application.ProductInput{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		Gender:      f.Gender,
		Price:       f.Price,
	}
}

// readImage pulls the uploaded file bytes and declared content type from the
// multipart form. A missing file returns nil bytes, not an error.
func readImage(c *gin.Context) ([]byte, string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, "", nil
		}
		return nil, "", err
	}
	return openImage(fh)
}

func openImage(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Header.Get("Content-Type"), nil
}

// Store POST /api/products (multipart, auth required)
func (h *ProductHandler) Store(c *gin.Context) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	img, ct, err := readImage(c)
	if err != nil || img == nil {
		response.Error[any](c, http.StatusBadRequest, "image file is required", nil)
		return
	}

	p, err := h.Svc.Create(c.Request.Context(), form.input(), img, ct)
	if err != nil {
		h.Logger.WithError(err).Error("product create failed")
		response.Error[any](c, http.StatusUnprocessableEntity, "There was a problem with creating product", nil)
		return
	}
	response.Success(c, http.StatusCreated, p, "product created", nil)
}

// Search GET /api/products?category=...&gender=...&limit=...
// Categories and genders repeat as query params; with no category filter
// accessories are left out of the result.
func (h *ProductHandler) Search(c *gin.Context) {
	categories := c.QueryArray("category")
	genders := c.QueryArray("gender")
	limit, _ := strconv.Atoi(c.Query("limit"))

	products, err := h.Svc.Search(c.Request.Context(), categories, genders, limit)
	if err != nil {
		h.Logger.WithError(err).Error("product search failed")
		response.Error[any](c, http.StatusUnprocessableEntity, "There was a problem with finding products", nil)
		return
	}
	response.Success(c, http.StatusOK, products, "products", nil)
}

// SearchBar GET /api/products/searchbar?title=...
func (h *ProductHandler) SearchBar(c *gin.Context) {
	title := c.Query("title")
	products, err := h.Svc.SearchByTitle(c.Request.Context(), title)
	if err != nil {
		h.Logger.WithError(err).Error("product title search failed")
		response.Error[any](c, http.StatusUnprocessableEntity, "There was a problem with finding products", nil)
		return
	}
	response.Success(c, http.StatusOK, products, "products", nil)
}

// Show GET /api/products/:id
func (h *ProductHandler) Show(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusUnprocessableEntity
		if err == application.ErrProductNotFound {
			status = http.StatusNotFound
		}
		response.Error[any](c, status, "There was a problem with finding product", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "product", nil)
}

// Update PUT /api/products/:id (multipart, auth required)
// The image part is optional; without it only the fields change.
func (h *ProductHandler) Update(c *gin.Context) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	img, ct, err := readImage(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid image file", nil)
		return
	}

	p, err := h.Svc.Update(c.Request.Context(), c.Param("id"), form.input(), img, ct)
	if err != nil {
		h.Logger.WithError(err).Error("product update failed")
		response.Error[any](c, http.StatusUnprocessableEntity, "There was a problem with updating product", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "product updated", nil)
}

// Destroy DELETE /api/products/:id (auth required)
func (h *ProductHandler) Destroy(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.Logger.WithError(err).Error("product delete failed")
		response.Error[any](c, http.StatusUnprocessableEntity, "There was a problem with deleting product", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "product deleted", nil)
}
