package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/catalog-service/internal/app/product/queries/find_products"
	"github.com/light-bringer/catalog-service/internal/app/product/queries/get_product"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/create_product"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/delete_product"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/replace_product"
	"github.com/light-bringer/catalog-service/internal/app/product/usecases/update_product"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// ProductHandler serves the /products routes. It is a thin coordinator
// that delegates to use cases and queries.
type ProductHandler struct {
	// Commands
	createProduct  *create_product.Interactor
	updateProduct  *update_product.Interactor
	replaceProduct *replace_product.Interactor
	deleteProduct  *delete_product.Interactor

	// Queries
	getProduct   *get_product.Query
	findProducts *find_products.Query

	uploads *Uploader
}

func NewProductHandler(
	createProduct *create_product.Interactor,
	updateProduct *update_product.Interactor,
	replaceProduct *replace_product.Interactor,
	deleteProduct *delete_product.Interactor,
	getProduct *get_product.Query,
	findProducts *find_products.Query,
	uploads *Uploader,
) *ProductHandler {
	return &ProductHandler{
		createProduct:  createProduct,
		updateProduct:  updateProduct,
		replaceProduct: replaceProduct,
		deleteProduct:  deleteProduct,
		getProduct:     getProduct,
		findProducts:   findProducts,
		uploads:        uploads,
	}
}

// ReplaceResponse is returned by PUT when an old file could not be removed.
type ReplaceResponse struct {
	OrphanedMedia []string `json:"orphanedMedia"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// Create handles POST /products. Runs after the upload middleware.
func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	form := formFrom(c)

	in, err := productInputFromForm(form.Values)
	if err != nil {
		h.uploads.Discard(ctx, form)
		respondError(c, err)
		return
	}

	product, err := h.createProduct.Execute(ctx, &create_product.Request{
		Attributes: in.attributes(),
		File:       form.File,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productToResponse(product))
}

// Find handles GET /products?filter=.
func (h *ProductHandler) Find(c *gin.Context) {
	f, err := query.ParseFilter(c.Query("filter"))
	if err != nil {
		respondError(c, err)
		return
	}
	products, err := h.findProducts.Find(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productsToResponse(products))
}

// FindActive handles GET /products/active?filter=.
func (h *ProductHandler) FindActive(c *gin.Context) {
	f, err := query.ParseFilter(c.Query("filter"))
	if err != nil {
		respondError(c, err)
		return
	}
	products, err := h.findProducts.FindActive(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productsToResponse(products))
}

// Count handles GET /products/count?where=.
func (h *ProductHandler) Count(c *gin.Context) {
	where, err := query.ParseWhere(c.Query("where"))
	if err != nil {
		respondError(c, err)
		return
	}
	n, err := h.findProducts.Count(c.Request.Context(), where)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: n})
}

// FindByID handles GET /products/:id.
func (h *ProductHandler) FindByID(c *gin.Context) {
	product, err := h.getProduct.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productToResponse(product))
}

// UpdateAll handles PATCH /products?where=.
func (h *ProductHandler) UpdateAll(c *gin.Context) {
	where, err := query.ParseWhere(c.Query("where"))
	if err != nil {
		respondError(c, err)
		return
	}
	in, err := readProductJSON(c)
	if err != nil {
		respondError(c, err)
		return
	}
	n, err := h.updateProduct.ExecuteAll(c.Request.Context(), where, in.patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: n})
}

// UpdateByID handles PATCH /products/:id.
func (h *ProductHandler) UpdateByID(c *gin.Context) {
	in, err := readProductJSON(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.updateProduct.Execute(c.Request.Context(), c.Param("id"), in.patch()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReplaceByID handles PUT /products/:id. Runs after the upload middleware.
func (h *ProductHandler) ReplaceByID(c *gin.Context) {
	ctx := c.Request.Context()
	form := formFrom(c)

	in, err := productInputFromForm(form.Values)
	if err != nil {
		h.uploads.Discard(ctx, form)
		respondError(c, err)
		return
	}

	result, err := h.replaceProduct.Execute(ctx, &replace_product.Request{
		ProductID:   c.Param("id"),
		Patch:       in.patch(),
		File:        form.File,
		RemoveThumb: parseToBoolean(form.Values[removeThumbField]),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if len(result.OrphanedMedia) > 0 {
		c.JSON(http.StatusOK, ReplaceResponse{OrphanedMedia: result.OrphanedMedia})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteByID handles DELETE /products/:id. The media file stays on disk.
func (h *ProductHandler) DeleteByID(c *gin.Context) {
	if err := h.deleteProduct.Execute(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func readProductJSON(c *gin.Context) (productInput, error) {
	body, err := readBody(c)
	if err != nil {
		return productInput{}, err
	}
	return productInputFromJSON(body)
}

const maxJSONBody = 1 << 20

func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBody))
	if err != nil {
		return nil, bodyError(err)
	}
	return body, nil
}
