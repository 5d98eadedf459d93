package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/service"
	"github.com/Skotchmaster/droneshop/internal/transport"
	"github.com/Skotchmaster/droneshop/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	page, err := h.Svc.ListProducts(ctx, service.ListParams{
		Category:  c.QueryParam("category"),
		Search:    c.QueryParam("search"),
		MinPrice:  util.ParseFloatPtr(c.QueryParam("minPrice")),
		MaxPrice:  util.ParseFloatPtr(c.QueryParam("maxPrice")),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
		Page:      util.ParseIntDefault(c.QueryParam("page"), 1),
		Limit:     util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
	})
	if err != nil {
		return fail(l, "get_products_error", err, "Failed to fetch products")
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetFeatured(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_featured")

	items, err := h.Svc.Featured(ctx)
	if err != nil {
		return fail(l, "get_featured_error", err, "Failed to fetch featured products")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	p, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_product_error", err, "Failed to fetch product")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_product_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "create_product_error", err, "")
	}

	id, err := h.Svc.CreateProduct(ctx, req.Product())
	if err != nil {
		return fail(l, "create_product_error", err, "Failed to create product")
	}

	l.Info("create_product_success", "product_id", id)
	return c.JSON(http.StatusCreated, transport.CreatedResponse{
		Success:   true,
		ProductID: id,
		Message:   "Product created successfully",
	})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	var req transport.ProductPatchRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_product_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "update_product_error", err, "")
	}

	if err := h.Svc.UpdateProduct(ctx, c.Param("id"), req.Patch()); err != nil {
		return fail(l, "update_product_error", err, "Failed to update product")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Product updated successfully"})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	if err := h.Svc.DeleteProduct(ctx, c.Param("id")); err != nil {
		return fail(l, "delete_product_error", err, "Failed to delete product")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Product deleted successfully"})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	q := c.QueryParam("q")
	if q == "" {
		q = c.QueryParam("query")
	}
	res, err := h.Svc.Search(ctx, q,
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)
	if err != nil {
		return fail(l, "search_products_error", err, "Failed to search products")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) AddRating(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.add_rating")

	var req transport.RatingRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_rating_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "add_rating_error", err, "")
	}

	id, err := h.Svc.AddRating(ctx, req.Model())
	if err != nil {
		return fail(l, "add_rating_error", err, "Failed to create rating")
	}
	return c.JSON(http.StatusCreated, transport.CreatedResponse{
		Success:  true,
		RatingID: id,
		Message:  "Rating added successfully",
	})
}

func (h *CatalogHTTP) GetRatings(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_ratings")

	items, err := h.Svc.ListRatings(ctx, c.QueryParam("productId"))
	if err != nil {
		return fail(l, "get_ratings_error", err, "Failed to fetch ratings")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) DeleteRating(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_rating")

	if err := h.Svc.DeleteRating(ctx, c.Param("id")); err != nil {
		return fail(l, "delete_rating_error", err, "Failed to delete review")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Review deleted successfully"})
}

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_categories")

	cats, err := h.Svc.Categories(ctx)
	if err != nil {
		return fail(l, "get_categories_error", err, "Failed to fetch categories")
	}
	return c.JSON(http.StatusOK, cats)
}
