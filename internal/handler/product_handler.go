package handler

import (
	"net/http"

	"oifit/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products, /categories, /cities の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
	e.GET("/categories", h.categories)
	e.GET("/cities", h.cities)
}

// 指定があった時だけ値を持つ
func optionalDecimal(c echo.Context, name string, d *decimal.Decimal) *decimal.Decimal {
	if c.QueryParam(name) == "" {
		return nil
	}
	return d
}

// GET /products?page=&limit=&q=&category=&min_price=&max_price=&sort=
func (h *ProductHandler) list(c echo.Context) error {
	in := usecase.ListProductsInput{Page: 1, Limit: 20}
	var minPrice, maxPrice decimal.Decimal

	err := echo.QueryParamsBinder(c).
		Int("page", &in.Page).
		Int("limit", &in.Limit).
		String("q", &in.Q).
		String("category", &in.Category).
		String("sort", &in.Sort).
		TextUnmarshaler("min_price", &minPrice).
		TextUnmarshaler("max_price", &maxPrice).
		BindError()
	if err != nil {
		return writeBindError(c, err)
	}
	in.MinPrice = optionalDecimal(c, "min_price", &minPrice)
	in.MaxPrice = optionalDecimal(c, "max_price", &maxPrice)

	out, err := h.uc.ListPublicProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) categories(c echo.Context) error {
	list, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) cities(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.ListCities())
}
