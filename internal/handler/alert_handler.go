package handler

import (
	"net/http"

	"inventory/internal/config"
	"inventory/internal/middleware"
	"inventory/internal/repository"
	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /alerts の分類クエリ。どれも独立した読み取りで相互の整合性は持たない。
type AlertHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAlertHandler(uc *usecase.ProductUsecase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

func (h *AlertHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group(
		"/alerts",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)

	g.GET("/low-stock", h.lowStock)
	g.GET("/near-expiry", h.nearExpiry)
	g.GET("/out-of-stock", h.outOfStock)
	g.GET("/in-stock", h.inStock)
}

func (h *AlertHandler) lowStock(c echo.Context) error {
	products, err := h.uc.LowStock(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *AlertHandler) nearExpiry(c echo.Context) error {
	products, err := h.uc.NearExpiry(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *AlertHandler) outOfStock(c echo.Context) error {
	products, err := h.uc.OutOfStock(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *AlertHandler) inStock(c echo.Context) error {
	products, err := h.uc.InStock(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}
