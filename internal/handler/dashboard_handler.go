package handler

import (
	"net/http"

	"inventory/internal/config"
	"inventory/internal/middleware"
	"inventory/internal/repository"
	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ダッシュボードの件数まとめAPI（グラフ描画はフロント側）
type DashboardHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewDashboardHandler(uc *usecase.ProductUsecase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group(
		"/dashboard",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)

	g.GET("/summary", h.summary)
}

func (h *DashboardHandler) summary(c echo.Context) error {
	counts, err := h.uc.DashboardSummary(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}
