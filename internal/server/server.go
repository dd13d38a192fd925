package server

import (
	"inventory/internal/config"
	"inventory/internal/handler"
	"inventory/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlersはルート登録に必要なhandler一式。
type Handlers struct {
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Alert     *handler.AlertHandler
	Reorder   *handler.ReorderHandler
	Dashboard *handler.DashboardHandler
	AdminUser *handler.AdminUserHandler
}

// NewはEchoを組み立てて全ルートを登録する。
func New(cfg config.Config, userRepo repository.UserRepository, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	RegisterRoutes(e, cfg, userRepo, h)

	return e
}

// Startはサーバーを起動する。
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
