package server

import (
	"inventory/internal/config"
	"inventory/internal/repository"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e, cfg, userRepo)
	h.Alert.RegisterRoutes(e, cfg, userRepo)
	h.Reorder.RegisterRoutes(e, cfg, userRepo)
	h.Dashboard.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e, cfg, userRepo)
}
