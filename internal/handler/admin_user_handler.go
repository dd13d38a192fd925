package handler

import (
	"net/http"
	"strconv"

	"inventory/internal/config"
	"inventory/internal/domain/model"
	"inventory/internal/middleware"
	"inventory/internal/repository"
	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

type RoleChangeRequest struct {
	Role string `json:"role"`
}

// /admin/users のユーザー承認・ロール管理
type AdminUserHandler struct {
	uc *usecase.UserUsecase
}

// DI
func NewAdminUserHandler(uc *usecase.UserUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

// /admin 配下は全部「JWT必須 + token_version一致 + admin限定」
func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group(
		"/admin",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	)

	admin.GET("/users", h.listApproved)
	admin.GET("/users/pending", h.listPending)
	admin.POST("/users/:id/approve", h.approve)
	admin.DELETE("/users/:id", h.decline)
	admin.PATCH("/users/:id/role", h.changeRole)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminUserHandler) listApproved(c echo.Context) error {
	users, err := h.uc.ListApproved(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminUserHandler) listPending(c echo.Context) error {
	users, err := h.uc.ListPendingApproval(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminUserHandler) approve(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.TagUnauthorized, Message: "unauthorized"})
	}

	if err := h.uc.ApproveUser(c.Request().Context(), adminID, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "approved"})
}

func (h *AdminUserHandler) decline(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.TagUnauthorized, Message: "unauthorized"})
	}

	if err := h.uc.DeclineUser(c.Request().Context(), adminID, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "declined"})
}

func (h *AdminUserHandler) auditLogs(c echo.Context) error {
	var filter repository.AuditLogFilter

	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		filter.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		filter.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		filter.ResourceID = &v
	}
	if v := c.QueryParam("actor"); v != "" {
		filter.ActorUserID = &v
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "invalid limit"})
		}
		filter.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "invalid offset"})
		}
		filter.Offset = n
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *AdminUserHandler) changeRole(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.TagUnauthorized, Message: "unauthorized"})
	}

	var req RoleChangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "invalid body"})
	}

	if err := h.uc.ChangeRole(c.Request().Context(), adminID, c.Param("id"), req.Role); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "role updated"})
}
