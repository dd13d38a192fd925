package handler

import (
	"net/http"

	"inventory/internal/config"
	"inventory/internal/middleware"
	"inventory/internal/repository"
	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReorderDecisionRequest struct {
	ProductID string `json:"product_id"`
	Status    string `json:"status"`
	Remarks   string `json:"remarks"`
}

// /reorders の発注提案ワークフロー
type ReorderHandler struct {
	uc *usecase.ReorderUsecase
}

// DI
func NewReorderHandler(uc *usecase.ReorderUsecase) *ReorderHandler {
	return &ReorderHandler{uc: uc}
}

func (h *ReorderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group(
		"/reorders",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)

	g.POST("", h.submit)
	g.GET("/history", h.history)
	g.GET("/best-selling", h.bestSelling)
	g.GET("/slow-moving", h.slowMoving)
}

func (h *ReorderHandler) submit(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.TagUnauthorized, Message: "unauthorized"})
	}

	var req ReorderDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "invalid body"})
	}

	out, err := h.uc.SubmitDecision(c.Request().Context(), userID, usecase.SubmitDecisionInput{
		ProductID: req.ProductID,
		Status:    req.Status,
		Remarks:   req.Remarks,
	})
	if err != nil {
		return writeError(c, err)
	}

	// 初回は作られた行を、2回目以降は結果タグだけを返す
	if out.Request != nil {
		return c.JSON(http.StatusCreated, echo.Map{"data": out.Request})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out.Outcome})
}

func (h *ReorderHandler) history(c echo.Context) error {
	entries, err := h.uc.History(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *ReorderHandler) bestSelling(c echo.Context) error {
	entries, err := h.uc.BestSelling(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *ReorderHandler) slowMoving(c echo.Context) error {
	entries, err := h.uc.SlowMoving(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}
