package handler

import (
	"net/http"
	"time"

	"inventory/internal/config"
	"inventory/internal/middleware"
	"inventory/internal/repository"
	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

// {"error": TAG, "message": ...} の形。UIはerrorタグで分岐する。
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Tag, Message: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: usecase.TagServerError, Message: "internal error"})
}

//middleware.AuthJWT が c.Set("user_id", string) した値を取り出す

func getUserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return "", false
	}

	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}

// 日付はUIからRFC3339またはYYYY-MM-DDで来る
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

type ProductCreateRequest struct {
	ProductName    string `json:"productName"`
	Barcode        string `json:"barcode"`
	Quantity       int64  `json:"quantity"`
	ExpirationDate string `json:"expirationDate"`
}

type ProductUpdateRequest struct {
	ProductName    *string `json:"productName"`
	Quantity       *int64  `json:"quantity"`
	ExpirationDate *string `json:"expirationDate"`
	NewBarcode     *string `json:"newBarcode"`
	Barcode        string  `json:"barcode"`
}

type QuantityUpdateRequest struct {
	Quantity int64 `json:"quantity"`
}

type ExpiryUpdateRequest struct {
	ExpirationDate string `json:"expirationDate"`
}

// {success: bool, error?} — アラート解消系だけこの形
type FlagResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// /products の商品管理API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 商品ルートを登録。承認済みユーザーならroleは問わない。
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group(
		"/products",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/search", h.search)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PATCH("/:id/quantity", h.updateQuantity)
	g.PATCH("/:id/expiry", h.updateExpiry)
	g.GET("/:id/adjustments", h.adjustments)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "invalid body"})
	}

	var expiresAt *time.Time
	if req.ExpirationDate != "" {
		t, err := parseDate(req.ExpirationDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "invalid expirationDate"})
		}
		expiresAt = &t
	}

	p, err := h.uc.AddProduct(c.Request().Context(), usecase.AddProductInput{
		ProductName:    req.ProductName,
		Barcode:        req.Barcode,
		Quantity:       req.Quantity,
		ExpirationDate: expiresAt,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) list(c echo.Context) error {
	products, err := h.uc.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) search(c echo.Context) error {
	products, err := h.uc.SearchProducts(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}

	// 空の検索語・0件はnull
	if products == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) update(c echo.Context) error {
	id := c.Param("id")

	var req ProductUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "invalid body"})
	}
	if req.Barcode == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "barcode required"})
	}

	in := usecase.UpdateProductInput{
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		NewBarcode:  req.NewBarcode,
	}
	if req.ExpirationDate != nil {
		t, err := parseDate(*req.ExpirationDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "invalid expirationDate"})
		}
		in.ExpirationDate = &t
	}

	p, err := h.uc.UpdateProduct(c.Request().Context(), id, req.Barcode, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) delete(c echo.Context) error {
	if err := h.uc.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "Product successfully deleted"})
}

func (h *ProductHandler) adjustments(c echo.Context) error {
	adjs, err := h.uc.AdjustmentHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, adjs)
}

func (h *ProductHandler) updateQuantity(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.TagUnauthorized, Message: "unauthorized"})
	}

	var req QuantityUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, FlagResponse{Success: false, Error: "invalid body"})
	}

	if err := h.uc.UpdateQuantity(c.Request().Context(), userID, c.Param("id"), req.Quantity); err != nil {
		status := http.StatusInternalServerError
		msg := "failed to update quantity"
		if he, ok := usecase.AsHTTPError(err); ok {
			status = he.Status
			msg = he.Message
		}
		return c.JSON(status, FlagResponse{Success: false, Error: msg})
	}

	return c.JSON(http.StatusOK, FlagResponse{Success: true})
}

func (h *ProductHandler) updateExpiry(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.TagUnauthorized, Message: "unauthorized"})
	}

	var req ExpiryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, FlagResponse{Success: false, Error: "invalid body"})
	}

	t, err := parseDate(req.ExpirationDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, FlagResponse{Success: false, Error: "invalid expirationDate"})
	}

	if err := h.uc.UpdateExpiry(c.Request().Context(), userID, c.Param("id"), t); err != nil {
		status := http.StatusInternalServerError
		msg := "failed to update expiry"
		if he, ok := usecase.AsHTTPError(err); ok {
			status = he.Status
			msg = he.Message
		}
		return c.JSON(status, FlagResponse{Success: false, Error: msg})
	}

	return c.JSON(http.StatusOK, FlagResponse{Success: true})
}
