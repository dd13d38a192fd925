package handler

import (
	"net/http"
	"os"
	"time"

	"inventory/internal/usecase"
	auth "inventory/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC   *auth.RegisterUserUsecase
	loginUC      *auth.LoginUsecase
	refreshUC    *auth.RefreshUsecase
	logoutUC     *auth.LogoutUsecase
	refreshTTL   time.Duration
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	refreshUC *auth.RefreshUsecase,
	logoutUC *auth.LogoutUsecase,
	refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		registerUC:   registerUC,
		loginUC:      loginUC,
		refreshUC:    refreshUC,
		logoutUC:     logoutUC,
		refreshTTL:   refreshTTL,
		cookieSecure: envBool("COOKIE_SECURE", true),
	}
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)
	e.POST("/auth/refresh", h.refresh)
	e.POST("/auth/logout", h.logout)
}

// register はPOST /auth/registerのハンドラ。
// 作成されたユーザーは未承認のままで、管理者承認を待つ。
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "invalid body"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch err {
		case auth.ErrNameRequired, auth.ErrInvalidEmailFormat, auth.ErrPasswordTooShort, auth.ErrWeakPassword:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: err.Error()})
		case auth.ErrEmailAlreadyExists:
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "CONFLICT", Message: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: usecase.TagServerError, Message: "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, out)
}

// login はPOST /auth/login のハンドラ。
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: usecase.TagValidationError, Message: "invalid body"})
	}

	// User-Agentを取得（refresh tokenに紐付ける）
	userAgent := c.Request().Header.Get("User-Agent")

	out, side, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: userAgent,
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.TagUnauthorized, Message: "invalid credentials"})
		case auth.ErrUserNotApproved:
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: usecase.TagForbidden, Message: "account not approved yet"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: usecase.TagServerError, Message: "internal error"})
		}
	}

	// refresh cookie
	h.setRefreshCookie(c, side.PlainRefreshToken)

	//JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, out)
}

// refresh はPOST /auth/refresh のハンドラ。
// Cookieのリフレッシュトークンをローテーションして新しいアクセストークンを返す。
func (h *AuthHandler) refresh(c echo.Context) error {
	cookie, err := c.Cookie("refresh")
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.TagUnauthorized, Message: "refresh token required"})
	}

	userAgent := c.Request().Header.Get("User-Agent")

	out, side, err := h.refreshUC.Execute(c.Request().Context(), cookie.Value, userAgent)
	if err != nil {
		switch err {
		case auth.ErrRefreshTokenInvalid:
			h.clearRefreshCookie(c)
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.TagUnauthorized, Message: "invalid refresh token"})
		case auth.ErrUserNotApproved:
			h.clearRefreshCookie(c)
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: usecase.TagForbidden, Message: "account not approved yet"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: usecase.TagServerError, Message: "internal error"})
		}
	}

	h.setRefreshCookie(c, side.PlainRefreshToken)
	return c.JSON(http.StatusOK, out)
}

// logout はPOST /auth/logout のハンドラ。トークンが無くても200。
func (h *AuthHandler) logout(c echo.Context) error {
	plain := ""
	if cookie, err := c.Cookie("refresh"); err == nil {
		plain = cookie.Value
	}

	if err := h.logoutUC.Execute(c.Request().Context(), plain); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: usecase.TagServerError, Message: "internal error"})
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

// refresh token をCookieにセット。
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	exp := time.Now().Add(h.refreshTTL)

	cookie := &http.Cookie{
		Name:     "refresh",
		Value:    plainRefresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	}
	c.SetCookie(cookie)
}

// refresh Cookieを破棄する。
func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	cookie := &http.Cookie{
		Name:     "refresh",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
	c.SetCookie(cookie)
}
