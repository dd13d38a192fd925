package main

import (
	"time"

	"inventory/internal/config"
	"inventory/internal/domain/model"
	"inventory/internal/handler"
	"inventory/internal/infra/db"
	infraRepo "inventory/internal/infra/repository"
	"inventory/internal/server"
	"inventory/internal/usecase"
	auth "inventory/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID string, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envはあれば読む（本番は環境変数のみ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.ReorderRequest{},
		&model.StockAdjustment{},
		&model.User{},
		&model.RefreshToken{},
		&model.AuditLog{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	reorderRepo := infraRepo.NewReorderGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	//refresh TTL
	refreshTTL := 14 * 24 * time.Hour

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, verifier, issuer, idGen, clock, refreshTTL)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, idGen, clock, refreshTTL)
	logoutUC := auth.NewLogoutUsecase(rtRepo, clock)
	productUC := usecase.NewProductUsecase(productRepo, productRepo, auditRepo, idGen, clock, cfg.LowStockThreshold, cfg.NearExpiryDays)
	reorderUC := usecase.NewReorderUsecase(reorderRepo, auditRepo, idGen, clock)
	userUC := usecase.NewUserUsecase(userRepo, auditRepo, clock)

	//Handler生成
	handlers := server.Handlers{
		Auth:      handler.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, refreshTTL),
		Product:   handler.NewProductHandler(productUC),
		Alert:     handler.NewAlertHandler(productUC),
		Reorder:   handler.NewReorderHandler(reorderUC),
		Dashboard: handler.NewDashboardHandler(productUC),
		AdminUser: handler.NewAdminUserHandler(userUC),
	}

	//Server起動
	addr := cfg.Port
	if addr == "" {
		addr = "8080"
	}
	if addr[0] != ':' {
		addr = ":" + addr
	}

	e := server.New(cfg, userRepo, handlers)
	if err := server.Start(e, addr); err != nil {
		panic(err)
	}
}
