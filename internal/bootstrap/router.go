package bootstrap

import (
	"database/sql"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/oksam-app/eco-todo-backend/config"
	httpapi "github.com/oksam-app/eco-todo-backend/internal/api/http"
	"github.com/oksam-app/eco-todo-backend/internal/api/http/middleware"
	authhttp "github.com/oksam-app/eco-todo-backend/internal/auth/http"
	authmw "github.com/oksam-app/eco-todo-backend/internal/auth/middleware"
	authrepo "github.com/oksam-app/eco-todo-backend/internal/auth/repository"
	authservice "github.com/oksam-app/eco-todo-backend/internal/auth/service"
	classifyhttp "github.com/oksam-app/eco-todo-backend/internal/classify/http"
	"github.com/oksam-app/eco-todo-backend/internal/classify/service"
	lbhttp "github.com/oksam-app/eco-todo-backend/internal/leaderboard/http"
	lbservice "github.com/oksam-app/eco-todo-backend/internal/leaderboard/service"
	pointshttp "github.com/oksam-app/eco-todo-backend/internal/points/http"
	pointsrepo "github.com/oksam-app/eco-todo-backend/internal/points/repository"
	pointsservice "github.com/oksam-app/eco-todo-backend/internal/points/service"
)

type RouterDeps struct {
	Config     *config.Config
	SQLDB      *sql.DB
	Pool       *pgxpool.Pool
	Redis      *redis.Client
	AuthClient *fbauth.Client
	Model      service.Model
	Local      *pointsrepo.LocalStore
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(dep.Config.Server.AllowedOrigins) == 1 && dep.Config.Server.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = dep.Config.Server.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-User-Id", "X-Request-Id")
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RequestID())

	healthHandler := httpapi.NewHealthHandler("eco-todo-backend", dep.Config.App.Version, dep.Pool, dep.Redis)
	healthHandler.RegisterRoutes(r)

	storeRepo := pointsrepo.NewStoreRepo(dep.Redis)
	ledger := pointsservice.NewLedger(storeRepo, dep.Local)

	// The analyze endpoint keeps its pre-v1 public path; identity is
	// optional there (the limiter falls back to client IP).
	classifier := service.NewClassifier(dep.Model, dep.Config.Gemini.MaxVideoBytes)
	classifyhttp.New(classifier).RegisterRoutes(r, dep.Config.Gemini.RatePerMinute)

	api := r.Group("/api/v1")
	api.Use(authmw.RequireUser(dep.AuthClient))

	userRepo := authrepo.NewUserRepository(dep.SQLDB)
	authSvc := authservice.NewAuthService(userRepo)
	authhttp.New(authSvc, ledger).Register(api.Group("/auth"))

	pointshttp.New(ledger).Register(api)

	lbSvc := lbservice.NewService(storeRepo)
	lbhttp.New(lbSvc).Register(api)

	return r
}
