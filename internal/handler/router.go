package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/yogastudio/internal/metrics"
	"github.com/hitoshi/yogastudio/internal/middleware"
	"github.com/hitoshi/yogastudio/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenCodec        security.TokenCodec
	PrincipalResolver security.PrincipalResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	// TrustProxy がtrueの場合、X-Forwarded-For等からクライアントIPを決定する。
	TrustProxy bool
	Logger     *slog.Logger

	// 運用
	HealthChecker  HealthChecker
	Metrics        metrics.MetricsCollector
	MetricsHandler http.Handler

	// サービス
	AuthService    AuthServiceInterface
	SessionService SessionServiceInterface
	TeacherService TeacherServiceInterface
	UserService    UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → SecurityHeaders → (RealIP) → CORS → Metrics → AuthToken → Logging
//
// 保護対象のルートではさらに RequireAuth → RateLimit(General) を通る。
// ログインのみ RateLimit(Login) を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewAuthTokenMiddleware(deps.TokenCodec, deps.PrincipalResolver, deps.Metrics))
	r.Use(middleware.NewLoggingMiddleware(logger))

	authHandler := NewAuthHandler(deps.AuthService)
	sessionHandler := NewSessionHandler(deps.SessionService)
	teacherHandler := NewTeacherHandler(deps.TeacherService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
		})

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: RequireAuth → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireAuthMiddleware())
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Route("/session", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Post("/", sessionHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", sessionHandler.Get)
					r.Put("/", sessionHandler.Update)
					r.Delete("/", sessionHandler.Delete)

					r.Post("/participate/{userId}", sessionHandler.Participate)
					r.Delete("/participate/{userId}", sessionHandler.NoLongerParticipate)
				})
			})

			r.Route("/teacher", func(r chi.Router) {
				r.Get("/", teacherHandler.List)
				r.Get("/{id}", teacherHandler.Get)
			})

			r.Route("/user", func(r chi.Router) {
				r.Get("/{id}", userHandler.Get)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	// 未定義ルートも統一フォーマットで返す
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}` + "\n"))
	})

	return r
}
