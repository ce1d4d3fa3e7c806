package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/yogastudio/internal/auth"
	"github.com/hitoshi/yogastudio/internal/config"
	"github.com/hitoshi/yogastudio/internal/database"
	"github.com/hitoshi/yogastudio/internal/handler"
	"github.com/hitoshi/yogastudio/internal/logger"
	"github.com/hitoshi/yogastudio/internal/metrics"
	"github.com/hitoshi/yogastudio/internal/middleware"
	"github.com/hitoshi/yogastudio/internal/repository"
	"github.com/hitoshi/yogastudio/internal/security"
	"github.com/hitoshi/yogastudio/internal/session"
	"github.com/hitoshi/yogastudio/internal/teacher"
	"github.com/hitoshi/yogastudio/internal/user"
)

const (
	startupPingTimeout = 5 * time.Second
	bootstrapTimeout   = 10 * time.Second
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再セットアップ
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// server はAPIサーバーの構成要素を保持する。
type server struct {
	router      http.Handler
	rateLimiter *middleware.RateLimiter
	authService *auth.Service
}

// close はバックグラウンド処理を停止する。
func (s *server) close() {
	s.rateLimiter.Stop()
}

// newServer は全依存関係をワイヤリングしてserverを構築する。
func newServer(cfg *config.Config, db *sql.DB, reg *prometheus.Registry) *server {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	teacherRepo := repository.NewPostgresTeacherRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)

	// 2. メトリクス
	collector := metrics.NewCollector(reg)

	// 3. セキュリティコンポーネントの初期化
	codec := security.NewJWTCodec([]byte(cfg.JWTSecret), cfg.JWTExpiration)
	resolver := security.NewUserDetailsResolver(userRepo, cfg.AuthLookupTimeout)
	encoder := security.NewBcryptEncoder(cfg.BcryptCost)
	authenticator := security.NewAuthenticator(userRepo, encoder, cfg.AuthLookupTimeout)
	sanitizer := security.NewTextSanitizer()

	// 4. ドメインサービスの初期化
	authService := auth.NewService(authenticator, codec, userRepo, encoder, sanitizer, collector)
	sessionService := session.NewService(sessionRepo, userRepo, teacherRepo, sanitizer)
	teacherService := teacher.NewService(teacherRepo)
	userService := user.NewService(userRepo)

	// 5. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitLogin, cfg.RateLimitGeneral),
		collector,
	)

	deps := &handler.RouterDeps{
		TokenCodec:        codec,
		PrincipalResolver: resolver,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		TrustProxy:        cfg.TrustProxy,
		Logger:            slog.Default(),

		HealthChecker:  db,
		Metrics:        collector,
		MetricsHandler: metrics.Handler(reg),

		AuthService:    handler.NewAuthServiceAdapter(authService),
		SessionService: handler.NewSessionServiceAdapter(sessionService),
		TeacherService: teacherService,
		UserService:    userService,
	}

	return &server{
		router:      handler.NewRouter(deps),
		rateLimiter: rateLimiter,
		authService: authService,
	}
}

// newRegistry はアプリケーション用のPrometheusレジストリを生成する。
// Goランタイムとプロセスのメトリクスも合わせて公開する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Ping(context.Background(), db, startupPingTimeout); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. ワイヤリング
	srv := newServer(cfg, db, newRegistry())
	defer srv.close()

	// 3. 管理者アカウントのブートストラップ
	if err := bootstrapAdmin(srv.authService, cfg); err != nil {
		return err
	}

	// 4. HTTPサーバーの起動
	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", httpServer.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-listenErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// bootstrapAdmin はADMIN_EMAIL/ADMIN_PASSWORDが設定されている場合に管理者を作成する。
func bootstrapAdmin(svc *auth.Service, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()

	created, err := svc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}
	if created {
		slog.Info("admin account created", slog.String("email", cfg.AdminEmail))
	}
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
