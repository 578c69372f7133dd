package main

import (
	"context"
	"os"
	"strings"
	"time"

	httpadapter "rescuesim/internal/adapter/http"
	metricsinmem "rescuesim/internal/adapter/metrics/inmemory"
	gormrepo "rescuesim/internal/adapter/repo/gorm"
	"rescuesim/internal/adapter/repo/memory"
	"rescuesim/internal/app/auth"
	"rescuesim/internal/app/dashboard"
	"rescuesim/internal/app/ingest"
	"rescuesim/internal/app/ports"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type sessionStore interface {
	ports.SessionResultRepository
	ports.SessionStatsRepository
}

type repos struct {
	users     ports.UserRepository
	sessions  sessionStore
	txManager ports.TxManager
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		hlog.Fatalf("load config: %v", err)
	}
	hlog.SetLevel(cfg.logLevel())

	r, err := buildRepos(context.Background(), cfg)
	if err != nil {
		hlog.Fatalf("build repositories: %v", err)
	}
	kpiRecorder := metricsinmem.NewRecorder()

	h := newHandler(cfg, r, kpiRecorder)
	s := server.Default(server.WithHostPorts(cfg.Addr))
	h.RegisterRoutes(s)

	hlog.Infof("rescuesim server listening on %s (storage=%s)", cfg.Addr, cfg.Storage)
	s.Spin()
}

func newHandler(cfg config, r repos, kpi *metricsinmem.Recorder) httpadapter.Handler {
	verify := auth.VerifyUseCase{Users: r.users}
	return httpadapter.Handler{
		IngestUC: ingest.UseCase{
			Auth:     verify,
			Sessions: r.sessions,
			Metrics:  kpi,
			Now:      time.Now,
		},
		RegisterUC:    auth.RegisterUseCase{Users: r.users, Cost: cfg.BcryptCost, Now: time.Now},
		LoginUC:       verify,
		Tokens:        auth.TokenIssuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.SessionTTL, Now: time.Now},
		SessionsUC:    dashboard.SessionsUseCase{Stats: r.sessions},
		StatsUC:       dashboard.StatsUseCase{Stats: r.sessions},
		LeaderboardUC: dashboard.LeaderboardUseCase{Stats: r.sessions},
		FeedbackUC: dashboard.FeedbackUseCase{
			TxManager: r.txManager,
			Sessions:  r.sessions,
			Now:       time.Now,
		},
		KPI:           kpi,
		Cookie:        httpadapter.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure},
		AllowedOrigin: cfg.AllowedOrigin,
	}
}

func buildRepos(ctx context.Context, cfg config) (repos, error) {
	if cfg.Storage == storageMemory {
		hlog.Warnf("using in-memory storage; sessions are lost on restart")
		store := memory.NewStore()
		return repos{
			users:     memory.NewUserRepo(store),
			sessions:  memory.NewSessionResultRepo(store),
			txManager: memory.NewTxManager(store),
		}, nil
	}

	db, err := gormrepo.OpenPostgres(cfg.DSN)
	if err != nil {
		return repos{}, err
	}
	if cfg.AutoMigrate {
		applied, err := gormrepo.ApplyMigrations(ctx, db, os.DirFS(cfg.MigrationsDir))
		if err != nil {
			return repos{}, err
		}
		if len(applied) > 0 {
			hlog.Infof("applied migrations: %s", strings.Join(applied, ", "))
		}
	}
	return repos{
		users:     gormrepo.NewUserRepo(db),
		sessions:  gormrepo.NewSessionResultRepo(db),
		txManager: gormrepo.NewTxManager(db),
	}, nil
}
