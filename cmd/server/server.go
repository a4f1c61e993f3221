package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/KirkDiggler/rpg-narrator/internal/authz"
	narrativeclient "github.com/KirkDiggler/rpg-narrator/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-narrator/internal/config"
	battleengine "github.com/KirkDiggler/rpg-narrator/internal/engine/battle"
	"github.com/KirkDiggler/rpg-narrator/internal/handlers/v1alpha1"
	"github.com/KirkDiggler/rpg-narrator/internal/metrics"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/battle"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/mail"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/narrative"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-narrator/internal/reconciler"
	redisclient "github.com/KirkDiggler/rpg-narrator/internal/redis"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/accounts"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/battles"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/leaderboard"
	mailrepo "github.com/KirkDiggler/rpg-narrator/internal/repositories/mail"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/saves"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/worldchat"
	"github.com/KirkDiggler/rpg-narrator/internal/storage"
	"github.com/KirkDiggler/rpg-narrator/internal/web"
)

const shutdownTimeout = 30 * time.Second

var configPath string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC and ops HTTP servers",
	Long: `Start the RPG Narrator gRPC server with all services, plus the ops HTTP server
for health, metrics, the public leaderboard and the world chat websocket.

Settings come from defaults, an optional config file, RPG_* environment
variables and flags, in increasing precedence.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&configPath, "config", "", "path to a config file")
	serverCmd.Flags().Int("port", 50051, "gRPC server port")
	serverCmd.Flags().String("http-addr", ":8080", "ops HTTP listen address")
	serverCmd.Flags().String("server-id", config.DefaultServerID, "shard id that prefixes every key")
	serverCmd.Flags().String("log-level", "info", "debug, info, warn or error")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	for key, flag := range map[string]string{
		"grpc.port": "port",
		"http.addr": "http-addr",
		"server_id": "server-id",
		"log.level": "log-level",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	cfg, err := config.Load(v, configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// services is everything the transports serve
type services struct {
	narrative narrative.Service
	battles   battle.Service
	mail      mail.Service
	social    social.Service
	metrics   *metrics.Metrics
	closers   []func(context.Context) error
}

func buildServices(cfg *config.Config, logger *slog.Logger) (*services, error) {
	clk := clock.New()
	keyspace := redisclient.Keyspace(cfg.ServerID)

	m, err := metrics.New(metrics.DefaultNamespace, prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	storageCfg := cfg.StorageConfig()
	storageCfg.Logger = logger
	db, err := storage.Open(storageCfg, accounts.Migrate, saves.Migrate, mailrepo.Migrate)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	rdb, err := redisclient.New(cfg.RedisOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	svc := &services{metrics: m}
	svc.closers = append(svc.closers,
		func(context.Context) error { return rdb.Close() },
		func(context.Context) error { return sqlDB.Close() },
	)

	accountRepo, err := accounts.NewGorm(&accounts.Config{DB: db, ServerID: cfg.ServerID, Admins: cfg.Admins})
	if err != nil {
		return nil, fmt.Errorf("failed to create account repository: %w", err)
	}
	saveRepo, err := saves.NewGorm(&saves.Config{DB: db, ServerID: cfg.ServerID, Clock: clk})
	if err != nil {
		return nil, fmt.Errorf("failed to create save repository: %w", err)
	}
	mailRepo, err := mailrepo.NewGorm(&mailrepo.Config{DB: db, ServerID: cfg.ServerID})
	if err != nil {
		return nil, fmt.Errorf("failed to create mail repository: %w", err)
	}
	battleRepo, err := battles.NewRedis(&battles.RedisConfig{Client: rdb, Keyspace: keyspace, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to create battle repository: %w", err)
	}
	chatRepo, err := worldchat.NewRedis(&worldchat.RedisConfig{
		Client:      rdb,
		Keyspace:    keyspace,
		HistorySize: cfg.Social.ChatHistory,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create world chat repository: %w", err)
	}
	boardRepo, err := leaderboard.NewRedis(&leaderboard.RedisConfig{Client: rdb, Keyspace: keyspace})
	if err != nil {
		return nil, fmt.Errorf("failed to create leaderboard repository: %w", err)
	}

	tiers := make([]narrativeclient.Backend, 0, len(cfg.Narrative.Tiers))
	for _, t := range cfg.Narrative.Tiers {
		backend, err := narrativeclient.NewOpenAI(&narrativeclient.OpenAIConfig{
			Name:        t.Name,
			Model:       t.Model,
			BaseURL:     t.BaseURL,
			APIKey:      cfg.Narrative.APIKey,
			Temperature: t.Temperature,
			Timeout:     cfg.Narrative.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create narrative tier %s: %w", t.Name, err)
		}
		tiers = append(tiers, backend)
	}
	router, err := narrativeclient.NewRouter(&narrativeclient.RouterConfig{
		Tiers:    tiers,
		Cooldown: cfg.Narrative.Cooldown,
		Clock:    clk,
		Logger:   logger,
		Recorder: m,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create narrative router: %w", err)
	}

	rec, err := reconciler.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconciler: %w", err)
	}
	authorizer, err := authz.New(&authz.Config{Accounts: accountRepo})
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer: %w", err)
	}

	svc.narrative, err = narrative.NewOrchestrator(&narrative.Config{
		Saves:         saveRepo,
		Client:        router,
		Reconciler:    rec,
		Clock:         clk,
		Roller:        dice.DefaultRoller,
		AutosaveDelay: cfg.Game.AutosaveDelay,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create narrative orchestrator: %w", err)
	}
	// pending autosaves are flushed before the stores close
	svc.closers = append([]func(context.Context) error{svc.narrative.Close}, svc.closers...)

	engine, err := battleengine.New(&battleengine.Config{
		MinDamage:      battleengine.Int(cfg.Battle.MinDamage),
		PenaltyPercent: battleengine.Int(cfg.Battle.PenaltyPercent),
		Roller:         dice.DefaultRoller,
		Clock:          clk,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create battle engine: %w", err)
	}

	svc.battles, err = battle.NewOrchestrator(&battle.Config{
		Battles:     battleRepo,
		Saves:       saveRepo,
		Accounts:    accountRepo,
		Authz:       authorizer,
		Engine:      engine,
		Penalties:   svc.narrative,
		IDGenerator: idgen.NewUUID("battle"),
		ServerID:    cfg.ServerID,
		Recorder:    m,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create battle orchestrator: %w", err)
	}

	svc.mail, err = mail.NewOrchestrator(&mail.Config{
		Mail:        mailRepo,
		Accounts:    accountRepo,
		Authz:       authorizer,
		Saves:       svc.narrative,
		Reconciler:  rec,
		IDGenerator: idgen.NewUUID("mail"),
		Clock:       clk,
		ServerID:    cfg.ServerID,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mail orchestrator: %w", err)
	}

	svc.social, err = social.NewOrchestrator(&social.Config{
		Chat:            chatRepo,
		Leaderboard:     boardRepo,
		Saves:           saveRepo,
		Accounts:        accountRepo,
		Authz:           authorizer,
		IDGenerator:     idgen.NewUUID("chat"),
		Clock:           clk,
		ServerID:        cfg.ServerID,
		RefreshInterval: cfg.Social.LeaderboardRefresh,
		Recorder:        m,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create social orchestrator: %w", err)
	}

	return svc, nil
}

func registerGRPC(srv *grpc.Server, svc *services, logger *slog.Logger) (*health.Server, error) {
	arenaHandler, err := v1alpha1.NewArenaHandler(&v1alpha1.ArenaHandlerConfig{BattleService: svc.battles, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to create arena handler: %w", err)
	}
	narrativeHandler, err := v1alpha1.NewNarrativeHandler(&v1alpha1.NarrativeHandlerConfig{NarrativeService: svc.narrative})
	if err != nil {
		return nil, fmt.Errorf("failed to create narrative handler: %w", err)
	}
	mailHandler, err := v1alpha1.NewMailHandler(&v1alpha1.MailHandlerConfig{MailService: svc.mail})
	if err != nil {
		return nil, fmt.Errorf("failed to create mail handler: %w", err)
	}
	socialHandler, err := v1alpha1.NewSocialHandler(&v1alpha1.SocialHandlerConfig{SocialService: svc.social})
	if err != nil {
		return nil, fmt.Errorf("failed to create social handler: %w", err)
	}

	v1alpha1.RegisterArenaServer(srv, arenaHandler)
	v1alpha1.RegisterNarrativeServer(srv, narrativeHandler)
	v1alpha1.RegisterMailServer(srv, mailHandler)
	v1alpha1.RegisterSocialServer(srv, socialHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	for _, name := range []string{
		v1alpha1.ArenaServiceName,
		v1alpha1.NarrativeServiceName,
		v1alpha1.MailServiceName,
		v1alpha1.SocialServiceName,
	} {
		healthServer.SetServingStatus(name, grpc_health_v1.HealthCheckResponse_SERVING)
	}
	return healthServer, nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildServices(cfg, logger)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(v1alpha1.ServerOptions(logger)...)
	healthServer, err := registerGRPC(srv, svc, logger)
	if err != nil {
		return err
	}

	hub, err := web.NewHub(&web.HubConfig{
		Social:       svc.social,
		Recorder:     svc.metrics,
		HistoryLimit: cfg.Social.ChatHistory,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat hub: %w", err)
	}
	router, err := web.NewRouter(&web.Config{Social: svc.social, Hub: hub, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create ops router: %w", err)
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 2)
	go func() {
		logger.Info("gRPC server starting", "port", cfg.GRPC.Port, "server_id", cfg.ServerID)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve grpc: %w", err)
		}
	}()
	go func() {
		logger.Info("ops HTTP server starting", "addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to serve http: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal, gracefully stopping")
	case runErr = <-errChan:
		logger.Error("server failed", "error", runErr)
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("ops HTTP shutdown failed", "error", err)
	}

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-shutdownCtx.Done():
		logger.Warn("graceful shutdown timeout exceeded, forcing stop")
		srv.Stop()
	case <-stopped:
		logger.Info("gRPC server stopped gracefully")
	}

	for _, closeFn := range svc.closers {
		if err := closeFn(shutdownCtx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
	return runErr
}
