package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/botmanage/internal/app"
	"github.com/dropDatabas3/botmanage/internal/cache"
	"github.com/dropDatabas3/botmanage/internal/config"
	"github.com/dropDatabas3/botmanage/internal/discord"
	httpserver "github.com/dropDatabas3/botmanage/internal/http"
	"github.com/dropDatabas3/botmanage/internal/jwt"
	"github.com/dropDatabas3/botmanage/internal/observability/logger"
	pgdriver "github.com/dropDatabas3/botmanage/internal/store/pg"
)

func main() {
	// .env es best-effort: en prod las vars vienen del entorno real.
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "ruta del archivo de configuración")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// logger todavía no inicializado
		stdlog.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "botmanage",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store (Postgres)
	connMaxLifetime, _ := time.ParseDuration(cfg.Storage.ConnMaxLifetime)
	st, err := pgdriver.New(ctx, cfg.Storage.DSN, pgdriver.Config{
		MaxConns:        cfg.Storage.MaxOpenConns,
		MinConns:        cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
	})
	if err != nil {
		log.Fatal("store init failed", logger.Err(err))
	}
	defer st.Close()

	// Cache (redis o memory según driver)
	c, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Driver,
		Host:     cfg.Cache.Host,
		Port:     cfg.Cache.Port,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		Prefix:   cfg.Cache.Prefix,
	})
	if err != nil {
		log.Fatal("cache init failed", logger.Err(err))
	}
	defer func() { _ = c.Close() }()

	// Upstream Discord
	rest := discord.NewClient(discord.Config{
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		RedirectURI:  cfg.Discord.RedirectURI,
		BotToken:     cfg.Discord.BotToken,
		APIBase:      cfg.Discord.APIBase,
	})

	issuer := jwt.NewIssuer(cfg.JWT.Secret)
	state := app.NewState(st, c, rest)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		State:              state,
		Rest:               rest,
		Issuer:             issuer,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	log.Info("starting botmanage", logger.Component("main"))
	if err := httpserver.Serve(ctx, cfg.Server.Addr, router); err != nil {
		log.Fatal("server exited", logger.Err(err))
	}
	log.Info("shutdown complete")
}
