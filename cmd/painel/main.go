package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaopalco/painel/internal/config"
	"github.com/gestaopalco/painel/internal/crm"
	"github.com/gestaopalco/painel/internal/db"
	"github.com/gestaopalco/painel/internal/demanda"
	"github.com/gestaopalco/painel/internal/evento"
	internalhttp "github.com/gestaopalco/painel/internal/http"
	"github.com/gestaopalco/painel/internal/nota"
	"github.com/gestaopalco/painel/internal/notify"
	"github.com/gestaopalco/painel/internal/painel"
	"github.com/gestaopalco/painel/internal/realtime"
	"github.com/gestaopalco/painel/internal/retry"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("painel encerrado com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	assinante := realtime.NewAssinante(realtime.NewFonteRedis(redisClient), cfg.Realtime, log.Logger)

	deps := painel.Deps{
		Eventos:    evento.NewRepository(pool),
		Demandas:   demanda.NewRepository(pool),
		CRM:        crm.NewRepository(pool),
		Notas:      nota.NewRepository(pool),
		Autores:    nota.NewAutores(cfg.NotaAutores),
		Publicador: realtime.NewPublicador(redisClient, log.Logger),
		Assinante:  assinante,
		Ping:       pool.Ping,
		CacheTTL:   cfg.Sync.CacheTTL,
		Retry: retry.Config{
			MaxTentativas: cfg.Retry.MaxTentativas,
			DelayBase:     cfg.Retry.DelayBase,
			DelayMax:      cfg.Retry.DelayMax,
			Timeout:       cfg.Retry.Timeout,
		},
		Logger: log.Logger,
	}
	if notifier := notify.NewWebhookNotifier(cfg.NotifyWebhook); notifier != nil {
		deps.Notifier = notifier
	}

	service := painel.NewService(deps)
	service.Iniciar(ctx)
	defer service.Encerrar()

	if _, err := service.AtualizarTudo(ctx, false, false); err != nil {
		log.Warn().Err(err).Msg("carga inicial falhou, seguindo sem snapshot")
	}

	handler := internalhttp.NewRouter(cfg, pool, redisClient, service)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("painel ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
