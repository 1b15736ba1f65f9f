package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tentolabs/tento/auth"
	"github.com/tentolabs/tento/internal/config"
	quizfake "github.com/tentolabs/tento/quizzes/repofake"
	"github.com/tentolabs/tento/server"
	"github.com/tentolabs/tento/token"
	"github.com/tentolabs/tento/token/redisrotation"
	userfake "github.com/tentolabs/tento/users/repofake"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogging(cfg)
	displayAppname(cfg.AppName)

	tokenOptions := []token.ServiceOption{
		token.WithTokenExpiry(cfg.AccessTokenExpiry(), cfg.RefreshTokenExpiry()),
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		tokenOptions = append(tokenOptions, token.WithRotationStore(redisrotation.New(client)))
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis rotation store")
	}
	tokens := token.NewService(token.NewHMACSigner(cfg.JWTSecret), tokenOptions...)

	// Persistence is an external collaborator; the in-memory repos stand in
	// behind the same contracts.
	userRepo := userfake.NewFakeUserRepo()
	quizRepo := quizfake.NewFakeQuizRepo()

	login, err := auth.NewService(userRepo, tokens, cfg.GithubClientID, cfg.GithubClientSecret,
		auth.WithTimeout(cfg.OAuthTimeout))
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, tokens, login, userRepo, quizRepo)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: cfg.Addr(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func setupLogging(cfg config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("listen and serve")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
