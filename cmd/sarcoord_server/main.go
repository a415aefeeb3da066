package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/openrescue/sarcoord/internal/assets"
	"github.com/openrescue/sarcoord/internal/commands"
	"github.com/openrescue/sarcoord/internal/database"
	"github.com/openrescue/sarcoord/internal/membership"
	"github.com/openrescue/sarcoord/internal/missions"
	"github.com/openrescue/sarcoord/internal/repository"
	"github.com/openrescue/sarcoord/internal/timeline"
)

var (
	gitRevision = "unknown"
	gitBranch   = "unknown"
)

type App struct {
	logger *slog.Logger
	uid    string

	dbm   *database.DatabaseManager
	users repository.UserRepository

	resolver *membership.Resolver
	recorder *timeline.Recorder
	engine   *commands.Engine
	ledger   *assets.Ledger
	missions *missions.Manager

	http *HTTPServer
}

func NewApp(dbm *database.DatabaseManager, users repository.UserRepository) *App {
	app := &App{
		logger:   slog.Default().With("logger", "app"),
		uid:      uuid.NewString(),
		dbm:      dbm,
		users:    users,
		resolver: membership.New(),
		recorder: timeline.New(),
	}

	app.engine = commands.New(app.recorder)
	app.ledger = assets.New(app.resolver, app.engine, app.recorder)
	app.missions = missions.New(app.resolver, app.ledger, app.recorder)
	app.http = NewHTTPServer(app, viper.GetString("http_addr"))

	return app
}

func (app *App) Run() {
	go func() {
		if err := app.http.Listen(); err != nil {
			app.logger.Error("http server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	app.logger.Info("server started", slog.String("addr", app.http.Address()), slog.String("uid", app.uid))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	app.logger.Info("exiting")
	app.users.Stop()
	_ = app.http.Shutdown()
}

func main() {
	debug := flag.Bool("debug", false, "debug logging")
	conf := flag.String("config", "sarcoord.yml", "name of config file")
	flag.Parse()

	viper.SetConfigFile(*conf)

	viper.SetDefault("http_addr", ":8080")
	viper.SetDefault("db", "sarcoord.db")
	viper.SetDefault("users_file", "users.yml")

	if err := viper.ReadInConfig(); err != nil {
		slog.Warn("no config file, using defaults", slog.Any("error", err))
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	slog.Info("version " + gitBranch + ":" + gitRevision)

	db, err := database.GetDatabase(viper.GetString("db"), *debug)
	if err != nil {
		slog.Error("db open error", slog.Any("error", err))
		os.Exit(1)
	}

	dbm := database.New(db)

	if err := dbm.Migrate(); err != nil {
		slog.Error("migration error", slog.Any("error", err))
		os.Exit(1)
	}

	dbm.AddDefaults()

	users := repository.NewFileUserRepo(viper.GetString("users_file"))
	if err := users.Start(); err != nil {
		slog.Error("error starting user repo", slog.Any("error", err))
		os.Exit(1)
	}

	NewApp(dbm, users).Run()
}
