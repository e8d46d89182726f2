package app

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/infra/config"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/infra/database"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/infra/logger"
	postgresrepo "github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/repository/postgres"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/transport/console"
	"github.com/MaximilianoRao/Grupo22-Integrador-Programacion-II/internal/usecase"
)

// Application assembles the store, orchestrator, and console shell. Wiring is
// explicit constructor injection; there is no registry.
type Application struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	pool   *pgxpool.Pool
	menu   *console.Menu
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	accounts := usecase.NewAccountService(pool, repos.Users, repos.Credentials, log)
	menu := console.NewMenu(accounts, os.Stdin, os.Stdout, log)

	return &Application{
		cfg:    cfg,
		logger: log,
		pool:   pool,
		menu:   menu,
	}, nil
}

// Run drives the console shell and releases resources on exit.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()

	a.logger.Info("starting console",
		zap.String("app", a.cfg.App.Name),
		zap.String("env", a.cfg.App.Env),
	)

	return a.menu.Run(ctx)
}
