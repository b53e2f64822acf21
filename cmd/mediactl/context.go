package main

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattn/go-isatty"

	"coursemedia/internal/adapter/repo"
	"coursemedia/internal/infra"
	"coursemedia/internal/infra/credentials"
	"coursemedia/internal/ingest"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *infra.Config
	logger     infra.Logger
	configErr  error

	pool *pgxpool.Pool
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verbose: verbose}
}

func (c *commandContext) ensureConfig() (*infra.Config, error) {
	c.configOnce.Do(func() {
		if c.configFlag != nil {
			if path := strings.TrimSpace(*c.configFlag); path != "" {
				_ = os.Setenv("CONFIG_FILE", path)
			}
		}
		cfg, err := infra.LoadConfig()
		if err != nil {
			c.configErr = err
			return
		}
		level := cfg.LogLevel
		if c.verbose != nil && *c.verbose {
			level = "debug"
		}
		c.config = cfg
		c.logger = infra.NewLoggerTo(os.Stderr, cfg.AppEnv, level, isTerminal(os.Stderr)).
			With().Str("cmd", "mediactl").Logger()
	})
	return c.config, c.configErr
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c *commandContext) ensurePool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.pool != nil {
		return c.pool, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.pool = pool
	return pool, nil
}

func (c *commandContext) runner(ctx context.Context) (*infra.SQLRunner, error) {
	pool, err := c.ensurePool(ctx)
	if err != nil {
		return nil, err
	}
	return infra.NewSQLRunner(pool, c.logger), nil
}

func (c *commandContext) components(ctx context.Context) (*ingest.Components, error) {
	runner, err := c.runner(ctx)
	if err != nil {
		return nil, err
	}
	service, err := ingest.NewServiceClient(ctx, c.config, credentials.NewStore(runner), &c.logger)
	if err != nil {
		return nil, err
	}
	return ingest.NewComponents(service, repo.NewCourseRepository(runner), c.config, &c.logger), nil
}

func (c *commandContext) close() {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}
