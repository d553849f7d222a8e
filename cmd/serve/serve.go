package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/ikolcov/learnit/internal/app"
	"github.com/ikolcov/learnit/internal/auth"
	"github.com/ikolcov/learnit/internal/config"
	"github.com/ikolcov/learnit/internal/logger"
	"github.com/ikolcov/learnit/internal/storage"
)

const envFileFlag = "env-file"

var serveFlags = map[string]cobraflags.Flag{
	envFileFlag: &cobraflags.StringFlag{
		Name:  envFileFlag,
		Value: ".env",
		Usage: "File with environment variables loaded before the process environment",
	},
}

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the posts API over HTTP",
		Long: `Serve the posts API over HTTP.

Settings are read from the environment (SERVER_PORT, STORE_DRIVER, MONGO_URL,
POSTGRES_URL, REDIS_URL, ACCESS_TOKEN_SECRET, ...), optionally seeded from the
file given by --env-file.`,
		RunE: serveCommand,
	}

	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveFlags[envFileFlag].GetString())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("failed to close storage", "error", err)
		}
	}()

	a := app.New(app.AppConfig{
		Port:            cfg.Port,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, store, auth.NewVerifier(cfg.AccessTokenSecret), log)
	return a.Start(ctx)
}
