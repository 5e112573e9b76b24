package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/socialgraph/internal/config"
	"github.com/roach88/socialgraph/internal/engine"
)

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) loadConfig(ctx context.Context) (config.Config, error) {
	cfg, err := config.Load(ctx, config.Options{
		Path:     o.Config,
		EnvFile:  o.EnvFile,
		Lookuper: o.Lookuper,
	})
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// logger writes text logs to stderr. --verbose forces debug level.
func (o *RootOptions) logger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	level := cfg.LogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) requestID() string {
	if o.RequestIDs == nil {
		return UUIDv7Generator{}.Generate()
	}
	return o.RequestIDs.Generate()
}

// openHost loads the config and assembles an engine from it.
func (o *RootOptions) openHost(cmd *cobra.Command, extra ...engine.EventSink) (*config.Host, config.Config, *slog.Logger, error) {
	ctx := cmd.Context()
	cfg, err := o.loadConfig(ctx)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	logger := o.logger(cmd, cfg)

	host, err := config.Open(ctx, cfg, logger, extra...)
	if err != nil {
		return nil, config.Config{}, nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	return host, cfg, logger, nil
}
