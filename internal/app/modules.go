// Package app wires cardsplit's components together with fx.
package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/teilomillet/cardsplit/config"
	"github.com/teilomillet/cardsplit/internal/tokens"
	"github.com/teilomillet/cardsplit/notes"
	"github.com/teilomillet/cardsplit/providers"
	"github.com/teilomillet/cardsplit/splitter"
	"github.com/teilomillet/cardsplit/utils"
)

// ConfigModule provides the logger and the resolved split settings.
var ConfigModule = fx.Module("config",
	fx.Provide(
		NewLogger,
		NewSettings,
	),
)

// ProviderModule provides the HTTP transport and the provider registry.
var ProviderModule = fx.Module("providers",
	fx.Provide(
		fx.Annotate(NewTransport, fx.As(new(providers.Transport))),
		providers.GetDefaultRegistry,
	),
)

// SplitterModule provides the note store, the splitter and the runner.
var SplitterModule = fx.Module("splitter",
	fx.Provide(
		fx.Annotate(NewNoteStore, fx.As(fx.Self()), fx.As(new(splitter.Collection))),
		NewSplitter,
		NewRunner,
	),
)

// Options returns the whole application graph for cfg.
func Options(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		ConfigModule,
		ProviderModule,
		SplitterModule,
		fx.NopLogger,
	)
}

// NewLogger returns cfg.Logger when set, else a logger in cfg.LogFormat.
func NewLogger(lc fx.Lifecycle, cfg *config.Config) (utils.Logger, error) {
	if cfg.Logger != nil {
		return cfg.Logger, nil
	}
	switch cfg.LogFormat {
	case "", "text":
		return utils.NewLogger(cfg.LogLevel), nil
	case "json":
		zl, err := utils.NewZapLogger(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				// stderr cannot always be synced; that is not a failure.
				_ = zl.Sync()
				return nil
			},
		})
		return zl, nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", cfg.LogFormat)
	}
}

// NewSettings loads the settings file and applies the process overrides.
func NewSettings(cfg *config.Config, logger utils.Logger) (*config.Settings, error) {
	settings, raw, err := config.LoadSettings(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := settings.Override(raw, cfg.Provider, cfg.Model); err != nil {
		return nil, err
	}
	logger.Debug("Settings resolved", "path", cfg.ConfigPath, "provider", settings.Provider, "model", settings.Model, "api_base", settings.APIBase)
	return settings, nil
}

func NewTransport(cfg *config.Config, logger utils.Logger) *providers.HTTPTransport {
	return providers.NewHTTPTransport(cfg.Timeout, logger)
}

func NewNoteStore(cfg *config.Config, logger utils.Logger) (*notes.Store, error) {
	return notes.Open(cfg.NotesPath, logger)
}

func NewSplitter(cfg *config.Config, registry *providers.ProviderRegistry, transport providers.Transport, logger utils.Logger) *splitter.Splitter {
	opts := []splitter.Option{
		splitter.WithDebugManager(utils.NewDebugManager(cfg.DebugDir, logger)),
	}
	if cfg.CountTokens {
		opts = append(opts, splitter.WithTokenCounter(tokens.NewCounter(logger)))
	}
	return splitter.New(registry, transport, logger, opts...)
}

func NewRunner(s *splitter.Splitter, collection splitter.Collection, logger utils.Logger) *splitter.Runner {
	return splitter.NewRunner(s, collection, logger)
}
