package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trading-console/internal/broker"
	"trading-console/internal/config"
	"trading-console/internal/logging"
	"trading-console/internal/portfolio"
	"trading-console/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-18"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Broker    broker.Broker
	Journal   store.TradeJournal
}

// NewApp creates the application. A nil cfg is loaded from the --config
// directory before any command runs, and the logger is then rebuilt from its
// [logging] section.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger,
	}
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	return NewApp(cfg, logger).RootCmd()
}

// RootCmd builds the command tree. Callers should Close the app once the
// command returns, since cobra skips post-run hooks after an error.
func (a *App) RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trader",
		Short: "Trading Console - simulated stock trading from the terminal",
		Long: `Trading Console is a single-user paper trading console.

Run without a command to start the interactive session: view the market,
buy and sell shares at the listed price, and review your portfolio and
transaction history. Holdings live only for the session.

Use 'trader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if err := a.loadConfig(cmd); err != nil {
				return err
			}

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				a.Logger = a.Logger.Level(zerolog.DebugLevel)
			}
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.Close()
			session := NewSession(SessionConfig{
				Broker: a.Broker,
				In:     cmd.InOrStdin(),
				Out:    a.output(cmd),
				Logger: a.Logger,
			})
			return session.Run(cmd.Context())
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trading-console)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newMarketCmd(a))
	rootCmd.AddCommand(newJournalCmd(a))

	return rootCmd
}

func (a *App) loadConfig(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	if dir == "" {
		dir = config.DefaultConfigDir()
	}
	if a.ConfigDir == "" {
		a.ConfigDir = dir
	}
	if a.Config != nil {
		return nil
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	a.Config = cfg
	a.Logger = logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})
	return nil
}

// init wires the catalog, portfolio, journal and broker from the config.
func (a *App) init() error {
	if a.Broker != nil {
		return nil
	}

	catalog, err := a.Config.Catalog()
	if err != nil {
		return err
	}
	a.Logger.Debug().Int("instruments", catalog.Len()).Msg("Market catalog loaded")

	pf := portfolio.New(portfolio.Config{
		DropClosed:      !a.Config.Portfolio.RetainClosedPositions,
		StrictValuation: a.Config.Portfolio.StrictValuation,
	})

	if a.Config.Journal.Enabled {
		journal, err := store.NewSQLiteStore(a.Config.Journal.Path)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to open trade journal, trades will not be journaled")
		} else {
			a.Journal = journal
			a.Logger.Debug().Str("path", a.Config.Journal.Path).Msg("Trade journal opened")
		}
	}

	a.Broker = broker.NewPaperBroker(broker.PaperBrokerConfig{
		Catalog:   catalog,
		Portfolio: pf,
		Journal:   a.Journal,
		Logger:    a.Logger,
	})
	return nil
}

// Close releases the journal if one is open.
func (a *App) Close() error {
	if a.Journal == nil {
		return nil
	}
	err := a.Journal.Close()
	a.Journal = nil
	return err
}

// output builds an Output for cmd that honours ui.color_enabled.
func (a *App) output(cmd *cobra.Command) *Output {
	out := NewOutput(cmd)
	if a.Config != nil && !a.Config.UI.ColorEnabled {
		out.SetColor(false)
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trading Console v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := app.output(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.ConfigDir})
			} else {
				output.Println(app.ConfigDir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Market")
	for _, inst := range cfg.Market.Instruments {
		output.Printf("  %-8s %-24s %s\n", inst.Symbol, inst.Name, inst.Price)
	}
	output.Println()

	output.Bold("Portfolio")
	output.Printf("  Retain Closed:   %v\n", cfg.Portfolio.RetainClosedPositions)
	output.Printf("  Strict Valuation: %v\n", cfg.Portfolio.StrictValuation)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %v (%s)\n", cfg.Logging.File, cfg.Logging.FilePath)
	output.Println()

	output.Bold("Journal")
	output.Printf("  Enabled:         %v\n", cfg.Journal.Enabled)
	output.Printf("  Path:            %s\n", cfg.Journal.Path)
}
