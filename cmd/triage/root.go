package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/triage/internal/config"
	"github.com/okian/triage/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// state is shared by all subcommands once the root pre-run has loaded the
// configuration and initialized logging.
type state struct {
	cfg *config.Config
	log logger.Logger
}

type rootFlags struct {
	configPath string
	logPath    string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	st := &state{}

	root := &cobra.Command{
		Use:   "triage",
		Short: "Score, escalate and analyze rated customer feedback",
		Long: "triage turns a rating, a free-text feedback and a communication summary into a\n" +
			"severity score and sentiment, opens a ticket for negative interactions and\n" +
			"appends every result to the feedback log served by the dashboard.",
		Version:      version,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.init(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	pf.StringVar(&flags.logPath, "log-path", "", "Feedback log CSV file (overrides log_path)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log_level)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json (overrides log_format)")

	root.AddCommand(
		newIngestCmd(st),
		newSubmitCmd(st),
		newServeCmd(st),
		newExportCmd(st),
		newSeedCmd(st),
	)
	return root
}

// init loads configuration (defaults -> optional file -> env -> flags) and
// initializes the global logger on the command's stderr.
func (s *state) init(cmd *cobra.Command, flags rootFlags) error {
	path := flags.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	cfg, err := config.LoadFrom(cmd.Context(), path)
	if err != nil {
		return err
	}
	if flags.logPath != "" {
		cfg.LogPath = flags.logPath
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.LogFormat = flags.logFormat
	}

	if err := logger.InitWithOptions(logger.Options{
		Format: logger.Format(cfg.LogFormat),
		Writer: cmd.ErrOrStderr(),
	}); err != nil {
		return err
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	s.cfg = cfg
	s.log = log
	return nil
}
