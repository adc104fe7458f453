package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/studiowebux/sttplay/internal/cli"
	"github.com/studiowebux/sttplay/internal/config"
	"github.com/studiowebux/sttplay/internal/executor"
	"github.com/studiowebux/sttplay/internal/history"
	"github.com/studiowebux/sttplay/internal/keybinds"
	"github.com/studiowebux/sttplay/internal/logger"
	"github.com/studiowebux/sttplay/internal/playground"
	"github.com/studiowebux/sttplay/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sttplay",
	Short: "Speech-to-text streaming playground",
	Long: `sttplay is a terminal playground for a streaming speech-to-text WebSocket API.

Run without arguments to start the TUI: enter your license key, connect,
pick a message template (config, audio, eof), edit it and send it, and
watch every server response in the event log.

The API key is read from --api-key or STTPLAY_API_KEY and is never written
to disk. Settings live in ~/.sttplay/config.jsonc.

Examples:
  sttplay                                  # Start interactive TUI
  sttplay --api-key $KEY --history         # Pre-fill the key, record the session
  sttplay run stream.ws                    # Run a scripted session
  sttplay run stream -q 'results[0].transcript'
  sttplay wscat --copy                     # Copy the equivalent wscat command
  sttplay templates config                 # Print the config template
  sttplay history show 3f2a                # Show a recorded session`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeLog()
		return runTUI(cmd, cfg)
	},
}

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Execute a .ws or YAML script in CLI mode",
	Long: `Connect to the script URL, send and expect frames in order, and print the
exchange. The extension is optional: 'stream' resolves to stream.ws,
stream.yaml, stream.yml or stream.json, in the current directory or in
~/.sttplay/scripts.

Scripts reference the key as {{apiKey}}. When no header carries it, the
license header is added from --api-key or STTPLAY_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeLog()
		return runScript(cmd, cfg, args[0])
	},
}

var wscatCmd = &cobra.Command{
	Use:   "wscat",
	Short: "Print the wscat command for the configured endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		command := playground.WscatCommand(cfg.Endpoint, cfg.HeaderName, cfg.APIKey)
		fmt.Fprintln(cmd.OutOrStdout(), command)

		if flagCopy {
			if err := (playground.SystemClipboard{}).WriteAll(command); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "wscat command copied to clipboard!")
		}
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:       "templates [config|audio|eof]",
	Short:     "Print one or all message templates",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"config", "audio", "eof"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		catalog := playground.NewCatalog(cfg.LanguageCode)
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			text, err := catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, text)
			return nil
		}

		for i, name := range catalog.Names() {
			text, _ := catalog.Get(name)
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "# %s\n%s\n", name, text)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded sessions",
	Long: `Sessions are recorded to ~/.sttplay/sttplay.db when history is enabled
(--history or "historyEnabled": true). With no subcommand, lists them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(mgr *history.Manager) error {
			return cli.ListHistory(cmd.OutOrStdout(), mgr, flagLimit, flagOutput)
		})
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(mgr *history.Manager) error {
			return cli.ListHistory(cmd.OutOrStdout(), mgr, flagLimit, flagOutput)
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the entries of a session (id prefix accepted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(mgr *history.Manager) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			} else {
				sessions, err := mgr.ListSessions(flagLimit)
				if err != nil {
					return err
				}
				if id, err = cli.PromptForSession(sessions); err != nil {
					return err
				}
			}
			return cli.ShowHistory(cmd.OutOrStdout(), mgr, id, flagOutput)
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(mgr *history.Manager) error {
			return cli.ClearHistory(cmd.OutOrStdout(), mgr)
		})
	},
}

// Flags shared by every command
var (
	flagAPIKey   string
	flagEndpoint string
	flagHeader   string
	flagLanguage string
	flagHistory  bool
)

// Flags for run and history
var (
	flagQuery  string
	flagOutput string
	flagSave   string
	flagLimit  int
	flagCopy   bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagAPIKey, "api-key", "k", "", "License key (default $"+config.EnvAPIKey+")")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "Streaming endpoint (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&flagHeader, "header", "", "Handshake header carrying the key")
	rootCmd.PersistentFlags().StringVarP(&flagLanguage, "language", "l", "", "Language code for the config template")
	rootCmd.PersistentFlags().BoolVar(&flagHistory, "history", false, "Record the session to the history database")

	runCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath applied to received JSON frames")
	runCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (json/yaml/text)")
	runCmd.Flags().StringVarP(&flagSave, "save", "s", "", "Save output to file")

	wscatCmd.Flags().BoolVarP(&flagCopy, "copy", "c", false, "Copy the command to the clipboard")

	historyCmd.PersistentFlags().IntVarP(&flagLimit, "limit", "n", 20, "Maximum sessions to list (0 for all)")
	historyCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format (json/yaml/text)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(wscatCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(historyCmd)
}

// setup initializes configuration and logging, then applies flags over the
// config file and environment
func setup(cmd *cobra.Command) (*config.Config, func(), error) {
	if err := config.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	closer, err := logger.Init(cfg.LogLevel, config.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger.Discard()
		return cfg, func() {}, nil
	}
	closeLog := func() {
		if err := closer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing log file: %v\n", err)
		}
	}

	return cfg, closeLog, nil
}

// applyFlags overrides settings with the flags the user actually set
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = flagAPIKey
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = strings.TrimSpace(flagEndpoint)
	}
	if flags.Changed("header") {
		cfg.HeaderName = strings.TrimSpace(flagHeader)
	}
	if flags.Changed("language") {
		cfg.LanguageCode = flagLanguage
	}
	if flags.Changed("history") {
		cfg.HistoryEnabled = flagHistory
	}
}

// openHistory opens the history database when recording is enabled
func openHistory(cfg *config.Config) (*history.Manager, error) {
	if !cfg.HistoryEnabled {
		return nil, nil
	}
	mgr, err := history.NewManager(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return mgr, nil
}

// withHistory opens the history database regardless of the recording setting
func withHistory(cmd *cobra.Command, fn func(mgr *history.Manager) error) error {
	_, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	mgr, err := history.NewManager(config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer mgr.Close()

	return fn(mgr)
}

// runTUI starts the interactive TUI
func runTUI(cmd *cobra.Command, cfg *config.Config) error {
	keysPath := filepath.Join(config.ConfigDir, keybinds.ConfigFileName)
	if err := keybinds.WriteDefaultConfig(keysPath); err != nil {
		log.Warn().Err(err).Msg("could not write default keybindings")
	}
	keys, err := keybinds.LoadOrDefault(keysPath)
	if err != nil {
		return err
	}

	exportDir, err := cfg.ExportDirectory()
	if err != nil {
		return err
	}

	// Closed by the model on exit
	mgr, err := openHistory(cfg)
	if err != nil {
		return err
	}

	return tui.Run(tui.Options{
		Endpoint:   cfg.Endpoint,
		HeaderName: cfg.HeaderName,
		Language:   cfg.LanguageCode,
		APIKey:     cfg.APIKey,
		Transport: executor.NewTransport(executor.Options{
			HandshakeTimeout: cfg.HandshakeTimeout(),
			TLS:              cfg.TLS,
		}),
		Clipboard:    playground.SystemClipboard{},
		Keys:         keys,
		History:      mgr,
		Highlight:    cfg.Highlight,
		ExportFormat: cfg.ExportFormat,
		ExportDir:    exportDir,
	})
}

// runScript executes a script file in CLI mode
func runScript(cmd *cobra.Command, cfg *config.Config, scriptPath string) error {
	mgr, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if mgr != nil {
		defer func() {
			if err := mgr.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close history database")
			}
		}()
	}

	return cli.Run(cli.RunOptions{
		ScriptPath:       scriptPath,
		APIKey:           cfg.APIKey,
		HeaderName:       cfg.HeaderName,
		Language:         cfg.LanguageCode,
		HandshakeTimeout: cfg.HandshakeTimeout(),
		Query:            flagQuery,
		OutputFormat:     flagOutput,
		SavePath:         flagSave,
		History:          mgr,
		Stdout:           cmd.OutOrStdout(),
	})
}
