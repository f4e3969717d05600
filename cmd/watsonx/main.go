// Command watsonx is a command-line client for watsonx.ai text generation
// and watsonx Orchestrate agents.
//
// Usage:
//
//	WATSONX_API_KEY=... WATSONX_PROJECT_ID=... watsonx generate "prompt"
//	WXO_INSTANCE_ID=... WXO_KEY=...            watsonx chat AGENT
//
// Run "watsonx help" for the full command list.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/env"
	"github.com/fwojciec/watsonx/iam"
	"github.com/fwojciec/watsonx/wxai"
	"github.com/fwojciec/watsonx/wxo"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "watsonx: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command line args. environ replaces the process
// environment when non-nil.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, environ map[string]string) error {
	a := &app{
		stdout:  stdout,
		stderr:  stderr,
		environ: environ,
		theme:   watsonx.DefaultTheme(),
		log:     zerolog.Nop(),
	}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// app holds what every subcommand shares.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	environ map[string]string
	theme   watsonx.Theme
	log     zerolog.Logger

	logLevel string
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "watsonx",
		Short: "Client for watsonx.ai generation and watsonx Orchestrate agents",
		Long: `watsonx talks to two IBM services. Generation commands read
WATSONX_API_KEY and WATSONX_PROJECT_ID; agent commands read
WXO_INSTANCE_ID and WXO_KEY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogger(cmd.Flags().Changed("log-level"))
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from WATSONX_LOG_LEVEL)")

	root.AddCommand(
		a.generateCmd(),
		a.streamCmd(),
		a.batchCmd(),
		a.modelsCmd(),
		a.qualityCmd(),
		a.agentsCmd(),
		a.toolsCmd(),
		a.skillsCmd(),
		a.collectionsCmd(),
		a.askCmd(),
		a.chatCmd(),
	)
	return root
}

// setupLogger writes human-readable logs to stderr. The flag wins over
// WATSONX_LOG_LEVEL.
func (a *app) setupLogger(flagSet bool) error {
	level := a.logLevel
	if !flagSet {
		cfg, err := env.CLIFrom(a.environ)
		if err != nil {
			return err
		}
		level = cfg.LogLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, watsonx.ErrValidation)
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, NoColor: true}).
		Level(lvl).
		With().Timestamp().Logger()
	return nil
}

// generator builds a generation client from the environment.
func (a *app) generator(opts ...wxai.Option) (*wxai.Client, env.Generation, error) {
	cfg, err := env.GenerationFrom(a.environ)
	if err != nil {
		return nil, env.Generation{}, err
	}
	tokens := iam.New(cfg.APIKey, iam.WithHost(cfg.IAMHost))
	opts = append([]wxai.Option{
		wxai.WithBaseURL(cfg.APIURL),
		wxai.WithAPIVersion(cfg.APIVersion),
		wxai.WithLogger(a.log),
	}, opts...)
	return wxai.New(cfg.ProjectID, tokens, opts...), cfg, nil
}

// orchestrator builds an agent client from the environment.
func (a *app) orchestrator() (*wxo.Client, error) {
	cfg, err := env.OrchestrateFrom(a.environ)
	if err != nil {
		return nil, err
	}
	tokens := iam.New(cfg.APIKey, iam.WithHost(cfg.IAMHost))
	opts := []wxo.Option{
		wxo.WithRegion(cfg.Region),
		wxo.WithLogger(a.log),
	}
	if u := cfg.BaseURL(); u != "" {
		opts = append(opts, wxo.WithBaseURL(u))
	}
	return wxo.New(cfg.InstanceID, tokens, opts...), nil
}
