package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/goldmark"
	"github.com/fwojciec/watsonx/wxai"
	"github.com/spf13/cobra"
)

const renderWidth = 80

// genFlags are the generation parameters shared by generate, stream and
// batch.
type genFlags struct {
	model       string
	maxTokens   int
	quick       bool
	minTokens   int
	temperature float64
	decoding    string
	stop        []string
	timeout     time.Duration
}

func (f *genFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.model, "model", "", "Model ID (default from WATSONX_MODEL or "+watsonx.DefaultModel+")")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, fmt.Sprintf("Maximum new tokens (default %d)", watsonx.DefaultMaxTokens))
	cmd.Flags().BoolVar(&f.quick, "quick", false, fmt.Sprintf("Cap output at %d tokens unless --max-tokens is set", watsonx.QuickMaxTokens))
	cmd.Flags().IntVar(&f.minTokens, "min-tokens", 0, "Minimum new tokens")
	cmd.Flags().Float64Var(&f.temperature, "temperature", 0, "Sampling temperature in [0, 2] (default: service default)")
	cmd.Flags().StringVar(&f.decoding, "decoding", "", "Decoding method: greedy or sample")
	cmd.Flags().StringSliceVar(&f.stop, "stop", nil, "Stop sequences")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Request deadline (default from WATSONX_TIMEOUT_SECS)")
}

// config merges the flags over the environment defaults.
func (f *genFlags) config(cmd *cobra.Command, defaultModel string, defaultTimeout time.Duration) (watsonx.GenerationConfig, error) {
	cfg := watsonx.GenerationConfig{
		ModelID:        firstNonEmpty(f.model, defaultModel),
		DecodingMethod: f.decoding,
		MaxTokens:      f.maxTokens,
		MinTokens:      f.minTokens,
		StopSequences:  f.stop,
		Timeout:        defaultTimeout,
	}
	if f.quick && cfg.MaxTokens == 0 {
		cfg.MaxTokens = watsonx.QuickMaxTokens
	}
	if cmd.Flags().Changed("temperature") {
		t := f.temperature
		cfg.Temperature = &t
	}
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
	if err := cfg.Validate(); err != nil {
		return watsonx.GenerationConfig{}, err
	}
	return cfg.WithDefaults(), nil
}

func (a *app) generateCmd() *cobra.Command {
	var (
		flags    genFlags
		markdown bool
		quality  bool
	)
	cmd := &cobra.Command{
		Use:   "generate PROMPT",
		Short: "Generate text for a prompt and print it when complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []wxai.Option
			if quality {
				opts = append(opts, wxai.WithQualityScoring())
			}
			client, defaults, err := a.generator(opts...)
			if err != nil {
				return err
			}
			cfg, err := flags.config(cmd, defaults.Model, defaults.Timeout)
			if err != nil {
				return err
			}
			res, err := client.Generate(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}
			a.log.Debug().Str("model", res.ModelID).Str("request_id", res.RequestID).Msg("generated")
			a.printText(res.Text, markdown)
			if res.QualityScore != nil {
				fmt.Fprintf(a.stderr, "quality: %.2f\n", *res.QualityScore)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the output as markdown")
	cmd.Flags().BoolVar(&quality, "quality", false, "Print a heuristic quality score to stderr")
	return cmd
}

func (a *app) streamCmd() *cobra.Command {
	var flags genFlags
	cmd := &cobra.Command{
		Use:   "stream PROMPT",
		Short: "Generate text for a prompt, printing fragments as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, defaults, err := a.generator()
			if err != nil {
				return err
			}
			cfg, err := flags.config(cmd, defaults.Model, defaults.Timeout)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if cfg.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
			}
			if _, err := client.GenerateStream(ctx, args[0], cfg, writeFragments(a.stdout)); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) modelsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List foundation models available for text generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := a.generator()
			if err != nil {
				return err
			}
			models, err := client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			var rows [][]string
			for _, m := range models {
				if !all && (!m.Available() || !m.Supports("text_generation")) {
					continue
				}
				rows = append(rows, []string{m.ID, m.Provider, m.Label})
			}
			writeTable(a.stdout, []string{"MODEL", "PROVIDER", "LABEL"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include withdrawn models and models without text generation")
	return cmd
}

func (a *app) qualityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quality TEXT",
		Short: "Score text with the heuristic quality check",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "%.2f\n", watsonx.AssessQuality(args[0]))
			return nil
		},
	}
}

// printText writes text to stdout, rendered as markdown when requested.
func (a *app) printText(text string, markdown bool) {
	text = sanitize(text)
	if markdown {
		text = goldmark.Render(text, renderWidth, a.theme)
	}
	fmt.Fprintln(a.stdout, strings.TrimRight(text, "\n"))
}

// writeFragments returns a handler that copies sanitized fragment text to w.
func writeFragments(w io.Writer) watsonx.FragmentHandler {
	return watsonx.FragmentHandlerFunc(func(_ context.Context, f watsonx.Fragment) error {
		_, err := io.WriteString(w, sanitize(f.Text))
		return err
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
