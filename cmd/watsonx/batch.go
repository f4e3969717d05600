package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/watsonx"
	"github.com/fwojciec/watsonx/batch"
	wxjson "github.com/fwojciec/watsonx/json"
	wxyaml "github.com/fwojciec/watsonx/yaml"
	"github.com/spf13/cobra"
)

const defaultConcurrency = 5

func (a *app) batchCmd() *cobra.Command {
	var (
		flags       genFlags
		concurrency int
		out         string
	)
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run every prompt in a YAML file concurrently",
		Long: `batch reads prompts from a YAML file, either a bare list or a
mapping with "defaults" and "units", and generates them with bounded
concurrency. Units that fail do not stop the others.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			units, err := wxyaml.LoadUnits(args[0])
			if err != nil {
				return err
			}
			client, defaults, err := a.generator()
			if err != nil {
				return err
			}
			cfg, err := flags.config(cmd, defaults.Model, defaults.Timeout)
			if err != nil {
				return err
			}

			report := client.GenerateBatch(cmd.Context(), units, cfg,
				batch.WithConcurrency(concurrency),
				batch.WithLogger(a.log),
			)
			a.printReport(report)

			if out != "" {
				if err := wxjson.SaveReport(out, report); err != nil {
					return fmt.Errorf("save report: %w", err)
				}
				a.log.Info().Str("path", out).Msg("report saved")
			}
			if report.AnyFailed() {
				return fmt.Errorf("%d of %d units failed", report.Failed, report.Total)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultConcurrency, "Maximum units in flight")
	cmd.Flags().StringVar(&out, "out", "", "Write the full report as JSON to this path")
	return cmd
}

// printReport lists items in submission order followed by a summary line
// colored by the overall result.
func (a *app) printReport(r watsonx.BatchReport) {
	items := slices.Clone(r.Items)
	slices.SortFunc(items, func(x, y watsonx.BatchItemOutcome) int { return x.Index - y.Index })

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		status, detail := "ok", it.Result.Text
		if !it.OK() {
			status, detail = it.Kind.String(), it.Err.Error()
		}
		rows = append(rows, []string{it.ID, status, it.Duration.Round(time.Millisecond).String(), strings.TrimSpace(detail)})
	}
	writeTable(a.stdout, []string{"ID", "STATUS", "TIME", "OUTPUT"}, rows)

	color := a.theme.Success
	if r.AnyFailed() {
		color = a.theme.Error
	}
	style := lipgloss.NewStyle()
	if color >= 0 {
		style = style.Foreground(lipgloss.Color(strconv.Itoa(color)))
	}
	fmt.Fprintln(a.stdout, style.Render(fmt.Sprintf(
		"%d/%d succeeded (%.0f%%) in %s",
		r.Succeeded, r.Total, r.SuccessRate()*100, r.Duration.Round(time.Millisecond),
	)))
}
