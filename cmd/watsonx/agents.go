package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/watsonx"
	"github.com/spf13/cobra"
)

func (a *app) agentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List Orchestrate agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.orchestrator()
			if err != nil {
				return err
			}
			agents, err := client.ListAgents(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(agents))
			for _, ag := range agents {
				rows = append(rows, []string{ag.ID, ag.Name, ag.Description})
			}
			writeTable(a.stdout, []string{"ID", "NAME", "DESCRIPTION"}, rows)
			return nil
		},
	}
}

func (a *app) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List tools agents may invoke",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.orchestrator()
			if err != nil {
				return err
			}
			tools, err := client.ListTools(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(tools))
			for _, t := range tools {
				rows = append(rows, []string{t.ID, t.Name, t.Type, strconv.FormatBool(t.Enabled)})
			}
			writeTable(a.stdout, []string{"ID", "NAME", "TYPE", "ENABLED"}, rows)
			return nil
		},
	}
}

func (a *app) skillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List agent skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.orchestrator()
			if err != nil {
				return err
			}
			skills, err := client.ListSkills(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(skills))
			for _, s := range skills {
				rows = append(rows, []string{s.ID, s.Name, s.Description})
			}
			writeTable(a.stdout, []string{"ID", "NAME", "DESCRIPTION"}, rows)
			return nil
		},
	}
}

func (a *app) collectionsCmd() *cobra.Command {
	var query string
	var limit int
	cmd := &cobra.Command{
		Use:   "collections [COLLECTION]",
		Short: "List document collections, or search one with --query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.orchestrator()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if query == "" {
					return fmt.Errorf("--query is required with a collection: %w", watsonx.ErrValidation)
				}
				hits, err := client.SearchDocuments(cmd.Context(), args[0], watsonx.SearchRequest{Query: query, Limit: limit})
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(hits))
				for _, h := range hits {
					rows = append(rows, []string{h.DocumentID, fmt.Sprintf("%.3f", h.Score), h.Title, h.Snippet})
				}
				writeTable(a.stdout, []string{"DOCUMENT", "SCORE", "TITLE", "SNIPPET"}, rows)
				return nil
			}
			cols, err := client.ListCollections(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(cols))
			for _, c := range cols {
				rows = append(rows, []string{c.ID, c.Name, c.Status, strconv.Itoa(c.DocumentCount)})
			}
			writeTable(a.stdout, []string{"ID", "NAME", "STATUS", "DOCUMENTS"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Search query")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum search results")
	return cmd
}

func (a *app) askCmd() *cobra.Command {
	var (
		thread   string
		docs     string
		markdown bool
	)
	cmd := &cobra.Command{
		Use:   "ask AGENT MESSAGE",
		Short: "Send one message to an agent and print the reply",
		Long: `ask sends MESSAGE to AGENT and streams the reply. The thread id is
printed to stderr so a follow-up can continue it with --thread. With
--docs the contents of every matching file are sent along as grounding
context.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.orchestrator()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			agentID, message := args[0], args[1]

			h := writeFragments(a.stdout)
			if markdown {
				h = watsonx.DiscardFragments
			}

			var outcome watsonx.StreamOutcome
			if docs != "" {
				req, err := docsRequest(message, docs)
				if err != nil {
					return err
				}
				if thread == "" {
					t, err := client.CreateThread(ctx, agentID)
					if err != nil {
						return err
					}
					thread = t.ID
				}
				outcome, err = client.ChatWithDocs(ctx, agentID, thread, req, h)
				if err != nil {
					return err
				}
			} else {
				outcome, err = client.StreamMessage(ctx, agentID, message, thread, h)
				if err != nil {
					return err
				}
			}

			if markdown {
				a.printText(outcome.Text, true)
			} else {
				fmt.Fprintln(a.stdout)
			}
			if !outcome.Terminal {
				a.log.Warn().Str("agent", agentID).Msg("reply ended without a completion event")
			}
			if outcome.ThreadID != "" {
				fmt.Fprintf(a.stderr, "thread: %s\n", outcome.ThreadID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&thread, "thread", "", "Continue an existing thread")
	cmd.Flags().StringVar(&docs, "docs", "", "Glob of documents to attach, e.g. 'notes/**/*.md'")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the reply as markdown once complete")
	return cmd
}

// docsRequest attaches every file matching pattern to message. Each file
// is introduced by its path.
func docsRequest(message, pattern string) (watsonx.ChatWithDocsRequest, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return watsonx.ChatWithDocsRequest{}, fmt.Errorf("docs pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return watsonx.ChatWithDocsRequest{}, fmt.Errorf("no documents match %q: %w", pattern, watsonx.ErrValidation)
	}
	var b strings.Builder
	for i, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return watsonx.ChatWithDocsRequest{}, fmt.Errorf("read document: %w", err)
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- %s ---\n", filepath.ToSlash(path))
		b.Write(data)
	}
	return watsonx.ChatWithDocsRequest{
		Message:         message,
		DocumentContent: b.String(),
		DocumentPath:    filepath.ToSlash(matches[0]),
	}, nil
}
