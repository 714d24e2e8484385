package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/taghunt/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// HistoryEntry is one journaled transaction.
type HistoryEntry struct {
	Seq        int64  `json:"seq"`
	ID         string `json:"id"`
	Operation  string `json:"operation"`
	Output     string `json:"output"`
	ErrorKind  string `json:"error_kind,omitempty"`
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled transactions",
		Long: `List the outcomes of past read and write transactions, newest first.

Only outcome metadata is journaled, never tag contents.

Examples:
  taghunt history
  taghunt history --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries to show (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path := opts.Config.Journal.Path
	if path == "" {
		return NewExitError(ExitCommandError, "journal disabled: journal.path is empty")
	}

	entries := []HistoryEntry{}
	if _, err := os.Stat(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return WrapExitError(ExitCommandError, "failed to stat journal", err)
	} else if err == nil {
		st, err := store.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer st.Close()

		outcomes, err := st.ListOutcomes(ctx, opts.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list outcomes", err)
		}
		for _, o := range outcomes {
			entries = append(entries, HistoryEntry{
				Seq:        o.Seq,
				ID:         o.ID,
				Operation:  o.Operation,
				Output:     o.Output,
				ErrorKind:  o.ErrorKind,
				StartedAt:  o.StartedAt.UTC().Format(time.RFC3339),
				DurationMS: o.Duration.Milliseconds(),
			})
		}
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: entries})
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No transactions journaled.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "[%d] %s %s -> %s", e.Seq, e.StartedAt, e.Operation, e.Output)
		if e.ErrorKind != "" {
			fmt.Fprintf(w, " (%s)", e.ErrorKind)
		}
		fmt.Fprintf(w, " %dms\n", e.DurationMS)
		if opts.Verbose {
			fmt.Fprintf(w, "       ID: %s\n", e.ID)
		}
	}
	return nil
}
