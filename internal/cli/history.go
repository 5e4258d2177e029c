package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/history"
)

// HistoryListOptions holds flags for the history list command.
type HistoryListOptions struct {
	*RootOptions
	Limit int
}

// HistoryList is the payload printed by history list.
type HistoryList struct {
	Key     string            `json:"key"`
	Count   int               `json:"count"`
	Entries []json.RawMessage `json:"entries"`
}

// RenderText prints one line per entry. Entries not written by trafficlab
// are shown as compact JSON.
func (l HistoryList) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "History %s: %d %s\n", l.Key, l.Count, plural(l.Count, "entry", "entries"))
	for _, e := range l.Entries {
		rec, ok := history.DecodeRecord(e)
		if !ok {
			var buf bytes.Buffer
			if err := json.Compact(&buf, e); err != nil {
				buf.Reset()
				buf.Write(e)
			}
			fmt.Fprintf(w, "  %-36s  %s\n", "(external)", buf.String())
			continue
		}
		status := "ok"
		if rec.Failed() {
			status = "FAILED " + rec.Error
		}
		fmt.Fprintf(w, "  %-36s  %s  %-10s  %s\n",
			rec.ID, rec.RecordedAt.UTC().Format(time.RFC3339), rec.Kind, status)
	}
	return nil
}

// HistoryAdded is the payload printed by history add.
type HistoryAdded struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RenderText prints a one-line confirmation.
func (a HistoryAdded) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Appended entry to %s (%d %s)\n", a.Key, a.Count, plural(a.Count, "entry", "entries"))
	return err
}

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the test history",
		Long: `Inspect or extend the append-only test history.

Every test command appends a record; history list shows them in order.`,
	}

	cmd.AddCommand(newHistoryListCommand(rootOpts))
	cmd.AddCommand(newHistoryAddCommand(rootOpts))

	return cmd
}

func newHistoryListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries in the order they were recorded",
		Long: `List history entries in the order they were recorded.

Examples:
  trafficlab history list
  trafficlab history list --limit 10 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the most recent N entries (0 = all)")

	return cmd
}

func runHistoryList(cmd *cobra.Command, opts *HistoryListOptions) error {
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "--limit must not be negative")
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	st, err := openHistory(commandContext(cmd), cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Load(commandContext(cmd))
	if err != nil {
		return historyError(err, "failed to load history")
	}

	list := HistoryList{Key: cfg.History.Key, Count: len(entries), Entries: entries}
	if opts.Limit > 0 && len(entries) > opts.Limit {
		list.Entries = entries[len(entries)-opts.Limit:]
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(list)
}

func newHistoryAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <json>",
		Short: "Append a JSON entry to the history",
		Long: `Append an arbitrary JSON value to the history. Whitespace is not preserved.

Example:
  trafficlab history add '{"note":"switch rebooted"}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryAdd(cmd, rootOpts, args[0])
		},
	}
}

func runHistoryAdd(cmd *cobra.Command, opts *RootOptions, raw string) error {
	if !json.Valid([]byte(raw)) {
		return NewExitError(ExitCommandError, "entry is not valid JSON")
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openHistory(commandContext(cmd), cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	if err := st.Append(ctx, json.RawMessage(raw)); err != nil {
		return historyError(err, "failed to append entry")
	}
	count, err := st.Count(ctx)
	if err != nil {
		return historyError(err, "failed to count entries")
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(HistoryAdded{Key: cfg.History.Key, Count: count})
}

func historyError(err error, message string) error {
	if errors.Is(err, history.ErrCorrupt) {
		return WrapExitError(ExitCommandError, message+" (stored data is corrupt)", err)
	}
	return WrapExitError(ExitCommandError, message, err)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
