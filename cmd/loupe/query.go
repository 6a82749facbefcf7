package main

import (
	"fmt"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/spf13/cobra"

	"github.com/loupelog/loupe/parseable"
	"github.com/loupelog/loupe/repository"
)

const defaultQueryWindow = 10 * time.Minute

// parseWindow resolves the --from/--to flags. An empty --to means now;
// an empty --from means one window before --to.
func parseWindow(from, to string) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	if to != "" {
		t, err := iso8601.ParseString(to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		end = t
	}

	start := end.Add(-defaultQueryWindow)
	if from != "" {
		t, err := iso8601.ParseString(from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		start = t
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from (%s) must be before --to (%s)", start, end)
	}
	return start, end, nil
}

func printRecords(records []parseable.LogRecord, jsonOut bool) error {
	if jsonOut {
		return printJSON(records)
	}
	for _, rec := range records {
		ts, _ := rec["p_timestamp"].(string)
		msg := rec["message"]
		if msg == nil {
			msg = rec
		}
		fmt.Printf("%s %v\n", ts, msg)
	}
	fmt.Printf("(%d records)\n", len(records))
	return nil
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		where string
		limit int
		from  string
		to    string
	)
	cmd := &cobra.Command{
		Use:   "query <stream>",
		Short: "Search logs in a stream, newest first",
		Long: `Search logs in a stream over a time window.

The --where fragment is passed to the server verbatim as a SQL WHERE
clause; quote values yourself, e.g. --where "level='error'".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			start, end, err := parseWindow(from, to)
			if err != nil {
				return err
			}
			records, err := repo.QueryLogs(cmd.Context(), args[0], start, end, where, limit)
			if err != nil {
				return err
			}
			return printRecords(records, a.jsonOut)
		},
	}
	cmd.Flags().StringVar(&where, "where", "", "SQL filter fragment (verbatim)")
	cmd.Flags().IntVar(&limit, "limit", repository.DefaultQueryLimit, "maximum records to return")
	cmd.Flags().StringVar(&from, "from", "", "window start (ISO-8601)")
	cmd.Flags().StringVar(&to, "to", "", "window end (ISO-8601, default now)")
	return cmd
}

func newSQLCmd(a *app) *cobra.Command {
	var (
		from string
		to   string
	)
	cmd := &cobra.Command{
		Use:   "sql <statement>",
		Short: "Run a raw SQL statement against the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			start, end, err := parseWindow(from, to)
			if err != nil {
				return err
			}
			records, err := repo.QueryRaw(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			return printRecords(records, a.jsonOut)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "window start (ISO-8601)")
	cmd.Flags().StringVar(&to, "to", "", "window end (ISO-8601, default now)")
	return cmd
}
