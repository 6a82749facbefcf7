package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check server liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			msg, err := repo.Ping(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
}

func newAboutCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show server version and deployment info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			about, err := repo.About(cmd.Context(), force)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(about)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Version:\t%s\n", about.Version)
			fmt.Fprintf(w, "Commit:\t%s\n", about.Commit)
			fmt.Fprintf(w, "Mode:\t%s\n", about.Mode)
			fmt.Fprintf(w, "Store:\t%s\n", about.Store)
			fmt.Fprintf(w, "Deployment:\t%s\n", about.DeploymentID)
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache")
	return cmd
}

func newStreamsCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "streams",
		Short: "List log streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			streams, err := repo.Streams(cmd.Context(), force)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(streams)
			}
			for _, s := range streams {
				fmt.Println(s.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache")
	return cmd
}

func newSchemaCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "schema <stream>",
		Short: "Show the column schema of a stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			schema, err := repo.Schema(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(schema)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tTYPE")
			for _, f := range schema.Fields {
				fmt.Fprintf(w, "%s\t%s\n", f.Name, f.DataType)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "stats <stream>",
		Short: "Show ingestion and storage statistics of a stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			stats, err := repo.Stats(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(stats)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Events:\t%d\n", stats.Ingestion.Count)
			fmt.Fprintf(w, "Ingested:\t%s\n", stats.Ingestion.Size)
			fmt.Fprintf(w, "Stored:\t%s\n", stats.Storage.Size)
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache")
	return cmd
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <stream>",
		Short: "Show stream metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			info, err := repo.StreamInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}
}

func newRetentionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "retention <stream>",
		Short: "Show the retention rules of a stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			rules, err := repo.Retention(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(rules)
			}
			if len(rules) == 0 {
				fmt.Println("no retention rules configured")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACTION\tDURATION\tDESCRIPTION")
			for _, r := range rules {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Action, r.Duration, r.Description)
			}
			return w.Flush()
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <stream>",
		Short: "Delete a stream from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete stream %q without --yes", args[0])
			}
			repo, err := a.repository()
			if err != nil {
				return err
			}
			msg, err := repo.DeleteStream(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func newAlertsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "List configured alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			alerts, err := repo.Alerts(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(alerts)
			}
			if len(alerts) == 0 {
				fmt.Println("no alerts configured")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTREAM\tSEVERITY\tSTATE")
			for _, al := range alerts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", al.ID, al.Title, al.Stream, al.Severity, al.State)
			}
			return w.Flush()
		},
	}
}

func newUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List server user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			users, err := repo.Users(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(users)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMETHOD\tROLES")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Method, strings.Join(u.Roles, ","))
			}
			return w.Flush()
		},
	}
}
