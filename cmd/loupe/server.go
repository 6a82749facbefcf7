package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loupelog/loupe/secrets"
	"github.com/loupelog/loupe/store"
)

func newServerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage saved server profiles",
	}
	cmd.AddCommand(
		newServerAddCmd(a),
		newServerListCmd(a),
		newServerRemoveCmd(a),
		newServerUseCmd(a),
	)
	return cmd
}

func newServerAddCmd(a *app) *cobra.Command {
	var (
		url      string
		username string
		password string
		skipTLS  bool
		def      bool
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a server profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			srv := store.Server{
				Name:          args[0],
				URL:           url,
				Username:      username,
				Password:      password,
				SkipTLSVerify: skipTLS,
			}
			if err := db.SaveServer(srv); err != nil {
				return err
			}
			if def {
				if err := db.SetDefault(args[0]); err != nil {
					return err
				}
			}
			fmt.Printf("saved server %q (%s)\n", args[0], secrets.MaskURL(url))
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "server base URL")
	cmd.Flags().StringVar(&username, "username", "", "basic-auth username")
	cmd.Flags().StringVar(&password, "password", "", "basic-auth password")
	cmd.Flags().BoolVar(&skipTLS, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().BoolVar(&def, "default", false, "mark this profile as the default")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newServerListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved server profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			servers, err := db.ListServers()
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(servers)
			}
			if len(servers) == 0 {
				fmt.Println("no saved servers")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tURL\tUSER\tDEFAULT")
			for _, s := range servers {
				def := ""
				if s.Default {
					def = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.URL, s.Username, def)
			}
			return w.Flush()
		},
	}
}

func newServerRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a saved server profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			if err := db.DeleteServer(args[0]); err != nil {
				return err
			}
			fmt.Printf("removed server %q\n", args[0])
			return nil
		},
	}
}

func newServerUseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Mark a saved profile as the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			if err := db.SetDefault(args[0]); err != nil {
				return err
			}
			fmt.Printf("default server is now %q\n", args[0])
			return nil
		},
	}
}

func newFavCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorite streams",
	}

	serverName := func() (string, error) {
		if a.serverFlag != "" {
			return a.serverFlag, nil
		}
		db, err := a.openStore()
		if err != nil {
			return "", err
		}
		srv, err := db.DefaultServer()
		if err != nil {
			return "", fmt.Errorf("no --server given and no default profile set")
		}
		return srv.Name, nil
	}

	add := &cobra.Command{
		Use:   "add <stream>",
		Short: "Add a favorite stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := serverName()
			if err != nil {
				return err
			}
			db, err := a.openStore()
			if err != nil {
				return err
			}
			return db.AddFavorite(name, args[0])
		},
	}
	rm := &cobra.Command{
		Use:   "rm <stream>",
		Short: "Remove a favorite stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := serverName()
			if err != nil {
				return err
			}
			db, err := a.openStore()
			if err != nil {
				return err
			}
			return db.RemoveFavorite(name, args[0])
		},
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List favorite streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := serverName()
			if err != nil {
				return err
			}
			db, err := a.openStore()
			if err != nil {
				return err
			}
			favs, err := db.ListFavorites(name)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(favs)
			}
			for _, f := range favs {
				fmt.Println(f)
			}
			return nil
		},
	}

	cmd.AddCommand(add, rm, list)
	return cmd
}
