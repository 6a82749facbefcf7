// Command loupe is a terminal client for Parseable-compatible
// log-analytics servers. It wires the caching repository, the local
// profile store and the cobra command tree together.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/loupelog/loupe/internal/config"
	"github.com/loupelog/loupe/parseable"
	"github.com/loupelog/loupe/repository"
	"github.com/loupelog/loupe/secrets"
	"github.com/loupelog/loupe/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries the shared dependencies of every subcommand. The
// repository and store are built lazily on first use so commands like
// `loupe server add` work without a reachable server.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	serverFlag string
	jsonOut    bool

	repo  *repository.Repository
	db    *store.Store
	debug bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "loupe",
		Short:         "Query and inspect log streams on a remote log-analytics server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.db != nil {
				_ = a.db.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.serverFlag, "server", "", "saved server profile to use")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print raw JSON output")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newPingCmd(a),
		newAboutCmd(a),
		newStreamsCmd(a),
		newSchemaCmd(a),
		newStatsCmd(a),
		newInfoCmd(a),
		newRetentionCmd(a),
		newQueryCmd(a),
		newSQLCmd(a),
		newDeleteCmd(a),
		newAlertsCmd(a),
		newUsersCmd(a),
		newServerCmd(a),
		newFavCmd(a),
	)
	return root
}

func (a *app) init() error {
	// A missing .env file is fine; explicit env vars win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := parseLevel(cfg.LogLevel)
	if a.debug {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)

	return nil
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// openStore opens the profiles/favorites database on demand.
func (a *app) openStore() (*store.Store, error) {
	if a.db != nil {
		return a.db, nil
	}
	keeper, err := secrets.NewKeeper(a.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	db, err := store.Open(a.cfg.DBPath(), keeper)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// repository returns the caching repository, configuring its transport
// from (in order) the --server profile, the environment, or the saved
// default profile.
func (a *app) repository() (*repository.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}

	serverCfg, name, err := a.resolveServer()
	if err != nil {
		return nil, err
	}

	client := parseable.NewClient(parseable.WithLogger(a.logger))
	repo := repository.New(client, repository.WithLogger(a.logger))
	repo.Configure(serverCfg)
	if !repo.IsConfigured() {
		return nil, fmt.Errorf("server %q has an invalid configuration", name)
	}

	a.logger.Debug().Str("server", secrets.MaskURL(serverCfg.URL)).Msg("repository configured")
	a.repo = repo
	return repo, nil
}

func (a *app) resolveServer() (parseable.ServerConfig, string, error) {
	if a.serverFlag != "" {
		db, err := a.openStore()
		if err != nil {
			return parseable.ServerConfig{}, "", err
		}
		srv, err := db.GetServer(a.serverFlag)
		if err != nil {
			return parseable.ServerConfig{}, "", fmt.Errorf("load server %q: %w", a.serverFlag, err)
		}
		return profileConfig(srv, a.cfg), srv.Name, nil
	}

	if a.cfg.HasServer() {
		return a.cfg.ServerConfig(), "environment", nil
	}

	db, err := a.openStore()
	if err != nil {
		return parseable.ServerConfig{}, "", err
	}
	srv, err := db.DefaultServer()
	if errors.Is(err, store.ErrNotFound) {
		return parseable.ServerConfig{}, "", errors.New("no server configured: set LOUPE_SERVER_URL or add a profile with `loupe server add`")
	}
	if err != nil {
		return parseable.ServerConfig{}, "", err
	}
	return profileConfig(srv, a.cfg), srv.Name, nil
}

func profileConfig(srv *store.Server, cfg *config.Config) parseable.ServerConfig {
	return parseable.ServerConfig{
		URL:           srv.URL,
		Username:      srv.Username,
		Password:      srv.Password,
		SkipTLSVerify: srv.SkipTLSVerify,
		Timeout:       cfg.HTTPTimeout,
	}
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
