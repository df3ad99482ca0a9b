package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"text-expander/api"
	"text-expander/config"
	"text-expander/logging"
	"text-expander/session"
	"text-expander/shortcut"
)

var cfgFile string

// errNoMatch makes expand exit non-zero without printing an error.
var errNoMatch = errors.New("no match")

func main() {
	rootCmd := &cobra.Command{
		Use:           "text-expander",
		Short:         "Expand short keyword+command triggers into stored text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default text-expander.yaml in the user config dir or cwd)")
	rootCmd.PersistentFlags().String("seed", "", "YAML rule file loaded at startup")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: "+strings.Join(logging.AllLevels, ", "))
	rootCmd.PersistentFlags().String("log-format", "text", "log format: "+strings.Join(logging.AllFormats, ", "))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(expandCmd())
	rootCmd.AddCommand(listCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errNoMatch) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// setup loads configuration, installs the default logger and builds a
// registry seeded from the configured rule file.
func setup(cmd *cobra.Command) (config.Config, *shortcut.Registry, error) {
	cfg, err := config.Load(cmd.Flags(), cfgFile)
	if err != nil {
		return cfg, nil, err
	}

	h, err := logging.CreateHandlerWithStrings(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return cfg, nil, err
	}
	slog.SetDefault(slog.New(h))

	reg := shortcut.NewRegistry()
	if cfg.Seed != "" {
		n, err := shortcut.LoadFile(reg, cfg.Seed)
		if err != nil {
			return cfg, nil, fmt.Errorf("seed rules: %w", err)
		}
		slog.Debug("seeded shortcuts", slog.String("file", cfg.Seed), slog.Int("count", n))
	}
	return cfg, reg, nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shortcut API and live typing sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, err := setup(cmd)
			if err != nil {
				return err
			}

			sessions := session.NewManager(reg, cfg.Session.Buffer)
			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           api.RegisterRoutes(reg, sessions, staticFiles, slog.Default()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("text-expander listening", slog.String("addr", cfg.Addr), slog.Int("shortcuts", reg.Len()))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
			}

			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Int("session-buffer", 256, "bytes of typed text kept per live session")
	return cmd
}

func expandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand [text]",
		Short: "Print the expansion for text using the seed rules",
		Long:  "Print the expansion of the first rule, in file order, whose keyword+command occurs in text. Exits non-zero when nothing matches.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := setup(cmd)
			if err != nil {
				return err
			}

			expansion, ok := reg.FindExpansion(strings.Join(args, " "))
			if !ok {
				return errNoMatch
			}
			fmt.Fprintln(cmd.OutOrStdout(), expansion)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the seed rules in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := setup(cmd)
			if err != nil {
				return err
			}

			entries := reg.List()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No shortcuts.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %s\n", shortID(e.ID), e.Pattern(), truncate(e.ExpansionText, 50))
			}
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
