package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"horizon-scanner/analytics"
	"horizon-scanner/config"
	"horizon-scanner/handlers"
	"horizon-scanner/models"
	"horizon-scanner/orchestrator"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "horizon",
		Short: "Weak signal horizon scanner",
		Long: `horizon scans a domain for weak signals of change, classified by PESTEL
driver and scored for impact, uncertainty and probability.

Signals come from a Perplexity-compatible chat completions API when an API key
is configured, and from the built-in simulation pool otherwise. Every scan is
archived and can be replayed from history.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "horizon.yaml", "path to the configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newScanCmd(opts),
		newHistoryCmd(opts),
		newSettingsCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// withApp loads configuration, wires the components and runs fn.
func withApp(opts *rootOptions, fn func(a *app) error) error {
	cfg, err := loadConfig(opts.configPath, opts.verbose)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				gin.SetMode(a.cfg.Server.Mode)

				h := handlers.New(a.orch, a.archive, a.settings, a.client, a.logger)
				routerOpts := handlers.RouterOptions{MetricsPath: a.cfg.Metrics.Path}
				if a.cfg.Tracing.Enabled {
					routerOpts.ServiceName = a.cfg.Tracing.ServiceName
				}
				if a.cfg.Metrics.Enabled {
					routerOpts.Gatherer = a.registry
				}
				return serve(cmd.Context(), a, handlers.NewRouter(h, routerOpts))
			})
		},
	}
}

func serve(ctx context.Context, a *app, router *gin.Engine) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := newHTTPServer(a.cfg.Server.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting horizon scanner", zap.String("addr", a.cfg.Server.Addr), zap.String("mode", string(a.orch.Mode())))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type scanOptions struct {
	params models.SearchParams
	json   bool
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	so := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan and archive it",
		Example: `  horizon scan --domain "Renewable Energy" --geography Europe
  horizon scan --domain Fintech --timeline 2026-2030 --document brief.pdf --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				res, err := a.orch.Search(cmd.Context(), so.params)
				if err != nil {
					if errors.Is(err, orchestrator.ErrEmptyDomain) {
						return err
					}
					return fmt.Errorf("%s: %w", res.Notice, err)
				}
				if so.json {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				printResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&so.params.Domain, "domain", "", "industry or area to scan (required)")
	f.StringVar(&so.params.Geography, "geography", "", "geographic focus, empty for global")
	f.StringVar(&so.params.Timeline, "timeline", "", "horizon such as 2025-2031, defaults to the next six years")
	f.StringVar(&so.params.DetailedContext, "context", "", "additional analyst context")
	f.StringSliceVar(&so.params.Documents, "document", nil, "context document name, repeatable")
	f.BoolVar(&so.json, "json", false, "print the full result as JSON")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func printResult(w io.Writer, res orchestrator.Result) {
	if res.Notice != "" {
		fmt.Fprintf(w, "! %s\n", res.Notice)
	}
	fmt.Fprintf(w, "%s | %s | %s (%s mode)\n",
		res.Params.Domain, res.Params.DisplayGeography(), res.Params.Timeline, res.Mode)
	if res.Scan != nil {
		fmt.Fprintf(w, "Archived as %s: %s\n", res.Scan.ID, res.Scan.Title)
	}
	printSignals(w, res.Signals)
}

func printSignals(w io.Writer, signals []models.Signal) {
	fmt.Fprintln(w)
	for i, s := range signals {
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, s.DriverCategory, s.Title)
		fmt.Fprintf(w, "    impact %d  uncertainty %d  probability %d  source %s\n",
			s.Impact, s.Uncertainty, s.Probability, s.Source)
	}

	sum := analytics.Summarize(signals)
	fmt.Fprintln(w)
	for _, c := range sum.Categories {
		fmt.Fprintf(w, "%-14s %2d  avg impact %.1f\n", c.Category, c.Count, c.AvgImpact)
	}
	fmt.Fprintf(w, "Critical (impact > %d and uncertainty > %d): %d\n",
		analytics.CriticalThreshold, analytics.CriticalThreshold, len(sum.Critical))
	for _, p := range sum.Critical {
		fmt.Fprintf(w, "  - %s (%d/%d)\n", p.Title, p.Impact, p.Uncertainty)
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, replay, rename or delete archived scans",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archived scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				scans := a.archive.List(cmd.Context())
				out := cmd.OutOrStdout()
				if len(scans) == 0 {
					fmt.Fprintln(out, "No saved scans")
					return nil
				}
				for _, s := range scans {
					fmt.Fprintf(out, "%s  %s  %s  (%d signals)\n",
						s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Title, len(s.Signals))
				}
				return nil
			})
		},
	})

	var asJSON bool
	show := &cobra.Command{
		Use:   "show [scan-id]",
		Short: "Replay an archived scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				scan := a.orch.Replay(cmd.Context(), args[0])
				if scan == nil {
					return fmt.Errorf("scan %s not found", args[0])
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), scan)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", scan.Title)
				printSignals(cmd.OutOrStdout(), scan.Signals)
				return nil
			})
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print the scan as JSON")

	cmd.AddCommand(show, &cobra.Command{
		Use:   "rename [scan-id] [title]",
		Short: "Rename an archived scan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if !a.archive.Rename(cmd.Context(), args[0], args[1]) {
					return fmt.Errorf("scan %s was not renamed", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", args[0], args[1])
				return nil
			})
		},
	}, &cobra.Command{
		Use:   "delete [scan-id]",
		Short: "Delete an archived scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if !a.archive.Delete(cmd.Context(), args[0]) {
					return fmt.Errorf("scan %s was not deleted", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or reset analyst settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings with the API key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				s := a.settings.Get()
				s.APIKey = handlers.MaskKey(s.APIKey)
				return writeJSON(cmd.OutOrStdout(), s)
			})
		},
	}, &cobra.Command{
		Use:   "reset",
		Short: "Restore the default prompts, keeping the API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if _, err := a.settings.ResetPrompts(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Prompts restored to defaults")
				return nil
			})
		},
	})
	return cmd
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to --config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", opts.configPath)
			}
			if err := config.DefaultConfig().Save(opts.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
