package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	guardian "github.com/tveit-dev/guardian/internal"
	"github.com/tveit-dev/guardian/src/config"
	"github.com/tveit-dev/guardian/src/utility"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
	logger  *zap.SugaredLogger
	cfg     *config.Config
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v, using defaults\n", err)
		cfg = config.Default()
	}

	logger, err = utility.NewLogger(string(cfg.LogMode), string(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	rootCmd := &cobra.Command{
		Use:   "guardian",
		Short: "Guardian - Host Mode Controller & Health Monitor",
		Long: `Guardian toggles a single host between a Desktop profile (graphical
session plus always-on background services) and a Server profile
(background services only), and runs a periodic health monitor with
rule-based diagnostics and an optional local-LLM advisory verdict.`,
		Version: version,
	}

	rootCmd.AddCommand(createModeCmd())
	rootCmd.AddCommand(createHealthCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("Error: %v", err)
		os.Exit(1)
	}
}

// requireRoot fails fast before any mutating operation.
func requireRoot() error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("this operation changes service state and must run as root (try sudo)")
	}
	return nil
}

func createModeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Switch the host between desktop and server profiles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "desktop",
		Short: "Switch to desktop mode (graphical session + background services)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRoot(); err != nil {
				return err
			}
			g := guardian.NewGuardian(logger, cfg, false)
			defer g.Close()
			result, err := g.SwitchToDesktop(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "server",
		Short: "Switch to server mode (background services only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRoot(); err != nil {
				return err
			}
			g := guardian.NewGuardian(logger, cfg, false)
			defer g.Close()
			result, err := g.SwitchToServer(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current mode and per-service state",
		Run: func(cmd *cobra.Command, args []string) {
			g := guardian.NewGuardian(logger, cfg, false)
			defer g.Close()
			fmt.Println(g.ModeStatus(cmd.Context()))
		},
	})

	return cmd
}

func createHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Health monitoring commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Run one health check with a human-readable verdict",
		Run: func(cmd *cobra.Command, args []string) {
			// Degraded sub-results are reported in the body, not via exit code.
			g := guardian.NewGuardian(logger, cfg, true)
			defer g.Close()
			fmt.Println(g.HealthCheck(cmd.Context()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "json",
		Short: "Emit one metrics snapshot as JSON",
		Run: func(cmd *cobra.Command, args []string) {
			g := guardian.NewGuardian(logger, cfg, false)
			defer g.Close()
			fmt.Println(g.HealthJSON(cmd.Context()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Run the continuous monitoring loop until terminated",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g := guardian.NewGuardian(logger, cfg, true)
			defer g.Close()
			logger.Infof("Guardian v%s watching every %s", version, g.WatchInterval())
			g.Watch(ctx)
		},
	})

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent recorded health checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			g := guardian.NewGuardian(logger, cfg, true)
			defer g.Close()
			output, err := g.HealthHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Println(output)
			return nil
		},
	}
	historyCmd.Flags().Int("limit", 20, "Maximum number of checks to list")
	cmd.AddCommand(historyCmd)

	return cmd
}
