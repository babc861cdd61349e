// devctl drives ISP access hardware from a YAML device inventory.
//
// Usage:
//
//	devctl types                                   List device types
//	devctl templates <type>                        List config templates of a type
//	devctl validate <type> <snmp_extra>            Check a locator
//	devctl run <id> <capability> <op> [-a k=v]     Run one operation
//	devctl poll                                    Identify every switch and OLT
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	devctl "github.com/nanoncore/nano-devctl"
	"github.com/nanoncore/nano-devctl/config"
	"github.com/nanoncore/nano-devctl/drivers"
	"github.com/nanoncore/nano-devctl/lock"
	"github.com/nanoncore/nano-devctl/logging"
	"github.com/nanoncore/nano-devctl/orchestrator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	configPath    string
	inventoryPath string
	metricsFile   string
	verbose       bool

	cfg *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "devctl",
	Short:             "Control switches, OLTs and ONUs over SNMP and CLI",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		return logging.Configure(level, cfg.Log.Format)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&inventoryPath, "inventory", "i", "inventory.yaml", "device inventory (YAML)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write metrics in text format to this file when metrics are enabled")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newTypesCmd(),
		newTemplatesCmd(),
		newValidateCmd(),
		newRunCmd(),
		newPollCmd(),
	)
}

// logNotifier delivers lifecycle alerts to the log.
type logNotifier struct{}

func (logNotifier) SendNotification(_ context.Context, recipients []string, text string) error {
	logging.Logger.WithField("recipients", recipients).Warn(text)
	return nil
}

// app is the wiring shared by the commands that reach devices.
type app struct {
	inv      *inventory
	store    *orchestrator.MemoryStore
	orch     *orchestrator.Orchestrator
	registry *prometheus.Registry
	closers  []func() error
}

func newApp() (*app, error) {
	inv, err := loadInventory(inventoryPath)
	if err != nil {
		return nil, err
	}
	a := &app{inv: inv, store: orchestrator.NewMemoryStore(inv.Devices...)}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(logging.Entry()),
		orchestrator.WithChunkSize(cfg.Scan.ChunkSize),
	}
	if len(cfg.Notify) > 0 {
		opts = append(opts, orchestrator.WithNotifier(logNotifier{}, cfg.Notify...))
	}
	if cfg.Lock.Backend == config.LockRedis {
		client := redis.NewClient(&redis.Options{Addr: cfg.Lock.RedisAddr, DB: cfg.Lock.RedisDB})
		a.closers = append(a.closers, client.Close)
		opts = append(opts, orchestrator.WithLocker(lock.NewRedis(client, cfg.Lock.Prefix, cfg.Lock.TTL)))
	}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		m, err := orchestrator.NewMetrics(a.registry)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithMetrics(m))
	}

	t := drivers.NewNetTransport(cfg.SNMPConfig(), cfg.CLIConfig(), logging.Entry())
	a.orch = devctl.New(a.store, t, opts...)
	return a, nil
}

// close flushes metrics and releases clients.
func (a *app) close() error {
	if a.registry != nil && metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, a.registry); err != nil {
			return err
		}
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}
