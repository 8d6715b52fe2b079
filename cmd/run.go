package cmd

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"faucetd/config"
	"faucetd/db"
	"faucetd/exception"
	"faucetd/faucet"
	"faucetd/jsonrpc"
	"faucetd/logx"
	"faucetd/monitoring"
	"faucetd/snapshot"
	"faucetd/store"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the faucet node",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNode()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func openFaucetStore(cfg *config.FaucetConfig) (store.FaucetStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}
	provider, err := db.NewLevelDBProvider(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return store.NewGenericFaucetStore(provider)
}

func deployDefaults(cfg *config.FaucetConfig) faucet.DeployDefaults {
	return faucet.DeployDefaults{
		Enabled:   cfg.Faucet.Enabled,
		Amount:    cfg.Faucet.Amount,
		ClaimCode: cfg.Faucet.ClaimCode,
	}
}

func runNode() error {
	cfg, err := config.LoadFaucetConfig(configPath)
	if err != nil {
		return err
	}

	monitoring.InitMetrics()

	st, err := openFaucetStore(cfg)
	if err != nil {
		return err
	}

	svc := faucet.NewService(st)
	mgr := snapshot.NewManager(svc, st)
	if err := mgr.Resume(cfg.Faucet.SeedAdmins, deployDefaults(cfg)); err != nil {
		st.MustClose()
		return err
	}

	rpcServer := jsonrpc.NewServer(cfg.RPC.ListenAddr, svc)
	if corsCfg, ok := jsonrpc.CORSFromEnv(); ok {
		rpcServer.SetCORSConfig(corsCfg)
	} else if len(cfg.RPC.AllowedOrigins) > 0 {
		rpcServer.SetCORSConfig(jsonrpc.CORSConfig{AllowedOrigins: cfg.RPC.AllowedOrigins})
	}
	rpcServer.Start()

	metricsMux := http.NewServeMux()
	monitoring.RegisterMetrics(metricsMux)
	exception.SafeGo("metrics-server", func() {
		if err := http.ListenAndServe(cfg.Metrics.ListenAddr, metricsMux); err != nil {
			logx.Error("METRICS", "Metrics server stopped: ", err)
		}
	})

	stopPeriodic := make(chan struct{})
	if cfg.SnapshotIntervalSeconds > 0 {
		interval := time.Duration(cfg.SnapshotIntervalSeconds) * time.Second
		exception.SafeGo("periodic-snapshot", func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := mgr.Suspend(); err != nil {
						logx.Error("SNAPSHOT", "Periodic snapshot failed: ", err)
					}
				case <-stopPeriodic:
					return
				}
			}
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// A suspend failure must not tear the process down: a stuck but
	// consistent faucet beats a lost snapshot. Stay alive and let the
	// operator retry with another signal.
	for sig := range sigCh {
		logx.Info("NODE", "Received signal ", sig, ", persisting state before shutdown")
		if err := mgr.Suspend(); err != nil {
			logx.Error("NODE", "Refusing to shut down, snapshot failed: ", err)
			continue
		}
		break
	}

	close(stopPeriodic)
	st.MustClose()
	logx.Info("NODE", "Shutdown complete")
	return nil
}
