// cmd/root.go
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shadowsim/controller/netsim"
	"github.com/shadowsim/controller/netsim/config"
	"github.com/shadowsim/controller/netsim/controller"
	"github.com/shadowsim/controller/netsim/hostreg"
	"github.com/shadowsim/controller/netsim/manager/inproc"
	"github.com/shadowsim/controller/netsim/persist"
	"github.com/shadowsim/controller/netsim/statusapi"
	"github.com/shadowsim/controller/netsim/statusapi/history"
)

var (
	configPath  string
	logLevel    string
	statusAddr  string
	pluginDirs  []string
	postgresDSN string
	historyDB   string
)

var rootCmd = &cobra.Command{
	Use:   "netsim",
	Short: "Discrete-event network topology simulation controller",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation from a topology/host configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		opts, err := config.Load(configPath)
		if err != nil {
			logrus.Fatalf("loading config: %v", err)
		}
		if opts.LogLevel != "" {
			if lvl, err := logrus.ParseLevel(opts.LogLevel); err == nil {
				logrus.SetLevel(lvl)
			}
		}

		runID := uuid.NewString()
		logrus.Infof("starting run %s: graph=%s seed=%d stop_time=%d", runID, opts.GraphPath, opts.Seed, opts.StopTime)

		ctrlOpts := controller.Options{
			ManagerFactory: inproc.New,
			Resolver:       hostreg.FileResolver{SearchDirs: pluginDirs},
		}

		var historyStore *history.Store
		if historyDB != "" {
			store, err := history.Open(historyDB)
			if err != nil {
				logrus.Warnf("history: could not open %s: %v", historyDB, err)
			} else {
				defer store.Close()
				historyStore = store
			}
		}

		var srv *statusapi.Server
		if statusAddr != "" {
			srv = statusapi.New()
			go func() {
				if err := srv.ListenAndServe(statusAddr); err != nil {
					logrus.Warnf("status API stopped: %v", err)
				}
			}()
		}

		if historyStore != nil || srv != nil {
			var roundCount int
			ctrlOpts.OnRoundFinished = func(start, end, minNext netsim.SimulationTime) {
				roundCount++
				if historyStore != nil {
					if err := historyStore.RecordRound(runID, start, end, minNext); err != nil {
						logrus.Warnf("history: could not record round: %v", err)
					}
				}
				if srv != nil {
					srv.Update(statusapi.Snapshot{
						WindowStart: start,
						WindowEnd:   end,
						RoundCount:  roundCount,
					})
				}
			}
		}

		ctrl := controller.New(opts, ctrlOpts)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			logrus.Warn("received interrupt, requesting graceful stop")
			ctrl.RequestStop()
		}()

		started := time.Now()
		exitCode := ctrl.Run()
		logrus.Infof("run %s finished in %s with exit code %d", runID, time.Since(started), exitCode)

		if srv != nil {
			start, end := ctrl.CurrentWindow()
			srv.Update(statusapi.Snapshot{
				WindowStart: start,
				WindowEnd:   end,
				Finished:    true,
				ExitCode:    exitCode,
			})
		}

		if postgresDSN != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			ledger, err := persist.Open(ctx, postgresDSN)
			if err != nil {
				logrus.Warnf("persist: could not open ledger: %v", err)
			} else {
				defer ledger.Close()
				rec := persist.RunRecord{
					RunID:      runID,
					GraphPath:  opts.GraphPath,
					Seed:       opts.Seed,
					StopTime:   uint64(opts.StopTime),
					ExitCode:   exitCode,
					HostCount:  len(opts.Hosts),
					StartedAt:  started.Format(time.RFC3339),
					FinishedAt: time.Now().Format(time.RFC3339),
				}
				if err := ledger.RecordRun(ctx, rec); err != nil {
					logrus.Warnf("persist: could not record run: %v", err)
				}
			}
		}

		os.Exit(exitCode)
	},
}

// Execute runs the root command and exits the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "path to the topology/host YAML configuration")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "log level (trace, debug, info, warn, error)")
	runCmd.Flags().StringVar(&statusAddr, "status-addr", "", "address to serve the read-only status API on (disabled if empty)")
	runCmd.Flags().StringSliceVar(&pluginDirs, "plugin-dir", nil, "directories searched for process plugin executables")
	runCmd.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "Postgres DSN for the optional run ledger (disabled if empty)")
	runCmd.Flags().StringVar(&historyDB, "history-db", "", "SQLite file for the optional per-round history ledger (disabled if empty)")
	_ = runCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(runCmd)
}
