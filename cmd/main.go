package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"launch_control/internal/clock"
	"launch_control/internal/config"
	"launch_control/internal/console"
	"launch_control/internal/logger"
	"launch_control/internal/protocol"
	"launch_control/internal/repository"
	"launch_control/internal/repository/db"
	"launch_control/internal/service"
	"launch_control/internal/transport"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "launch-control",
	Short: "Operator console for a serial igniter board",
	Run:   runLaunch,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the igniter link and start the launch console",
	Run:   runLaunch,
}

// flagKeys maps persistent flags to their config keys.
var flagKeys = map[string]string{
	"port":      config.KeySerialPort,
	"baud":      config.KeySerialBaud,
	"dry-run":   config.KeySerialDryRun,
	"duration":  config.KeyDurationSeconds,
	"pulse":     config.KeyPulseHundredths,
	"log-level": config.KeyLogLevel,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "config file (default configs/config.yml)")
	f.String("port", transport.DefaultPort, "serial port of the igniter board")
	f.Int("baud", transport.DefaultBaud, "serial line speed")
	f.Bool("dry-run", false, "log fire frames instead of writing them")
	f.Int("duration", 10, "countdown length in seconds")
	f.Int("pulse", 100, "igniter pulse width in hundredths of a unit, sent as whole tenths (0-25599)")
	f.String("log-level", logger.InfoLevel, "debug, info, warn or error")

	for name, key := range flagKeys {
		if err := viper.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(runCmd, portsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runLaunch(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(viper.GetViper(), configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level)

	seqCfg, err := cfg.Sequence()
	if err != nil {
		log.Fatalw("invalid countdown configuration", "err", err)
	}

	// the sequencer never exists without a working igniter link
	link := openTransport(cfg, log)
	defer func() {
		if cerr := link.Close(); cerr != nil {
			log.Errorw("failed to close igniter link", "err", cerr)
		}
	}()

	conn, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init session journal", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close session journal", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	con := console.New(os.Stdin, os.Stdout,
		console.WithDryRun(cfg.Serial.DryRun),
		console.WithLogger(log),
	)
	services := service.NewService(repos, service.LaunchDeps{
		Config:    seqCfg,
		Clock:     clock.New(),
		Firer:     protocol.NewEncoder(link),
		Presenter: con,
	}, cfg.Journal.Queue, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		services.Journal.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		services.Launch.Run(ctx)
	}()

	log.Infow("launch console ready",
		"port", cfg.Serial.Port,
		"dry_run", cfg.Serial.DryRun,
		"duration_s", cfg.Countdown.DurationS,
		"pulse_hundredths", cfg.Igniter.PulseHundredths,
	)
	if err := con.Run(ctx, services.Launch, services.Journal); err != nil {
		log.Errorw("console input failed", "err", err)
	}

	log.Infow("shutting down...")
	stop()
	wg.Wait()
}

// openTransport opens the igniter link or exits.
func openTransport(cfg *config.Config, log *logger.Logger) transport.Transport {
	var link transport.Transport
	if cfg.Serial.DryRun {
		link = transport.NewDryRun(log)
	} else {
		link = transport.NewSerial(cfg.SerialConfig(), log)
	}
	if err := link.Open(); err != nil {
		log.Fatalw("igniter link unavailable", "err", err)
	}
	return link
}

// openDB opens the in-memory session journal. Nothing outlives the process.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dsn := db.MemoryDSN("launch_journal")
	log.Debugw("opening session journal", "dsn", dsn)
	return db.InitDB(dsn)
}
