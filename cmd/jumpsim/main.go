// Command jumpsim precalculates the trajectories of an aircraft and its
// jumpers for a scenario and stores the result.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jumprun/formationsim/internal/config"
	"github.com/jumprun/formationsim/internal/logging"
	intOtel "github.com/jumprun/formationsim/internal/otel"
)

// BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	AppName string = "jumpsim"
)

var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// componentLog receives the zerolog output of storage and influx
	componentLog io.Writer

	SessionStartTime time.Time = time.Now()
)

func main() {
	flags := pflag.NewFlagSet(AppName, pflag.ExitOnError)
	configDir := flags.StringP("config", "c", ".", "directory holding "+config.FileName)
	scenarioPath := flags.StringP("scenario", "s", "", "scenario file to precalculate")
	flags.String("log-level", "", "override logLevel")
	flags.String("storage", "", "override storage.type (memory, sqlite, postgres)")
	flags.Float64("duration", 0, "override run.duration in seconds")
	flags.Int("parallelism", 0, "override run.parallelism")
	showVersion := flags.BoolP("version", "v", false, "print the version and exit")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("%s %s (%s)\n", AppName, CurrentVersion, BuildDate)
		return
	}
	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "missing --scenario")
		flags.Usage()
		os.Exit(2)
	}

	cfgErr := config.Load(*configDir)
	bindFlags(flags)

	logFile := setupLogging(trimExt(filepath.Base(*scenarioPath)))
	defer logFile.Close()
	if cfgErr != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", cfgErr)
	} else {
		Logger.Info("Loaded config", "dir", *configDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, *scenarioPath, os.Stdout, Logger)
	shutdown()
	if err != nil {
		Logger.Error("Run failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bindFlags lets flags that were set on the command line win over the
// config file.
func bindFlags(flags *pflag.FlagSet) {
	keys := map[string]string{
		"log-level":   "logLevel",
		"storage":     "storage.type",
		"duration":    "run.duration",
		"parallelism": "run.parallelism",
	}
	for name, key := range keys {
		if f := flags.Lookup(name); f != nil && f.Changed {
			_ = viper.BindPFlag(key, f)
		}
	}
}

// setupLogging opens the rotating log file and wires slog with optional
// Graylog and OTel outputs.
func setupLogging(scenario string) io.WriteCloser {
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logs dir: %v\n", err)
	}
	logFile := &lumberjack.Logger{
		Filename:   logging.LogFilePath(logsDir, AppName, scenario, SessionStartTime),
		MaxSize:    64, // MB
		MaxBackups: 5,
		Compress:   true,
	}

	componentLog = logFile
	SlogManager = logging.NewSlogManager()

	if viper.GetBool("graylog.enabled") {
		w, err := logging.DialGraylog(viper.GetString("graylog.address"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Graylog disabled: %v\n", err)
		} else {
			SlogManager.SetGraylog(w)
		}
	}

	otelCfg := config.GetOTelConfig()
	var otelErr error
	if otelCfg.Enabled {
		cfg := intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    logFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		}
		if otelCfg.Metrics {
			cfg.MetricWriter = logFile
		}
		OTelProvider, otelErr = intOtel.New(cfg)
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(logFile, viper.GetString("logLevel"), otelLogProvider)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", logFile.Filename, "version", CurrentVersion)
	if otelErr != nil {
		Logger.Error("Failed to initialize OTel provider", "error", otelErr)
	}
	return logFile
}

// shutdown flushes logs and metrics before exit.
func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shut down OTel: %v\n", err)
		}
	}
}

// influxBackupPath is where influx points go when the server is down.
func influxBackupPath() string {
	return filepath.Join(viper.GetString("logsDir"),
		fmt.Sprintf("%s_influx_%s.log.gz", AppName, SessionStartTime.Format("20060102_150405")))
}
