package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/config"
	"github.com/Daniel-Forbes-HWU/speed-of-sound/monitoring"
	"github.com/Daniel-Forbes-HWU/speed-of-sound/notify"
	"github.com/Daniel-Forbes-HWU/speed-of-sound/serial"
	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	listPorts := flag.Bool("list-ports", false, "List available serial ports and exit")
	discover := flag.Bool("discover", false, "Print the discovered controller port and exit")
	port := flag.String("port", "", "Serial port of the controller (default: discover by USB vendor ID)")
	reps := flag.Int("reps", 0, "Repetitions per measurement batch (1-50)")
	distance := flag.String("distance", "", "Distance label in cm")
	temperature := flag.String("temperature", "", "Temperature label in degrees C")
	output := flag.String("output", "", "CSV file to export the dataset to")
	interval := flag.Duration("interval", 0, "Measure repeatedly at this interval until interrupted")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Display version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "speed-of-sound - acoustic time-of-flight measurement station\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -reps 10 -distance 100 -temperature 21 -output run1.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -interval 30s -output overnight.csv\n", os.Args[0])
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("speed-of-sound version %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	if *listPorts {
		ports, err := serial.DetailedPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Available serial ports:")
		if len(ports) == 0 {
			fmt.Println("  (none found)")
		}
		for _, p := range ports {
			if p.IsUSB {
				fmt.Printf("  %s (USB VID:%s PID:%s %s)\n", p.Name, p.VID, p.PID, p.Product)
			} else {
				fmt.Printf("  %s\n", p.Name)
			}
		}
		os.Exit(0)
	}

	if *discover {
		name, err := serial.Discover()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Println(name)
		os.Exit(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Flags win over the config file.
	if *port != "" {
		cfg.Serial.Port = *port
	}
	if *reps != 0 {
		cfg.Measure.Repetitions = *reps
	}
	if *distance != "" {
		cfg.Measure.Distance = *distance
	}
	if *temperature != "" {
		cfg.Measure.Temperature = *temperature
	}
	if *output != "" {
		cfg.Export.Path = *output
	}
	if *interval > 0 {
		cfg.Measure.IntervalSec = interval.Seconds()
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation failed:\n  %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg, *debug)
	slog.SetDefault(logger)

	portName := cfg.Serial.Port
	if portName == "" {
		name, err := serial.Discover()
		if err != nil {
			fail(err)
		}
		portName = name
	}
	cfg.Serial.Port = portName

	sess, err := session.Connect(portName, logger)
	if err != nil {
		fail(err)
	}
	defer sess.Close()

	if cfg.Measure.GetInterval() > 0 {
		watch(cfg, sess, logger)
		return
	}

	times, err := sess.Measure(cfg.Measure.Repetitions, cfg.Measure.Distance, cfg.Measure.Temperature)
	if err != nil {
		fail(err)
	}

	printSummary(times, cfg.Measure.Distance)

	if err := sess.ExportFile(cfg.Export.Path); err != nil {
		fail(err)
	}
	fmt.Printf("Exported %d samples to %s\n", sess.Len(), cfg.Export.Path)
}

// watch measures on a fixed interval until interrupted, exporting the
// accumulated dataset on shutdown.
func watch(cfg *config.Config, sess *session.Session, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	slackNotifier := notify.NewSlackNotifier(&cfg.Slack, cfg.App.InstanceID, logger)

	var monitorServer *monitoring.Server
	if cfg.Monitoring.Enabled {
		monitorServer = monitoring.NewServer(&cfg.Monitoring, cfg.App.InstanceID, version, sess, logger)
		if err := monitorServer.Start(); err != nil {
			logger.Error("failed to start monitoring server", "error", err)
		}
	}

	if err := slackNotifier.NotifyStartup(sess.PortName(), cfg.Measure.Repetitions); err != nil {
		logger.Warn("failed to send startup notification", "error", err)
	}

	startTime := time.Now()
	logger.Info("watch mode running",
		"interval", cfg.Measure.GetInterval(),
		"repetitions", cfg.Measure.Repetitions,
	)

	ticker := time.NewTicker(cfg.Measure.GetInterval())
	defer ticker.Stop()

	for done := false; !done; {
		times, err := sess.Measure(cfg.Measure.Repetitions, cfg.Measure.Distance, cfg.Measure.Temperature)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Measurement failed: %v\n  %s\n", err, adviceFor(err))
			if nerr := slackNotifier.NotifyError(cfg.Serial.Port, err); nerr != nil {
				logger.Warn("failed to send error notification", "error", nerr)
			}
			if !sess.Connected() {
				// One reconnect attempt per failed batch; no backoff.
				if rerr := sess.Reconnect(cfg.Serial.Port); rerr != nil {
					logger.Warn("reconnect failed", "error", rerr)
				}
			}
		} else {
			printSummary(times, cfg.Measure.Distance)
		}

		select {
		case <-ctx.Done():
			done = true
		case <-ticker.C:
		}
	}

	logger.Info("watch mode stopping")

	if monitorServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := monitorServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping monitoring server", "error", err)
		}
		shutdownCancel()
	}

	if err := sess.ExportFile(cfg.Export.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
	} else {
		fmt.Printf("Exported %d samples to %s\n", sess.Len(), cfg.Export.Path)
	}

	if err := slackNotifier.NotifyShutdown(sess.Stats().SamplesTaken, time.Since(startTime)); err != nil {
		logger.Warn("failed to send shutdown notification", "error", err)
	}
}

func printSummary(times []int64, distance string) {
	sum := session.Summarize(times)
	fmt.Printf("Collected %d samples: mean %.1f us, min %d us, max %d us, stddev %.1f us\n",
		sum.Count, sum.MeanUS, sum.MinUS, sum.MaxUS, sum.StdDev)

	if cm, err := strconv.ParseFloat(distance, 64); err == nil && cm > 0 {
		fmt.Printf("Estimated speed of sound: %.1f m/s\n", session.SpeedOfSound(cm, sum.MeanUS))
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n  %s\n", err, adviceFor(err))
	os.Exit(1)
}

// adviceFor maps each failure kind to the next action the operator
// should take.
func adviceFor(err error) string {
	switch {
	case errors.Is(err, serial.ErrPortBusy):
		return "Close the application holding the port and try again."
	case errors.Is(err, serial.ErrConnection):
		return "Check the controller's cabling and power, then try again."
	case errors.Is(err, serial.ErrCommunication):
		return "The controller may have been disconnected; reconnect and try again."
	case errors.Is(err, session.ErrTimeout):
		return "Reset the controller hardware and try again."
	case errors.Is(err, session.ErrProtocol):
		return "The controller firmware sent unexpected data; reset the hardware."
	case errors.Is(err, session.ErrValidation):
		return fmt.Sprintf("Choose a repetition count between 1 and %d.", session.MaxRepetitions)
	default:
		return "See the log for details."
	}
}

func setupLogging(cfg *config.Config, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler

	// If base path is set, use file logging with rotation
	if cfg.Logging.BasePath != "" {
		logPath := filepath.Join(cfg.Logging.BasePath, cfg.Logging.Filename)
		writer := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		}
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
