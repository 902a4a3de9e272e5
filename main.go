package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ble-pulse.klederson.com/internal/app"
	"ble-pulse.klederson.com/internal/bluetooth"
	"ble-pulse.klederson.com/internal/config"
	"ble-pulse.klederson.com/internal/feedback"
	"ble-pulse.klederson.com/internal/motion"
	"ble-pulse.klederson.com/internal/state"
	"ble-pulse.klederson.com/internal/telemetry"
	"ble-pulse.klederson.com/internal/web"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagDemo          bool
	flagHeadless      bool
	flagVerbose       bool
	flagIdentity      string
	flagMeasuredPower float64
	flagPathLoss      float64
	flagInterval      time.Duration
	flagCooldown      time.Duration
	flagThresholdX    float64
	flagThresholdY    float64
	flagThresholdZ    float64
	flagExpand        time.Duration
	flagContract      time.Duration
	flagOverlap       string
	flagSensor        string
	flagSPI           string
	flagCS            string
	flagMQTT          string
	flagHTTP          string
	flagLogFile       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ble-pulse",
		Short: "BLE Pulse - proximity and motion pulses between two Bluetooth peers",
		Long: `BLE Pulse advertises itself over Bluetooth Low Energy under a shared
identity, scans for peers advertising the same identity and estimates their
distance from signal strength. Sudden accelerometer movements on any axis
trigger a two-stage visual and haptic pulse.

Requires sudo or CAP_NET_ADMIN capability for real Bluetooth access.
Use --demo flag for demonstration mode without Bluetooth or IMU hardware.`,
		SilenceUsage: true,
		RunE:         run,
	}

	f := rootCmd.Flags()
	f.BoolVar(&flagDemo, "demo", false, "Run with a simulated radio and accelerometer")
	f.BoolVar(&flagHeadless, "headless", false, "Run without the terminal UI, logging to stderr")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Log at debug level")
	f.StringVar(&flagIdentity, "identity", config.IdentityToken, "Local name advertised and matched on peers")
	f.Float64Var(&flagMeasuredPower, "measured-power", config.MeasuredPower, "Expected RSSI at 1 meter (dBm)")
	f.Float64Var(&flagPathLoss, "path-loss", config.PathLossExp, "Path loss exponent")
	f.DurationVar(&flagInterval, "interval", config.SampleInterval, "Accelerometer sample interval")
	f.DurationVar(&flagCooldown, "cooldown", config.Cooldown, "Minimum time between events on one axis")
	f.Float64Var(&flagThresholdX, "threshold-x", config.ThresholdX, "X axis jerk threshold (g)")
	f.Float64Var(&flagThresholdY, "threshold-y", config.ThresholdY, "Y axis jerk threshold (g)")
	f.Float64Var(&flagThresholdZ, "threshold-z", config.ThresholdZ, "Z axis jerk threshold (g)")
	f.DurationVar(&flagExpand, "expand", config.ExpandDuration, "Pulse expansion stage length")
	f.DurationVar(&flagContract, "contract", config.ContractDuration, "Pulse contraction stage length")
	f.StringVar(&flagOverlap, "overlap", "allow", "Overlapping pulses on one axis: allow or supersede")
	f.StringVar(&flagSensor, "sensor", "", "Accelerometer: mock or mpu9250 (default mock in demo mode, mpu9250 otherwise)")
	f.StringVar(&flagSPI, "spi", config.SPIDevice, "SPI device of the MPU9250")
	f.StringVar(&flagCS, "cs", config.CSPin, "GPIO chip select pin of the MPU9250")
	f.StringVar(&flagMQTT, "mqtt", "", "MQTT broker URL for telemetry, e.g. tcp://localhost:1883")
	f.StringVar(&flagHTTP, "http", "", "Serve state on this address, e.g. :8080")
	f.StringVar(&flagLogFile, "log-file", "ble-pulse.log", "Log file used while the terminal UI is running")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !flagVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	// The terminal UI owns stdout; keep logs out of its way.
	if !flagHeadless {
		cfg.OutputPaths = []string{flagLogFile}
		cfg.ErrorOutputPaths = []string{flagLogFile}
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}

func newSource(logger *zap.SugaredLogger) (motion.Source, error) {
	sensor := flagSensor
	if sensor == "" {
		sensor = "mpu9250"
		if flagDemo {
			sensor = "mock"
		}
	}
	switch sensor {
	case "mock":
		return motion.NewMockSource(3 * time.Second), nil
	case "mpu9250":
		return motion.NewMPU9250Source(flagSPI, flagCS, logger), nil
	default:
		return nil, fmt.Errorf("unknown sensor %q (want mock or mpu9250)", sensor)
	}
}

func run(cmd *cobra.Command, args []string) error {
	overlap, err := feedback.ParseOverlapPolicy(flagOverlap)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	src, err := newSource(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		radio    bluetooth.Radio
		toggle   func() bluetooth.Readiness
		radioErr string
	)
	if flagDemo {
		mock := bluetooth.NewMockRadio(flagIdentity)
		radio, toggle = mock, mock.Toggle
	} else {
		adapter := bluetooth.NewAdapterRadio(logger)
		if err := adapter.Err(); err != nil {
			radioErr = err.Error()
		}
		radio = adapter
	}

	store := state.NewStore()

	haptics := feedback.NewMulti(feedback.NewLogHaptics(logger))
	if !flagHeadless {
		haptics.Add(app.NewBell(os.Stderr))
	}

	var pub *telemetry.Publisher
	if flagMQTT != "" {
		opts := telemetry.DefaultOptions()
		opts.Broker = flagMQTT
		pub = telemetry.NewPublisher(opts, logger)
		if err := pub.Connect(); err != nil {
			logger.Warnf("MQTT telemetry disabled: %v", err)
			pub = nil
		} else {
			defer pub.Close()
			haptics.Add(pub)
		}
	}

	seqOpts := feedback.DefaultSequencerOptions()
	seqOpts.Expand = flagExpand
	seqOpts.Contract = flagContract
	seqOpts.Overlap = overlap
	seq := feedback.NewSequencer(store, haptics, seqOpts, logger)

	monOpts := motion.DefaultMonitorOptions()
	monOpts.Interval = flagInterval
	monOpts.Detector.Cooldown = flagCooldown
	monOpts.Detector.Thresholds = [3]float64{flagThresholdX, flagThresholdY, flagThresholdZ}
	monitor := motion.NewMonitor(src, monOpts, logger)
	monitor.SetObserver(store)
	monitor.OnEvent(func(ev motion.Event) { seq.Trigger(ev) })
	if pub != nil {
		monitor.OnEvent(func(ev motion.Event) { go pub.HandleEvent(ev) })
	}

	discOpts := bluetooth.DefaultDiscoveryOptions()
	discOpts.Identity = flagIdentity
	discOpts.Calibration = bluetooth.Calibration{MeasuredPower: flagMeasuredPower, PathLossExp: flagPathLoss}
	discovery := bluetooth.NewDiscovery(radio, discOpts, logger)
	discovery.SetSink(store)

	broadcaster := bluetooth.NewBroadcaster(radio, flagIdentity, logger)
	broadcaster.SetSink(store)

	logger.Infof("Starting %s v%s as %q (demo=%v, overlap=%s)", config.AppName, config.AppVersion, flagIdentity, flagDemo, overlap)

	var wg sync.WaitGroup
	spawn := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				logger.Errorf("%s: %v", name, err)
			}
		}()
	}
	spawn("broadcaster", func() error { return broadcaster.Run(ctx) })
	spawn("discovery", func() error { return discovery.Run(ctx) })
	if pub != nil {
		spawn("telemetry", func() error { pub.Run(ctx, store); return nil })
	}
	if flagHTTP != "" {
		srv := web.NewServer(store, logger)
		spawn("web", func() error { return srv.ListenAndServe(ctx, flagHTTP) })
	}

	// An unavailable sensor leaves motion idle; proximity keeps working.
	if err := monitor.Start(ctx); err != nil && !errors.Is(err, motion.ErrSensorUnavailable) {
		logger.Errorf("motion monitor: %v", err)
	}
	if done := monitor.Done(); done != nil {
		go func() {
			<-done
			if ctx.Err() == nil {
				logger.Warnf("motion feedback stopped, proximity keeps running")
			}
		}()
	}

	var runErr error
	if flagHeadless {
		<-ctx.Done()
	} else {
		runErr = runTUI(ctx, store, toggle, radioErr)
	}

	stop()
	shutdown(logger, monitor, seq, &wg)
	logger.Infof("Session saw %d peer(s) advertising %q", discovery.Store().Count(), flagIdentity)
	return runErr
}

func runTUI(ctx context.Context, store *state.Store, toggle func() bluetooth.Readiness, radioErr string) error {
	model := app.New(app.Options{
		Identity:    flagIdentity,
		Demo:        flagDemo,
		ToggleRadio: toggle,
		RadioError:  radioErr,
	}, store.Snapshot())

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithFPS(config.TargetFPS),
	)

	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go app.Feed(feedCtx, store, p.Send)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func shutdown(logger *zap.SugaredLogger, monitor *motion.Monitor, seq *feedback.Sequencer, wg *sync.WaitGroup) {
	monitor.Stop()
	wg.Wait()
	seq.Close()
	logger.Infof("%s stopped", config.AppName)
}
