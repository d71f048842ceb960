// Command eye-badge drives the two LED eyes of the badge from its on and
// mode buttons, under a hardware watchdog.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/eye-badge/internal/badge"
	"github.com/sweeney/eye-badge/internal/clock"
	"github.com/sweeney/eye-badge/internal/config"
	"github.com/sweeney/eye-badge/internal/gpio"
	"github.com/sweeney/eye-badge/internal/mqtt"
	"github.com/sweeney/eye-badge/internal/pwm"
	"github.com/sweeney/eye-badge/internal/status"
	"github.com/sweeney/eye-badge/internal/watchdog"
	"github.com/sweeney/eye-badge/internal/web"
)

var (
	configPath = ""
	verbose    = false
	printState = false
	httpAddr   = ""
	broker     = ""
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "path to the TOML config file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "enable debug logging")
	pflag.BoolVar(&printState, "print-state", printState, "print the button states and exit")
	pflag.StringVar(&httpAddr, "http", httpAddr, "HTTP status address, overrides the config (empty disables)")
	pflag.StringVar(&broker, "broker", broker, "MQTT broker address, overrides the config (empty disables)")
}

func main() {
	log.SetFlags(0)
	pflag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if pflag.CommandLine.Changed("http") {
		cfg.HTTP.Addr = httpAddr
	}
	if pflag.CommandLine.Changed("broker") {
		cfg.MQTT.Broker = broker
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		logger.Info("received signal, shutting down", "signal", s)
		cancel(signalError{s})
	}()

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	buttons, err := gpio.NewRealButtons(cfg.GPIO.Chip, cfg.GPIO.PinOn, cfg.GPIO.PinMode)
	if err != nil {
		return errors.Wrap(err, "init gpio")
	}
	defer buttons.Close()

	if printState {
		return printButtons(os.Stdout, buttons.On(), buttons.Mode())
	}

	hw, halt, err := bringUp(cfg, buttons)
	if err != nil {
		return err
	}
	defer halt()

	bootID := uuid.NewString()
	tracker := status.NewTracker(bootID, time.Now(), statusConfig(cfg))

	var pub mqtt.Publisher
	if cfg.MQTT.Broker != "" {
		clientID := cfg.MQTT.ClientID
		if clientID == "" {
			clientID = "eye-badge-" + bootID[:8]
		}
		p, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:             cfg.MQTT.Broker,
			ClientID:           clientID,
			Logger:             logger,
			OnConnectionChange: tracker.SetMQTTConnected,
			OnDropped:          tracker.SetMQTTDropped,
		})
		if err != nil {
			return errors.Wrap(err, "init mqtt")
		}
		pub = p
	}

	return serve(ctx, logger, cfg, hw, tracker, pub, clock.NewReal())
}

// bringUp claims the LED pins and the watchdog. The control core takes it
// from there. The returned func stops PWM output on all four pins.
func bringUp(cfg *config.Config, buttons *gpio.RealButtons) (badge.Hardware, func(), error) {
	if err := pwm.InitHost(); err != nil {
		return badge.Hardware{}, nil, err
	}

	names := [4]string{cfg.PWM.LeftRed, cfg.PWM.LeftGreen, cfg.PWM.RightRed, cfg.PWM.RightGreen}
	var chans [4]*pwm.PinChannel
	halt := func() {
		for _, ch := range chans {
			if ch != nil {
				ch.Halt()
			}
		}
	}
	for i, name := range names {
		ch, err := pwm.NewPinChannel(name, cfg.PWM.MaxDuty, cfg.PWM.FrequencyHz)
		if err != nil {
			halt()
			return badge.Hardware{}, nil, errors.Wrapf(err, "init pwm %s", name)
		}
		chans[i] = ch
	}

	return badge.Hardware{
		On:         buttons.On(),
		Wake:       buttons.On(),
		Mode:       buttons.Mode(),
		LeftRed:    chans[0],
		LeftGreen:  chans[1],
		RightRed:   chans[2],
		RightGreen: chans[3],
		Watchdog:   watchdog.NewDevice(cfg.Watchdog.Device),
	}, halt, nil
}

// serve runs the control loop and the optional HTTP server until ctx ends,
// mirroring lifecycle events to pub when it is non-nil.
func serve(ctx context.Context, logger *slog.Logger, cfg *config.Config, hw badge.Hardware, tracker *status.Tracker, pub mqtt.Publisher, clk clock.Clock) error {
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	observers := badge.Observers{tracker}
	if pub != nil {
		defer pub.Close()
		observers = append(observers, pub)
		publishSystem(logger, pub, tracker, "STARTUP", "")
	}

	g, gctx := errgroup.WithContext(ctx)

	loop := badge.NewLoop(clk, logger, observers)
	g.Go(func() error {
		err := loop.Start(gctx, hw)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, logger)
		g.Go(func() error {
			logger.Info("http status server listening", "addr", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "http server")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()

	if pub != nil {
		publishSystem(logger, pub, tracker, "SHUTDOWN", shutdownReason(ctx, err))
	}
	return err
}

func publishSystem(logger *slog.Logger, pub mqtt.Publisher, tracker *status.Tracker, event, reason string) {
	if cs, ok := pub.(mqtt.ConnectionStatus); ok {
		tracker.SetMQTTConnected(cs.IsConnected())
	}
	snap := tracker.Snapshot()
	err := pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		logger.Warn("failed to publish system event", "event", event, "err", err)
		return
	}
	logger.Info("published system event", "event", event)
}

// signalError is the cancellation cause when a signal stops the daemon.
type signalError struct {
	sig os.Signal
}

func (e signalError) Error() string {
	return "received " + e.sig.String()
}

func shutdownReason(ctx context.Context, err error) string {
	var se signalError
	if errors.As(context.Cause(ctx), &se) {
		switch se.sig {
		case syscall.SIGINT:
			return "SIGINT"
		case syscall.SIGTERM:
			return "SIGTERM"
		}
		return "UNKNOWN"
	}
	if err != nil {
		return "ERROR"
	}
	return "UNKNOWN"
}

func statusConfig(cfg *config.Config) status.Config {
	return status.Config{
		Chip:     cfg.GPIO.Chip,
		PinOn:    cfg.GPIO.PinOn,
		PinMode:  cfg.GPIO.PinMode,
		MaxDuty:  cfg.PWM.MaxDuty,
		PWMHz:    cfg.PWM.FrequencyHz,
		Watchdog: cfg.Watchdog.Device,
		HTTPAddr: cfg.HTTP.Addr,
		Broker:   cfg.MQTT.Broker,
	}
}

func printButtons(w io.Writer, on, mode gpio.Input) error {
	onState, err := on.Read()
	if err != nil {
		return errors.Wrap(err, "read on button")
	}
	modeState, err := mode.Read()
	if err != nil {
		return errors.Wrap(err, "read mode button")
	}
	fmt.Fprintf(w, "ON: %s, MODE: %s\n", pressedString(onState), pressedString(modeState))
	return nil
}

func pressedString(closed bool) string {
	if closed {
		return "PRESSED"
	}
	return "RELEASED"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
