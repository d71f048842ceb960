// Package config holds the hardware wiring and daemon addresses of the
// badge. Timing is fixed in code and deliberately absent here.
package config

import (
	"io"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sweeney/eye-badge/internal/gpio"
	"github.com/sweeney/eye-badge/internal/pwm"
	"github.com/sweeney/eye-badge/internal/watchdog"
)

// Config is the daemon configuration.
type Config struct {
	GPIO     GPIOConfig     `toml:"gpio"`
	PWM      PWMConfig      `toml:"pwm"`
	Watchdog WatchdogConfig `toml:"watchdog"`
	HTTP     HTTPConfig     `toml:"http"`
	MQTT     MQTTConfig     `toml:"mqtt"`
}

// GPIOConfig wires the two buttons.
type GPIOConfig struct {
	// Chip is the GPIO character device, e.g. gpiochip0.
	Chip string `toml:"chip"`
	// PinOn is the line offset of the on button. It also wakes the badge.
	PinOn int `toml:"pin_on"`
	// PinMode is the line offset of the mode button.
	PinMode int `toml:"pin_mode"`
}

// PWMConfig wires the four LED channels.
type PWMConfig struct {
	LeftRed    string `toml:"left_red"`
	LeftGreen  string `toml:"left_green"`
	RightRed   string `toml:"right_red"`
	RightGreen string `toml:"right_green"`
	// MaxDuty is the duty value that switches a channel fully off.
	MaxDuty uint16 `toml:"max_duty"`
	// FrequencyHz is the PWM carrier frequency.
	FrequencyHz int `toml:"frequency_hz"`
}

// WatchdogConfig names the watchdog device.
type WatchdogConfig struct {
	Device string `toml:"device"`
}

// HTTPConfig configures the status page. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// MQTTConfig configures the event mirror. An empty Broker disables it.
type MQTTConfig struct {
	Broker   string `toml:"broker"`
	ClientID string `toml:"client_id"`
}

// Default returns the wiring of the reference board.
func Default() *Config {
	return &Config{
		GPIO: GPIOConfig{
			Chip:    gpio.DefaultChip,
			PinOn:   gpio.DefaultPinOn,
			PinMode: gpio.DefaultPinMode,
		},
		PWM: PWMConfig{
			LeftRed:     pwm.DefaultLeftRed,
			LeftGreen:   pwm.DefaultLeftGreen,
			RightRed:    pwm.DefaultRightRed,
			RightGreen:  pwm.DefaultRightGreen,
			MaxDuty:     pwm.DefaultMaxDuty,
			FrequencyHz: pwm.DefaultFrequencyHz,
		},
		Watchdog: WatchdogConfig{Device: watchdog.DefaultDevice},
		HTTP:     HTTPConfig{Addr: ":80"},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.GPIO.Chip == "" {
		return errors.New("gpio chip not set")
	}
	if c.GPIO.PinOn < 0 || c.GPIO.PinMode < 0 {
		return errors.Errorf("negative gpio line (on=%d mode=%d)", c.GPIO.PinOn, c.GPIO.PinMode)
	}
	if c.GPIO.PinOn == c.GPIO.PinMode {
		return errors.Errorf("on and mode buttons share line %d", c.GPIO.PinOn)
	}

	pins := map[string]string{}
	for _, p := range []struct{ name, pin string }{
		{"left_red", c.PWM.LeftRed},
		{"left_green", c.PWM.LeftGreen},
		{"right_red", c.PWM.RightRed},
		{"right_green", c.PWM.RightGreen},
	} {
		if p.pin == "" {
			return errors.Errorf("pwm pin %s not set", p.name)
		}
		if other, ok := pins[p.pin]; ok {
			return errors.Errorf("pwm pin %s used by both %s and %s", p.pin, other, p.name)
		}
		pins[p.pin] = p.name
	}
	if c.PWM.MaxDuty == 0 {
		return errors.New("pwm max_duty must be positive")
	}
	if c.PWM.FrequencyHz <= 0 {
		return errors.Errorf("pwm frequency_hz must be positive, got %d", c.PWM.FrequencyHz)
	}

	if c.Watchdog.Device == "" {
		return errors.New("watchdog device not set")
	}
	return nil
}

// ParseConfig parses a configuration from a reader. Keys absent from the
// input keep their Default values; unknown keys are an error.
func ParseConfig(r io.Reader) (*Config, error) {
	config := Default()
	if err := toml.NewDecoder(r).Strict(true).Decode(config); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return config, nil
}

// Load reads and validates the config file at path. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	config, err := ParseConfig(f)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return config, nil
}
