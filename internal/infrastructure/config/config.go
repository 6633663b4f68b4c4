package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"yocto-led-bridge/internal/domain/translator"
)

// Config is the root configuration of the bridge process. It is loaded from
// YAML and can be overridden by environment variables.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	SSDP      SSDPConfig      `yaml:"ssdp"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Yoctopuce YoctopuceConfig `yaml:"yoctopuce"`
	Hue       HueConfig       `yaml:"hue"`
	Entries   EntriesConfig   `yaml:"entries"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// AdvertiseIP is the address announced over SSDP and in description.xml.
	// Empty means the first non-loopback IPv4 address.
	AdvertiseIP string `yaml:"advertise_ip"`
}

type SSDPConfig struct {
	Enabled bool `yaml:"enabled"`
}

type MQTTConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Broker          string `yaml:"broker"`
	ClientID        string `yaml:"client_id"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	BaseTopic       string `yaml:"base_topic"`
}

type YoctopuceConfig struct {
	// RequestTimeoutMs bounds each HTTP request to a hub.
	RequestTimeoutMs int `yaml:"request_timeout_ms"`
	// TestTimeoutMs bounds the reachability probe of the config flow.
	TestTimeoutMs int `yaml:"test_timeout_ms"`
	// TransitionMs is the color ramp duration.
	TransitionMs int `yaml:"transition_ms"`
}

// HueConfig holds the brightness formulas used by the Hue API emulation.
// Both use the variable x, e.g. "x * 254 / 255".
type HueConfig struct {
	ToHueFormula    string `yaml:"to_hue"`
	ToEntityFormula string `yaml:"to_entity"`
}

type EntriesConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

func (y YoctopuceConfig) RequestTimeout() time.Duration {
	return time.Duration(y.RequestTimeoutMs) * time.Millisecond
}

func (y YoctopuceConfig) TestTimeout() time.Duration {
	return time.Duration(y.TestTimeoutMs) * time.Millisecond
}

func (y YoctopuceConfig) Transition() time.Duration {
	return time.Duration(y.TransitionMs) * time.Millisecond
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Addr: ":80"},
		SSDP: SSDPConfig{Enabled: true},
		MQTT: MQTTConfig{
			Broker:          "tcp://localhost:1883",
			ClientID:        "yocto-led-bridge",
			DiscoveryPrefix: "homeassistant",
			BaseTopic:       "yoctopuce",
		},
		Yoctopuce: YoctopuceConfig{
			RequestTimeoutMs: 10000,
			TestTimeoutMs:    5000,
			TransitionMs:     1000,
		},
		Entries: EntriesConfig{Path: "/app/entries.json"},
		Logging: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LOCAL_IP"); v != "" {
		c.HTTP.AdvertiseIP = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("ENTRIES_PATH"); v != "" {
		c.Entries.Path = v
	}
	if v := os.Getenv("MQTT_URL"); v != "" {
		c.MQTT.Broker = v
		c.MQTT.Enabled = true
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		c.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// Validate checks the configuration for values the bridge cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.Entries.Path == "" {
		errs = append(errs, errors.New("entries.path is required"))
	}
	if c.Yoctopuce.RequestTimeoutMs <= 0 {
		errs = append(errs, errors.New("yoctopuce.request_timeout_ms must be positive"))
	}
	if c.Yoctopuce.TestTimeoutMs <= 0 {
		errs = append(errs, errors.New("yoctopuce.test_timeout_ms must be positive"))
	}
	if c.Yoctopuce.TransitionMs < 0 {
		errs = append(errs, errors.New("yoctopuce.transition_ms must not be negative"))
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
		}
		if c.MQTT.DiscoveryPrefix == "" || c.MQTT.BaseTopic == "" {
			errs = append(errs, errors.New("mqtt.discovery_prefix and mqtt.base_topic are required"))
		}
	}
	if err := translator.Formula(c.Hue.ToHueFormula).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("hue.to_hue: %w", err))
	}
	if err := translator.Formula(c.Hue.ToEntityFormula).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("hue.to_entity: %w", err))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or text", c.Logging.Format))
	}
	return errors.Join(errs...)
}
