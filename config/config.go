// Package config loads the simulation settings from a JSON or YAML file,
// with overrides from ETHERSIM_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/ethersim/detection"
)

// Defaults applied to keys the file leaves out.
const (
	DefaultSignalTime     = 10
	DefaultErrorDetection = "crc32"
	DefaultOutputDir      = "output"
	DefaultMaxTicks       = 100000
)

// EnvPrefix starts the name of every environment override.
const EnvPrefix = "ETHERSIM_"

var (
	// ErrMissingConfig is returned when the configuration file does not
	// exist.
	ErrMissingConfig = errors.New("configuration file not found")

	// ErrInvalidValue is returned for a value outside its allowed range.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// An UnknownKeyError reports a key the simulator does not know.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown configuration key %q", e.Key)
}

// Config holds the simulation settings.
type Config struct {
	// SignalTime is the number of ticks one bit occupies on a wire.
	SignalTime int `json:"signal_time" yaml:"signal_time"`

	// ErrorDetection names the detection codec of every host.
	ErrorDetection string `json:"error_detection" yaml:"error_detection"`

	// OutputDir receives the device logs.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MaxTicks bounds the length of a run.
	MaxTicks uint64 `json:"max_ticks" yaml:"max_ticks"`

	// RecordDB, if set, is the SQLite file (without extension) frames and
	// collisions are recorded to.
	RecordDB string `json:"record_db" yaml:"record_db"`

	// MonitorPort is the port of the web monitor. 0 picks a free port.
	MonitorPort int `json:"monitor_port" yaml:"monitor_port"`
}

var knownKeys = map[string]bool{
	"signal_time":     true,
	"error_detection": true,
	"output_dir":      true,
	"max_ticks":       true,
	"record_db":       true,
	"monitor_port":    true,
}

// Default returns the configuration used when no file sets a key.
func Default() Config {
	return Config{
		SignalTime:     DefaultSignalTime,
		ErrorDetection: DefaultErrorDetection,
		OutputDir:      DefaultOutputDir,
		MaxTicks:       DefaultMaxTicks,
	}
}

// Load reads the configuration file at path, YAML for .yaml and .yml files
// and JSON otherwise, then applies the environment overrides.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}

	if err != nil {
		return Config{}, err
	}

	c, err := Parse(data, isYAML(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Parse decodes configuration data and applies the environment overrides.
func Parse(data []byte, useYAML bool) (Config, error) {
	var raw map[string]interface{}

	unmarshal := json.Unmarshal
	if useYAML {
		unmarshal = yaml.Unmarshal
	}

	if err := unmarshal(data, &raw); err != nil {
		return Config{}, err
	}

	if err := checkKeys(raw); err != nil {
		return Config{}, err
	}

	c := Default()
	if err := unmarshal(data, &c); err != nil {
		return Config{}, err
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func checkKeys(raw map[string]interface{}) error {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		if !knownKeys[k] {
			return &UnknownKeyError{Key: k}
		}
	}

	return nil
}

// LoadEnvFiles loads .env style files into the process environment. Missing
// files are skipped. Variables already set are not overwritten.
func LoadEnvFiles(files ...string) error {
	var existing []string

	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	return godotenv.Load(existing...)
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	if v, ok := lookup(EnvPrefix + "SIGNAL_TIME"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: signal_time %q", ErrInvalidValue, v)
		}

		c.SignalTime = n
	}

	if v, ok := lookup(EnvPrefix + "ERROR_DETECTION"); ok {
		c.ErrorDetection = v
	}

	if v, ok := lookup(EnvPrefix + "OUTPUT_DIR"); ok {
		c.OutputDir = v
	}

	if v, ok := lookup(EnvPrefix + "MAX_TICKS"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: max_ticks %q", ErrInvalidValue, v)
		}

		c.MaxTicks = n
	}

	if v, ok := lookup(EnvPrefix + "RECORD_DB"); ok {
		c.RecordDB = v
	}

	if v, ok := lookup(EnvPrefix + "MONITOR_PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: monitor_port %q", ErrInvalidValue, v)
		}

		c.MonitorPort = n
	}

	return nil
}

// Validate checks the ranges of the settings.
func (c Config) Validate() error {
	if c.SignalTime <= 0 {
		return fmt.Errorf("%w: signal_time must be positive, got %d",
			ErrInvalidValue, c.SignalTime)
	}

	if c.MaxTicks == 0 {
		return fmt.Errorf("%w: max_ticks must be positive", ErrInvalidValue)
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		return fmt.Errorf("%w: monitor_port %d", ErrInvalidValue, c.MonitorPort)
	}

	if _, err := detection.ByName(c.ErrorDetection); err != nil {
		return err
	}

	return nil
}

// Codec returns the detection codec the configuration names.
func (c Config) Codec() detection.Codec {
	codec, err := detection.ByName(c.ErrorDetection)
	if err != nil {
		panic(err)
	}

	return codec
}

// PrepareOutput removes dir with everything in it and creates it empty.
func PrepareOutput(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}

	return os.MkdirAll(dir, 0o755)
}
