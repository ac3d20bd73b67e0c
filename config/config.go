package config

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	EnvBackend  = "MAZERACE_BACKEND"
	EnvVariant  = "MAZERACE_VARIANT"
	EnvLogLevel = "MAZERACE_LOG_LEVEL"
	EnvFixtures = "MAZERACE_FIXTURES"
	EnvPort     = "PORT"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds everything the client and the fixture server can be tuned
// with. Sources win in this order: flags, environment, YAML file, defaults.
type Config struct {
	File     string        `yaml:"-"`
	Backend  string        `yaml:"backend"`
	Variant  string        `yaml:"variant"`
	CellSize int           `yaml:"cell_size"`
	Rows     int           `yaml:"rows"`
	Cols     int           `yaml:"cols"`
	Tick     time.Duration `yaml:"tick"`
	Reveal   time.Duration `yaml:"reveal"`
	Timeout  time.Duration `yaml:"timeout"`
	Algo1    string        `yaml:"algo1"`
	Algo2    string        `yaml:"algo2"`
	LogLevel string        `yaml:"log_level"`
	Fixtures string        `yaml:"fixtures"`
	Port     string        `yaml:"port"`
	Font     string        `yaml:"font"`
}

func NewConfig() *Config {
	return &Config{
		Backend:  "http://localhost:8080",
		Variant:  "single",
		CellSize: 20,
		Rows:     31,
		Cols:     41,
		Tick:     100 * time.Millisecond,
		Reveal:   5 * time.Millisecond,
		Timeout:  10 * time.Second,
		Algo1:    "astar",
		Algo2:    "bfs",
		LogLevel: "info",
		Fixtures: "data",
		Port:     "8080",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.File, "config", c.File, "optional YAML configuration file")
	fs.StringVar(&c.Backend, "backend", c.Backend, "pathfinding backend base URL")
	fs.StringVar(&c.Variant, "variant", c.Variant, "single or race")
	fs.IntVar(&c.CellSize, "cell", c.CellSize, "cell size in pixels")
	fs.IntVar(&c.Rows, "rows", c.Rows, "rows requested for race mazes")
	fs.IntVar(&c.Cols, "cols", c.Cols, "cols requested for race mazes")
	fs.DurationVar(&c.Tick, "tick", c.Tick, "race replay interval")
	fs.DurationVar(&c.Reveal, "reveal", c.Reveal, "delay between revealed path cells")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "backend request timeout")
	fs.StringVar(&c.Algo1, "algo1", c.Algo1, "algorithm of agent 1 (or the single run)")
	fs.StringVar(&c.Algo2, "algo2", c.Algo2, "algorithm of agent 2")
	fs.StringVar(&c.LogLevel, "log", c.LogLevel, "log level")
	fs.StringVar(&c.Fixtures, "fixtures", c.Fixtures, "fixture directory of the offline backend")
	fs.StringVar(&c.Port, "port", c.Port, "listen port of the offline backend")
	fs.StringVar(&c.Font, "font", c.Font, "TrueType font for panel text, Go Regular when empty")
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from defaults, an optional YAML file named by
// -config, the environment and the command line.
func Load(name string, args []string, getenv func(string) string) (*Config, error) {
	cli := NewConfig()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cli.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	explicit := map[string]string{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = f.Value.String() })

	c := NewConfig()
	c.File = cli.File
	if c.File != "" {
		if err := c.ReadFile(c.File); err != nil {
			return nil, err
		}
	}
	c.applyEnv(getenv)

	replay := flag.NewFlagSet(name, flag.ContinueOnError)
	c.Bind(replay)
	for k, v := range explicit {
		if err := replay.Set(k, v); err != nil {
			return nil, fmt.Errorf("flag -%s: %w", k, err)
		}
	}
	return c, c.Validate()
}

func (c *Config) ReadFile(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if getenv == nil {
		return
	}
	for key, dst := range map[string]*string{
		EnvBackend:  &c.Backend,
		EnvVariant:  &c.Variant,
		EnvLogLevel: &c.LogLevel,
		EnvFixtures: &c.Fixtures,
		EnvPort:     &c.Port,
	} {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
}

func (c *Config) Validate() error {
	if c.Variant != "single" && c.Variant != "race" {
		return fmt.Errorf("%w: variant %q", ErrInvalid, c.Variant)
	}
	if u, err := url.Parse(c.Backend); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: backend %q", ErrInvalid, c.Backend)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cell size %d", ErrInvalid, c.CellSize)
	}
	if c.Rows < 3 || c.Cols < 3 {
		return fmt.Errorf("%w: maze %dx%d", ErrInvalid, c.Rows, c.Cols)
	}
	if c.Tick <= 0 || c.Reveal < 0 || c.Timeout <= 0 {
		return fmt.Errorf("%w: durations tick=%v reveal=%v timeout=%v", ErrInvalid, c.Tick, c.Reveal, c.Timeout)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// SetupLogging applies the configured level to the standard logrus logger.
func (c *Config) SetupLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
