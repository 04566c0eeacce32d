package config

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	// backend
	ApiPort        int      `yaml:"api_port" validate:"required,gt=0"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	HTTPS          bool     `yaml:"https"` // adds HSTS header

	// client
	ApiURL         string        `yaml:"api_url" validate:"required,url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	StatePath      string        `yaml:"state_path" validate:"required"`      // sqlite file holding the device state
	SubmitCooldown string        `yaml:"submit_cooldown" validate:"required"` // go duration or "calendar_day"
	MaxBodyWords   int           `yaml:"max_body_words" validate:"gt=0"`
	MaxTitleLength int           `yaml:"max_title_length" validate:"gt=0"`
	VoteDebounce   time.Duration `yaml:"vote_debounce" validate:"gt=0"`
}

type Private struct {
	Pg Pg `yaml:"pg"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

const (
	DefaultMaxBodyWords   = 300
	DefaultMaxTitleLength = 120
	DefaultVoteDebounce   = 300 * time.Millisecond
	DefaultRequestTimeout = 10 * time.Second
)

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

func setDefaults(p *Public) {
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.MaxBodyWords == 0 {
		p.MaxBodyWords = DefaultMaxBodyWords
	}
	if p.MaxTitleLength == 0 {
		p.MaxTitleLength = DefaultMaxTitleLength
	}
	if p.VoteDebounce == 0 {
		p.VoteDebounce = DefaultVoteDebounce
	}
	if p.RequestTimeout == 0 {
		p.RequestTimeout = DefaultRequestTimeout
	}
}

// applyEnv lets deployments override secrets and paths without editing yaml.
// Values may come from the process environment or from <folder>/.env.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CONFESSIONS_API_URL"); v != "" {
		cfg.Public.ApiURL = v
	}
	if v := os.Getenv("CONFESSIONS_STATE_PATH"); v != "" {
		cfg.Public.StatePath = v
	}
	if v := os.Getenv("CONFESSIONS_PG_PASSWORD"); v != "" {
		cfg.Private.Pg.Password = v
	}
	if v := os.Getenv("CONFESSIONS_PG_HOST"); v != "" {
		cfg.Private.Pg.Host = v
	}
	if v := os.Getenv("CONFESSIONS_PG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Private.Pg.Port = port
		}
	}
}

// fields only one of the binaries reads
var (
	clientOnly  = []string{"ApiURL", "RequestTimeout", "StatePath", "SubmitCooldown", "VoteDebounce"}
	backendOnly = []string{"ApiPort", "AllowedOrigins", "HTTPS"}
)

// MustLoadClient loads the config for the device client. Backend-only fields
// are not validated.
func MustLoadClient(configFolder string) *Config {
	return mustLoad(configFolder, backendOnly)
}

// MustLoadBackend loads the config for the API server. Client-only fields are
// not validated.
func MustLoadBackend(configFolder string) *Config {
	return mustLoad(configFolder, clientOnly)
}

// mustLoad reads public.yaml (required) and private.yaml (optional, backend only)
// from configFolder and panics on a missing or invalid required field.
func mustLoad(configFolder string, skip []string) *Config {
	if err := godotenv.Load(path.Join(configFolder, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("can't load .env file: " + err.Error())
	}

	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		mustLoadPath(privatePath, &private)
	}

	cfg := &Config{Public: public, Private: private}
	applyEnv(cfg)
	setDefaults(&cfg.Public)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructExcept(cfg.Public, skip...); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}
