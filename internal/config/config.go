package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Version       string         `json:"version" mapstructure:"version"`
	Seed          int64          `json:"seed" mapstructure:"seed"`                                  // 0 picks a time based seed
	OutputDir     string         `json:"output_dir" mapstructure:"output_dir" validate:"required"`  // Where flat files and the manifest go
	Counts        map[string]int `json:"counts" mapstructure:"counts" validate:"dive,gte=0"`        // Per-entity overrides of the default row counts
	Unique        []string       `json:"unique" mapstructure:"unique" validate:"dive,table_column"` // Fields that must not repeat
	Probabilities Probabilities  `json:"probabilities" mapstructure:"probabilities"`
	Sinks         Sinks          `json:"sinks" mapstructure:"sinks"`
	Database      Database       `json:"database" mapstructure:"database"`
	Mongo         Mongo          `json:"mongo" mapstructure:"mongo"`
	Log           Log            `json:"log" mapstructure:"log"`
}

type Probabilities struct {
	MembershipEndUnset float64 `json:"membership_end_unset" mapstructure:"membership_end_unset" validate:"gte=0,lte=1"`
	BorrowReturnUnset  float64 `json:"borrow_return_unset" mapstructure:"borrow_return_unset" validate:"gte=0,lte=1"`
}

type Sinks struct {
	CSV      bool `json:"csv" mapstructure:"csv"`
	JSON     bool `json:"json" mapstructure:"json"`
	Database bool `json:"database" mapstructure:"database"`
	Mongo    bool `json:"mongo" mapstructure:"mongo"`
	Metrics  bool `json:"metrics" mapstructure:"metrics"` // Prometheus textfile in output_dir
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider" validate:"oneof=sqlite sqlite3 postgresql postgres mysql"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
	URL      string `json:"url,omitempty" mapstructure:"url"`
}

type Mongo struct {
	URIEnv   string `json:"uri_env" mapstructure:"uri_env"`
	URI      string `json:"uri,omitempty" mapstructure:"uri"`
	Database string `json:"database" mapstructure:"database"`
}

type Log struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format" validate:"oneof=json console"`
}

var supportedProviders = []string{"sqlite", "sqlite3", "postgresql", "postgres", "mysql"}

func DefaultConfig() *Config {
	return &Config{
		Version:   "1",
		OutputDir: ".",
		Counts:    map[string]int{},
		Unique:    []string{"staff.email", "students.email", "books.isbn"},
		Probabilities: Probabilities{
			MembershipEndUnset: 0.2,
			BorrowReturnUnset:  0.3,
		},
		Sinks: Sinks{CSV: true},
		Database: Database{
			Provider: "sqlite",
			URLEnv:   "DATABASE_URL",
			URL:      "sqlite://synthetic_university.db",
		},
		Mongo: Mongo{
			URIEnv:   "MONGO_URI",
			URI:      "mongodb://localhost:27017/",
			Database: "university_db",
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	defaults := DefaultConfig()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}
	if cfg.Counts == nil {
		cfg.Counts = map[string]int{}
	}
	if !v.IsSet("unique") {
		cfg.Unique = defaults.Unique
	}
	if !v.IsSet("probabilities.membership_end_unset") {
		cfg.Probabilities.MembershipEndUnset = defaults.Probabilities.MembershipEndUnset
	}
	if !v.IsSet("probabilities.borrow_return_unset") {
		cfg.Probabilities.BorrowReturnUnset = defaults.Probabilities.BorrowReturnUnset
	}
	if !v.IsSet("sinks.csv") {
		cfg.Sinks.CSV = defaults.Sinks.CSV
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = defaults.Database.Provider
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = defaults.Database.URLEnv
	}
	if cfg.Database.URL == "" && isSQLite(cfg.Database.Provider) {
		cfg.Database.URL = defaults.Database.URL
	}
	if cfg.Mongo.URIEnv == "" {
		cfg.Mongo.URIEnv = defaults.Mongo.URIEnv
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = defaults.Mongo.URI
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = defaults.Mongo.Database
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}

	return &cfg, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("table_column", func(fl validator.FieldLevel) bool {
		table, column, ok := strings.Cut(fl.Field().String(), ".")
		return ok && table != "" && column != "" && !strings.Contains(column, ".")
	})
	return v
}

func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	fe := errs[0]
	switch fe.Tag() {
	case "oneof":
		if fe.StructField() == "Provider" {
			return fmt.Errorf("unsupported database provider: %v. Supported providers: %v", fe.Value(), supportedProviders)
		}
		return fmt.Errorf("%s must be one of [%s], got %v", fe.Namespace(), fe.Param(), fe.Value())
	case "table_column":
		return fmt.Errorf("unique field %q must look like table.column", fe.Value())
	case "required":
		return fmt.Errorf("%s cannot be empty", fe.Namespace())
	default:
		return fmt.Errorf("%s failed %s=%s, got %v", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	}
}

// GetDatabaseURL prefers the environment variable named by url_env over the
// url in the config file.
func (c *Config) GetDatabaseURL() (string, error) {
	if dbURL := os.Getenv(c.Database.URLEnv); dbURL != "" {
		return dbURL, nil
	}
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}
	return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
}

func (c *Config) GetMongoURI() (string, error) {
	if uri := os.Getenv(c.Mongo.URIEnv); uri != "" {
		return uri, nil
	}
	if c.Mongo.URI != "" {
		return c.Mongo.URI, nil
	}
	return "", fmt.Errorf("mongo URI not found in environment variable %s", c.Mongo.URIEnv)
}

func isSQLite(provider string) bool {
	return provider == "sqlite" || provider == "sqlite3"
}
