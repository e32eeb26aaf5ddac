// Package config loads the run configuration from environment variables and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/docmigrate/internal/store"
)

// Defaults.
const (
	DefaultHashCost   = 10
	DefaultDryRun     = true
	DefaultBatchSize  = 1000
	DefaultCollection = "providers"
)

// Keys, each bound to the upper-cased environment variable and to the flag
// with underscores replaced by hyphens.
const (
	KeyStoreURI   = "store_uri"
	KeyHashCost   = "hash_cost"
	KeyDryRun     = "dry_run"
	KeyBatchSize  = "batch_size"
	KeyCollection = "collection"
)

var keys = []string{KeyStoreURI, KeyHashCost, KeyDryRun, KeyBatchSize, KeyCollection}

// ErrMissingStoreURI is returned when no store URI was configured.
var ErrMissingStoreURI = errors.New("STORE_URI is required")

// Config is the validated run configuration.
type Config struct {
	StoreURI   string `mapstructure:"store_uri"  validate:"required"`
	HashCost   int    `mapstructure:"hash_cost"  validate:"min=4,max=31"`
	DryRun     bool   `mapstructure:"dry_run"`
	BatchSize  int    `mapstructure:"batch_size" validate:"min=1"`
	Collection string `mapstructure:"collection" validate:"required,collection"`
}

// Loader reads configuration through a viper instance.
type Loader struct {
	v        *viper.Viper
	validate *validator.Validate
}

// NewLoader creates a Loader with defaults and environment bindings.
func NewLoader() (*Loader, error) {
	v := viper.New()
	v.SetDefault(KeyHashCost, DefaultHashCost)
	v.SetDefault(KeyDryRun, DefaultDryRun)
	v.SetDefault(KeyBatchSize, DefaultBatchSize)
	v.SetDefault(KeyCollection, DefaultCollection)
	for _, key := range keys {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	validate := validator.New()
	if err := RegisterCustomValidators(validate); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}
	return &Loader{v: v, validate: validate}, nil
}

// EnvName returns the environment variable for a key.
func EnvName(key string) string {
	return strings.ToUpper(key)
}

// FlagName returns the command-line flag for a key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// RegisterFlags adds one flag per key to fs. Flag defaults are only shown in
// help; a flag overrides the environment only when set explicitly.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagName(KeyStoreURI), "", "record store URI (env STORE_URI)")
	fs.Int(FlagName(KeyHashCost), DefaultHashCost, "bcrypt cost for plain-text passwords (env HASH_COST)")
	fs.Bool(FlagName(KeyDryRun), DefaultDryRun, "compute changes without writing (env DRY_RUN)")
	fs.Int(FlagName(KeyBatchSize), DefaultBatchSize, "operations per bulk write (env BATCH_SIZE)")
	fs.String(FlagName(KeyCollection), DefaultCollection, "collection to migrate (env COLLECTION)")
}

// BindFlags binds the flags registered by RegisterFlags.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for _, key := range keys {
		flag := fs.Lookup(FlagName(key))
		if flag == nil {
			continue
		}
		if err := l.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}
	return nil
}

// Set overrides a key (for testing).
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load resolves and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.StoreURI = strings.TrimSpace(cfg.StoreURI)
	cfg.Collection = strings.TrimSpace(cfg.Collection)
	if cfg.StoreURI == "" {
		return nil, ErrMissingStoreURI
	}
	if err := l.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// RegisterCustomValidators registers the "collection" rule.
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("collection", validateCollection)
}

func validateCollection(fl validator.FieldLevel) bool {
	return store.ValidCollection(fl.Field().String())
}
