// Package config resolves folio settings from flags, FOLIO_* environment
// variables, a .env file and an optional .folio.{yaml,toml,json} file.
package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variables, e.g. FOLIO_CONTENT_DIR.
const EnvPrefix = "FOLIO"

// Setting keys, shared by the config file, the environment and CLI flags.
const (
	KeyContentDir    = "content_dir"
	KeyStaticDir     = "static_dir"
	KeySystemDir     = "system_dir"
	KeyIgnore        = "ignore"
	KeySchema        = "schema"
	KeyCheckRefs     = "check_refs"
	KeyStrict        = "strict"
	KeyIncludeFuture = "include_future"
	KeyMetricsFile   = "metrics_file"
	KeyNoCache       = "no_cache"
	KeySummaryWords  = "summary_words"
)

// Config holds the resolved settings.
type Config struct {
	ContentDir    string
	StaticDir     string
	SystemDir     string
	Ignore        []string
	Schema        string
	CheckRefs     bool
	Strict        bool
	IncludeFuture bool
	MetricsFile   string
	NoCache       bool
	SummaryWords  int

	// File is the config file that was read, if any.
	File string
}

// Options controls where Load looks for files.
type Options struct {
	// ConfigFile is an explicit config file; it must exist.
	ConfigFile string
	// Dir is searched for .folio.* and .env. Defaults to the working directory.
	Dir string
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyContentDir, "content")
	v.SetDefault(KeyStaticDir, "static")
	v.SetDefault(KeySystemDir, ".folio")
	v.SetDefault(KeyIgnore, []string{})
	v.SetDefault(KeySchema, "")
	v.SetDefault(KeyCheckRefs, false)
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeyIncludeFuture, false)
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeyNoCache, false)
	v.SetDefault(KeySummaryWords, 70)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads .env and the config file into v and resolves the settings.
// Values already in the process environment win over .env.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(".folio")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	summaryWords, err := cast.ToIntE(v.Get(KeySummaryWords))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeySummaryWords, err)
	}

	cfg := &Config{
		ContentDir:    v.GetString(KeyContentDir),
		StaticDir:     v.GetString(KeyStaticDir),
		SystemDir:     v.GetString(KeySystemDir),
		Ignore:        stringList(v.Get(KeyIgnore)),
		Schema:        v.GetString(KeySchema),
		CheckRefs:     v.GetBool(KeyCheckRefs),
		Strict:        v.GetBool(KeyStrict),
		IncludeFuture: v.GetBool(KeyIncludeFuture),
		MetricsFile:   v.GetString(KeyMetricsFile),
		NoCache:       v.GetBool(KeyNoCache),
		SummaryWords:  summaryWords,
		File:          v.ConfigFileUsed(),
	}
	if cfg.ContentDir == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyContentDir)
	}
	return cfg, nil
}

// stringList accepts a list or a comma separated string, as environment
// variables can only carry the latter.
func stringList(v any) []string {
	var raw []string
	if s, ok := v.(string); ok {
		raw = strings.Split(s, ",")
	} else {
		raw = cast.ToStringSlice(v)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
