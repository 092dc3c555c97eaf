package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/internal/config"
	"github.com/aretw0/folio/pkg/core"
)

// errCheckFailed signals a failed check; the details were already printed.
var errCheckFailed = errors.New("check failed")

// app carries what the commands share: settings, logger and the lazily
// built service.
type app struct {
	v          *viper.Viper
	cfg        *config.Config
	logger     *slog.Logger
	verbose    bool
	configFile string
	rootDir    string

	svc *core.Service
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "folio",
		Short: "Check and index the content tree of a static-site blog",
		Long: `folio reads the Markdown documents of a blog, enforces the front matter
contract (title, date, draft, tags, categories), and lists the published
posts in date order or grouped by taxonomy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&a.configFile, "config", "", "Config file (default: .folio.{yaml,toml,json} in the site root)")
	flags.StringVar(&a.rootDir, "root", "", "Site root (default: discovered from the working directory)")
	flags.StringP("content", "C", "", "Content directory, relative to the site root")
	flags.String("static", "", "Static directory for root-relative references")
	flags.StringSlice("ignore", nil, "Glob of content paths to skip (repeatable)")
	flags.String("schema", "", "JSON Schema applied to every header")
	flags.Bool("no-cache", false, "Do not read or write the header index")

	bindFlag(a.v, config.KeyContentDir, flags.Lookup("content"))
	bindFlag(a.v, config.KeyStaticDir, flags.Lookup("static"))
	bindFlag(a.v, config.KeyIgnore, flags.Lookup("ignore"))
	bindFlag(a.v, config.KeySchema, flags.Lookup("schema"))
	bindFlag(a.v, config.KeyNoCache, flags.Lookup("no-cache"))

	rootCmd.AddCommand(
		newCheckCmd(a),
		newListCmd(a),
		newTaxonomyCmd(a),
		newShowCmd(a),
		newFmtCmd(a),
		newWatchCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *app) setup(stderr io.Writer) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	root := a.rootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		if found, err := folio.FindSiteRoot(wd); err == nil {
			root = found
		} else {
			root = wd
		}
	}
	a.rootDir = root

	cfg, err := config.Load(a.v, config.Options{ConfigFile: a.configFile, Dir: root})
	if err != nil {
		return err
	}
	cfg.ContentDir = resolve(root, cfg.ContentDir)
	cfg.StaticDir = resolve(root, cfg.StaticDir)
	if cfg.Schema != "" {
		cfg.Schema = resolve(root, cfg.Schema)
	}
	if cfg.MetricsFile != "" {
		cfg.MetricsFile = resolve(root, cfg.MetricsFile)
	}
	a.cfg = cfg

	a.logger.Debug("configuration resolved",
		"root", root,
		"content_dir", cfg.ContentDir,
		"config_file", cfg.File,
	)
	return nil
}

// service builds the service on first use.
func (a *app) service() (*core.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}

	opts := []folio.Option{
		folio.WithLogger(a.logger),
		folio.WithSystemDir(a.cfg.SystemDir),
		folio.WithIgnore(a.cfg.Ignore...),
		folio.WithCache(!a.cfg.NoCache),
		folio.WithStaticDir(a.cfg.StaticDir),
		folio.WithReferenceChecks(a.cfg.CheckRefs),
		folio.WithSummaryWords(a.cfg.SummaryWords),
		folio.WithWatcherErrorHandler(func(err error) {
			a.logger.Warn("watch error", "error", err)
		}),
	}
	if a.cfg.Schema != "" {
		opts = append(opts, folio.WithSchema(a.cfg.Schema))
	}

	svc, err := folio.New(a.cfg.ContentDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open content at %s: %w", a.cfg.ContentDir, err)
	}
	a.svc = svc
	return svc, nil
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
