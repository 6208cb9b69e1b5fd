// Package main is the entry point for the wishctl CLI.
//
// wishctl edits a wishlist data directory directly, without going through
// the HTTP server. It shares the storage package with the server, so the
// same locking and atomic writes apply.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/maruel/wishlist/internal/storage"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via ldflags.
var Version = "dev"

// defaultConfigFile is read from the working directory when --config is not
// given.
const defaultConfigFile = ".wishctl.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fileConfig is the content of the YAML configuration file.
type fileConfig struct {
	DataDir string `yaml:"data_dir"`
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	dataDir    string
	verbose    bool
}

// openStore resolves the data directory from the flags and the
// configuration file, then opens it.
func (o *rootOptions) openStore(cmd *cobra.Command) (*storage.Store, error) {
	dir := o.dataDir
	if !cmd.Flags().Changed("data-dir") {
		cfg, err := loadFileConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		if cfg.DataDir != "" {
			dir = cfg.DataDir
		}
	}
	slog.Debug("Opening data directory", "dir", dir)
	return storage.New(dir)
}

// loadFileConfig reads path. A missing default configuration file is not an
// error; a missing explicit one is.
func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the command line.
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "wishctl",
		Short: "wishctl - manage a wishlist data directory",
		Long: `wishctl manages the groups, names and wish lists stored in a wishlist
data directory. It is meant for administration and backups; visitors use the
web interface.

The data directory is taken from --data-dir, then from data_dir in the
configuration file (.wishctl.yaml by default), then defaults to ./data.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
				Level:      level,
				TimeFormat: "15:04:05.000",
				NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
			})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("wishctl version {{.Version}}\n")
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "configuration file (default "+defaultConfigFile+")")
	root.PersistentFlags().StringVarP(&opts.dataDir, "data-dir", "d", "./data", "data directory")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newGroupsCmd(opts),
		newNamesCmd(opts),
		newContentCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newLogCmd(opts),
	)
	return root
}

// resolveGroup normalizes slug and fails when the group is not registered.
func resolveGroup(s *storage.Store, slug string) (string, error) {
	group := storage.Slugify(slug)
	ok, err := s.GroupExists(group)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("unknown group %q", slug)
	}
	return group, nil
}

// hintIfTerminal tells the user how to end the input when r is an
// interactive terminal.
func hintIfTerminal(cmd *cobra.Command, r io.Reader) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Reading from stdin, end with Ctrl-D.")
	}
}
