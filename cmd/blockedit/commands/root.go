// Package commands implements the blockedit command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/blockedit/internal/app"
	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/config/loader"
	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/ui"
)

var versionString = "dev"

// SetVersionInfo sets the version reported by --version.
func SetVersionInfo(version, commit, date string) {
	versionString = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// Execute runs the command line with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "blockedit",
		Short: "Headless block editor engine",
		Long: `blockedit loads block documents into a headless editor, runs them
through the tools configured for them and writes the saved result.

The editor configuration is read from a TOML, YAML or JSON file given
with --config. Without one, the defaults are used: paragraphs only and
the default inline whitelist.`,
		Version:       versionString,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Editor configuration file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: VERBOSE, INFO, WARN or ERROR (default from config, else WARN)")

	root.AddCommand(
		newRenderCmd(g),
		newCleanCmd(g),
		newWatchCmd(g),
		newKeysCmd(g),
		newDocsCmd(),
	)
	return root
}

// loadConfig reads the configuration named by --config, or an empty one.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if g.configPath != "" {
		loaded, err := loader.New().Load(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	switch {
	case g.logLevel != "":
		cfg.LogLevel = g.logLevel
	case cfg.LogLevel == "":
		cfg.LogLevel = "WARN"
	}
	return cfg, nil
}

// holderDocument returns a document holding every id cfg may mount in.
func holderDocument(cfg *config.Config) *ui.Document {
	return ui.NewDocument(cfg.Holder, cfg.HolderID, config.DefaultHolder)
}

// openEditor starts an editor for cfg and reports startup warnings to
// stderr.
func openEditor(ctx context.Context, cfg *config.Config, stderr io.Writer, opts ...app.Option) (*app.Editor, error) {
	base := []app.Option{
		app.WithResolver(holderDocument(cfg)),
		app.WithLogOutput(stderr),
	}
	e, err := app.Open(ctx, cfg, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	for _, w := range e.Warnings() {
		warning(stderr, "%v", w)
	}
	return e, nil
}

// readDocument decodes the document at path, or stdin for "-".
func readDocument(path string, stdin io.Reader) (document.Output, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return document.Output{}, err
	}
	return document.Decode(raw)
}
