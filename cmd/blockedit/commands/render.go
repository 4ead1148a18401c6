package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/store"
)

type renderFlags struct {
	output   string
	storeURL string
	id       string
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render [document.json]",
		Short: "Load a document into the editor and print the saved result",
		Long: `Render loads a document into a headless editor and saves it again.

Blocks of unknown tools are kept as they are. Blocks that fail validation
are dropped and their markup is cleaned with the configured whitelists.
Without an argument the document named by the configuration is used; "-"
reads it from stdin.

Examples:
  # Clean a document with the default configuration
  blockedit render post.json

  # Use Lua tools from a configuration file and store the result
  blockedit render -c editor.toml post.json --store redis://localhost:6379/0 --id post`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, g, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the saved document to a file instead of stdout")
	cmd.Flags().StringVar(&f.storeURL, "store", "", `Also store the result: "memory" or a redis:// URL`)
	cmd.Flags().StringVar(&f.id, "id", "", "Document id used with --store")
	return cmd
}

func runRender(cmd *cobra.Command, g *globalFlags, f *renderFlags, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stderr := cmd.ErrOrStderr()

	if f.storeURL != "" && f.id == "" {
		return failure(stderr, "Missing document id", fmt.Errorf("--store needs --id"))
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return failure(stderr, "Invalid configuration", err)
	}
	if len(args) == 1 {
		doc, err := readDocument(args[0], cmd.InOrStdin())
		if err != nil {
			return failure(stderr, "Cannot read document", err)
		}
		cfg.Data = &doc
	}

	e, err := openEditor(ctx, cfg, stderr)
	if err != nil {
		return failure(stderr, "Editor failed to start", err)
	}
	defer func() { _ = e.Destroy() }()

	out, err := e.Save(ctx)
	if err != nil {
		return failure(stderr, "Save failed", err)
	}

	encoded, err := document.EncodeIndent(out)
	if err != nil {
		return failure(stderr, "Cannot encode document", err)
	}
	if f.output != "" {
		if err := os.WriteFile(f.output, append(encoded, '\n'), 0o644); err != nil {
			return failure(stderr, "Cannot write output", err)
		}
		success(stderr, "wrote %d blocks to %s", len(out.Blocks), f.output)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	}

	if f.storeURL != "" {
		s, closeStore, err := openStore(f.storeURL)
		if err != nil {
			return failure(stderr, "Cannot open store", err)
		}
		defer closeStore()
		if err := s.Put(ctx, f.id, out); err != nil {
			return failure(stderr, "Cannot store document", err)
		}
		success(stderr, "stored %s", f.id)
	}
	return nil
}

// openStore opens the store named by url. "memory" is a store that lives
// as long as the process.
func openStore(url string) (store.Store, func(), error) {
	if url == "memory" {
		return store.NewMemory(), func() {}, nil
	}
	s, err := newRedisStore(url)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}
