package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/sanitizer"
)

func newCleanCmd(g *globalFlags) *cobra.Command {
	var keepNested bool
	cmd := &cobra.Command{
		Use:   "clean [html]...",
		Short: "Clean HTML with the configured whitelist",
		Long: `Clean removes markup the sanitizer whitelist does not allow.

Each argument is cleaned and printed on its own line. Without arguments
the whole of stdin is cleaned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			cfg, err := g.loadConfig()
			if err != nil {
				return failure(stderr, "Invalid configuration", err)
			}
			norm, err := config.Normalize(cfg)
			if err != nil {
				return failure(stderr, "Invalid configuration", err)
			}

			var opts []sanitizer.Option
			if keepNested {
				opts = append(opts, sanitizer.KeepNestedBlockElements())
			}
			j, err := sanitizer.New(norm.Sanitizer, opts...)
			if err != nil {
				return failure(stderr, "Invalid sanitizer whitelist", err)
			}

			if len(args) == 0 {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return failure(stderr, "Cannot read stdin", err)
				}
				args = []string{strings.TrimSuffix(string(raw), "\n")}
			}
			for _, html := range args {
				fmt.Fprintln(cmd.OutOrStdout(), j.Clean(html))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepNested, "keep-nested", false, "Keep block elements nested in block elements")
	return cmd
}
