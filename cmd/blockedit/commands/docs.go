package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/blockedit/internal/document"
	redisstore "github.com/dshills/blockedit/internal/store/redis"
)

// newRedisStore connects to url and checks the server answers.
func newRedisStore(url string, opts ...redisstore.Option) (*redisstore.Store, error) {
	s, err := redisstore.NewFromURL(url, opts...)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return s, nil
}

func newDocsCmd() *cobra.Command {
	var storeURL string
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Inspect documents stored in Redis",
	}
	cmd.PersistentFlags().StringVar(&storeURL, "store", "redis://localhost:6379/0", "Redis URL")

	withStore := func(run func(ctx context.Context, cmd *cobra.Command, s *redisstore.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, err := newRedisStore(storeURL)
			if err != nil {
				return failure(cmd.ErrOrStderr(), "Cannot open store", err)
			}
			defer func() { _ = s.Close() }()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return run(ctx, cmd, s, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored document ids",
			Args:  cobra.NoArgs,
			RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *redisstore.Store, _ []string) error {
				ids, err := s.List(ctx)
				if err != nil {
					return failure(cmd.ErrOrStderr(), "Cannot list documents", err)
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Print a stored document",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *redisstore.Store, args []string) error {
				out, err := s.Get(ctx, args[0])
				if err != nil {
					return failure(cmd.ErrOrStderr(), "Cannot read document", err)
				}
				encoded, err := document.EncodeIndent(out)
				if err != nil {
					return failure(cmd.ErrOrStderr(), "Cannot encode document", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm <id>...",
			Short: "Delete stored documents",
			Args:  cobra.MinimumNArgs(1),
			RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *redisstore.Store, args []string) error {
				for _, id := range args {
					if err := s.Delete(ctx, id); err != nil {
						return failure(cmd.ErrOrStderr(), "Cannot delete document", err)
					}
					success(cmd.ErrOrStderr(), "deleted %s", id)
				}
				return nil
			}),
		},
	)
	return cmd
}
