package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clustergraph/pkg/cache"
	"github.com/matzehuels/clustergraph/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cachePingCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached diagrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if c.cfg.Cache.Backend != config.CacheFile {
				printWarning(out, "Cache backend is %q; only the file cache can be cleared", c.cfg.Cache.Backend)
				return nil
			}

			fc, err := cache.NewFileCache(c.cfg.Cache.Dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			if count == 0 {
				printInfo(out, "Cache is empty")
				return nil
			}
			printSuccess(out, "Cleared %d cached entries", count)
			printDetail(out, "Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cfg.Cache.Dir)
			return nil
		},
	}
}

// cachePingCommand creates the "cache ping" subcommand.
func (c *CLI) cachePingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the Redis cache is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if c.cfg.Cache.Backend != config.CacheRedis {
				printInfo(out, "Cache backend is %q; nothing to ping", c.cfg.Cache.Backend)
				return nil
			}
			rc := cache.NewRedisCache(cache.RedisOptions{
				Addr:    c.cfg.Cache.RedisAddr,
				DB:      c.cfg.Cache.RedisDB,
				Prefix:  c.cfg.Cache.Prefix,
				Backoff: &cache.NoRetry,
			})
			defer rc.Close()

			if err := rc.Ping(cmd.Context()); err != nil {
				return err
			}
			printSuccess(out, "Redis reachable at %s", c.cfg.Cache.RedisAddr)
			return nil
		},
	}
}

