package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codan/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the result cache",
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the cache directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.Dir())
		return nil
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached result",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			return err
		}
		if err := c.DropAll(); err != nil {
			return fmt.Errorf("failed to clean cache: %w", err)
		}
		quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "removed cached results in %s\n", c.Dir())
		}
		return nil
	},
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/codan)")
	cacheCmd.AddCommand(cacheDirCmd, cacheCleanCmd)
}

func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if dir != "" {
		return cache.Open(dir)
	}
	return cache.OpenDefault("codan")
}
