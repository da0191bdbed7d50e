package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the API response cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Discard all cached API responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := openCache(cfg)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		c.Purge()
		fmt.Fprintln(os.Stdout, "Cache purged.")
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := openCache(cfg)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		data, err := json.MarshalIndent(c.GetStats(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
