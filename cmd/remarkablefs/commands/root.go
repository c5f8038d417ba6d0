package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "remarkablefs",
	Short: "Mount a reMarkable tablet's document library as a filesystem",
	Long: `remarkablefs exposes a reMarkable tablet's flat, identifier-keyed
document store as a hierarchical filesystem: notebooks render as PDF,
other uploads round-trip as the format they arrived in.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/remarkablefs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable FUSE debug logging")
}
