package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish media files listed in a spreadsheet",
	Long: `publish reads a sheet of upload jobs, matches each row to a media file,
uploads it with a scheduled publish time and writes the outcome back
into the row's status column.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "Path to config file")
	rootCmd.AddCommand(runCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
