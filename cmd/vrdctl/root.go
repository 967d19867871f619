package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vrdlab/vrdlab/backend/go-services/pkg/logger"
)

var (
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vrdctl",
	Short: "Maintenance tool for the VRD lab content API",
	Long: `vrdctl inspects the collections and attachment storage of the VRD lab API.
It reads the same environment (.env, MONGODB_URI, UPLOAD_DIR, ATTACHMENT_BACKEND)
as the server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.Init(level)
		logger.Debugf("vrdctl %s: log level %s", cmd.Name(), logger.LevelString())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
