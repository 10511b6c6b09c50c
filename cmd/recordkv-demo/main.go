// The recordkv-demo command is a worked CLI example over the serial,
// keys, kvstore, and index packages: it opens a configurable backend and
// lets the caller put/get/del/list userrecord.User records.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/recordstore/common/config"
	"github.com/turtacn/recordstore/common/constants"
	"github.com/turtacn/recordstore/common/log"
)

func main() {
	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration with the demo's flags bound, then
// initializes the global logger from the resolved Log settings, mirroring
// the teacher's runServer: load config, then init logging from it before
// doing anything else.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadWithFlags(cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log.InitLogger(cfg.Log.FilePath, cfg.Log.Level)
	return cfg, nil
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("recordkv-demo %s\n", constants.Version)
		},
	}
}
