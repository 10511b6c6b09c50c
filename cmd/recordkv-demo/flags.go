package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	backend  string
	dataPath string
	logLevel string
)

// initFlags sets up the persistent command-line flags shared by every
// subcommand, following the teacher's cmd/guocedb persistent-flags
// pattern (one --config flag plus a handful of overridable settings
// bound into common/config.Loader.BindFlags).
func initFlags(cmd *cobra.Command) {
	pFlags := cmd.PersistentFlags()
	pFlags.StringVarP(&cfgFile, "config", "c", "", "config file path")
	pFlags.StringVar(&backend, "backend", "", "backend to use: memory|bolt|badger")
	pFlags.StringVar(&dataPath, "data-path", "", "on-disk path for bolt/badger backends")
	pFlags.StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")
}

// buildRootCmd creates the root command and wires every subcommand.
func buildRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordkv-demo",
		Short: "recordkv-demo - a schema-driven serialization and indexed kv-store demo",
		Long: `recordkv-demo exercises the serial/keys/kvstore/index packages end to
end: it opens a kvstore backend, builds an indexed record store for the
userrecord.User record, and lets you put/get/del/list records from the
command line.`,
	}

	initFlags(cmd)
	cmd.AddCommand(buildVersionCmd())
	cmd.AddCommand(buildPutCmd())
	cmd.AddCommand(buildGetCmd())
	cmd.AddCommand(buildGetByEmailCmd())
	cmd.AddCommand(buildDelCmd())
	cmd.AddCommand(buildListCmd())

	return cmd
}
