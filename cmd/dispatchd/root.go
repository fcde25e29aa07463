package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags resolve as: command line, then DISPATCH_<FLAG> env, then default.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DISPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "dispatchd",
		Short:         "Location-transparent endpoint dispatcher",
		Long:          "dispatchd serves manifest endpoints over HTTP and calls them, local or remote, by key.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("manifest", "manifest.toml", "path to the TOML endpoint manifest")
	_ = v.BindPFlag("manifest", root.PersistentFlags().Lookup("manifest"))

	root.AddCommand(newServeCmd(v), newCallCmd(v))
	return root
}
