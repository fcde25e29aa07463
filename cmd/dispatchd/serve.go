package main

import (
	"github.com/joeydtaylor/steeze-dispatch/pkg/serverfx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve manifest endpoints over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fx.New(serverfx.Module(
				serverfx.WithService("dispatchd"),
				serverfx.WithManifestPath(v.GetString("manifest")),
				serverfx.WithDefaultListen(v.GetString("listen")),
			)).Run()
			return nil
		},
	}
	cmd.Flags().String("listen", ":4000", "listen address when SERVER_LISTEN_ADDRESS is unset")
	_ = v.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	return cmd
}
