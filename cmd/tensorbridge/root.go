package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/born-ml/tensorbridge/bridge"
)

// app carries the settings shared by every subcommand.
type app struct {
	cfg     bridge.Config
	loadErr error
	b       *bridge.Bridge
}

func (a *app) open() (*bridge.Bridge, error) {
	if a.b != nil {
		return a.b, nil
	}
	b, err := bridge.Open(bridge.Options{Config: a.cfg})
	if err != nil {
		return nil, errors.Wrap(err, "opening bridge")
	}
	a.b = b
	return b, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	a.cfg, a.loadErr = bridge.LoadConfig()
	if a.loadErr != nil {
		a.cfg = bridge.DefaultConfig()
	}

	root := &cobra.Command{
		Use:           "tensorbridge",
		Short:         "Call tensor operations with host terms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return errors.Wrap(a.loadErr, "loading configuration")
		},
	}
	a.cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newVersionCmd(),
		newOpsCmd(a),
		newCallCmd(a),
		newSoakCmd(a),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tensorbridge %s\n", version)
		},
	}
}
