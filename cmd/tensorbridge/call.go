package main

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/born-ml/tensorbridge/bridge"
	"github.com/born-ml/tensorbridge/term"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newCallCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		then   []string
	)
	cmd := &cobra.Command{
		Use:   "call OP [TERM...]",
		Short: "Run an operation on term literals",
		Long: `Run an operation on term literals and print the result.

Each TERM is a host literal: :atom, nil, true, false, integers, floats,
"binaries", {tuples}, [lists] and %Module{field: value} structs.
With --then the result is passed as the only argument to the next
operation, e.g.

  tensorbridge call tensor '[[1, 2], [3, 4]]' --then neg --then to_list`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			terms := make([]term.Term, len(args)-1)
			for i, src := range args[1:] {
				if terms[i], err = term.Parse(src); err != nil {
					return errors.Wrapf(err, "argument %d", i+1)
				}
			}

			out, err := invoke(b, args[0], terms...)
			if err != nil {
				return err
			}
			for _, op := range then {
				if out, err = invoke(b, op, out); err != nil {
					return err
				}
			}
			return render(cmd.OutOrStdout(), out, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringArrayVar(&then, "then", nil, "operation applied to the previous result (repeatable)")
	return cmd
}

func invoke(b *bridge.Bridge, op string, args ...term.Term) (term.Term, error) {
	out, err := b.Call(op, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s raised %v", op, bridge.Raise(err))
	}
	return out, nil
}

func render(w io.Writer, t term.Term, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, t)
		return err
	}
	enc := json.NewEncoder(w)
	return errors.Wrap(enc.Encode(term.Plain(t)), "encoding result")
}
