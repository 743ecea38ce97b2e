package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/tensorbridge/bridge"
	"github.com/born-ml/tensorbridge/term"
)

type soakOptions struct {
	cycles  int
	tensors int
	workers int
	settle  time.Duration
	release bool
}

func newSoakCmd(a *app) *cobra.Command {
	opts := soakOptions{cycles: 100, tensors: 64, workers: runtime.GOMAXPROCS(0), settle: 5 * time.Second}
	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Create and drop tensors, then check that every handle was freed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			if opts.cycles < 0 || opts.tensors < 0 || opts.workers <= 0 {
				return errors.New("cycles and tensors must not be negative and workers must be positive")
			}

			before := bridge.LiveTensors()
			start := time.Now()
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(opts.workers)
			for range opts.cycles {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					return soakCycle(b, opts.tensors, opts.release)
				})
			}
			if err := g.Wait(); err != nil {
				return errors.Wrap(err, "soak cycle")
			}
			peak := bridge.LiveTensors()

			after := settle(before, opts.settle)
			b.Logger().Info("soak finished",
				"cycles", opts.cycles, "tensors", opts.tensors, "workers", opts.workers,
				"elapsed", time.Since(start))

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "live tensors before: %d\n", before)
			fmt.Fprintf(w, "live tensors after work: %d\n", peak)
			fmt.Fprintf(w, "live tensors after collection: %d\n", after)
			if after > before {
				return errors.Errorf("%d tensor handles were not freed", after-before)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.cycles, "cycles", opts.cycles, "number of create/drop cycles")
	cmd.Flags().IntVar(&opts.tensors, "tensors", opts.tensors, "tensors created per cycle")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "concurrent cycles")
	cmd.Flags().DurationVar(&opts.settle, "settle", opts.settle, "how long to wait for handles to be collected")
	cmd.Flags().BoolVar(&opts.release, "release", false, "release tensors explicitly instead of leaving them to the collector")
	return cmd
}

// soakCycle creates n tensors, reduces each one and drops them all. With
// release set the tensors are freed right away.
func soakCycle(b *bridge.Bridge, n int, release bool) error {
	size := term.MustParse("{16, 16}")
	for range n {
		x, err := b.Call("rand", size)
		if err != nil {
			return err
		}
		y, err := b.Call("mul", x, x)
		if err != nil {
			return err
		}
		if _, err := b.Call("sum", y, term.Nil, term.False); err != nil {
			return err
		}
		if release {
			for _, t := range []term.Term{x, y} {
				if err := b.Release(t); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// settle forces collections until the live count drops to target or the
// deadline passes, and returns the last count seen.
func settle(target int64, d time.Duration) int64 {
	deadline := time.Now().Add(d)
	for {
		runtime.GC()
		live := bridge.LiveTensors()
		if live <= target || time.Now().After(deadline) {
			return live
		}
		time.Sleep(10 * time.Millisecond)
	}
}
