// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bridge_test

import (
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/tensorbridge/bridge"
	"github.com/born-ml/tensorbridge/term"
)

var discard = logr.Discard()

func open(t *testing.T) *bridge.Bridge {
	t.Helper()
	cfg := bridge.DefaultConfig()
	cfg.RandomSeed = 1
	b, err := bridge.Open(bridge.Options{Config: cfg, Logger: &discard})
	require.NoError(t, err)
	return b
}

func TestOpenDefaults(t *testing.T) {
	b, err := bridge.Open(bridge.Options{Logger: &discard})
	require.NoError(t, err)
	assert.Equal(t, bridge.DefaultConfig(), b.Config())

	cfg := bridge.DefaultConfig()
	cfg.DefaultDType = "int8"
	_, err = bridge.Open(bridge.Options{Config: cfg})
	assert.Error(t, err)
}

func TestOpenUsesGivenLogger(t *testing.T) {
	b, err := bridge.Open(bridge.Options{Logger: &discard})
	require.NoError(t, err)
	assert.False(t, b.Logger().Enabled())

	var opened int
	log := funcr.New(func(_, args string) {
		if strings.Contains(args, `"msg"="opened"`) {
			opened++
		}
	}, funcr.Options{})
	b, err = bridge.Open(bridge.Options{Logger: &log})
	require.NoError(t, err)
	b.Logger().Info("opened")
	assert.Equal(t, 1, opened)
}

func TestDefaultDType(t *testing.T) {
	cfg := bridge.DefaultConfig()
	cfg.DefaultDType = "float64"
	b, err := bridge.Open(bridge.Options{Config: cfg, Logger: &discard})
	require.NoError(t, err)

	x, err := b.Call("zeros", term.MustParse("{1}"))
	require.NoError(t, err)
	dt, err := b.Call("dtype", x)
	require.NoError(t, err)
	assert.Equal(t, term.Atom("float64"), dt)
}

func TestOps(t *testing.T) {
	b := open(t)
	var add *bridge.Op
	for _, op := range b.Ops() {
		if op.Name == "add" {
			add = &op
			break
		}
	}
	require.NotNil(t, add)
	want := bridge.Op{
		Name:    "add",
		Args:    []bridge.Arg{{Name: "input", Kind: "Tensor"}, {Name: "other", Kind: "Tensor"}},
		Returns: "Tensor",
	}
	if diff := cmp.Diff(want, *add); diff != "" {
		t.Errorf("add mismatch (-want +got):\n%s", diff)
	}
}

func TestRaise(t *testing.T) {
	b := open(t)

	_, err := b.Call("zeros", term.MustParse(`"2"`))
	var derr *bridge.DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, term.Atom("invalid_size"), bridge.Raise(err))

	_, err = b.Call("zeros", term.MustParse("{2}"), term.MustParse("%ExTorch.Tensor.Options{device: :cuda}"))
	var nerr *bridge.NativeOperationError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, term.Binary("cuda backend is not available"), bridge.Raise(err))

	_, err = b.Call("nope")
	assert.ErrorIs(t, err, bridge.ErrUnknownOperation)
}

func TestToListRoundTrip(t *testing.T) {
	b := open(t)

	for _, lit := range []string{
		"[[1, 2, 3], [4, 5, 6]]",
		"[[[true], [false]]]",
		"[0.5, -2.25, :inf, :ninf]",
	} {
		t.Run(lit, func(t *testing.T) {
			in := term.MustParse(lit)
			x, err := b.Call("tensor", in)
			require.NoError(t, err)
			out, err := b.Call("to_list", x)
			require.NoError(t, err)
			assert.True(t, term.Equal(in, out), "got %v", out)
		})
	}
}

func TestConcurrentCalls(t *testing.T) {
	b := open(t)
	x, err := b.Call("ones", term.MustParse("{4}"))
	require.NoError(t, err)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for range 200 {
				y, err := b.Call("add", x, x)
				if err != nil {
					return err
				}
				if _, err := b.Call("sum", y, term.Nil, term.False); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	sum, err := b.Call("sum", x, term.Nil, term.False)
	require.NoError(t, err)
	item, err := b.Call("item", sum)
	require.NoError(t, err)
	assert.Equal(t, term.Float(4), item)
}

func TestHandlesAreCollected(t *testing.T) {
	b := open(t)
	baseline := bridge.LiveTensors()

	func() {
		for range 100 {
			_, err := b.Call("rand", term.MustParse("{8, 8}"))
			require.NoError(t, err)
		}
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return bridge.LiveTensors() <= baseline
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRelease(t *testing.T) {
	b := open(t)
	x, err := b.Call("ones", term.MustParse("{3}"))
	require.NoError(t, err)
	y, err := b.Call("neg", x)
	require.NoError(t, err)

	require.NoError(t, b.Release(x))
	require.NoError(t, b.Release(x))

	_, err = b.Call("numel", x)
	require.ErrorIs(t, err, bridge.ErrReleasedTensor)

	n, err := b.Call("numel", y)
	require.NoError(t, err)
	assert.True(t, term.Equal(term.NewInt(3), n))

	var derr *bridge.DecodeError
	require.ErrorAs(t, b.Release(term.Atom("x")), &derr)
}

func TestReprUsesConfiguredPrintDefaults(t *testing.T) {
	cfg := bridge.DefaultConfig()
	cfg.PrintPrecision = 2
	b, err := bridge.Open(bridge.Options{Config: cfg, Logger: &discard})
	require.NoError(t, err)

	x, err := b.Call("tensor", term.MustParse("[0.5, 1.25]"))
	require.NoError(t, err)
	got, err := b.Call("repr", x, term.MustParse("%ExTorch.Utils.PrintOptions{sci_mode: false}"))
	require.NoError(t, err)
	assert.Equal(t, term.Binary("[0.50, 1.25]"), got)
}
