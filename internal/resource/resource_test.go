package resource

import (
	"errors"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	_ "github.com/born-ml/tensorbridge/internal/backend/cpu"
	"github.com/born-ml/tensorbridge/internal/codec"
	"github.com/born-ml/tensorbridge/internal/errs"
	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/term"
)

func setup(t *testing.T) (*native.Library, *Manager) {
	t.Helper()
	lib, err := native.Open(native.Options{Seed: 3})
	require.NoError(t, err)
	return lib, New(Options{})
}

func zeros(t *testing.T, lib *native.Library, size ...int64) *native.Tensor {
	t.Helper()
	x, err := lib.Zeros(size, native.DefaultTensorOptions)
	require.NoError(t, err)
	return x
}

func TestEncode(t *testing.T) {
	lib, m := setup(t)

	s := m.Encode(zeros(t, lib, 2, 3), nil)
	assert.Equal(t, codec.TensorModule, s.Module())

	keys := make([]string, 0, s.Len())
	for _, f := range s.Fields() {
		keys = append(keys, string(f.Key))
	}
	assert.Equal(t, []string{"resource", "reference", "size", "dtype", "device"}, keys)

	size, _ := s.Get("size")
	assert.True(t, term.Equal(term.MustParse("{2, 3}"), size))
	dtype, _ := s.Get("dtype")
	assert.Equal(t, term.Atom("float32"), dtype)
	device, _ := s.Get("device")
	assert.Equal(t, term.Atom("cpu"), device)

	ref, ok := Reference(s)
	require.True(t, ok)
	assert.Equal(t, term.KindRef, ref.Kind())

	other := m.Encode(zeros(t, lib, 1), nil)
	otherRef, _ := Reference(other)
	assert.False(t, term.Equal(ref, otherRef), "fresh references are unique")
}

func TestEncodeKeepsCallerReference(t *testing.T) {
	lib, m := setup(t)
	marker := term.Tuple{term.Atom("mine"), term.NewInt(1)}

	s := m.Encode(zeros(t, lib, 1), marker)
	ref, ok := Reference(s)
	require.True(t, ok)
	assert.True(t, term.Equal(marker, ref))
}

func TestDecode(t *testing.T) {
	lib, m := setup(t)
	x := zeros(t, lib, 4)
	s := m.Encode(x, nil)

	got, err := m.Decode(s)
	require.NoError(t, err)
	assert.Same(t, x, got)
	assert.EqualValues(t, 2, x.RefCount())
	got.Release()

	res, _ := s.Get("resource")
	got, err = m.Decode(res)
	require.NoError(t, err)
	assert.Same(t, x, got)
	got.Release()

	cell, err := m.Cell(s)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, cell.Size())
	assert.Equal(t, "float32", cell.DType())
	assert.Equal(t, native.CPU, cell.Device())

	for _, bad := range []term.Term{
		term.NewInt(1),
		term.NewResource("not a cell"),
		term.NewStruct(codec.ComplexModule),
		term.NewStruct(codec.TensorModule, term.F("size", term.Tuple{})),
		term.NewStruct(codec.TensorModule, term.F("resource", term.Atom("x"))),
	} {
		_, err := m.Decode(bad)
		var derr *errs.DecodeError
		require.True(t, errors.As(err, &derr), "term %s", bad)
		assert.Equal(t, errs.InvalidTensor, derr.Reason)
	}
}

func TestResolve(t *testing.T) {
	lib, m := setup(t)
	s := m.Encode(zeros(t, lib, 2), nil)

	x, ok, err := m.Resolve(s)
	require.NoError(t, err)
	require.True(t, ok)
	x.Release()

	_, ok, err = m.Resolve(term.NewInt(0))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = m.Resolve(term.NewStruct(codec.TensorModule))
	require.Error(t, err)
	assert.False(t, ok)
}

func TestExplicitRelease(t *testing.T) {
	lib, m := setup(t)
	x := zeros(t, lib, 8)
	s := m.Encode(x, nil)
	assert.EqualValues(t, 1, x.RefCount())

	cell, err := m.Cell(s)
	require.NoError(t, err)
	assert.True(t, cell.Release())
	assert.False(t, cell.Release())
	assert.EqualValues(t, 0, x.RefCount())

	_, err = m.Decode(s)
	assert.ErrorIs(t, err, errs.ErrReleasedTensor)
}

func TestReleaseTerm(t *testing.T) {
	lib, m := setup(t)
	x := zeros(t, lib, 2)
	s := m.Encode(x, nil)

	require.NoError(t, m.Release(s))
	require.NoError(t, m.Release(s))
	assert.EqualValues(t, 0, x.RefCount())
	_, err := m.Decode(s)
	assert.ErrorIs(t, err, errs.ErrReleasedTensor)

	var derr *errs.DecodeError
	require.ErrorAs(t, m.Release(term.NewInt(1)), &derr)
	assert.Equal(t, errs.InvalidTensor, derr.Reason)
}

func TestAcquireRacingRelease(t *testing.T) {
	lib, m := setup(t)
	for range 200 {
		x := zeros(t, lib, 8)
		s := m.Encode(x, nil)

		var g errgroup.Group
		for range 4 {
			g.Go(func() error {
				for range 50 {
					h, err := m.Decode(s)
					if errors.Is(err, errs.ErrReleasedTensor) {
						return nil
					}
					if err != nil {
						return err
					}
					if len(h.Raw().Data()) != 32 {
						return errors.New("acquired a freed buffer")
					}
					h.Release()
				}
				return nil
			})
		}
		g.Go(func() error { return m.Release(s) })
		require.NoError(t, g.Wait())
		require.EqualValues(t, 0, x.RefCount())
	}
}

func TestLoadLogsOnce(t *testing.T) {
	var lines atomic.Int32
	log := funcr.New(func(prefix, args string) {
		if strings.Contains(args, "resource type registered") {
			lines.Add(1)
		}
	}, funcr.Options{})

	lib, err := native.Open(native.Options{Seed: 1})
	require.NoError(t, err)
	m := New(Options{Logger: log})
	m.Load()
	for range 3 {
		m.Encode(zeros(t, lib, 1), nil)
	}
	assert.EqualValues(t, 1, lines.Load())
}

func TestConcurrentAccess(t *testing.T) {
	lib, m := setup(t)
	x := zeros(t, lib, 16)
	s := m.Encode(x, nil)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for range 500 {
				h, err := m.Decode(s)
				if err != nil {
					return err
				}
				if got := lib.Numel(h); got != 16 {
					return errors.New("unexpected numel")
				}
				h.Release()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, x.RefCount())
	runtime.KeepAlive(s)
}

func TestSoak(t *testing.T) {
	if testing.Short() {
		t.Skip("soak test")
	}
	lib, m := setup(t)
	runtime.GC()
	baseline := native.LiveTensors()

	for range 20 {
		var keep []term.Struct
		for range 100 {
			keep = append(keep, m.Encode(zeros(t, lib, 4, 4), nil))
		}
		require.Len(t, keep, 100)
		runtime.KeepAlive(keep)
	}

	require.Eventually(t, func() bool {
		runtime.GC()
		return native.LiveTensors() <= baseline
	}, 10*time.Second, 20*time.Millisecond)
}
