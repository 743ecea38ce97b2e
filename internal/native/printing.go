package native

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/born-ml/tensorbridge/internal/tensor"
)

// formatter renders the elements of one tensor (or one component of a
// complex tensor) at a common width.
type formatter struct {
	opts     PrintOptions
	floating bool
	boolean  bool
	intMode  bool
	sciMode  bool
	width    int
}

func newFormatter(vals []tensor.Value, dt tensor.DataType, opts PrintOptions) *formatter {
	f := &formatter{
		opts:     opts,
		floating: dt.IsFloatingPoint(),
		boolean:  dt == tensor.Bool,
		intMode:  true,
		width:    1,
	}
	if !f.floating {
		for _, v := range vals {
			f.width = max(f.width, len(f.plain(v)))
		}
		return f
	}

	var finite []float64
	for _, v := range vals {
		x := v.Float()
		if x != 0 && !math.IsNaN(x) && !math.IsInf(x, 0) {
			finite = append(finite, x)
		}
	}
	if len(finite) > 0 {
		lo, hi := math.Inf(1), 0.0
		for _, x := range finite {
			if x != math.Ceil(x) {
				f.intMode = false
			}
			a := math.Abs(x)
			lo, hi = min(lo, a), max(hi, a)
		}
		if f.intMode {
			f.sciMode = hi/lo > 1000 || hi > 1e8
		} else {
			f.sciMode = hi/lo > 1000 || hi > 1e8 || lo < 1e-4
		}
	}

	switch opts.SciMode {
	case SciModeOn:
		f.sciMode = true
	case SciModeOff:
		f.sciMode = false
	}
	for _, x := range finite {
		f.width = max(f.width, len(f.number(x)))
	}
	return f
}

// number formats a finite float without padding or the int-mode dot.
func (f *formatter) number(x float64) string {
	switch {
	case f.sciMode:
		return strconv.FormatFloat(x, 'e', int(f.opts.Precision), 64)
	case f.intMode:
		return strconv.FormatFloat(x, 'f', 0, 64)
	default:
		return strconv.FormatFloat(x, 'f', int(f.opts.Precision), 64)
	}
}

func (f *formatter) plain(v tensor.Value) string {
	switch {
	case f.boolean:
		if v.Bool() {
			return "True"
		}
		return "False"
	case v.Type.IsUnsigned():
		return strconv.FormatUint(v.Uint(), 10)
	default:
		return strconv.FormatInt(v.Int(), 10)
	}
}

func (f *formatter) format(v tensor.Value) string {
	if !f.floating {
		s := f.plain(v)
		return pad(s, f.width-len(s))
	}

	x := v.Float()
	var s, suffix string
	switch {
	case math.IsNaN(x):
		s = "nan"
	case math.IsInf(x, 1):
		s = "inf"
	case math.IsInf(x, -1):
		s = "-inf"
	default:
		s = f.number(x)
		if f.intMode && !f.sciMode {
			suffix = "."
		}
	}
	return pad(s, f.width-len(s)) + suffix
}

func pad(s string, n int) string {
	if n <= 0 {
		return s
	}
	return strings.Repeat(" ", n) + s
}

// printer walks a contiguous tensor. imag is non-nil for complex tensors.
type printer struct {
	src        *tensor.RawTensor
	shape      tensor.Shape
	strides    []int
	opts       PrintOptions
	summarize  bool
	real, imag *formatter
}

func formatTensor(raw *tensor.RawTensor, opts PrintOptions) string {
	if raw.NumElements() == 0 {
		return "[]"
	}
	p := &printer{
		src:       raw,
		shape:     raw.Shape(),
		strides:   raw.Shape().ComputeStrides(),
		opts:      opts,
		summarize: float64(raw.NumElements()) > opts.Threshold,
	}

	var flat []int
	if p.summarize {
		flat = p.summarized(0, 0, nil)
	} else {
		flat = make([]int, raw.NumElements())
		for i := range flat {
			flat[i] = i
		}
	}

	dt := raw.DType()
	if dt.IsComplex() {
		re := make([]tensor.Value, len(flat))
		im := make([]tensor.Value, len(flat))
		for i, j := range flat {
			c := raw.At(j).Complex()
			re[i] = tensor.FloatValue(real(c), tensor.Float64)
			im[i] = tensor.FloatValue(imag(c), tensor.Float64)
		}
		p.real = newFormatter(re, tensor.Float64, opts)
		p.imag = newFormatter(im, tensor.Float64, opts)
	} else {
		vals := make([]tensor.Value, len(flat))
		for i, j := range flat {
			vals[i] = raw.At(j)
		}
		p.real = newFormatter(vals, dt, opts)
	}
	return p.tensor(0, 0, 0)
}

// summarized collects the flat indices that remain visible once leading and
// trailing edge items are kept along every dimension.
func (p *printer) summarized(dim, base int, out []int) []int {
	rank := len(p.shape)
	if rank == 0 {
		return append(out, 0)
	}
	edge := int(p.opts.EdgeItems)
	if rank > 1 && dim < rank-1 && edge == 0 {
		return out
	}
	for _, i := range p.visible(p.shape[dim], edge) {
		off := base + i*p.strides[dim]
		if dim == rank-1 {
			out = append(out, off)
		} else {
			out = p.summarized(dim+1, off, out)
		}
	}
	return out
}

// visible returns the positions along a dimension of size n that are
// printed, or all of them when n is small.
func (p *printer) visible(n, edge int) []int {
	var idx []int
	if n > 2*edge {
		for i := 0; i < edge; i++ {
			idx = append(idx, i)
		}
		for i := n - edge; i < n; i++ {
			idx = append(idx, i)
		}
		return idx
	}
	for i := 0; i < n; i++ {
		idx = append(idx, i)
	}
	return idx
}

func (p *printer) scalar(off int) string {
	v := p.src.At(off)
	if p.imag == nil {
		return p.real.format(v)
	}
	c := v.Complex()
	re := p.real.format(tensor.FloatValue(real(c), tensor.Float64))
	im := strings.TrimLeft(p.imag.format(tensor.FloatValue(imag(c), tensor.Float64)), " ") + "j"
	if im[0] == '+' || im[0] == '-' {
		return re + im
	}
	return re + "+" + im
}

func (p *printer) vector(base, indent int) string {
	n := p.shape[len(p.shape)-1]
	stride := p.strides[len(p.strides)-1]
	edge := int(p.opts.EdgeItems)

	elemLen := p.real.width + 2
	if p.imag != nil {
		elemLen += p.imag.width + 1
	}
	perLine := max(1, int(math.Floor(float64(int(p.opts.LineWidth)-indent)/float64(elemLen))))

	var data []string
	switch {
	case p.summarize && edge == 0:
		data = append(data, "...")
	case p.summarize && n > 2*edge:
		for i := 0; i < edge; i++ {
			data = append(data, p.scalar(base+i*stride))
		}
		data = append(data, "...")
		for i := n - edge; i < n; i++ {
			data = append(data, p.scalar(base+i*stride))
		}
	default:
		for i := 0; i < n; i++ {
			data = append(data, p.scalar(base+i*stride))
		}
	}

	var b strings.Builder
	b.WriteByte('[')
	lastChunk := max(len(data)-perLine, 0)
	for i := 0; i < len(data); i += perLine {
		end := min(len(data), i+perLine)
		b.WriteString(strings.Join(data[i:end], ", "))
		if i < lastChunk {
			b.WriteString(",\n")
			b.WriteString(strings.Repeat(" ", indent+1))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func (p *printer) tensor(dim, base, indent int) string {
	rank := len(p.shape) - dim
	switch rank {
	case 0:
		return p.scalar(base)
	case 1:
		return p.vector(base, indent)
	}

	n := p.shape[dim]
	edge := int(p.opts.EdgeItems)
	var slices []string
	if p.summarize && n > 2*edge {
		for i := 0; i < edge; i++ {
			slices = append(slices, p.tensor(dim+1, base+i*p.strides[dim], indent+1))
		}
		slices = append(slices, "...")
		for i := n - edge; i < n; i++ {
			slices = append(slices, p.tensor(dim+1, base+i*p.strides[dim], indent+1))
		}
	} else {
		for i := 0; i < n; i++ {
			slices = append(slices, p.tensor(dim+1, base+i*p.strides[dim], indent+1))
		}
	}

	sep := "," + strings.Repeat("\n", rank-1) + strings.Repeat(" ", indent+1)
	return fmt.Sprintf("[%s]", strings.Join(slices, sep))
}
