package tensor

// IndexKind tags which alternative an IndexEntry holds.
type IndexKind int

// Index entry kinds, in the order the native side numbers them.
const (
	IndexNone IndexKind = iota
	IndexEllipsis
	IndexInteger
	IndexBoolean
	IndexSlice
	IndexTensor
)

var indexKindNames = [...]string{"none", "ellipsis", "integer", "boolean", "slice", "tensor"}

func (k IndexKind) String() string {
	if k >= 0 && int(k) < len(indexKindNames) {
		return indexKindNames[k]
	}
	return "unknown"
}

// IndexEntry is one element of a multi-dimensional index expression.
// Slice bounds are optional: nil means "from the start", "to the end" and
// "step 1" respectively.
type IndexEntry struct {
	Kind    IndexKind
	Integer int64
	Boolean bool
	Start   *int64
	Stop    *int64
	Step    *int64
	Tensor  *RawTensor
}
