// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package term is the host value model accepted and returned by package
// bridge.
//
// Terms are immutable. Literals can be written in the host syntax and
// parsed:
//
//	:atom  nil  true  false  42  -1.5  "binary"
//	{1, 2}  [1, 2]  %ExTorch.Tensor.Options{dtype: :float64}
package term

import "github.com/born-ml/tensorbridge/internal/term"

// Value types.
type (
	Term     = term.Term
	Kind     = term.Kind
	Atom     = term.Atom
	Int      = term.Int
	Float    = term.Float
	Binary   = term.Binary
	Tuple    = term.Tuple
	List     = term.List
	Struct   = term.Struct
	Field    = term.Field
	Ref      = term.Ref
	Resource = term.Resource
)

// Kinds.
const (
	KindAtom     = term.KindAtom
	KindInt      = term.KindInt
	KindFloat    = term.KindFloat
	KindBinary   = term.KindBinary
	KindTuple    = term.KindTuple
	KindList     = term.KindList
	KindStruct   = term.KindStruct
	KindRef      = term.KindRef
	KindResource = term.KindResource
)

// Special atoms.
const (
	Nil   = term.Nil
	True  = term.True
	False = term.False
)

// Constructors.
var (
	NewInt      = term.NewInt
	NewUint     = term.NewUint
	NewBigInt   = term.NewBigInt
	NewStruct   = term.NewStruct
	F           = term.F
	NewRef      = term.NewRef
	NewResource = term.NewResource
	Bool        = term.Bool
)

// Parse reads one term literal.
func Parse(src string) (Term, error) { return term.Parse(src) }

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(src string) Term { return term.MustParse(src) }

// Equal reports whether a and b are the same term.
func Equal(a, b Term) bool { return term.Equal(a, b) }

// IsNil reports whether t is the nil atom.
func IsNil(t Term) bool { return term.IsNil(t) }

// Plain converts t to plain Go values suitable for JSON encoding.
func Plain(t Term) any { return term.Plain(t) }
