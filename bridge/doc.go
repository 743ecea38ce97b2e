// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bridge exposes the tensor library to a dynamically typed host
// runtime.
//
// # Overview
//
// Host values arrive as terms (see package term). For every call the bridge:
//   - decodes each argument by the kind the operation declares
//   - runs the native operation
//   - encodes the result back into a term
//
// Tensors cross the boundary as %ExTorch.Tensor{} structs that carry an
// opaque resource handle plus a snapshot of size, dtype and device. The
// native tensor is freed when the last host reference is collected.
//
// # Errors
//
// Decoding failures are *DecodeError values whose Raise method returns a
// reason atom such as :invalid_size. Native failures are
// *NativeOperationError values carrying the first line of the native
// message. Raise maps any returned error to the term the host should see.
//
// # Example
//
//	b, err := bridge.Open(bridge.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	x, err := b.Call("ones", term.MustParse("{2, 3}"))
//	size, err := b.Call("size", x) // {2, 3}
package bridge
