package cpu

import (
	"github.com/born-ml/tensorbridge/internal/native"
	"github.com/born-ml/tensorbridge/internal/tensor"
)

func init() {
	native.RegisterBackend(tensor.CPU, func(seed uint64) tensor.Backend {
		return New(seed)
	})
}
