package tensor

import "fmt"

// DeviceType identifies a compute backend family.
type DeviceType int

// Known device types.
const (
	CPU DeviceType = iota
	CUDA
	HIP
	FPGA
	Vulkan
	XLA
	MPS
	WebGPU
)

var deviceNames = [...]string{
	CPU:    "cpu",
	CUDA:   "cuda",
	HIP:    "hip",
	FPGA:   "fpga",
	Vulkan: "vulkan",
	XLA:    "xla",
	MPS:    "mps",
	WebGPU: "webgpu",
}

// String returns the backend name.
func (d DeviceType) String() string {
	if d >= 0 && int(d) < len(deviceNames) {
		return deviceNames[d]
	}
	return "unknown"
}

// ParseDeviceType resolves a backend name.
func ParseDeviceType(name string) (DeviceType, bool) {
	for i, n := range deviceNames {
		if n == name {
			return DeviceType(i), true
		}
	}
	return 0, false
}

// Device is a backend family plus an ordinal. Index -1 means the default
// device of that family.
type Device struct {
	Type  DeviceType
	Index int
}

// DefaultCPU is the device tensors live on unless asked otherwise.
var DefaultCPU = Device{Type: CPU, Index: -1}

// String renders "type" or "type:index".
func (d Device) String() string {
	if d.Index < 0 {
		return d.Type.String()
	}
	return fmt.Sprintf("%s:%d", d.Type, d.Index)
}

// Layout is the storage layout of a tensor.
type Layout int

// Supported layouts.
const (
	Strided Layout = iota
	Sparse
)

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case Strided:
		return "strided"
	case Sparse:
		return "sparse"
	default:
		return "unknown"
	}
}

// ParseLayout resolves a layout name.
func ParseLayout(name string) (Layout, bool) {
	switch name {
	case "strided":
		return Strided, true
	case "sparse":
		return Sparse, true
	}
	return 0, false
}

// MemoryFormat is the suggested element ordering of a dense tensor.
type MemoryFormat int

// Supported memory formats.
const (
	Contiguous MemoryFormat = iota
	Preserve
	ChannelsLast
	ChannelsLast3d
)

var memoryFormatNames = [...]string{
	Contiguous:     "contiguous",
	Preserve:       "preserve",
	ChannelsLast:   "channels_last",
	ChannelsLast3d: "channels_last_3d",
}

// String returns the memory format name.
func (m MemoryFormat) String() string {
	if m >= 0 && int(m) < len(memoryFormatNames) {
		return memoryFormatNames[m]
	}
	return "unknown"
}

// ParseMemoryFormat resolves a memory format name.
func ParseMemoryFormat(name string) (MemoryFormat, bool) {
	for i, n := range memoryFormatNames {
		if n == name {
			return MemoryFormat(i), true
		}
	}
	return 0, false
}
