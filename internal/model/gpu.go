package model

import "encoding/json"

// GPUClass identifies the accelerator fitted to a package.
type GPUClass string

const (
	// GPUNone is a CPU-only package.
	GPUNone GPUClass = "None"
	// GPUL4 is an NVIDIA L4.
	GPUL4 GPUClass = "L4"
	// GPUA100_40G is an NVIDIA A100 with 40 GB.
	GPUA100_40G GPUClass = "A100_40G"
	// GPUA100_80G is an NVIDIA A100 with 80 GB.
	GPUA100_80G GPUClass = "A100_80G"
	// GPUH100_80G is an NVIDIA H100 with 80 GB.
	GPUH100_80G GPUClass = "H100_80G"
	// GPURTX4090 is an NVIDIA GeForce RTX 4090.
	GPURTX4090 GPUClass = "RTX_4090"
	// GPURTX5090 is an NVIDIA GeForce RTX 5090.
	GPURTX5090 GPUClass = "RTX_5090"
	// GPURadeon8060S is the AMD Radeon 8060S integrated GPU.
	GPURadeon8060S GPUClass = "Radeon_8060S"
)

// GPUClasses lists every GPU class in display order.
var GPUClasses = []GPUClass{
	GPUNone,
	GPUL4,
	GPUA100_40G,
	GPUA100_80G,
	GPUH100_80G,
	GPURTX4090,
	GPURTX5090,
	GPURadeon8060S,
}

// ParseGPUClass maps stored text to a GPU class.
func ParseGPUClass(s string) (GPUClass, error) {
	switch GPUClass(s) {
	case GPUNone, GPUL4, GPUA100_40G, GPUA100_80G, GPUH100_80G,
		GPURTX4090, GPURTX5090, GPURadeon8060S:
		return GPUClass(s), nil
	default:
		return "", unknownVariant("gpu class", s)
	}
}

// String returns the storage representation.
func (g GPUClass) String() string {
	return string(g)
}

// UnmarshalJSON rejects unknown GPU classes.
func (g *GPUClass) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseGPUClass(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
