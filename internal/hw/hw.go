// Package hw probes the host CPU to pick sensible loader defaults.
package hw

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
)

// DefaultWorkers returns the loader worker count used when none is configured:
// half the physical cores, leaving the rest to the training step, and never
// less than one.
func DefaultWorkers() int {
	return workersFor(cpuid.CPU.PhysicalCores)
}

func workersFor(physical int) int {
	if n := physical / 2; n > 0 {
		return n
	}
	return 1
}

// Describe returns a one-line key=value summary of the host CPU.
func Describe() string {
	return fmt.Sprintf("cpu=%q physical_cores=%d logical_cores=%d avx2=%t avx512=%t",
		cpuid.CPU.BrandName,
		cpuid.CPU.PhysicalCores,
		cpuid.CPU.LogicalCores,
		cpuid.CPU.Supports(cpuid.AVX2),
		cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ),
	)
}
