// Package runinfo describes a training run and the host it runs on.
package runinfo

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/cpuid/v2"
	"github.com/sirupsen/logrus"
)

// simdFeatures are the CPU features reported in the banner, in order.
var simdFeatures = []struct {
	name string
	id   cpuid.FeatureID
}{
	{"sse4.2", cpuid.SSE42},
	{"avx", cpuid.AVX},
	{"avx2", cpuid.AVX2},
	{"fma3", cpuid.FMA3},
	{"avx512f", cpuid.AVX512F},
	{"asimd", cpuid.ASIMD},
}

// Info identifies a run.
type Info struct {
	ID       uuid.UUID
	Backend  string
	CPU      string
	Cores    int
	Threads  int
	Features []string
	Started  time.Time
}

// New describes a run on the named compute backend.
func New(backend string) Info {
	info := Info{
		ID:      uuid.New(),
		Backend: backend,
		CPU:     cpuid.CPU.BrandName,
		Cores:   cpuid.CPU.PhysicalCores,
		Threads: cpuid.CPU.LogicalCores,
		Started: time.Now(),
	}
	if info.CPU == "" {
		info.CPU = runtime.GOARCH
	}
	if info.Threads == 0 {
		info.Threads = runtime.NumCPU()
	}
	for _, f := range simdFeatures {
		if cpuid.CPU.Supports(f.id) {
			info.Features = append(info.Features, f.name)
		}
	}
	return info
}

// String formats the run as a single line.
func (i Info) String() string {
	return fmt.Sprintf("run=%s backend=%s cpu=%q cores=%d threads=%d simd=%s",
		i.ID, i.Backend, i.CPU, i.Cores, i.Threads, i.simd())
}

// Fields returns the run description as structured log fields.
func (i Info) Fields() logrus.Fields {
	return logrus.Fields{
		"run":     i.ID.String(),
		"backend": i.Backend,
		"cpu":     i.CPU,
		"cores":   i.Cores,
		"threads": i.Threads,
		"simd":    i.simd(),
	}
}

func (i Info) simd() string {
	if len(i.Features) == 0 {
		return "none"
	}
	return strings.Join(i.Features, ",")
}

// Metadata returns the run description as checkpoint metadata.
func (i Info) Metadata() map[string]string {
	return map[string]string{
		"run_id":  i.ID.String(),
		"backend": i.Backend,
		"cpu":     i.CPU,
		"started": i.Started.UTC().Format(time.RFC3339),
	}
}
