// Package harness times the compiled and interpreted paths against each
// other on identical inputs.
package harness

import (
	"time"

	"github.com/weiihann/duelbench/workload"
)

// Path identifies one of the two execution paths.
type Path string

const (
	Compiled    Path = "compiled"
	Interpreted Path = "interpreted"
)

// Result holds the outcome of one benchmark. It is not modified after
// Benchmark returns it.
type Result struct {
	Name              string        `json:"name"                         yaml:"name"`
	CompiledTime      time.Duration `json:"compiled_time_ns"             yaml:"compiled_time_ns"`
	InterpretedTime   time.Duration `json:"interpreted_time_ns"          yaml:"interpreted_time_ns"`
	CompiledResult    any           `json:"compiled_result,omitempty"    yaml:"compiled_result,omitempty"`
	InterpretedResult any           `json:"interpreted_result,omitempty" yaml:"interpreted_result,omitempty"`
	Speedup           float64       `json:"speedup"                      yaml:"speedup"`
	Winner            Path          `json:"winner"                       yaml:"winner"`
	Agree             bool          `json:"agree"                        yaml:"agree"`
}

// WithoutOutputs returns a copy of r with the raw outputs dropped.
func (r Result) WithoutOutputs() Result {
	r.CompiledResult = nil
	r.InterpretedResult = nil

	return r
}

// Run is the set of results produced by one Runner.Run call.
type Run struct {
	ID        string         `json:"id"         yaml:"id"`
	StartedAt time.Time      `json:"started_at" yaml:"started_at"`
	Seed      int64          `json:"seed"       yaml:"seed"`
	Sizes     workload.Sizes `json:"sizes"      yaml:"sizes"`
	Results   []Result       `json:"results"    yaml:"results"`
}
