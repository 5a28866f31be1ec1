package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weiihann/duelbench/harness"
)

// NewRegistry builds a registry holding the gauges for run.
func NewRegistry(run *harness.Run) *prometheus.Registry {
	elapsed := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "duelbench_elapsed_seconds",
			Help: "Wall time of one benchmark on one execution path",
		},
		[]string{"benchmark", "path"},
	)

	speedup := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "duelbench_speedup_ratio",
			Help: "Interpreted time divided by compiled time",
		},
		[]string{"benchmark"},
	)

	agree := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "duelbench_outputs_agree",
			Help: "1 if both paths produced equivalent output",
		},
		[]string{"benchmark"},
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(elapsed, speedup, agree)

	for _, r := range run.Results {
		elapsed.WithLabelValues(r.Name, string(harness.Compiled)).Set(r.CompiledTime.Seconds())
		elapsed.WithLabelValues(r.Name, string(harness.Interpreted)).Set(r.InterpretedTime.Seconds())
		speedup.WithLabelValues(r.Name).Set(r.Speedup)

		v := 0.0
		if r.Agree {
			v = 1
		}
		agree.WithLabelValues(r.Name).Set(v)
	}

	return reg
}

// WritePrometheus writes run to path in the node_exporter textfile
// format. The file is replaced atomically.
func WritePrometheus(path string, run *harness.Run) error {
	if run == nil || len(run.Results) == 0 {
		return fmt.Errorf("no results to report")
	}

	if err := prometheus.WriteToTextfile(path, NewRegistry(run)); err != nil {
		return fmt.Errorf("write prometheus textfile: %w", err)
	}

	return nil
}
