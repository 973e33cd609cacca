package model

import "math"

type HostGroup struct {
	Name      string   `json:"name" yaml:"name"`
	Hostnames []string `json:"hostnames" yaml:"hostnames"`
}

// ProbeSample is one timed connection attempt. ElapsedMillis is +Inf when
// the attempt failed or timed out.
type ProbeSample struct {
	Seq           int     `json:"seq"`
	ElapsedMillis float64 `json:"-"`
}

func (s ProbeSample) Failed() bool {
	return math.IsInf(s.ElapsedMillis, 1)
}

// ProbeSummary aggregates the samples taken against one address. Avg, Min
// and Max only cover finite samples and are NaN when there are none.
type ProbeSummary struct {
	Address  string        `json:"address"`
	Attempts int           `json:"attempts"`
	Samples  []ProbeSample `json:"-"`
	Avg      float64       `json:"-"`
	Min      float64       `json:"-"`
	Max      float64       `json:"-"`
}

func (s ProbeSummary) Reachable() bool {
	return !math.IsNaN(s.Avg) && !math.IsInf(s.Avg, 0)
}

func (s ProbeSummary) Successes() int {
	n := 0
	for _, sample := range s.Samples {
		if !sample.Failed() {
			n++
		}
	}
	return n
}

type ResolvedHost struct {
	Hostname string `json:"hostname"`
	IP       string `json:"ip"`
}

type ResolvedGroup struct {
	Name  string         `json:"name"`
	Hosts []ResolvedHost `json:"hosts"`
}

// HostFailure records a hostname left out of the hosts file. GroupIndex is
// the position of its group in the run input.
type HostFailure struct {
	Group      string `json:"group"`
	GroupIndex int    `json:"group_index"`
	Hostname   string `json:"hostname"`
	Reason     string `json:"reason"`
}

type Diagnosis struct {
	Classification string   `json:"classification"`
	Summary        string   `json:"summary"`
	Hints          []string `json:"hints,omitempty"`
}

type RunReport struct {
	Groups     []ResolvedGroup `json:"groups"`
	Failures   []HostFailure   `json:"failures,omitempty"`
	Resolved   int             `json:"resolved"`
	Skipped    int             `json:"skipped"`
	Applied    bool            `json:"applied"`
	Changed    bool            `json:"changed"`
	FlushError string          `json:"flush_error,omitempty"`
	Diagnosis  Diagnosis       `json:"diagnosis"`
}
