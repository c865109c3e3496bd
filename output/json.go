package output

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ChristianF88/lsdsort/version"
)

// Report is the complete result of a benchmark run
type Report struct {
	Metadata Metadata     `json:"metadata"`
	Settings Settings     `json:"settings"`
	Results  []SizeResult `json:"results"`
	Warnings []Warning    `json:"warnings"`
	Errors   []Error      `json:"errors"`

	// Mutex for thread-safe warning/error appending
	mu sync.Mutex `json:"-"`
}

// Metadata contains information about the run
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	RunType     string    `json:"run_type"`
	Version     string    `json:"version"`
	DurationMS  int64     `json:"duration_ms"`
}

// Settings echoes the configuration the results were produced with
type Settings struct {
	Width         int    `json:"width"`
	ValueBits     int    `json:"value_bits"`
	Trials        int    `json:"trials"`
	Workers       int    `json:"workers"`
	Seed          int64  `json:"seed"`
	MemLimitBytes uint64 `json:"mem_limit_bytes,omitempty"`
}

// SizeResult holds the outcome for one input size. Times are the best of
// all trials.
type SizeResult struct {
	Size          int     `json:"size"`
	Trials        int     `json:"trials"`
	RadixNS       int64   `json:"radix_ns"`
	ReferenceNS   int64   `json:"reference_ns"`
	Ratio         float64 `json:"reference_over_radix"`
	Checksum      string  `json:"checksum"`
	Deterministic bool    `json:"deterministic"`
	Passed        bool    `json:"passed"`
}

// Warning represents a warning message
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Error represents an error message
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// NewReport creates a new Report with default metadata
func NewReport(runType string, startTime time.Time) *Report {
	return &Report{
		Metadata: Metadata{
			GeneratedAt: time.Now().UTC(),
			RunType:     runType,
			Version:     version.Version,
			DurationMS:  time.Since(startTime).Milliseconds(),
		},
		Results:  []SizeResult{},
		Warnings: []Warning{},
		Errors:   []Error{},
	}
}

// ToJSON converts the report to pretty-printed JSON
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ToCompactJSON converts the report to compact JSON
func (r *Report) ToCompactJSON() ([]byte, error) {
	return json.Marshal(r)
}

// AddWarning adds a warning to the report (thread-safe)
func (r *Report) AddWarning(warningType, message string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, Warning{
		Type:    warningType,
		Message: message,
		Count:   count,
	})
}

// AddError adds an error to the report (thread-safe)
func (r *Report) AddError(errorType, message string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, Error{
		Type:    errorType,
		Message: message,
		Count:   count,
	})
}

// Passed reports whether every size matched the reference sort and no
// errors were recorded.
func (r *Report) Passed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Errors) > 0 {
		return false
	}
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// UpdateDuration updates the duration in metadata
func (r *Report) UpdateDuration(startTime time.Time) {
	r.Metadata.DurationMS = time.Since(startTime).Milliseconds()
}
