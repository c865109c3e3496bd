package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Plain renders the report as a fixed-width text table followed by the
// overall verdict.
func (r *Report) Plain() string {
	var b strings.Builder
	r.WritePlain(&b)
	return b.String()
}

// WritePlain writes the plain text rendering of the report to w.
func (r *Report) WritePlain(w io.Writer) {
	s := r.Settings
	fmt.Fprintf(w, "lsdsort %s  width=%d valueBits=%d trials=%d workers=%d seed=%d",
		r.Metadata.Version, s.Width, s.ValueBits, s.Trials, s.Workers, s.Seed)
	if s.MemLimitBytes > 0 {
		fmt.Fprintf(w, " memLimit=%s", humanize.IBytes(s.MemLimitBytes))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%12s %14s %14s %10s %18s %s\n", "SIZE", "RADIX", "REFERENCE", "REF/RADIX", "CHECKSUM", "RESULT")
	for _, res := range r.Results {
		fmt.Fprintf(w, "%12s %14s %14s %10.2f %18s %s\n",
			humanize.Comma(int64(res.Size)),
			time.Duration(res.RadixNS),
			time.Duration(res.ReferenceNS),
			res.Ratio,
			res.Checksum,
			verdict(res.Passed),
		)
	}

	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning [%s]: %s\n", warn.Type, warn.Message)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error [%s]: %s\n", e.Type, e.Message)
	}

	fmt.Fprintln(w, verdict(r.Passed()))
}

func verdict(passed bool) string {
	if passed {
		return "SUCCESS"
	}
	return "FAILED"
}
