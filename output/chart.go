package output

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// PlotTimings writes an interactive bar chart comparing radix and reference
// sort times per input size to filename.
func PlotTimings(report *Report, filename string) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(timingsChart(report))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create chart file %s: %w", filename, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

func timingsChart(report *Report) *charts.Bar {
	labels := make([]string, 0, len(report.Results))
	radixData := make([]opts.BarData, 0, len(report.Results))
	referenceData := make([]opts.BarData, 0, len(report.Results))

	// Milliseconds keep the axis readable across sizes
	for _, res := range report.Results {
		labels = append(labels, humanize.Comma(int64(res.Size)))
		radixData = append(radixData, opts.BarData{
			Value: float64(res.RadixNS) / 1e6,
			Name:  fmt.Sprintf("%s keys", humanize.Comma(int64(res.Size))),
		})
		referenceData = append(referenceData, opts.BarData{
			Value: float64(res.ReferenceNS) / 1e6,
			Name:  fmt.Sprintf("%s keys", humanize.Comma(int64(res.Size))),
		})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "lsdsort timings",
			Width:           "160vh",
			Height:          "90vh",
			Theme:           types.ThemeVintage,
			BackgroundColor: "transparent",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Radix vs reference sort",
			Subtitle: fmt.Sprintf("%d-bit keys, %d-bit values, best of %d", report.Settings.Width, report.Settings.ValueBits, report.Settings.Trials),
			Left:     "center",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Keys",
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "ms",
		}),
	)

	bar.SetXAxis(labels).
		AddSeries("radix", radixData).
		AddSeries("reference", referenceData)
	return bar
}
