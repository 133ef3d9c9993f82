package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lixenwraith/symreg/gp"
)

// WriteComparison prints target and evolved values side by side at each sample point
func WriteComparison(w io.Writer, rows []gp.Comparison) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "x\ttarget\tevolved\terror\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%g\t%g\t%s\t%s\t\n", r.X, r.Target, FormatFitness(r.Evolved), FormatFitness(r.Error))
	}
	return tw.Flush()
}
