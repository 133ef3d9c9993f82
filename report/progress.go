// Package report renders run progress and results: console lines, a comparison
// table, a PNG fitness plot and a live terminal dashboard
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"sync"

	"golang.org/x/term"

	"github.com/lixenwraith/symreg/gp"
)

const (
	reset  = "\x1b[0m"
	bold   = "\x1b[1m"
	gray   = "\x1b[90m"
	cyan   = "\x1b[36m"
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
)

// ColorEnabled reports whether w is a terminal and NO_COLOR is unset
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Progress writes one line per generation and a closing summary
type Progress struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewProgress writes to w, colored when w is an interactive terminal
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w, color: ColorEnabled(w)}
}

func (p *Progress) c(color, s string) string {
	if !p.color {
		return s
	}
	return color + s + reset
}

// Observe is a gp.Observer
func (p *Progress) Observe(gs gp.GenerationStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s best=%s mean=%s size=%d depth=%d  %s\n",
		p.c(cyan, fmt.Sprintf("[gen %3d]", gs.Generation)),
		p.c(bold, FormatFitness(gs.BestFitness)),
		FormatFitness(gs.MeanFitness),
		gs.BestSize,
		gs.BestDepth,
		p.c(gray, gs.BestExpression),
	)
}

// Summary prints the final outcome of a run
func (p *Progress) Summary(res *gp.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	final := res.Final()
	outcome := p.c(yellow, "generation budget exhausted")
	if res.Solved {
		outcome = p.c(green, "solved")
	}

	fmt.Fprintf(p.w, "\nrun %s (seed %d): %s\n", res.RunID, res.Seed, outcome)
	fmt.Fprintf(p.w, "  generations: %d\n", len(res.History))
	fmt.Fprintf(p.w, "  evaluations: %d\n", final.Evaluations)
	fmt.Fprintf(p.w, "  best fitness: %s\n", FormatFitness(res.BestFitness))
	fmt.Fprintf(p.w, "  best size: %d, depth: %d\n", res.Best.Size(), res.Best.Depth())
	fmt.Fprintf(p.w, "  best expression: %s\n", res.Best)
}

// FormatFitness renders a fitness value compactly, with "inf" for invalid trees
func FormatFitness(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
