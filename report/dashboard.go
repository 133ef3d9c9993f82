package report

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/symreg/gp"
)

// Layout
const (
	dashHeaderRows = 3
	dashChartChar  = '█'
)

// Dashboard is a live terminal view of a running evolution.
// Observe may be called from the run goroutine while Run owns the screen
type Dashboard struct {
	screen tcell.Screen
	title  string

	mu       sync.Mutex
	latest   gp.GenerationStats
	bests    []float64
	hasStats bool
	finished bool
	solved   bool
}

// NewDashboard draws on an initialized screen; the caller calls Fini
func NewDashboard(screen tcell.Screen, title string) *Dashboard {
	return &Dashboard{screen: screen, title: title}
}

// Observe is a gp.Observer; it never blocks on the screen
func (d *Dashboard) Observe(gs gp.GenerationStats) {
	d.mu.Lock()
	d.latest = gs
	d.bests = append(d.bests, gs.BestFitness)
	d.hasStats = true
	d.mu.Unlock()
	d.wake()
}

// Finish marks the run complete and shows the outcome
func (d *Dashboard) Finish(res *gp.Result) {
	d.mu.Lock()
	d.finished = true
	d.solved = res.Solved
	d.mu.Unlock()
	d.wake()
}

// wake posts a redraw request, dropped if the event queue is full
func (d *Dashboard) wake() {
	_ = d.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Run processes events until ctx is done or the user quits with q, Esc or Ctrl-C
func (d *Dashboard) Run(ctx context.Context) error {
	eventChan := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	}()

	d.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
			case *tcell.EventResize:
				d.screen.Sync()
			}
			d.Draw()
		}
	}
}

// Draw renders the current state
func (d *Dashboard) Draw() {
	d.mu.Lock()
	gs := d.latest
	bests := append([]float64(nil), d.bests...)
	hasStats, finished, solved := d.hasStats, d.finished, d.solved
	d.mu.Unlock()

	d.screen.Clear()
	width, height := d.screen.Size()

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	d.text(0, 0, width, d.title, titleStyle)

	status, statusStyle := "running", tcell.StyleDefault.Foreground(tcell.ColorYellow)
	switch {
	case finished && solved:
		status, statusStyle = "solved", tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case finished:
		status, statusStyle = "budget exhausted", tcell.StyleDefault.Foreground(tcell.ColorRed)
	case !hasStats:
		status = "waiting"
	}
	d.text(width-len(status), 0, width, status, statusStyle)

	if hasStats {
		line := fmt.Sprintf("gen %d  best %s  mean %s  size %d  depth %d  evals %d",
			gs.Generation, FormatFitness(gs.BestFitness), FormatFitness(gs.MeanFitness),
			gs.BestSize, gs.BestDepth, gs.Evaluations)
		d.text(0, 1, width, line, tcell.StyleDefault)
		d.text(0, 2, width, gs.BestExpression, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}

	chartTop := dashHeaderRows + 1
	d.chart(bests, 0, chartTop, width, height-chartTop-1)
	d.text(0, height-1, width, "q/Esc: quit", tcell.StyleDefault.Dim(true))

	d.screen.Show()
}

func (d *Dashboard) text(x, y, maxX int, s string, style tcell.Style) {
	if x < 0 {
		x = 0
	}
	for _, r := range s {
		if x >= maxX {
			return
		}
		d.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// chart draws the most recent best-fitness values as bars scaled to the window maximum.
// Infinite values are drawn as empty columns
func (d *Dashboard) chart(values []float64, x0, y0, width, height int) {
	if width <= 0 || height <= 0 || len(values) == 0 {
		return
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal && !isInf(v) {
			maxVal = v
		}
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	for i, v := range values {
		if isInf(v) {
			continue
		}
		bar := height
		if maxVal > 0 {
			bar = int(v / maxVal * float64(height))
		}
		if bar < 1 {
			bar = 1
		}
		for j := 0; j < bar; j++ {
			d.screen.SetContent(x0+i, y0+height-1-j, dashChartChar, nil, style)
		}
	}
}

func isInf(v float64) bool {
	return math.IsInf(v, 0) || math.IsNaN(v)
}
