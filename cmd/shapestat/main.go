package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/shapefall/statsfeed"
)

const redialDelay = time.Second

type viewer struct {
	screen tcell.Screen
	url    string

	mu        sync.Mutex
	last      statsfeed.Message
	updates   int
	connected bool
	lastErr   string
	history   []float64
}

func main() {
	addr := flag.String("addr", "localhost:8089", "stats feed host:port")
	flag.Parse()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("shapestat: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("shapestat: %v", err)
	}
	defer screen.Fini()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	v := &viewer{screen: screen, url: "ws://" + *addr + statsfeed.Path}
	go v.subscribe(ctx)

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		v.draw()
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
		}
	}
}

func (v *viewer) subscribe(ctx context.Context) {
	for ctx.Err() == nil {
		v.setConnected(true, "")
		err := statsfeed.Subscribe(ctx, v.url, v.record)
		msg := "disconnected"
		if err != nil {
			msg = err.Error()
		}
		v.setConnected(false, msg)

		select {
		case <-ctx.Done():
			return
		case <-time.After(redialDelay):
		}
	}
}

func (v *viewer) setConnected(ok bool, msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.connected = ok
	v.lastErr = msg
}

func (v *viewer) record(m statsfeed.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.last = m
	v.updates++
	v.history = append(v.history, m.Area)
	if len(v.history) > 256 {
		v.history = v.history[len(v.history)-256:]
	}
}

func (v *viewer) draw() {
	v.mu.Lock()
	last, updates, connected, lastErr := v.last, v.updates, v.connected, v.lastErr
	history := append([]float64(nil), v.history...)
	v.mu.Unlock()

	s := v.screen
	s.Clear()
	w, h := s.Size()

	title := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	label := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	value := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)

	drawText(s, 1, 0, title, "shapefall stats")
	status, statusStyle := "connected", tcell.StyleDefault.Foreground(tcell.ColorGreen)
	if !connected {
		status, statusStyle = "waiting: "+lastErr, tcell.StyleDefault.Foreground(tcell.ColorRed)
	}
	drawText(s, 1, 1, statusStyle, fmt.Sprintf("%s  %s", v.url, status))

	drawText(s, 1, 3, label, "Shapes:")
	drawText(s, 10, 3, value, fmt.Sprintf("%d", last.Count))
	drawText(s, 1, 4, label, "Area:")
	drawText(s, 10, 4, value, fmt.Sprintf("%.2f px²", last.Area))
	drawText(s, 1, 5, label, "Updates:")
	drawText(s, 10, 5, value, fmt.Sprintf("%d", updates))

	drawSparkline(s, 1, 7, w-2, h-9, history)
	drawText(s, 1, h-1, label, "q / esc to quit")
	s.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// drawSparkline renders the most recent area values as vertical bars.
func drawSparkline(s tcell.Screen, x, y, w, h int, values []float64) {
	if w <= 0 || h <= 0 || len(values) == 0 {
		return
	}
	if len(values) > w {
		values = values[len(values)-w:]
	}
	peak := 0.0
	for _, val := range values {
		peak = max(peak, val)
	}
	if peak <= 0 {
		return
	}
	bar := tcell.StyleDefault.Foreground(tcell.ColorTeal)
	for i, val := range values {
		height := int(val / peak * float64(h))
		for j := 0; j < height; j++ {
			s.SetContent(x+i, y+h-1-j, '█', nil, bar)
		}
	}
}
