// Package preview renders the companion screen in a desktop window when no
// device framebuffer is attached. It is a pull-only consumer of snapshots
// and doubles as the simulated button panel: the 1-4 keys feed raw edges
// into the input source, mirroring the four physical buttons.
package preview

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"cyfox/internal/core/coordinator"
	"cyfox/internal/core/model"
	"cyfox/internal/core/state"
	"cyfox/internal/input"
	"cyfox/internal/modules/reminder"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

const pixelScale = 2

var moodColors = map[state.State]color.NRGBA{
	state.StateIdle:     {R: 28, G: 32, B: 48, A: 255},
	state.StateEating:   {R: 96, G: 64, B: 16, A: 255},
	state.StateDrinking: {R: 16, G: 56, B: 96, A: 255},
	state.StateResting:  {R: 56, G: 32, B: 80, A: 255},
	state.StateFocusing: {R: 16, G: 80, B: 40, A: 255},
	state.StateScanning: {R: 88, G: 80, B: 8, A: 255},
	state.StateReading:  {R: 8, G: 72, B: 72, A: 255},
	state.StateAlert:    {R: 112, G: 16, B: 16, A: 255},
}

// Window is the desktop stand-in for the device display.
type Window struct {
	window     fyne.Window
	background *canvas.Rectangle
	modeLabel  *canvas.Text
	stateLabel *canvas.Text
	detail     *canvas.Text
	hint       *canvas.Text
}

// New creates the preview window. offer receives a raw edge for every 1-4
// key press, exactly as the GPIO sampler would deliver it.
func New(app fyne.App, config model.PreviewConfig, offer func(input.Edge)) *Window {
	window := app.NewWindow("Cyfox")
	window.SetPadded(false)
	window.SetFixedSize(true)

	background := canvas.NewRectangle(moodColors[state.StateIdle])

	modeLabel := canvas.NewText("BUD", color.NRGBA{R: 140, G: 140, B: 140, A: 255})
	modeLabel.TextSize = 12
	modeLabel.TextStyle = fyne.TextStyle{Monospace: true}

	stateLabel := canvas.NewText("idle", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	stateLabel.TextSize = 28
	stateLabel.TextStyle = fyne.TextStyle{Bold: true}
	stateLabel.Alignment = fyne.TextAlignCenter

	detail := canvas.NewText("", color.NRGBA{R: 220, G: 220, B: 220, A: 255})
	detail.TextSize = 12

	hint := canvas.NewText("[1] ack  [2] next  [3] scan  [4] mode", color.NRGBA{R: 110, G: 110, B: 110, A: 255})
	hint.TextSize = 10
	hint.TextStyle = fyne.TextStyle{Monospace: true}

	content := container.NewBorder(modeLabel, container.NewVBox(detail, hint), nil, nil, stateLabel)
	window.SetContent(container.NewMax(background, content))
	window.Resize(fyne.NewSize(float32(config.Width*pixelScale), float32(config.Height*pixelScale)))

	window.Canvas().SetOnTypedRune(func(r rune) {
		if r >= '1' && r <= '4' {
			offer(input.Edge{Button: input.ButtonID(r - '0'), At: time.Now()})
		}
	})

	return &Window{
		window:     window,
		background: background,
		modeLabel:  modeLabel,
		stateLabel: stateLabel,
		detail:     detail,
		hint:       hint,
	}
}

// Show displays the preview window.
func (preview *Window) Show() {
	preview.window.Show()
}

// SetCloseIntercept forwards a close handler to the underlying window.
func (preview *Window) SetCloseIntercept(fn func()) {
	preview.window.SetCloseIntercept(fn)
}

// Apply redraws the screen from one snapshot. Must run on the UI thread;
// the frame loop wraps it in fyne.Do.
func (preview *Window) Apply(snapshot coordinator.Snapshot) {
	preview.background.FillColor = moodColors[snapshot.State]
	preview.modeLabel.Text = strings.ToUpper(string(snapshot.Mode))[:3]
	preview.stateLabel.Text = string(snapshot.State)
	preview.detail.Text = detailLine(snapshot)

	preview.background.Refresh()
	preview.modeLabel.Refresh()
	preview.stateLabel.Refresh()
	preview.detail.Refresh()
}

// RunFrameLoop pulls a snapshot at the configured frame rate until done is
// closed. This is the render loop's only contact with the core: a read-only
// Snapshot per frame, never a commit.
func (preview *Window) RunFrameLoop(done <-chan struct{}, frameRate int, pull func() coordinator.Snapshot) {
	if frameRate <= 0 {
		frameRate = 10
	}
	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snapshot := pull()
			fyne.Do(func() {
				preview.Apply(snapshot)
			})
		}
	}
}

func detailLine(snapshot coordinator.Snapshot) string {
	switch {
	case snapshot.Reminder != nil:
		return reminder.Message(snapshot.Reminder.Kind)
	case snapshot.Mode == state.ModeReddit && snapshot.Post != nil:
		return fmt.Sprintf("r/%s: %s", snapshot.Post.Subreddit, truncate(snapshot.Post.Title, 40))
	case snapshot.Mode == state.ModeScanner && snapshot.State == state.StateScanning:
		return "SCAN..."
	case snapshot.Mode == state.ModeScanner && !snapshot.Scan.LastScan.IsZero():
		return fmt.Sprintf("%d hosts, %d open, %d flagged", snapshot.Scan.Hosts, snapshot.Scan.Open, snapshot.Scan.Flagged)
	}
	return ""
}

// truncate shortens text to at most max runes, never splitting a rune.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-3]) + "..."
}
