package display

import (
	"context"
	"image"
	"math"
	"sync"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

const dashboardWidth = 44
const dashboardHeight = 26

// Dashboard is a terminal Surface: the azimuth text above a compass face
// whose north marker is rotated with the needle. Pressing i opens the info
// dialog and p pauses the session.
type Dashboard struct {
	mu         sync.Mutex
	azimuth    *widgets.Paragraph
	status     *widgets.Paragraph
	dialog     *widgets.Paragraph
	face       image.Rectangle
	rotation   float64
	showDialog bool
}

// NewDashboard initialises the terminal. Close must be called to restore it.
func NewDashboard(infoTitle, infoMessage string) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, err
	}

	azimuth := widgets.NewParagraph()
	azimuth.Title = "Azimuth"
	azimuth.TextStyle = ui.NewStyle(ui.ColorWhite, ui.ColorClear, ui.ModifierBold)
	azimuth.SetRect(0, 0, dashboardWidth, 3)

	status := widgets.NewParagraph()
	status.Border = false
	status.TextStyle = ui.NewStyle(ui.ColorCyan)
	status.SetRect(0, dashboardHeight-1, dashboardWidth, dashboardHeight+1)

	dialog := widgets.NewParagraph()
	dialog.Title = infoTitle
	dialog.Text = infoMessage + "\n\n[Esc] close"
	dialog.SetRect(4, 8, dashboardWidth-4, 15)

	return &Dashboard{
		azimuth: azimuth,
		status:  status,
		dialog:  dialog,
		face:    image.Rect(0, 3, dashboardWidth, dashboardHeight-1),
	}, nil
}

func (d *Dashboard) Close() {
	ui.Close()
}

func (d *Dashboard) SetAzimuthText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.azimuth.Text = text
	d.render()
}

func (d *Dashboard) SetRotation(deg float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rotation = deg
	d.render()
}

// SetStatus shows a one line status under the compass face.
func (d *Dashboard) SetStatus(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status.Text = text
	d.render()
}

func (d *Dashboard) render() {
	face := ui.NewCanvas()
	face.Title = "N"
	face.TitleStyle = ui.NewStyle(ui.ColorRed, ui.ColorClear, ui.ModifierBold)
	face.SetRect(d.face.Min.X, d.face.Min.Y, d.face.Max.X, d.face.Max.Y)

	center, tip, tail := NeedlePoints(face.Inner, d.rotation)
	face.SetLine(center, tip, ui.ColorRed)
	face.SetLine(center, tail, ui.ColorWhite)

	items := []ui.Drawable{d.azimuth, face, d.status}
	if d.showDialog {
		items = append(items, d.dialog)
	}
	ui.Render(items...)
}

// NeedlePoints returns the braille pixel coordinates of the face center, the
// north tip and the south tail for a screen rotation in degrees, clockwise
// from the top of the screen.
func NeedlePoints(inner image.Rectangle, rotation float64) (center, tip, tail image.Point) {
	// braille cells are 2 pixels wide and 4 high
	center = image.Pt(inner.Min.X+inner.Max.X, (inner.Min.Y+inner.Max.Y)*2)
	radius := math.Min(float64(inner.Dx()*2), float64(inner.Dy()*4))/2 - 1
	if radius < 0 {
		radius = 0
	}
	rad := rotation * math.Pi / 180
	dx := math.Sin(rad) * radius
	dy := -math.Cos(rad) * radius
	tip = image.Pt(center.X+int(math.Round(dx)), center.Y+int(math.Round(dy)))
	tail = image.Pt(center.X-int(math.Round(dx/2)), center.Y-int(math.Round(dy/2)))
	return center, tip, tail
}

// Loop handles keyboard events until q is pressed or ctx is done. p toggles
// pause and calls onPause with the new state when it is not nil.
func (d *Dashboard) Loop(ctx context.Context, onPause func(paused bool)) {
	events := ui.PollEvents()
	paused := false
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				return
			case "p":
				paused = !paused
				if onPause != nil {
					onPause(paused)
				}
			case "i":
				d.toggleDialog(true)
			case "<Escape>":
				d.toggleDialog(false)
			case "<Resize>":
				d.mu.Lock()
				ui.Clear()
				d.render()
				d.mu.Unlock()
			}
		}
	}
}

func (d *Dashboard) toggleDialog(show bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.showDialog = show
	if !show {
		ui.Clear()
	}
	d.render()
}
