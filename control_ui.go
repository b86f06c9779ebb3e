package main

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"strings"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/shapefall/assets"
	"github.com/milk9111/shapefall/autospawn"
	"github.com/milk9111/shapefall/ecs/system"
	"github.com/milk9111/shapefall/engine"
	"github.com/milk9111/shapefall/shapes"
)

const (
	panelWidth  = 220
	gravityStep = 0.5
	rateStep    = 1.0
)

// Controls is the side panel. Every widget drives the engine facade or the
// auto-spawner; none of them touch shapes directly.
type Controls struct {
	ui    *ebitenui.UI
	panel *widget.Container

	eng     *engine.Engine
	spawner *autospawn.Spawner

	typeGroup   *widget.RadioGroup
	typeButtons []*widget.Button
	typeNames   []string

	rateText      *widget.Text
	gravityText   *widget.Text
	perActionText *widget.Text
}

func typeLabel(name string) string {
	return strings.ToUpper(name[:1]) + name[1:]
}

// NewControls builds the panel anchored to the top right of the window.
func NewControls(eng *engine.Engine, spawner *autospawn.Spawner) *Controls {
	c := &Controls{eng: eng, spawner: spawner}

	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x10, G: 0x12, B: 0x1a, A: 210})
	btnImg := &widget.ButtonImage{
		Idle:    imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x3d, A: 255}),
		Hover:   imageui.NewNineSliceColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x52, A: 255}),
		Pressed: imageui.NewNineSliceColor(color.NRGBA{R: 0x4e, G: 0xcd, B: 0xc4, A: 255}),
	}
	btnTextColor := &widget.ButtonTextColor{
		Idle:    color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Pressed: color.NRGBA{R: 0x10, G: 0x12, B: 0x1a, A: 0xff},
	}
	textColor := color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}

	var face ebtext.Face = assets.HUDFace()
	if f, err := assets.UIFace(14); err == nil {
		face = f
	}

	c.panel = widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 12, Bottom: 12, Left: 12, Right: 12}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(panelWidth, 0),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionEnd,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)

	heading := func(label string) *widget.Text {
		return widget.NewText(widget.TextOpts.Text(label, &face, textColor))
	}

	// Shape type radio group: Random first, then every kind.
	c.panel.AddChild(heading("Shape"))
	grid := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewGridLayout(
			widget.GridLayoutOpts.Columns(2),
			widget.GridLayoutOpts.Spacing(4, 4),
		)),
	)
	c.typeNames = append(c.typeNames, shapes.Random)
	for _, k := range shapes.Kinds() {
		c.typeNames = append(c.typeNames, k.String())
	}
	elements := make([]widget.RadioGroupElement, 0, len(c.typeNames))
	for _, name := range c.typeNames {
		btn := widget.NewButton(
			widget.ButtonOpts.Image(btnImg),
			widget.ButtonOpts.Text(typeLabel(name), &face, btnTextColor),
			widget.ButtonOpts.ToggleMode(),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(94, 26)),
		)
		c.typeButtons = append(c.typeButtons, btn)
		elements = append(elements, btn)
		grid.AddChild(btn)
	}
	c.typeGroup = widget.NewRadioGroup(
		widget.RadioGroupOpts.Elements(elements...),
		widget.RadioGroupOpts.ChangedHandler(func(args *widget.RadioGroupChangedEventArgs) {
			for i, b := range c.typeButtons {
				if args.Active == b {
					c.eng.SetSelectedType(c.typeNames[i])
					return
				}
			}
		}),
	)
	c.panel.AddChild(grid)

	c.rateText = c.addStepper(heading("Auto-spawn /s"), &face, btnImg, btnTextColor, textColor, func(dir float64) {
		if c.spawner != nil {
			c.spawner.SetRate(c.spawner.Rate() + dir*rateStep)
		}
	})
	c.gravityText = c.addStepper(heading("Gravity"), &face, btnImg, btnTextColor, textColor, func(dir float64) {
		c.eng.SetGravity(c.eng.Gravity() + dir*gravityStep)
	})
	c.perActionText = c.addStepper(heading("Shapes per action"), &face, btnImg, btnTextColor, textColor, func(dir float64) {
		c.eng.SetShapesPerAction(c.eng.ShapesPerAction() + int(dir))
	})

	dropBtn := widget.NewButton(
		widget.ButtonOpts.Image(btnImg),
		widget.ButtonOpts.Text("Drop", &face, btnTextColor),
		widget.ButtonOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(panelWidth-24, 30),
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter}),
		),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			c.drop()
		}),
	)
	c.panel.AddChild(dropBtn)

	clearBtn := widget.NewButton(
		widget.ButtonOpts.Image(btnImg),
		widget.ButtonOpts.Text("Clear", &face, btnTextColor),
		widget.ButtonOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(panelWidth-24, 30),
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter}),
		),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			c.eng.ClearCanvas()
		}),
	)
	c.panel.AddChild(clearBtn)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(c.panel)
	c.ui = &ebitenui.UI{Container: root}

	c.Sync()
	return c
}

// drop releases the selected type from above the playfield at a random x
// left of the panel.
func (c *Controls) drop() {
	w, _ := c.eng.Size()
	margin := c.eng.ShapeSize()
	hi := w - panelWidth - margin
	if hi <= margin {
		hi = w - margin
	}
	x := margin + rand.Float64()*max(hi-margin, 0)
	c.eng.Drop(x, c.eng.SelectedType())
}

// addStepper appends a "- value +" row and returns the value text.
func (c *Controls) addStepper(title *widget.Text, face *ebtext.Face, img *widget.ButtonImage, btnColor *widget.ButtonTextColor, textColor color.Color, step func(dir float64)) *widget.Text {
	c.panel.AddChild(title)
	row := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(8),
		)),
	)
	value := widget.NewText(
		widget.TextOpts.Text("", face, textColor),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(60, 26),
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter}),
		),
	)
	for _, b := range []struct {
		label string
		dir   float64
	}{{"-", -1}, {"+", 1}} {
		btn := widget.NewButton(
			widget.ButtonOpts.Image(img),
			widget.ButtonOpts.Text(b.label, face, btnColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(40, 26)),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				step(b.dir)
				c.Sync()
			}),
		)
		row.AddChild(btn)
		if b.dir < 0 {
			row.AddChild(value)
		}
	}
	c.panel.AddChild(row)
	return value
}

// Sync refreshes the displayed values from the engine.
func (c *Controls) Sync() {
	rate := 0.0
	if c.spawner != nil {
		rate = c.spawner.Rate()
	}
	c.rateText.Label = fmt.Sprintf("%.0f / %.0f", rate, autospawn.MaxRate)
	c.gravityText.Label = fmt.Sprintf("%.1f / %.0f", c.eng.Gravity(), system.MaxGravity)
	c.perActionText.Label = fmt.Sprintf("%d / %d", c.eng.ShapesPerAction(), engine.MaxShapesPerAction)

	selected := shapes.Random
	if k, ok := shapes.ParseKind(c.eng.SelectedType()); ok {
		selected = k.String()
	}
	for i, name := range c.typeNames {
		if name == selected && c.typeGroup.Active() != c.typeButtons[i] {
			c.typeGroup.SetActive(c.typeButtons[i])
		}
	}
}

// Contains reports whether a screen point lies on the panel, so clicks
// there are not forwarded to the engine.
func (c *Controls) Contains(x, y int) bool {
	return image.Pt(x, y).In(c.panel.GetWidget().Rect)
}

func (c *Controls) Update() {
	c.ui.Update()
}

func (c *Controls) Draw(screen *ebiten.Image) {
	c.ui.Draw(screen)
}
