package choreo

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Placement is the screen-space result of resolving a transform's positional
// properties against a viewport and a sprite size.
type Placement struct {
	X, Y         float64 // final position of the anchor point
	AnchorX      float64 // anchor within the sprite, in pixels
	AnchorY      float64
	Rotate       float64 // degrees
	ZoomX, ZoomY float64
	Alpha        float64
	Additive     float64
	Visible      bool
}

// Place resolves the transform's current properties. spanW and spanH are the
// viewport dimensions relative positions resolve against; w and h are the
// sprite dimensions anchors resolve against.
func Place(t *Transform, spanW, spanH, w, h float64) Placement {
	st := t.State()

	x := st.ResolvePos("xpos", spanW)
	y := st.ResolvePos("ypos", spanH)

	// Polar placement overrides the cartesian position: the point orbits
	// the around point at the given angle and radius. Angle zero points up
	// and increases clockwise.
	if st.Get("angle") != nil || st.Get("radius") != nil {
		ax := st.ResolvePos("xaround", spanW)
		ay := st.ResolvePos("yaround", spanH)
		angle := st.Float("angle") * math.Pi / 180
		radius := st.ResolvePos("radius", math.Min(spanW, spanH))

		x = ax + radius*math.Sin(angle)
		y = ay - radius*math.Cos(angle)
	}

	zoom := 1.0
	if v := st.Get("zoom"); v != nil {
		zoom = st.Float("zoom")
	}
	xzoom, yzoom := 1.0, 1.0
	if v := st.Get("xzoom"); v != nil {
		xzoom = st.Float("xzoom")
	}
	if v := st.Get("yzoom"); v != nil {
		yzoom = st.Float("yzoom")
	}

	alpha := 1.0
	if v := st.Get("alpha"); v != nil {
		alpha = st.Float("alpha")
	}

	visible := true
	if v := st.Get("visible"); v != nil {
		visible = st.Bool("visible")
	}

	return Placement{
		X:        x + st.Float("xoffset"),
		Y:        y + st.Float("yoffset"),
		AnchorX:  st.ResolvePos("xanchor", w),
		AnchorY:  st.ResolvePos("yanchor", h),
		Rotate:   st.Float("rotate"),
		ZoomX:    zoom * xzoom,
		ZoomY:    zoom * yzoom,
		Alpha:    alpha,
		Additive: st.Float("additive"),
		Visible:  visible,
	}
}

// DrawOptions builds ebiten draw options for an image of the given size,
// placed by the transform's current properties within a spanW by spanH
// viewport.
func DrawOptions(t *Transform, spanW, spanH, w, h float64) *ebiten.DrawImageOptions {
	p := Place(t, spanW, spanH, w, h)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-p.AnchorX, -p.AnchorY)
	op.GeoM.Scale(p.ZoomX, p.ZoomY)
	op.GeoM.Rotate(p.Rotate * math.Pi / 180)
	op.GeoM.Translate(p.X, p.Y)

	op.ColorScale.ScaleAlpha(float32(p.Alpha))
	if p.Additive > 0 {
		op.Blend = ebiten.BlendLighter
	}

	return op
}

// Draw renders an image under the transform's current properties. Hidden
// transforms draw nothing.
func Draw(screen *ebiten.Image, img *ebiten.Image, t *Transform) {
	p := Place(t, float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy()),
		float64(img.Bounds().Dx()), float64(img.Bounds().Dy()))
	if !p.Visible || p.Alpha <= 0 {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-p.AnchorX, -p.AnchorY)
	op.GeoM.Scale(p.ZoomX, p.ZoomY)
	op.GeoM.Rotate(p.Rotate * math.Pi / 180)
	op.GeoM.Translate(p.X, p.Y)
	op.ColorScale.ScaleAlpha(float32(p.Alpha))
	if p.Additive > 0 {
		op.Blend = ebiten.BlendLighter
	}

	screen.DrawImage(img, op)
}
