package compose

import (
	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/fonts"
	"github.com/matzehuels/storeshots/pkg/geometry"
	"github.com/matzehuels/storeshots/pkg/paint"
)

// Pill and stat units in reference pixels.
const (
	pillPadX      = 16.0
	pillPadY      = 10.0
	pillGap       = 8.0
	pillDisc      = 32.0
	pillGlyph     = 16.0
	pillFontSize  = 14.0
	statGap       = 4.0
	statPadX      = 8.0
	laurelWidth   = 32.0
	laurelHeight  = 64.0
	statValueSize = 24.0
	statLabelSize = 14.0
)

var colorPillLabel = paint.MustParse("#1f2937")

// pills lays out the feature pill layer.
func (st *render) pills() []Node {
	l, p := st.layout, st.p
	if !l.ShowFeaturePills || !p.ShowFeaturePills || len(l.PillAnchors) == 0 || len(p.FeaturePills) == 0 {
		return nil
	}
	if !p.FeaturePillsPosition.VisibleOn(l.Variant) {
		return nil
	}

	cs := st.cs
	accent := paint.ParseOr(p.Background.AccentColor(), colorFallback)
	spec := fonts.Spec{Family: fonts.FamilySans, Weight: fonts.WeightMedium, Size: pillFontSize * cs}

	var nodes []Node
	for i, pill := range p.FeaturePills {
		anchor := l.PillAnchors[i%len(l.PillAnchors)]
		c := geometry.PercentToPixels(anchor, st.w, st.h)

		tw := st.Measurer.Width(pill.Text, spec)
		w := (2*pillPadX+pillDisc+pillGap)*cs + tw
		h := (2*pillPadY + pillDisc) * cs
		body := geometry.RectAround(c, w, h)
		disc := geometry.Rect{X: body.X + pillPadX*cs, Y: c.Y - pillDisc*cs/2, W: pillDisc * cs, H: pillDisc * cs}
		label := st.centeredLine(pill.Text, spec, colorPillLabel, geometry.Point{
			X: disc.X + disc.W + pillGap*cs + tw/2,
			Y: c.Y,
		})

		nodes = append(nodes,
			&Shape{
				Type:    typeShape,
				Shape:   ShapeRect,
				Rect:    body,
				Corners: UniformCorners(h / 2),
				Color:   colorWhite,
				Shadow:  &Shadow{OffsetY: 4 * cs, Blur: 20 * cs, Color: paint.WithAlpha(colorBlack, 0.15)},
			},
			&Shape{Type: typeShape, Shape: ShapeEllipse, Rect: disc, Corners: UniformCorners(disc.W / 2), Color: accent},
			&Icon{
				Type:  typeIcon,
				Icon:  catalog.PillIcon(pill.Icon, i),
				Rect:  geometry.RectAround(disc.Center(), pillGlyph*cs, pillGlyph*cs),
				Color: colorWhite,
			},
			label,
		)
	}

	xf := groupTransform(p.FeaturePillsOffset.Group(), geometry.Point{X: st.w / 2, Y: st.h / 2}, st.w, st.h)
	return xf.apply(nodes)
}

// stats lays out the stat badge layer.
func (st *render) stats() []Node {
	l, p := st.layout, st.p
	if !l.ShowStats || !p.ShowStats || len(l.StatAnchors) == 0 || len(p.Stats) == 0 {
		return nil
	}
	if !p.StatsPosition.VisibleOn(l.Variant) {
		return nil
	}

	cs := st.cs
	textColor := paint.ParseOr(p.TextStyle.Color, colorWhite)
	valueSpec := fonts.Spec{Family: fonts.FamilySans, Weight: fonts.WeightBold, Size: statValueSize * cs}
	labelSpec := fonts.Spec{Family: fonts.FamilySans, Weight: fonts.WeightRegular, Size: statLabelSize * cs}
	valueLH := fonts.LineHeight(valueSpec, 1.25)
	labelLH := fonts.LineHeight(labelSpec, 1.5)

	var nodes []Node
	for i, s := range p.Stats {
		anchor := l.StatAnchors[i%len(l.StatAnchors)]
		c := geometry.PercentToPixels(anchor, st.w, st.h)

		textW := max(st.Measurer.Width(s.Value, valueSpec), st.Measurer.Width(s.Label, labelSpec)) + 2*statPadX*cs
		textH := valueLH + labelLH
		w := textW
		if s.ShowLaurel {
			w += 2 * (laurelWidth + statGap) * cs
		}
		unit := geometry.RectAround(c, w, max(textH, laurelHeight*cs))

		if s.ShowLaurel {
			nodes = append(nodes, &Laurel{
				Type:    typeLaurel,
				Rect:    geometry.Rect{X: unit.X, Y: c.Y - laurelHeight*cs/2, W: laurelWidth * cs, H: laurelHeight * cs},
				Color:   colorWhite,
				Opacity: 0.8,
			})
		}

		top := c.Y - textH/2
		value := st.centeredLine(s.Value, valueSpec, textColor, geometry.Point{X: c.X, Y: top + valueLH/2})
		label := st.centeredLine(s.Label, labelSpec, textColor, geometry.Point{X: c.X, Y: top + valueLH + labelLH/2})
		label.Opacity = 0.8
		nodes = append(nodes, value, label)

		if s.ShowLaurel {
			nodes = append(nodes, &Laurel{
				Type:    typeLaurel,
				Rect:    geometry.Rect{X: unit.X + unit.W - laurelWidth*cs, Y: c.Y - laurelHeight*cs/2, W: laurelWidth * cs, H: laurelHeight * cs},
				Mirror:  true,
				Color:   colorWhite,
				Opacity: 0.8,
			})
		}
	}

	xf := groupTransform(p.StatsOffset.Group(), geometry.Point{X: st.w / 2, Y: st.h / 2}, st.w, st.h)
	return xf.apply(nodes)
}
