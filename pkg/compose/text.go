package compose

import (
	"image/color"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/fonts"
	"github.com/matzehuels/storeshots/pkg/geometry"
	"github.com/matzehuels/storeshots/pkg/paint"
)

// Text block metrics in reference pixels.
const (
	textPadding      = 32.0
	badgeFontSize    = 12.0
	badgeLineHeight  = 16.0
	badgePadX        = 12.0
	badgePadY        = 4.0
	badgeMargin      = 12.0
	titleMargin      = 8.0
	titleLeading     = 1.25
	subtitleLeading  = 1.625
	subtitleOpacity  = 0.9
	overlayTopFactor = 0.10
)

// textContainer is the box the text block flows in, before the user
// transform.
type textContainer struct {
	x, width float64
	align    catalog.TextAlign
}

func (st *render) container() textContainer {
	l := st.layout
	switch l.TextPosition {
	case catalog.TextLeft:
		return textContainer{0, 0.45 * st.w, catalog.AlignLeft}
	case catalog.TextRight:
		return textContainer{0.55 * st.w, 0.45 * st.w, catalog.AlignRight}
	case catalog.TextTopLeft, catalog.TextBottomLeft:
		return textContainer{0, 0.60 * st.w, catalog.AlignLeft}
	case catalog.TextOverlay:
		return textContainer{0, st.w, catalog.AlignCenter}
	default:
		align := l.TextAlign
		if align == "" {
			align = catalog.AlignCenter
		}
		return textContainer{0, st.w, align}
	}
}

// blockTop places a block of height bh vertically.
func (st *render) blockTop(bh float64) float64 {
	switch st.layout.TextPosition {
	case catalog.TextBottom, catalog.TextBottomLeft:
		return st.h - bh
	case catalog.TextLeft, catalog.TextRight:
		return st.h/2 - bh/2
	case catalog.TextOverlay:
		return overlayTopFactor * st.h
	default:
		return 0
	}
}

// textRun is one paragraph before vertical placement.
type textRun struct {
	spec    fonts.Spec
	color   color.NRGBA
	lines   []string
	widths  []float64
	leading float64
	margin  float64
	opacity float64
	shadow  *Shadow
}

func (r textRun) height() float64 {
	return float64(len(r.lines))*r.leading + r.margin
}

// textBlock lays out badge, title and subtitle.
func (st *render) textBlock() []Node {
	l, p := st.layout, st.p
	if !l.ShowText {
		return nil
	}
	headline := !l.HidesHeadline()
	if !headline && p.Badge == "" {
		return nil
	}

	cs := st.cs
	pad := textPadding * cs
	box := st.container()
	inner := box.width - 2*pad
	style := p.TextStyle
	textColor := paint.ParseOr(style.Color, colorWhite)

	var runs []textRun
	if headline {
		title := fonts.Spec{Family: style.FontFamily, Weight: style.FontWeight, Size: style.TitleSize * cs}
		if p.Title != "" {
			run := st.run(p.Title, title, inner, titleLeading)
			run.color = textColor
			run.margin = titleMargin * cs
			if style.ShadowEnabled {
				run.shadow = &Shadow{
					OffsetY: 2 * cs,
					Blur:    style.ShadowBlur * cs,
					Color:   paint.ParseOr(style.ShadowColor, paint.WithAlpha(colorBlack, 0.3)),
				}
			}
			runs = append(runs, run)
		}
		sub := fonts.Spec{Family: style.FontFamily, Weight: fonts.WeightRegular, Size: style.SubtitleSize * cs}
		if p.Subtitle != "" {
			run := st.run(p.Subtitle, sub, inner, subtitleLeading)
			run.color = textColor
			run.opacity = subtitleOpacity
			runs = append(runs, run)
		}
	}

	var badgeH float64
	if p.Badge != "" {
		badgeH = (badgeLineHeight+2*badgePadY)*cs + badgeMargin*cs
	}
	bh := 2*pad + badgeH
	for _, r := range runs {
		bh += r.height()
	}
	top := st.blockTop(bh)
	block := geometry.Rect{X: box.x, Y: top, W: box.width, H: bh}

	alignX := func(w float64) float64 {
		switch box.align {
		case catalog.AlignLeft:
			return box.x + pad
		case catalog.AlignRight:
			return box.x + box.width - pad - w
		default:
			return box.x + box.width/2 - w/2
		}
	}

	var nodes []Node
	y := top + pad
	if p.Badge != "" {
		nodes = append(nodes, st.badge(p.Badge, alignX, y)...)
		y += badgeH
	}
	for _, r := range runs {
		asc, desc := st.Measurer.Metrics(r.spec)
		t := &Text{Type: typeText, Font: r.spec, Color: r.color, Shadow: r.shadow, Opacity: r.opacity}
		for i, s := range r.lines {
			lineTop := y + float64(i)*r.leading
			t.Lines = append(t.Lines, Line{
				Text:     s,
				X:        alignX(r.widths[i]),
				Baseline: lineTop + (r.leading-(asc+desc))/2 + asc,
				Width:    r.widths[i],
			})
		}
		nodes = append(nodes, t)
		y += r.height()
	}

	xf := groupTransform(p.TextTransform.Group(), block.Center(), st.w, st.h)
	return xf.apply(nodes)
}

// run wraps s to width and measures each line.
func (st *render) run(s string, spec fonts.Spec, width, leading float64) textRun {
	lines := fonts.Wrap(st.Measurer, s, spec, width)
	widths := make([]float64, len(lines))
	for i, l := range lines {
		widths[i] = st.Measurer.Width(l, spec)
	}
	return textRun{spec: spec, lines: lines, widths: widths, leading: fonts.LineHeight(spec, leading), opacity: 1}
}

// badge builds the translucent pill above the title.
func (st *render) badge(label string, alignX func(float64) float64, top float64) []Node {
	cs := st.cs
	spec := fonts.Spec{Family: st.p.TextStyle.FontFamily, Weight: 600, Size: badgeFontSize * cs}
	tw := st.Measurer.Width(label, spec)
	w := tw + 2*badgePadX*cs
	h := (badgeLineHeight + 2*badgePadY) * cs
	x := alignX(w)
	rect := geometry.Rect{X: x, Y: top, W: w, H: h}
	return []Node{
		&Shape{Type: typeShape, Shape: ShapeRect, Rect: rect, Corners: UniformCorners(h / 2), Color: paint.WithAlpha(colorWhite, 0.2)},
		st.centeredLine(label, spec, colorWhite, rect.Center()),
	}
}
