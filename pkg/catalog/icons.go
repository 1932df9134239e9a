package catalog

// Icon is the closed set of glyphs a feature pill can show.
type Icon int

// Icons. IconDot is the fallback for any unknown name.
const (
	IconDot Icon = iota
	IconMusic
	IconCode
	IconPalette
	IconVideo
	IconStar
	IconHeart
)

var iconNames = [...]string{
	IconDot:     "dot",
	IconMusic:   "music",
	IconCode:    "code",
	IconPalette: "palette",
	IconVideo:   "video",
	IconStar:    "star",
	IconHeart:   "heart",
}

// String returns the icon's stored name.
func (i Icon) String() string {
	if i < 0 || int(i) >= len(iconNames) {
		return iconNames[IconDot]
	}
	return iconNames[i]
}

// MarshalText implements encoding.TextMarshaler.
func (i Icon) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// ParseIcon maps a stored icon name onto the closed set. Unknown names map
// to IconDot so a pill never renders blank.
func ParseIcon(name string) Icon {
	switch name {
	case "music":
		return IconMusic
	case "code":
		return IconCode
	case "palette":
		return IconPalette
	case "video":
		return IconVideo
	case "star":
		return IconStar
	case "heart":
		return IconHeart
	default:
		return IconDot
	}
}

var defaultPillIcons = [...]Icon{IconMusic, IconCode, IconPalette, IconVideo, IconStar, IconHeart}

// DefaultPillIcon is the icon used by the i-th pill when it names none.
func DefaultPillIcon(i int) Icon {
	if i < 0 {
		i = -i
	}
	return defaultPillIcons[i%len(defaultPillIcons)]
}

// PillIcon resolves the icon for the i-th pill: the named icon if any,
// otherwise the cyclic default.
func PillIcon(name string, i int) Icon {
	if name == "" {
		return DefaultPillIcon(i)
	}
	return ParseIcon(name)
}

// Icons returns every icon in declaration order.
func Icons() []Icon {
	return []Icon{IconDot, IconMusic, IconCode, IconPalette, IconVideo, IconStar, IconHeart}
}
