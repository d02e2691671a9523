package encode

// Default palettes. Order matters: tokens are handed out in this order.
var (
	DefaultColors = []string{
		"#e6194b", "#19e6b4", "#ffe119", "#4363d8", "#f58231", "#911eb4", "#46f0f0", "#f032e6",
		"#bcf60c", "#fabebe", "#008080", "#e6beff", "#9a6324", "#fffac8", "#800000",
		"#aaffc3", "#808000", "#ffd8b1", "#000075", "#808080", "#ffffff", "#000000",
	}

	DefaultStrokeColors = []string{
		"#ffffff", "#000000", "#800000", "#BC8F8F", "#FFE4C4", "#6495ED", "#4682B4",
		"#FF6347", "#778899", "#40E0D0", "#00FFFF", "#F08080", "#9ACD32", "#FF7F50",
		"#D2691E", "#7FFF00", "#5F9EA0", "#DEB887", "#A52A2A", "#8A2BE2", "#0000FF",
	}

	DefaultShapes = []string{"⬤", "◼", "▲", "◯", "◻", "△", "◉", "▣", "◐", "◧", "◭", "◍", "▤", "▶"}
)

// Kind selects what sort of token a palette holds.
type Kind int

const (
	KindColor Kind = iota
	KindShape
)

func (k Kind) String() string {
	if k == KindShape {
		return "shape"
	}
	return "color"
}
