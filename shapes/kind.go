package shapes

import "strings"

// Kind tags a shape variant.
type Kind int

const (
	KindCircle Kind = iota
	KindSquare
	KindRectangle
	KindTriangle
	KindStar
	KindPentagon
	KindHexagon
	KindEllipse
	KindIrregular
	kindCount
)

// Random is the requested type that selects a kind uniformly at random.
const Random = "random"

var kindNames = [kindCount]string{
	KindCircle:    "circle",
	KindSquare:    "square",
	KindRectangle: "rectangle",
	KindTriangle:  "triangle",
	KindStar:      "star",
	KindPentagon:  "pentagon",
	KindHexagon:   "hexagon",
	KindEllipse:   "ellipse",
	KindIrregular: "irregular",
}

var kindAliases = map[string]Kind{
	"irregularpolygon":  KindIrregular,
	"irregular_polygon": KindIrregular,
	"irregular-polygon": KindIrregular,
	"rect":              KindRectangle,
	"oval":              KindEllipse,
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the known variants.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Kinds returns every known variant in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind resolves a case-insensitive type name. "random" and unknown
// names report false.
func ParseKind(name string) (Kind, bool) {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" || s == Random {
		return 0, false
	}
	for k, n := range kindNames {
		if n == s {
			return Kind(k), true
		}
	}
	if k, ok := kindAliases[s]; ok {
		return k, true
	}
	return 0, false
}
