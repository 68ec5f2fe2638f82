package domain

// Point is a single coordinate on the board surface.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line styles accepted on the wire.
const (
	StyleSolid  = "solid"
	StyleDashed = "dashed"
	StyleDotted = "dotted"
)

// Stroke is a freehand path. Immutable once appended to a board log;
// an eraser pass is just a stroke in the background color.
type Stroke struct {
	Path       []Point `json:"path"`
	Color      string  `json:"color"`
	Width      float64 `json:"width"`
	Style      string  `json:"style,omitempty"`
	OwnerColor string  `json:"userColor,omitempty"`
}

// Shape kinds. Wire names match what the web client draws by.
const (
	ShapeRect   = "rect"
	ShapeCircle = "circle"
	ShapeLine   = "line"
	ShapeArrow  = "arrow"
	ShapeText   = "text"
)

// Shape is a structured annotation. Geometry is populated per kind:
// rect uses X/Y/W/H, circle X/Y/R, line and arrow the two endpoints,
// text X/Y plus Text/FontSize. Clients ignore fields their kind does
// not use, so zero values for the rest are harmless.
type Shape struct {
	Kind     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	R        float64 `json:"r"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`

	Color      string  `json:"color"`
	Width      float64 `json:"width"`
	Style      string  `json:"style,omitempty"`
	Fill       string  `json:"fill,omitempty"`
	OwnerColor string  `json:"userColor,omitempty"`
}
