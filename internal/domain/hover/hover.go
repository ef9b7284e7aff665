package hover

// Point is one plotted point carried by a hover event.
// CustomData holds the per-point extras attached to the trace, image URL first.
type Point struct {
	CurveNumber int    `json:"curveNumber"`
	PointNumber int    `json:"pointNumber"`
	HoverText   string `json:"hovertext,omitempty"`
	CustomData  []any  `json:"customdata,omitempty"`
}

// Data is the hover payload posted by the browser. A nil *Data means no point is hovered.
type Data struct {
	Points []Point `json:"points"`
}

// ImageURL returns the first point's image URL. ok is false when the payload
// carries no point or the point has no string customdata.
func (d *Data) ImageURL() (string, bool) {
	if d == nil || len(d.Points) == 0 {
		return "", false
	}
	cd := d.Points[0].CustomData
	if len(cd) == 0 {
		return "", false
	}
	url, ok := cd[0].(string)
	return url, ok
}

// Kind distinguishes the two callback outcomes.
type Kind string

// Result kinds.
const (
	KindUpdate   Kind = "update"
	KindNoUpdate Kind = "no_update"
)

// Result is the outcome of a hover callback: either set the image source or leave it alone.
type Result struct {
	kind  Kind
	value string
}

// Update creates a result that sets the image source to src.
func Update(src string) Result { return Result{kind: KindUpdate, value: src} }

// NoUpdate creates a result that leaves the image untouched.
func NoUpdate() Result { return Result{kind: KindNoUpdate} }

// Kind returns the outcome kind.
func (r Result) Kind() Kind { return r.kind }

// IsUpdate reports whether the image source should change.
func (r Result) IsUpdate() bool { return r.kind == KindUpdate }

// Value returns the new image source. Empty for NoUpdate.
func (r Result) Value() string { return r.value }

// Resolve maps a hover payload to its result. No hovered point is NoUpdate, never an error.
func Resolve(d *Data) Result {
	url, ok := d.ImageURL()
	if !ok {
		return NoUpdate()
	}
	return Update(url)
}
