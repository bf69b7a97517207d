package shelf

import "strconv"

// Property names written by the viewport to a PropertySink.
const (
	PropScale      = "--canvas-scale"
	PropTranslateX = "--canvas-translate-x"
	PropTranslateY = "--canvas-translate-y"
)

// PropertySink receives the viewport transform as named string properties,
// the way a style sheet consumes custom properties.
type PropertySink interface {
	SetProperty(name, value string)
}

// PropertyMap is an in-memory PropertySink.
type PropertyMap map[string]string

// SetProperty implements PropertySink.
func (m PropertyMap) SetProperty(name, value string) {
	m[name] = value
}

func writeViewportProperties(sink PropertySink, t ViewportTransform) {
	if sink == nil {
		return
	}
	sink.SetProperty(PropScale, strconv.FormatFloat(t.Scale, 'f', -1, 64))
	sink.SetProperty(PropTranslateX, strconv.FormatFloat(t.TranslateX, 'f', -1, 64)+"px")
	sink.SetProperty(PropTranslateY, strconv.FormatFloat(t.TranslateY, 'f', -1, 64)+"px")
}
