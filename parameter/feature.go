package parameter

// Feature defaults applied when properties do not say otherwise
const (
	// PointRadius is the marker radius in client pixels
	PointRadius = 5.0

	// PieRadius is the outer radius of pie markers in client pixels
	PieRadius = 14.0

	// LabelOffset is the horizontal client distance between a marker and its label
	LabelOffset = 8.0
)
