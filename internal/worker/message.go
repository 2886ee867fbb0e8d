package worker

import "github.com/ironsheep/pigment-mcp/internal/colormodel"

// Message types.
const (
	TypeAnalyze       = "analyze"
	TypeAnalyzeResult = "analyze-result"
)

// Request asks for the candidate pigments of an image.
//
// Pixels are plain {r,g,b} objects. Absent thresholds take the pipeline
// defaults; a present zero is used as given. An empty SelectionMethod means
// the pipeline default.
type Request struct {
	// ID correlates a response with its request. Worker.Analyze fills it
	// when empty.
	ID                  string           `json:"id,omitempty"`
	Type                string           `json:"type"`
	Pixels              []colormodel.RGB `json:"pixels"`
	ColorCount          int              `json:"colorCount"`
	SelectionMethod     string           `json:"selectionMethod"`
	SimilarityThreshold *float64         `json:"similarityThreshold,omitempty"`
	AchromaticThreshold *float64         `json:"achromaticThreshold,omitempty"`
}

// Response carries the extracted colors as uppercase hex strings. On failure
// Colors is empty and Error describes the problem.
type Response struct {
	ID     string   `json:"id,omitempty"`
	Type   string   `json:"type"`
	Colors []string `json:"colors"`
	Error  string   `json:"error,omitempty"`
}

func errorResponse(id, msg string) Response {
	return Response{ID: id, Type: TypeAnalyzeResult, Colors: []string{}, Error: msg}
}
