package session

// Placeholder prompt text shown in the entry fields. A label left at
// its prompt is stored as Unlabeled.
const (
	TemperaturePrompt = "Temperature (°C)"
	DistancePrompt    = "Distance (cm)"

	// Unlabeled is the sentinel stored when the operator left a label
	// field at its placeholder.
	Unlabeled = "Un-Labeled"
)

// Sample is one timing observation labeled with its experimental
// conditions. ID is assigned by the session and is the identity used
// for deletion.
type Sample struct {
	ID          int64  `json:"id"`
	Temperature string `json:"temperature"`
	Distance    string `json:"distance"`
	TimeMicros  int64  `json:"time_us"`
}

// normalizeLabel replaces a label left at its placeholder prompt with
// the Unlabeled sentinel. Any other string is stored verbatim.
func normalizeLabel(label, prompt string) string {
	if label == prompt {
		return Unlabeled
	}
	return label
}
