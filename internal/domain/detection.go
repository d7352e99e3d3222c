package domain

// AgeRange is the estimated age range of a detected face.
type AgeRange struct {
	Low  int
	High int
}

// Emotion is one ranked emotion label of a detected face.
type Emotion struct {
	Type       string
	Confidence float64
}

// FaceDetection is one face reported by the detection service at a point in
// the video. Optional attributes are nil when the service did not return them.
type FaceDetection struct {
	TimestampMs int64
	Confidence  float64
	AgeRange    *AgeRange
	Gender      string
	Emotions    []Emotion
	Occluded    *bool
}

// Detection job states reported on completion.
const (
	DetectionSucceeded = "SUCCEEDED"
	DetectionFailed    = "FAILED"
)
