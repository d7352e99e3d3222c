package service

import (
	"strings"

	"github.com/timmy/facetrail/internal/domain"
)

// AgeBucket maps an age range to a coarse bucket using the integer midpoint.
func AgeBucket(r *domain.AgeRange) string {
	if r == nil {
		return domain.AgeBucketUnknown
	}
	avg := (r.Low + r.High) / 2
	switch {
	case avg < 18:
		return "0-17"
	case avg < 25:
		return "18-24"
	case avg < 35:
		return "25-34"
	case avg < 50:
		return "35-49"
	default:
		return "50+"
	}
}

// PrimaryEmotion returns the lower-cased type of the highest-confidence emotion.
// Ties keep the first occurrence.
func PrimaryEmotion(emotions []domain.Emotion) string {
	if len(emotions) == 0 {
		return domain.EmotionNeutral
	}
	best := emotions[0]
	for _, e := range emotions[1:] {
		if e.Confidence > best.Confidence {
			best = e
		}
	}
	if best.Type == "" {
		return domain.EmotionNeutral
	}
	return strings.ToLower(best.Type)
}

// Gender returns the reported gender value, or unknown when absent.
func Gender(value string) string {
	if value == "" {
		return domain.GenderUnknown
	}
	return value
}

// NormalizeAttributes derives the categorical attributes of one detected face.
func NormalizeAttributes(face domain.FaceDetection) domain.AppearanceAttributes {
	return domain.AppearanceAttributes{
		AgeBucket: AgeBucket(face.AgeRange),
		Gender:    Gender(face.Gender),
		Emotion:   PrimaryEmotion(face.Emotions),
		Mask:      face.Occluded != nil && *face.Occluded,
	}
}
