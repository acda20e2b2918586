package geometry

import (
	"fmt"
	"strings"
)

// Quality selects a mesh resolution tier.
type Quality string

const (
	QualityDraft Quality = "draft"
	QualityHigh  Quality = "high"
)

// ParseQuality converts a user-supplied string to a Quality.
// An empty string means draft.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "draft":
		return QualityDraft, nil
	case "high":
		return QualityHigh, nil
	default:
		return "", fmt.Errorf("%w: unknown quality %q (want draft or high)", ErrInvalidParameter, s)
	}
}
