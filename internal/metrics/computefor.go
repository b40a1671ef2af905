package metrics

import (
	"fmt"
	"strings"
)

// ComputeFor selects whether a metric is computed over human annotations or
// model predictions.
type ComputeFor int

const (
	// Predictions computes the metric over model predictions. This is the
	// default.
	Predictions ComputeFor = iota
	// Annotations computes the metric over human annotations.
	Annotations
)

func (c ComputeFor) String() string {
	switch c {
	case Predictions:
		return "predictions"
	case Annotations:
		return "annotations"
	}
	return fmt.Sprintf("ComputeFor(%d)", int(c))
}

// selector returns the server-side metric id prefix for c. The mapping is
// exhaustive over the two cases; any other value is a validation error.
func (c ComputeFor) selector() (string, error) {
	switch c {
	case Predictions:
		return "predicted", nil
	case Annotations:
		return "annotated", nil
	}
	return "", fmt.Errorf("invalid compute-for value %d (accepted values are predictions, annotations)", int(c))
}

// ParseComputeFor resolves a user-supplied string (CLI flag, config value)
// into a ComputeFor. Matching is case-insensitive and accepts the singular
// forms as well.
func ParseComputeFor(s string) (ComputeFor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "predictions", "prediction", "predicted":
		return Predictions, nil
	case "annotations", "annotation", "annotated":
		return Annotations, nil
	}
	return Predictions, fmt.Errorf("invalid compute-for value %q (accepted values are predictions, annotations)", s)
}
