package records

import (
	"github.com/annolens/annolens-cli/internal/api"
)

// ToWire converts the record to its wire-format model. Field order of
// labels is preserved.
func (r *TextClassificationRecord) ToWire() api.TextClassificationRecordWire {
	return api.TextClassificationRecordWire{
		ID:         r.ID,
		Inputs:     r.Inputs,
		Annotation: textAnnotationToWire(r.Annotation),
		Prediction: textAnnotationToWire(r.Prediction),
		Multilabel: r.Multilabel,
		Status:     r.Status,
		Metadata:   r.Metadata,
	}
}

// TextClassificationFromWire converts a wire-format record back into the
// client model.
func TextClassificationFromWire(w api.TextClassificationRecordWire) *TextClassificationRecord {
	return &TextClassificationRecord{
		ID:         w.ID,
		Inputs:     w.Inputs,
		Annotation: textAnnotationFromWire(w.Annotation),
		Prediction: textAnnotationFromWire(w.Prediction),
		Multilabel: w.Multilabel,
		Status:     w.Status,
		Metadata:   w.Metadata,
	}
}

func textAnnotationToWire(a *TextClassificationAnnotation) *api.TextClassificationAnnotationWire {
	if a == nil {
		return nil
	}
	labels := make([]api.ClassPredictionWire, len(a.Labels))
	for i, l := range a.Labels {
		labels[i] = api.ClassPredictionWire{Class: l.Label, Confidence: l.Confidence}
	}
	return &api.TextClassificationAnnotationWire{Agent: a.Agent, Labels: labels}
}

func textAnnotationFromWire(a *api.TextClassificationAnnotationWire) *TextClassificationAnnotation {
	if a == nil {
		return nil
	}
	labels := make([]ClassPrediction, len(a.Labels))
	for i, l := range a.Labels {
		labels[i] = ClassPrediction{Label: l.Class, Confidence: l.Confidence}
	}
	return &TextClassificationAnnotation{Agent: a.Agent, Labels: labels}
}

// ToWire converts the record to its wire-format model. Entity order is
// preserved.
func (r *TokenClassificationRecord) ToWire() api.TokenClassificationRecordWire {
	return api.TokenClassificationRecordWire{
		ID:         r.ID,
		Text:       r.Text,
		Tokens:     r.Tokens,
		Annotation: tokenAnnotationToWire(r.Annotation),
		Prediction: tokenAnnotationToWire(r.Prediction),
		Status:     r.Status,
		Metadata:   r.Metadata,
	}
}

// TokenClassificationFromWire converts a wire-format record back into the
// client model.
func TokenClassificationFromWire(w api.TokenClassificationRecordWire) *TokenClassificationRecord {
	return &TokenClassificationRecord{
		ID:         w.ID,
		Text:       w.Text,
		Tokens:     w.Tokens,
		Annotation: tokenAnnotationFromWire(w.Annotation),
		Prediction: tokenAnnotationFromWire(w.Prediction),
		Status:     w.Status,
		Metadata:   w.Metadata,
	}
}

func tokenAnnotationToWire(a *TokenClassificationAnnotation) *api.TokenClassificationAnnotationWire {
	if a == nil {
		return nil
	}
	entities := make([]api.EntityWire, len(a.Entities))
	for i, e := range a.Entities {
		entities[i] = api.EntityWire{Label: e.Label, Start: e.Start, End: e.End}
	}
	return &api.TokenClassificationAnnotationWire{Agent: a.Agent, Entities: entities}
}

func tokenAnnotationFromWire(a *api.TokenClassificationAnnotationWire) *TokenClassificationAnnotation {
	if a == nil {
		return nil
	}
	entities := make([]Entity, len(a.Entities))
	for i, e := range a.Entities {
		entities[i] = Entity{Label: e.Label, Start: e.Start, End: e.End}
	}
	return &TokenClassificationAnnotation{Agent: a.Agent, Entities: entities}
}
