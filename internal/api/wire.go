package api

// Wire-format models for record upload/download. Field names and JSON tags
// mirror the server's OpenAPI schema; keep them in sync when the server
// schema changes.

// ClassPredictionWire is one (label, confidence) pair of a text
// classification annotation.
type ClassPredictionWire struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// TextClassificationAnnotationWire groups the labels assigned by a single
// agent (a human annotator or a model).
type TextClassificationAnnotationWire struct {
	Agent  string                `json:"agent"`
	Labels []ClassPredictionWire `json:"labels"`
}

// TextClassificationRecordWire is a text classification record as shipped
// over the wire.
type TextClassificationRecordWire struct {
	ID         string                            `json:"id,omitempty"`
	Inputs     map[string]string                 `json:"inputs"`
	Annotation *TextClassificationAnnotationWire `json:"annotation,omitempty"`
	Prediction *TextClassificationAnnotationWire `json:"prediction,omitempty"`
	Multilabel bool                              `json:"multi_label,omitempty"`
	Status     string                            `json:"status,omitempty"`
	Metadata   map[string]any                    `json:"metadata,omitempty"`
}

// EntityWire is a labeled character span of a token classification record.
type EntityWire struct {
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// TokenClassificationAnnotationWire groups the entities identified by a
// single agent.
type TokenClassificationAnnotationWire struct {
	Agent    string       `json:"agent"`
	Entities []EntityWire `json:"entities"`
}

// TokenClassificationRecordWire is a token classification record as shipped
// over the wire.
type TokenClassificationRecordWire struct {
	ID         string                             `json:"id,omitempty"`
	Text       string                             `json:"text"`
	Tokens     []string                           `json:"tokens"`
	Annotation *TokenClassificationAnnotationWire `json:"annotation,omitempty"`
	Prediction *TokenClassificationAnnotationWire `json:"prediction,omitempty"`
	Status     string                             `json:"status,omitempty"`
	Metadata   map[string]any                     `json:"metadata,omitempty"`
}
