// Package records models annotation records on the client side and converts
// them to and from the server's wire format.
package records

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ClassPrediction is one label of a text classification annotation with its
// confidence. Confidence is in [0, 1].
type ClassPrediction struct {
	Label      string
	Confidence float64
}

// TextClassificationAnnotation groups the labels assigned by a single agent.
type TextClassificationAnnotation struct {
	Agent  string
	Labels []ClassPrediction
}

// TextClassificationRecord is a text classification record built locally
// before upload.
type TextClassificationRecord struct {
	ID         string
	Inputs     map[string]string
	Annotation *TextClassificationAnnotation
	Prediction *TextClassificationAnnotation
	Multilabel bool
	Status     string
	Metadata   map[string]any
}

// NewTextClassificationRecord creates a record over the given inputs with a
// fresh ID.
func NewTextClassificationRecord(inputs map[string]string) *TextClassificationRecord {
	return &TextClassificationRecord{
		ID:     uuid.New().String(),
		Inputs: inputs,
	}
}

// Validate checks the record is well formed before conversion or upload.
func (r *TextClassificationRecord) Validate() error {
	if len(r.Inputs) == 0 {
		return fmt.Errorf("record inputs must not be empty")
	}
	if err := validateAnnotation(r.Annotation, "annotation"); err != nil {
		return err
	}
	return validateAnnotation(r.Prediction, "prediction")
}

func validateAnnotation(a *TextClassificationAnnotation, field string) error {
	if a == nil {
		return nil
	}
	if strings.TrimSpace(a.Agent) == "" {
		return fmt.Errorf("%s agent must not be empty", field)
	}
	for _, l := range a.Labels {
		if l.Confidence < 0 || l.Confidence > 1 {
			return fmt.Errorf("%s label %q confidence %v out of range [0, 1]", field, l.Label, l.Confidence)
		}
	}
	return nil
}

// Entity is a labeled character span of a token classification record.
type Entity struct {
	Label string
	Start int
	End   int
}

// TokenClassificationAnnotation groups the entities identified by a single
// agent.
type TokenClassificationAnnotation struct {
	Agent    string
	Entities []Entity
}

// TokenClassificationRecord is a token classification record built locally
// before upload.
type TokenClassificationRecord struct {
	ID         string
	Text       string
	Tokens     []string
	Annotation *TokenClassificationAnnotation
	Prediction *TokenClassificationAnnotation
	Status     string
	Metadata   map[string]any
}

// NewTokenClassificationRecord creates a record over the given text and
// tokenization with a fresh ID.
func NewTokenClassificationRecord(text string, tokens []string) *TokenClassificationRecord {
	return &TokenClassificationRecord{
		ID:     uuid.New().String(),
		Text:   text,
		Tokens: tokens,
	}
}

// Validate checks the record is well formed: non-empty text and tokens, and
// every entity span inside the text bounds.
func (r *TokenClassificationRecord) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("record text must not be empty")
	}
	if len(r.Tokens) == 0 {
		return fmt.Errorf("record tokens must not be empty")
	}
	for _, a := range []*TokenClassificationAnnotation{r.Annotation, r.Prediction} {
		if a == nil {
			continue
		}
		for _, e := range a.Entities {
			if e.Start < 0 || e.End <= e.Start || e.End > len(r.Text) {
				return fmt.Errorf("entity %q span [%d, %d) outside text bounds", e.Label, e.Start, e.End)
			}
		}
	}
	return nil
}
