package transcode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conduit-lang/docschema/internal/model"
)

var (
	// ErrCycleDetected matches any CycleError via errors.Is
	ErrCycleDetected = errors.New("cycle detected")

	// ErrUnknownKind matches any ClassificationError via errors.Is
	ErrUnknownKind = errors.New("unknown field kind")

	// ErrModelNotFound is returned when a model id cannot be resolved at the top level
	ErrModelNotFound = errors.New("model not found")
)

// CycleError reports a model graph that inlines itself. Path starts and ends
// with the same model.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("transcode: cycle detected: %s", strings.Join(e.Path, " -> "))
}

// Is lets errors.Is(err, ErrCycleDetected) match
func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}

// ClassificationError reports a field whose kind is outside the taxonomy
type ClassificationError struct {
	Model string
	Field string
	Kind  model.Kind
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("transcode: model %s field %s has unknown kind %s", e.Model, e.Field, e.Kind)
}

// Is lets errors.Is(err, ErrUnknownKind) match
func (e *ClassificationError) Is(target error) bool {
	return target == ErrUnknownKind
}
