package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/oraculum/ai"
)

// Generator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type Generator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default canned behavior.
	GenerateFunc func(ctx context.Context, prompt string, params ai.GenerationParams) (string, error)

	// Response is returned by Generate when GenerateFunc is nil and Err is nil.
	Response string

	// Err is returned by Generate when GenerateFunc is nil.
	Err error

	name      string
	callCount int
	// LastPrompt and LastParams record the most recent Generate call.
	LastPrompt string
	LastParams ai.GenerationParams
}

// NewGenerator creates a mock generation backend with a canned response.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewGenerator(name, response string) *Generator {
	return &Generator{name: name, Response: response}
}

// NewFailingGenerator creates a mock backend that always fails with err.
func NewFailingGenerator(name string, err error) *Generator {
	if err == nil {
		err = fmt.Errorf("backend %s unavailable", name)
	}
	return &Generator{name: name, Err: err}
}

// Name identifies the mock backend.
func (m *Generator) Name() string {
	return m.name
}

// Generate returns the canned response or error, recording the call.
func (m *Generator) Generate(ctx context.Context, prompt string, params ai.GenerationParams) (string, error) {
	m.callCount++
	m.LastPrompt = prompt
	m.LastParams = params

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, params)
	}

	if m.Err != nil {
		return "", m.Err
	}

	return m.Response, nil
}

// CallCount returns the number of times Generate was called.
func (m *Generator) CallCount() int {
	return m.callCount
}

// Reset clears call state and injected behavior.
func (m *Generator) Reset() {
	m.callCount = 0
	m.LastPrompt = ""
	m.LastParams = ai.GenerationParams{}
	m.GenerateFunc = nil
}
