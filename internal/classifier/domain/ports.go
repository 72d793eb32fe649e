package domain

import "context"

// Classifier turns free text into a Classification.
type Classifier interface {
	Classify(ctx context.Context, content string) (Classification, error)
}

// Model sends a prompt to a generative model and returns its raw text.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
