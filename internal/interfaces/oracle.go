package interfaces

import "context"

// Completion is the outcome of a single oracle call. Degraded marks
// placeholder text substituted after the external service failed; the
// narrative chain keeps going either way.
type Completion struct {
	Text     string
	Degraded bool
}

// Completer is the text-completion oracle behind the narrative chain.
// Implementations never return an error: a failed call degrades to
// placeholder text so a multi-step chain can always finish.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) Completion
}
