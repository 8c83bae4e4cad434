package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// modelRotation is the explicit iteration state for one extraction attempt
// sequence: an ordered candidate list, a cursor, and a retry budget equal to
// the candidate count. It exists as a plain value so rotation can be unit
// tested without the network dependency.
type modelRotation struct {
	candidates []string
	cursor     int
	budget     int
	rotations  int
}

// newModelRotation orders candidates with the preferred model first and the
// rest in discovery order, duplicates removed.
func newModelRotation(preferred string, discovered []string) (*modelRotation, error) {
	seen := make(map[string]struct{}, len(discovered)+1)
	candidates := make([]string, 0, len(discovered)+1)

	appendCandidate := func(raw string) {
		name := strings.TrimSpace(raw)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		candidates = append(candidates, name)
	}

	if containsModel(discovered, preferred) {
		appendCandidate(preferred)
	}
	for _, name := range discovered {
		appendCandidate(name)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: provider returned an empty model list", ErrNoCandidates)
	}

	return &modelRotation{
		candidates: candidates,
		budget:     len(candidates),
	}, nil
}

func (r *modelRotation) Current() string {
	return r.candidates[r.cursor]
}

// Advance moves the cursor to the next candidate, consuming one unit of the
// retry budget.
func (r *modelRotation) Advance() {
	r.cursor = (r.cursor + 1) % len(r.candidates)
	r.budget--
	r.rotations++
}

func (r *modelRotation) Exhausted() bool {
	return r.budget <= 0
}

func (r *modelRotation) Rotations() int {
	return r.rotations
}

// isRecoverable classifies an extraction attempt error. Provider overload,
// 503-class transient failures, a stale/unavailable model, and request
// timeouts justify rotating to the next candidate; anything else is fatal
// and aborts the whole extraction.
func isRecoverable(err error) bool {
	switch {
	case errors.Is(err, ErrProviderOverloaded),
		errors.Is(err, ErrProviderUnavailable),
		errors.Is(err, ErrModelNotFound),
		errors.Is(err, context.DeadlineExceeded):
		return true
	default:
		return false
	}
}

func containsModel(list []string, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, item := range list {
		if strings.TrimSpace(item) == name {
			return true
		}
	}
	return false
}
