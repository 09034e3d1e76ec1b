package pricing

import (
	"context"
	"errors"
)

var (
	// ErrProviderNotConfigured marks a provider without credentials
	ErrProviderNotConfigured = errors.New("pricing: provider not configured")
	// ErrProviderRequestFailed wraps transport and status failures
	ErrProviderRequestFailed = errors.New("pricing: provider request failed")
	// ErrProviderInvalidResponse marks a body that could not be decoded
	ErrProviderInvalidResponse = errors.New("pricing: invalid provider response")
	// ErrProviderNoResults marks a search that produced no usable price
	ErrProviderNoResults = errors.New("pricing: provider returned no priced items")
)

// OutcomeKind classifies a provider call
type OutcomeKind int

const (
	// OutcomeFound means at least one item was priced
	OutcomeFound OutcomeKind = iota
	// OutcomeAbstained means the provider declined to answer (e.g. unconfigured)
	OutcomeAbstained
	// OutcomeFailed means the provider was asked and could not answer
	OutcomeFailed
)

// String returns the label used in logs and metrics
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeAbstained:
		return "abstained"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// ProviderOutcome is the result of one provider search.
// Items is keyed by the normalized requested item.
type ProviderOutcome struct {
	Kind  OutcomeKind
	Items map[string]PricedItem
	Err   error
}

// Found builds a successful outcome; with no items it becomes a failure.
func Found(items map[string]PricedItem) ProviderOutcome {
	if len(items) == 0 {
		return Failed(ErrProviderNoResults)
	}
	return ProviderOutcome{Kind: OutcomeFound, Items: items}
}

// Abstained builds an outcome for a provider that did not take part
func Abstained(reason error) ProviderOutcome {
	return ProviderOutcome{Kind: OutcomeAbstained, Err: reason}
}

// Failed builds an outcome for a provider call that went wrong
func Failed(err error) ProviderOutcome {
	return ProviderOutcome{Kind: OutcomeFailed, Err: err}
}

// PriceProvider is the port implemented by live price sources.
// Search never panics on upstream problems; they are reported in the outcome.
type PriceProvider interface {
	Source() Source
	Configured() bool
	Search(ctx context.Context, items []string, zip, address string) ProviderOutcome
}
