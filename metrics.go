package statereg

import "github.com/uber-go/tally/v4"

type registryMetrics struct {
	scope  tally.Scope
	groups map[string]*groupMetrics
}

type groupMetrics struct {
	registrations  tally.Counter
	serializations tally.Counter
	loads          tally.Counter
	loadFailures   tally.Counter
	slotFailures   tally.Counter
	clears         tally.Counter
	documentBytes  tally.Histogram
}

func newRegistryMetrics(scope tally.Scope) *registryMetrics {
	return &registryMetrics{
		scope:  scope.SubScope("statereg"),
		groups: map[string]*groupMetrics{},
	}
}

// group returns the counters tagged for info, creating them on first use.
func (r *registryMetrics) group(info GroupInfo) *groupMetrics {
	if gm, ok := r.groups[info.Name]; ok {
		return gm
	}
	scope := r.scope.Tagged(map[string]string{"group": info.Name})
	gm := &groupMetrics{
		registrations:  scope.Counter("registrations"),
		serializations: scope.Counter("serializations"),
		loads:          scope.Counter("loads"),
		loadFailures:   scope.Counter("load_failures"),
		slotFailures:   scope.Counter("slot_failures"),
		clears:         scope.Counter("clears"),
		documentBytes:  scope.Histogram("document_bytes", tally.MustMakeExponentialValueBuckets(64, 4, 8)),
	}
	r.groups[info.Name] = gm
	return gm
}
