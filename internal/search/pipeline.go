package search

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rently/client/internal/models"
)

// Fetcher is the slice of the backend the pipeline queries.
type Fetcher interface {
	ListProperties() ([]models.Property, error)
	SearchProperties(location string, propertyType models.PropertyType, minSquareFeet int) ([]models.Property, error)
}

// Result is the canonical filtered, sorted listing delivered to subscribers.
// When a fetch fails the previous properties are kept and Stale is set, so
// consumers can flag the listing instead of clearing it.
type Result struct {
	Properties []models.Property
	Stale      bool
	Err        error
}

// Pipeline turns user-edited filter state into a fetched, filtered, sorted
// property list. Edits are debounced: a fetch is issued only after a quiet
// period with no further changes. Each fetch carries a monotonically
// increasing sequence number; a response is committed only if no newer fetch
// has been issued, so a slow early request can never overwrite a later one.
type Pipeline struct {
	fetcher  Fetcher
	logger   *logrus.Logger
	debounce time.Duration

	mu          sync.Mutex
	state       models.SearchFilterState
	timer       *time.Timer
	seq         uint64
	result      Result
	subscribers []func(Result)
	closed      bool
}

func NewPipeline(fetcher Fetcher, debounce time.Duration, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		logger:   logger,
		debounce: debounce,
	}
}

// SetState records a filter change and restarts the quiet-period timer. Only
// the last state set before the timer fires is fetched.
func (p *Pipeline) SetState(state models.SearchFilterState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.state = state
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, p.fire)
}

// Current returns the latest committed result.
func (p *Pipeline) Current() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// State returns the latest filter state set by the user.
func (p *Pipeline) State() models.SearchFilterState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers a callback invoked after every committed result.
func (p *Pipeline) Subscribe(fn func(Result)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// Close stops any pending fetch timer. In-flight requests finish but their
// results are discarded.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	// Bump the sequence so any in-flight response fails the freshness check.
	p.seq++
}

// fire runs when the quiet period elapses. It snapshots the state, stamps
// the fetch with the next sequence number and issues it.
func (p *Pipeline) fire() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.seq++
	seq := p.seq
	state := p.state
	p.mu.Unlock()

	requestID := uuid.NewString()
	log := p.logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"seq":         seq,
		"search_term": state.SearchTerm,
		"type_filter": state.TypeFilter,
		"sort_key":    state.SortKey,
	})
	log.Debug("Issuing property fetch")

	properties, err := p.fetch(state)
	if err != nil {
		log.WithError(err).Error("Property fetch failed")
		p.commitFailure(seq, err)
		return
	}

	result := applyFilters(properties, state)
	p.commit(seq, result, log)
}

// fetch builds the server query. The search endpoint is used only when a
// filter is active; the backend treats minSquareFeet as a hint and does not
// filter on it, so the authoritative size filter is applied client-side.
func (p *Pipeline) fetch(state models.SearchFilterState) ([]models.Property, error) {
	if !state.HasServerFilter() {
		return p.fetcher.ListProperties()
	}
	return p.fetcher.SearchProperties(state.SearchTerm, state.TypeFilter, state.MinSquareFeet)
}

func (p *Pipeline) commit(seq uint64, properties []models.Property, log *logrus.Entry) {
	p.mu.Lock()
	if seq != p.seq {
		p.mu.Unlock()
		log.Debug("Discarding superseded fetch result")
		return
	}
	p.result = Result{Properties: properties}
	result := p.result
	p.mu.Unlock()

	log.WithField("count", len(properties)).Info("Committed property listing")
	p.notify(result)
}

// commitFailure keeps the last-known-good list visible and flags it stale.
func (p *Pipeline) commitFailure(seq uint64, err error) {
	p.mu.Lock()
	if seq != p.seq {
		p.mu.Unlock()
		return
	}
	p.result.Stale = true
	p.result.Err = err
	result := p.result
	p.mu.Unlock()

	p.notify(result)
}

func (p *Pipeline) notify(result Result) {
	p.mu.Lock()
	subscribers := p.subscribers
	p.mu.Unlock()

	for _, fn := range subscribers {
		fn(result)
	}
}

// applyFilters applies the client-authoritative minimum-size filter and sort.
// The sort is stable: equal keys keep their server-returned order, and the
// newest sort leaves the server order untouched.
func applyFilters(properties []models.Property, state models.SearchFilterState) []models.Property {
	filtered := make([]models.Property, 0, len(properties))
	for _, property := range properties {
		if state.MinSquareFeet > 0 && property.SquareFeet < state.MinSquareFeet {
			continue
		}
		filtered = append(filtered, property)
	}

	switch state.SortKey {
	case models.SortPriceLow:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price < filtered[j].Price
		})
	case models.SortPriceHigh:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price > filtered[j].Price
		})
	case models.SortSqftHigh:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].SquareFeet > filtered[j].SquareFeet
		})
	}

	return filtered
}
