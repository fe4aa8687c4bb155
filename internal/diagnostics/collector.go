package diagnostics

import "sync"

// Collector accumulates diagnostics in the order they are added.
// Records are never modified or removed once added.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends diagnostics in the given order
func (c *Collector) Add(diags ...Diagnostic) {
	if len(diags) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, diags...)
}

// Report appends a single diagnostic built from its parts
func (c *Collector) Report(kind Kind, loc Location, args ...string) {
	c.Add(New(kind, loc, args...))
}

// Merge appends every diagnostic of other after the current ones
func (c *Collector) Merge(other *Collector) {
	if other == nil || other == c {
		return
	}
	c.Add(other.Items()...)
}

// Items returns a copy of the collected diagnostics
func (c *Collector) Items() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of collected diagnostics
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Count returns the number of diagnostics with the given severity
func (c *Collector) Count(sev Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors returns true if any diagnostic has error severity
func (c *Collector) HasErrors() bool {
	return c.Count(SeverityError) > 0
}

// ByKind returns the diagnostics of one kind, in collection order
func (c *Collector) ByKind(kind Kind) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Diagnostic
	for _, d := range c.items {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
