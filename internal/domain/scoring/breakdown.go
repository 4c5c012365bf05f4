package scoring

// Factor is one line of a score breakdown. Breakdowns are ordered slices,
// not maps, so persistence and the UI render factors in evaluation order.
type Factor struct {
	// Name identifies the factor, e.g. "relative_power".
	Name string `json:"name"`

	// Value is the normalized factor input, usually in [0, 1].
	Value float64 `json:"value"`

	// Weight is the configured weight applied to the value.
	Weight float64 `json:"weight"`

	// Impact is the factor's signed contribution to the raw score,
	// in score points.
	Impact float64 `json:"impact"`

	// Rationale is a human-readable note, always populated when a
	// fallback value was substituted for missing intelligence.
	Rationale string `json:"rationale,omitempty"`
}

// Breakdown is an ordered list of factors.
type Breakdown []Factor

// Total sums the impacts of all factors.
func (b Breakdown) Total() float64 {
	var sum float64
	for _, f := range b {
		sum += f.Impact
	}
	return sum
}

// Find returns the named factor and whether it exists.
func (b Breakdown) Find(name string) (Factor, bool) {
	for _, f := range b {
		if f.Name == name {
			return f, true
		}
	}
	return Factor{}, false
}
