package watsonx

import "time"

// BatchUnit is one independent request within a batch. Config overrides the
// batch-wide configuration when non-nil.
type BatchUnit struct {
	ID     string
	Prompt string
	Config *GenerationConfig
}

// FailureKind classifies a failed batch item.
type FailureKind int

const (
	FailureNone      FailureKind = iota // item succeeded
	FailureError                        // the operation returned an error
	FailureCancelled                    // the batch context ended before the item completed
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureError:
		return "error"
	case FailureCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// BatchItemOutcome is the result of running one BatchUnit. Exactly one of
// Result and Err is meaningful, selected by Err being nil.
type BatchItemOutcome struct {
	Index    int // position of the unit in the submitted slice
	ID       string
	Prompt   string
	Result   GenerationResult
	Err      error
	Kind     FailureKind
	Duration time.Duration
}

// OK reports whether the item succeeded.
func (o BatchItemOutcome) OK() bool { return o.Err == nil }

// BatchReport aggregates every outcome of a batch. Items are in completion
// order; use Index to map back to submission order.
type BatchReport struct {
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Items     []BatchItemOutcome
}

// Successes returns the successful items.
func (r BatchReport) Successes() []BatchItemOutcome {
	var out []BatchItemOutcome
	for _, it := range r.Items {
		if it.OK() {
			out = append(out, it)
		}
	}
	return out
}

// Failures returns the failed items.
func (r BatchReport) Failures() []BatchItemOutcome {
	var out []BatchItemOutcome
	for _, it := range r.Items {
		if !it.OK() {
			out = append(out, it)
		}
	}
	return out
}

// AnyFailed reports whether at least one item failed.
func (r BatchReport) AnyFailed() bool { return r.Failed > 0 }

// AllSucceeded reports whether every item succeeded.
func (r BatchReport) AllSucceeded() bool { return r.Failed == 0 }

// SuccessRate returns the fraction of successful items, or 0 for an empty batch.
func (r BatchReport) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Total)
}
