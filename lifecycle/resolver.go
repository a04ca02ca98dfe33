package lifecycle

import (
	"context"

	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
)

// Verdict is how an existing record's claim on a serial is judged.
type Verdict int

const (
	// VerdictSuperseded: the serial is the record's pre-repair identity and
	// the device was re-identified, so the claim is historical.
	VerdictSuperseded Verdict = iota
	VerdictNotFixed
	VerdictNotDelivered
	VerdictResolved
)

func (v Verdict) String() string {
	switch v {
	case VerdictSuperseded:
		return "superseded"
	case VerdictNotFixed:
		return "not_fixed"
	case VerdictNotDelivered:
		return "not_delivered"
	default:
		return "resolved"
	}
}

// Blocking reports whether the verdict rejects a new claim.
func (v Verdict) Blocking() bool {
	return v == VerdictNotFixed || v == VerdictNotDelivered
}

type Match struct {
	Record  models.Switch
	Verdict Verdict
}

// Classify judges one existing record against a candidate serial.
func Classify(sw *models.Switch, candidate string) Verdict {
	if sw.OldSerialNumber == candidate && sw.NewSerialNumber != "" && sw.NewSerialNumber != candidate {
		return VerdictSuperseded
	}
	if sw.Status != models.StatusFixed {
		return VerdictNotFixed
	}
	if sw.Delivery() != models.Delivered {
		return VerdictNotDelivered
	}
	return VerdictResolved
}

// Resolver finds every record referencing a serial and classifies it.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver { return &Resolver{store: store} }

// Resolve returns all matches for candidate in store order.
// excludeKey (0 for none) is the record being replaced.
func (r *Resolver) Resolve(ctx context.Context, candidate string, excludeKey int64) ([]Match, error) {
	found, err := r.store.FindBySerial(ctx, candidate, excludeKey)
	if err != nil {
		return nil, storeErr("find by serial", err)
	}
	out := make([]Match, 0, len(found))
	for i := range found {
		out = append(out, Match{Record: found[i], Verdict: Classify(&found[i], candidate)})
	}
	return out, nil
}

// Check returns a *ConflictError for the first blocking match, or nil.
func (r *Resolver) Check(ctx context.Context, candidate string, excludeKey int64) error {
	matches, err := r.Resolve(ctx, candidate, excludeKey)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if !m.Verdict.Blocking() {
			continue
		}
		reason := ReasonNotFixed
		if m.Verdict == VerdictNotDelivered {
			reason = ReasonNotDelivered
		}
		return &ConflictError{
			Serial:      candidate,
			Reason:      reason,
			ConflictKey: m.Record.UniqueKey,
			Verdict:     m.Verdict,
		}
	}
	return nil
}
