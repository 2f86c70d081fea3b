// Package hos implements the duty-status timeline engine: assembling a
// trip's interval timeline, partitioning it into per-day ELD logs, walking
// it for Hours-of-Service violations, and planning advisory route stops.
//
// Everything in this package is a pure function of its inputs. No clock, no
// I/O, no shared state. Callers supply "now" explicitly, which is what makes
// the engine trivially testable.
package hos

import (
	"sort"
	"time"

	"github.com/tripline/eld-backend/internal/domain"
)

// AssembleTimeline merges a trip's closed history with its open interval (if
// any) into one chronologically sorted sequence.
//
// The open interval is synthesized with asOf as its end (completed_at for a
// finished trip, the current time otherwise) and contributes nothing when
// asOf is not strictly after its start. Intervals with end <= start are
// dropped silently; bad wall-clock data must never break log rendering.
func AssembleTimeline(history []domain.StatusInterval, open *domain.OpenInterval, asOf time.Time) []domain.StatusInterval {
	out := make([]domain.StatusInterval, 0, len(history)+1)
	for _, iv := range history {
		if !iv.Valid() {
			continue
		}
		out = append(out, iv)
	}

	if open != nil && asOf.After(open.Since) {
		out = append(out, domain.StatusInterval{
			Status: open.Status,
			Start:  open.Since,
			End:    asOf,
		})
	}

	// Stable: ties on start keep insertion order (history before open).
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
