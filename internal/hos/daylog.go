package hos

import (
	"sort"
	"time"

	"github.com/tripline/eld-backend/internal/domain"
)

// dayEndOf returns the day's inclusive end, 23:59:59.999999 local time.
// The partitioner uses this microsecond-precision convention (rather than a
// half-open [day, day+1) one) uniformly for clipping, clamping, and fill.
// Derived from the next local midnight, not a fixed 24h offset: DST days are
// 23 or 25 wall-clock hours long and the end must stay on the same date.
func dayEndOf(dayStart time.Time, loc *time.Location) time.Time {
	return startOfDay(dayStart, loc).AddDate(0, 0, 1).Add(-time.Microsecond)
}

// BuildDayLogs splits a sorted interval sequence into per-calendar-day ELD
// logs in the given zone. Each returned day's entries tile the full local
// day: sorted by start, no gaps, no overlaps, with off-duty fill synthesized
// for any uncovered span.
//
// The work happens in two passes with separately checkable invariants:
// partition clips raw intervals at local midnights and buckets them by date,
// then normalize fills and clamps each day independently.
func BuildDayLogs(intervals []domain.StatusInterval, loc *time.Location) []domain.DayLog {
	byDate := partitionByDay(intervals, loc)

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	logs := make([]domain.DayLog, 0, len(dates))
	for _, date := range dates {
		logs = append(logs, domain.DayLog{
			Date:    date,
			Entries: normalizeDay(byDate[date]),
		})
	}
	return logs
}

// partitionByDay walks each interval in local time, repeatedly clipping it at
// the next local midnight and emitting the clipped piece under that day's
// YYYY-MM-DD key. An interval spanning midnight therefore contributes one
// raw entry to each day it touches.
func partitionByDay(intervals []domain.StatusInterval, loc *time.Location) map[string][]domain.LogEntry {
	byDate := make(map[string][]domain.LogEntry)

	for _, iv := range intervals {
		cur := iv.Start.In(loc)
		end := iv.End.In(loc)
		if !end.After(cur) {
			continue
		}

		for cur.Before(end) {
			nextMidnight := startOfDay(cur, loc).AddDate(0, 0, 1)
			pieceEnd := end
			if nextMidnight.Before(pieceEnd) {
				pieceEnd = nextMidnight
			}
			if !pieceEnd.After(cur) {
				break
			}
			key := cur.Format("2006-01-02")
			byDate[key] = append(byDate[key], domain.LogEntry{
				Status: iv.Status,
				Start:  cur,
				End:    pieceEnd,
			})
			cur = pieceEnd
		}
	}
	return byDate
}

// normalizeDay turns one day's raw entries into a gap-free tiling of the
// local day. Entries are sorted by start, clamped to the day's bounds, and a
// cursor advancing from midnight inserts off-duty fill ahead of any entry
// that starts later; a final fill covers the tail out to day end. Entries
// that clamp to nothing are skipped.
func normalizeDay(raw []domain.LogEntry) []domain.LogEntry {
	entries := make([]domain.LogEntry, len(raw))
	copy(entries, raw)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Start.Before(entries[j].Start)
	})

	loc := entries[0].Start.Location()
	dayStart := startOfDay(entries[0].Start, loc)
	dayEnd := dayEndOf(dayStart, loc)

	out := make([]domain.LogEntry, 0, len(entries)+2)
	cursor := dayStart
	for _, e := range entries {
		start := laterOf(dayStart, e.Start)
		end := earlierOf(dayEnd, e.End)
		if !end.After(start) {
			continue
		}

		if start.After(cursor) {
			out = append(out, domain.LogEntry{
				Status: domain.StatusOffDuty,
				Start:  cursor,
				End:    start,
			})
		}
		out = append(out, domain.LogEntry{Status: e.Status, Start: start, End: end})
		cursor = end
	}

	if cursor.Before(dayEnd) {
		out = append(out, domain.LogEntry{
			Status: domain.StatusOffDuty,
			Start:  cursor,
			End:    dayEnd,
		})
	}
	return out
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func laterOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func earlierOf(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
