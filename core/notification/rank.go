package notification

import "sort"

// Dedupe drops the notifications whose identity was already produced, keeping the first one.
func Dedupe(items []Notification) []Notification {
	seen := make(map[identity]struct{}, len(items))
	out := make([]Notification, 0, len(items))
	for _, n := range items {
		id := n.identity()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Rank de-duplicates items, stable-sorts them by priority then recency (both descending) and caps them to limit
// (no cap if limit <= 0). The summary counts the de-duplicated list before the cap.
func Rank(items []Notification, limit int) ([]Notification, Summary) {
	ranked := Dedupe(items)

	var summary Summary
	for _, n := range ranked {
		summary.add(n)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].Priority.Rank(), ranked[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return ranked[i].Timestamp.After(ranked[j].Timestamp)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, summary
}
