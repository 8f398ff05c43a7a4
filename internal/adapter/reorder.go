package adapter

// Hydrated is a loaded record and the index into Lookup.Hits (and
// Lookup.IDs) of the hit it was loaded for. Hit is -1 when the backend
// returned a record no hit asked for.
type Hydrated struct {
	Record any
	Hit    int
}

// Values returns the records of hs in order.
func Values(hs []Hydrated) []any {
	if hs == nil {
		return nil
	}
	out := make([]any, len(hs))
	for i, h := range hs {
		out[i] = h.Record
	}
	return out
}

// Reorder arranges records in ids order, one entry per id that has a
// record. Records whose id is not in ids, or that the id function rejects,
// are dropped.
func Reorder(records []any, ids []string, idOf func(any) (string, error)) []Hydrated {
	byID := make(map[string]any, len(records))
	for _, r := range records {
		id, err := idOf(r)
		if err != nil {
			continue
		}
		if _, dup := byID[id]; !dup {
			byID[id] = r
		}
	}

	out := make([]Hydrated, 0, len(ids))
	for i, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, Hydrated{Record: r, Hit: i})
		}
	}
	return out
}

// Pair keeps records in backend order and attaches to each the first
// unclaimed position of its id in ids.
func Pair(records []any, ids []string, idOf func(any) (string, error)) []Hydrated {
	positions := make(map[string][]int, len(ids))
	for i, id := range ids {
		positions[id] = append(positions[id], i)
	}

	out := make([]Hydrated, len(records))
	for i, r := range records {
		out[i] = Hydrated{Record: r, Hit: -1}
		id, err := idOf(r)
		if err != nil {
			continue
		}
		if p := positions[id]; len(p) > 0 {
			out[i].Hit = p[0]
			positions[id] = p[1:]
		}
	}
	return out
}
