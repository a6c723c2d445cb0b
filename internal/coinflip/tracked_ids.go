package coinflip

// trackedIds is an insertion-ordered set of game ids.
type trackedIds []uint64

func (t trackedIds) has(id uint64) bool {
	for _, v := range t {
		if v == id {
			return true
		}
	}
	return false
}

func (t trackedIds) add(id uint64) trackedIds {
	if t.has(id) {
		return t
	}
	return append(t, id)
}

func (t trackedIds) remove(id uint64) trackedIds {
	out := t[:0:0]
	for _, v := range t {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (t trackedIds) without(drop map[uint64]bool) trackedIds {
	out := trackedIds{}
	for _, v := range t {
		if !drop[v] {
			out = append(out, v)
		}
	}
	return out
}
