package inference

// tally accumulates label weights and remembers first-seen order, so ties go
// to the label encountered first.
type tally struct {
	order  []string
	weight map[string]float64
}

func newTally() *tally {
	return &tally{weight: make(map[string]float64)}
}

func (t *tally) add(label string, w float64) {
	if _, ok := t.weight[label]; !ok {
		t.order = append(t.order, label)
	}
	t.weight[label] += w
}

func (t *tally) winner() (string, bool) {
	if len(t.order) == 0 {
		return "", false
	}
	best := t.order[0]
	for _, l := range t.order[1:] {
		if t.weight[l] > t.weight[best] {
			best = l
		}
	}
	return best, true
}

func (t *tally) distinct() int {
	return len(t.order)
}
