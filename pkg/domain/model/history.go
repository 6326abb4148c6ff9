package model

// AppendHistory returns a copy of x with ev appended to its history. x is
// left untouched.
func AppendHistory(x *Intervention, ev HistoryEvent) *Intervention {
	updated := x.Copy()
	updated.History = append(updated.History, ev)
	return updated
}

// LastHistoryEvent returns the most recent history entry, or nil when the
// intervention never changed status.
func LastHistoryEvent(x *Intervention) *HistoryEvent {
	if len(x.History) == 0 {
		return nil
	}
	ev := x.History[len(x.History)-1]
	return &ev
}
