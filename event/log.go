package event

import "github.com/xraph/quill/id"

// Log is an in-memory append-only event log owned by one blog process.
// It is not safe for concurrent use.
type Log struct {
	events []*Event
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append stores e, assigning an ID when it has none.
func (l *Log) Append(e *Event) {
	if e.ID.IsNil() {
		e.ID = id.NewEventID()
	}
	c := *e
	l.events = append(l.events, &c)
}

// List returns events matching the filter, oldest first.
func (l *Log) List(filter *QueryFilter) []*Event {
	out := make([]*Event, 0, len(l.events))
	for _, e := range l.events {
		if !matches(e, filter) {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	if filter == nil {
		return out
	}
	return paginate(out, filter.Limit, filter.Offset)
}

// Count returns the number of events matching the filter, ignoring
// pagination.
func (l *Log) Count(filter *QueryFilter) int {
	n := 0
	for _, e := range l.events {
		if matches(e, filter) {
			n++
		}
	}
	return n
}

// Clear drops every event and returns how many were removed.
func (l *Log) Clear() int {
	n := len(l.events)
	l.events = nil
	return n
}

func matches(e *Event, f *QueryFilter) bool {
	if f == nil {
		return true
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Role != "" && e.Role != f.Role {
		return false
	}
	if f.Account != "" && e.Account != f.Account {
		return false
	}
	if f.Caller != "" && e.Caller != f.Caller {
		return false
	}
	if f.After != nil && e.Timestamp.Before(*f.After) {
		return false
	}
	if f.Before != nil && e.Timestamp.After(*f.Before) {
		return false
	}
	return true
}

func paginate(items []*Event, limit, offset int) []*Event {
	if offset > 0 && offset < len(items) {
		items = items[offset:]
	} else if offset >= len(items) && offset > 0 {
		return nil
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
