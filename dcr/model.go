package dcr

import (
	"fmt"
)

// EventMarking is an initial-marking letter: p (pending), i (included),
// e (executed).
type EventMarking string

const (
	MarkPending  EventMarking = "p"
	MarkIncluded EventMarking = "i"
	MarkExecuted EventMarking = "e"
)

// RelationKind is one of the five DCR relation kinds.
type RelationKind string

const (
	Condition RelationKind = "condition"
	Response  RelationKind = "response"
	Inclusion RelationKind = "inclusion"
	Exclusion RelationKind = "exclusion"
	Milestone RelationKind = "milestone"
)

func validRelationKind(k RelationKind) bool {
	switch k {
	case Condition, Response, Inclusion, Exclusion, Milestone:
		return true
	}
	return false
}

func validEventMarking(m EventMarking) bool {
	switch m {
	case MarkPending, MarkIncluded, MarkExecuted:
		return true
	}
	return false
}

// MarkingSet is the initial marking of an event.
type MarkingSet map[EventMarking]bool

// Has reports whether the marking letter is present.
func (s MarkingSet) Has(m EventMarking) bool {
	return s[m]
}

// Event is a DCR event with its display label and initial marking.
type Event struct {
	ID      string
	Label   string
	Initial MarkingSet
}

// Relation is a typed edge between two events.
type Relation struct {
	SourceID string
	TargetID string
	Kind     RelationKind
}

// Graph is the DCR model built by the translator: events in insertion
// order plus an ordered set of relations.
type Graph struct {
	ID   string
	Name string

	events   map[string]*Event
	eventIDs []string

	relations   []Relation
	relationSet map[Relation]bool
}

func NewGraph(id, name string) *Graph {
	return &Graph{
		ID:          id,
		Name:        name,
		events:      map[string]*Event{},
		relationSet: map[Relation]bool{},
	}
}

// AddEvent registers an event. An empty id or an invalid marking letter is
// a caller bug and returns an error. Re-adding an existing id updates its
// label and initial marking in place.
func (g *Graph) AddEvent(id, label string, initial MarkingSet) error {
	if id == "" {
		return fmt.Errorf("event id cannot be empty")
	}
	marking := MarkingSet{}
	for m := range initial {
		if !validEventMarking(m) {
			return fmt.Errorf("invalid marking %q for event %q", m, id)
		}
		marking[m] = true
	}
	if existing, ok := g.events[id]; ok {
		existing.Label = label
		existing.Initial = marking
		return nil
	}
	g.events[id] = &Event{ID: id, Label: label, Initial: marking}
	g.eventIDs = append(g.eventIDs, id)
	return nil
}

// HasEvent reports whether an event with the id exists.
func (g *Graph) HasEvent(id string) bool {
	_, ok := g.events[id]
	return ok
}

// Event returns the event with the given id, or nil.
func (g *Graph) Event(id string) *Event {
	return g.events[id]
}

// EventIDs returns event ids in insertion order.
func (g *Graph) EventIDs() []string {
	ids := make([]string, len(g.eventIDs))
	copy(ids, g.eventIDs)
	return ids
}

// AddRelation appends a relation. An unknown kind is a caller bug and
// returns an error. Relations whose endpoints are not (yet) events are
// silently skipped, as are duplicate triples.
func (g *Graph) AddRelation(sourceID, targetID string, kind RelationKind) error {
	if !validRelationKind(kind) {
		return fmt.Errorf("invalid relation kind %q", kind)
	}
	if _, ok := g.events[sourceID]; !ok {
		return nil
	}
	if _, ok := g.events[targetID]; !ok {
		return nil
	}
	rel := Relation{SourceID: sourceID, TargetID: targetID, Kind: kind}
	if g.relationSet[rel] {
		return nil
	}
	g.relationSet[rel] = true
	g.relations = append(g.relations, rel)
	return nil
}

// Relations returns all relations in insertion order.
func (g *Graph) Relations() []Relation {
	out := make([]Relation, len(g.relations))
	copy(out, g.relations)
	return out
}

// HasRelation reports whether the exact (source, target, kind) triple exists.
func (g *Graph) HasRelation(sourceID, targetID string, kind RelationKind) bool {
	return g.relationSet[Relation{SourceID: sourceID, TargetID: targetID, Kind: kind}]
}

// RelationsFor returns relations touching the event, as source and/or as
// target, in insertion order.
func (g *Graph) RelationsFor(eventID string, asSource, asTarget bool) []Relation {
	var out []Relation
	for _, rel := range g.relations {
		if asSource && rel.SourceID == eventID {
			out = append(out, rel)
			continue
		}
		if asTarget && rel.TargetID == eventID {
			out = append(out, rel)
		}
	}
	return out
}
