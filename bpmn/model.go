package bpmn

import (
	"sort"
	"strings"
)

// Gateway direction derived from incoming/outgoing flow counts.
type Direction string

const (
	DirectionUnknown   Direction = ""
	DirectionSplit     Direction = "split"
	DirectionJoin      Direction = "join"
	DirectionRouting   Direction = "routing_decision_point"
	DirectionUndefined Direction = "undefined_or_complex"
)

// LoopType tags the two halves of an exclusive do-while loop.
type LoopType string

const (
	LoopNone           LoopType = ""
	LoopEntryJoin      LoopType = "loop_entry_join"
	LoopConditionSplit LoopType = "loop_condition_split"
)

// MarkingType annotates an element adjacent to a paired gateway.
type MarkingType string

const (
	MarkSplitPlus  MarkingType = "S+"
	MarkSplitMinus MarkingType = "S-"
	MarkJoinPlus   MarkingType = "J+"
	MarkJoinMinus  MarkingType = "J-"
)

func validMarkingType(t MarkingType) bool {
	switch t {
	case MarkSplitPlus, MarkSplitMinus, MarkJoinPlus, MarkJoinMinus:
		return true
	}
	return false
}

// Marking is a (type, gateway) annotation; markings on an element form a set.
type Marking struct {
	Type      MarkingType
	GatewayID string
}

// Element is a node of the process graph: task, event or gateway.
type Element struct {
	ID       string
	Name     string
	Type     string // concrete BPMN kind, e.g. "userTask", "exclusiveGateway"
	BaseType string // task variants collapse to "task"

	Incoming []string // flow ids in document order
	Outgoing []string

	// Gateway-only attributes, zero values otherwise.
	GatewayType string // "parallel", "exclusive", "inclusive", "complex", "eventBased"
	Direction   Direction
	PairedID    string
	LoopType    LoopType

	Markings []Marking

	// For inclusive-join predecessors: the outgoing flow of the paired
	// inclusive split that originated the path reaching this element.
	InclusivePathOriginFlowID string
}

// IsGateway reports whether the element's concrete kind is a gateway.
func (e *Element) IsGateway() bool {
	return strings.HasSuffix(e.Type, "Gateway")
}

// IsTask reports whether the element collapses to the base task kind.
func (e *Element) IsTask() bool {
	return e.BaseType == "task"
}

// HasMarking reports whether the element carries a marking of the given
// type. A non-empty gatewayID restricts the match to that gateway.
func (e *Element) HasMarking(t MarkingType, gatewayID string) bool {
	for _, m := range e.Markings {
		if m.Type != t {
			continue
		}
		if gatewayID == "" || m.GatewayID == gatewayID {
			return true
		}
	}
	return false
}

// SequenceFlow is a directed edge between two elements.
type SequenceFlow struct {
	ID         string
	Name       string
	SourceRef  string
	TargetRef  string
	Expression string // optional condition expression text
}

// Process is the in-memory BPMN graph. Elements and flows are indexed by
// id; insertion order is retained so traversals stay reproducible.
type Process struct {
	ID   string
	Name string

	elements   map[string]*Element
	elementIDs []string
	flows      map[string]*SequenceFlow
	flowIDs    []string
}

func NewProcess(id, name string) *Process {
	return &Process{
		ID:       id,
		Name:     name,
		elements: map[string]*Element{},
		flows:    map[string]*SequenceFlow{},
	}
}

// AddElement registers an element. Elements without an id are ignored.
func (p *Process) AddElement(e *Element) {
	if e == nil || e.ID == "" {
		return
	}
	if _, ok := p.elements[e.ID]; !ok {
		p.elementIDs = append(p.elementIDs, e.ID)
	}
	p.elements[e.ID] = e
}

// AddFlow registers a sequence flow and wires it into the adjacency lists
// of any endpoints already present. Flows without an id are ignored.
func (p *Process) AddFlow(f *SequenceFlow) {
	if f == nil || f.ID == "" {
		return
	}
	if _, ok := p.flows[f.ID]; !ok {
		p.flowIDs = append(p.flowIDs, f.ID)
	}
	p.flows[f.ID] = f
	if src := p.elements[f.SourceRef]; src != nil {
		src.Outgoing = append(src.Outgoing, f.ID)
	}
	if tgt := p.elements[f.TargetRef]; tgt != nil {
		tgt.Incoming = append(tgt.Incoming, f.ID)
	}
}

// AddMarking attaches a (type, gateway) marking to the element. Unknown
// elements, invalid marking types and empty gateway ids are ignored;
// duplicates collapse.
func (p *Process) AddMarking(elementID string, t MarkingType, gatewayID string) {
	e := p.elements[elementID]
	if e == nil || !validMarkingType(t) || gatewayID == "" {
		return
	}
	for _, m := range e.Markings {
		if m.Type == t && m.GatewayID == gatewayID {
			return
		}
	}
	e.Markings = append(e.Markings, Marking{Type: t, GatewayID: gatewayID})
}

// Element returns the element with the given id, or nil.
func (p *Process) Element(id string) *Element {
	return p.elements[id]
}

// Flow returns the sequence flow with the given id, or nil.
func (p *Process) Flow(id string) *SequenceFlow {
	return p.flows[id]
}

// ElementIDs returns all element ids sorted lexicographically.
func (p *Process) ElementIDs() []string {
	ids := make([]string, len(p.elementIDs))
	copy(ids, p.elementIDs)
	sort.Strings(ids)
	return ids
}

// FlowIDs returns all flow ids sorted lexicographically.
func (p *Process) FlowIDs() []string {
	ids := make([]string, len(p.flowIDs))
	copy(ids, p.flowIDs)
	sort.Strings(ids)
	return ids
}

// Successors returns the ids of elements reachable over one outgoing flow,
// in flow insertion order. Dangling flow targets are skipped.
func (p *Process) Successors(elementID string) []string {
	e := p.elements[elementID]
	if e == nil {
		return nil
	}
	var out []string
	for _, flowID := range e.Outgoing {
		f := p.flows[flowID]
		if f == nil {
			continue
		}
		if p.elements[f.TargetRef] != nil {
			out = append(out, f.TargetRef)
		}
	}
	return out
}

// Predecessors returns the ids of elements one incoming flow away, in flow
// insertion order.
func (p *Process) Predecessors(elementID string) []string {
	e := p.elements[elementID]
	if e == nil {
		return nil
	}
	var out []string
	for _, flowID := range e.Incoming {
		f := p.flows[flowID]
		if f == nil {
			continue
		}
		if p.elements[f.SourceRef] != nil {
			out = append(out, f.SourceRef)
		}
	}
	return out
}

// Gateways returns the ids of all gateway elements, sorted.
func (p *Process) Gateways() []string {
	var ids []string
	for _, id := range p.ElementIDs() {
		if p.elements[id].IsGateway() {
			ids = append(ids, id)
		}
	}
	return ids
}
