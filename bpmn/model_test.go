package bpmn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessWiring(t *testing.T) {
	p := NewProcess("p1", "demo")
	p.AddElement(&Element{ID: "start", Type: "startEvent", BaseType: "startEvent"})
	p.AddElement(&Element{ID: "work", Type: "userTask", BaseType: "task"})
	p.AddElement(&Element{ID: "end", Type: "endEvent", BaseType: "endEvent"})
	p.AddFlow(&SequenceFlow{ID: "f1", SourceRef: "start", TargetRef: "work"})
	p.AddFlow(&SequenceFlow{ID: "f2", SourceRef: "work", TargetRef: "end"})

	assert.Equal(t, []string{"f1"}, p.Element("start").Outgoing)
	assert.Equal(t, []string{"f1"}, p.Element("work").Incoming)
	assert.Equal(t, []string{"f2"}, p.Element("work").Outgoing)
	assert.Equal(t, []string{"work"}, p.Successors("start"))
	assert.Equal(t, []string{"work"}, p.Predecessors("end"))
	assert.Equal(t, []string{"end", "start", "work"}, p.ElementIDs())
}

func TestProcessIgnoresDanglingFlows(t *testing.T) {
	p := NewProcess("p1", "")
	p.AddElement(&Element{ID: "a", Type: "task", BaseType: "task"})
	p.AddFlow(&SequenceFlow{ID: "f1", SourceRef: "a", TargetRef: "ghost"})

	assert.Equal(t, []string{"f1"}, p.Element("a").Outgoing)
	assert.Empty(t, p.Successors("a"))
	assert.Nil(t, p.Element("ghost"))
}

func TestAddMarking(t *testing.T) {
	p := NewProcess("p1", "")
	p.AddElement(&Element{ID: "a", Type: "task", BaseType: "task"})

	p.AddMarking("a", MarkSplitPlus, "gw1")
	p.AddMarking("a", MarkSplitPlus, "gw1") // duplicate collapses
	p.AddMarking("a", MarkJoinMinus, "gw2")
	p.AddMarking("a", MarkingType("Q+"), "gw1") // invalid type ignored
	p.AddMarking("a", MarkSplitMinus, "")       // empty gateway ignored
	p.AddMarking("missing", MarkSplitPlus, "gw1")

	element := p.Element("a")
	assert.Len(t, element.Markings, 2)
	assert.True(t, element.HasMarking(MarkSplitPlus, "gw1"))
	assert.True(t, element.HasMarking(MarkSplitPlus, ""))
	assert.False(t, element.HasMarking(MarkSplitPlus, "gw2"))
	assert.True(t, element.HasMarking(MarkJoinMinus, "gw2"))
}

func TestElementPredicates(t *testing.T) {
	gateway := &Element{ID: "g", Type: "exclusiveGateway", BaseType: "exclusiveGateway", GatewayType: "exclusive"}
	task := &Element{ID: "t", Type: "serviceTask", BaseType: "task"}

	assert.True(t, gateway.IsGateway())
	assert.False(t, gateway.IsTask())
	assert.True(t, task.IsTask())
	assert.False(t, task.IsGateway())
}
