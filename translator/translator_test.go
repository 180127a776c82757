package translator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/to1and/bpmn2dcr/analyzer"
	"github.com/to1and/bpmn2dcr/bpmn"
	"github.com/to1and/bpmn2dcr/dcr"
)

func element(id, kind string) *bpmn.Element {
	e := &bpmn.Element{ID: id, Name: id, Type: kind, BaseType: kind}
	switch {
	case strings.HasSuffix(kind, "Task") || kind == "task":
		e.BaseType = "task"
	case strings.HasSuffix(kind, "Gateway"):
		e.GatewayType = strings.TrimSuffix(kind, "Gateway")
	}
	return e
}

func buildProcess(elements []string, flows []string) *bpmn.Process {
	p := bpmn.NewProcess("proc", "test process")
	for _, spec := range elements {
		parts := strings.SplitN(spec, ":", 2)
		p.AddElement(element(parts[0], parts[1]))
	}
	for _, spec := range flows {
		parts := strings.Fields(spec)
		p.AddFlow(&bpmn.SequenceFlow{ID: parts[0], SourceRef: parts[1], TargetRef: parts[2]})
	}
	return p
}

func translate(t *testing.T, p *bpmn.Process) *dcr.Graph {
	analyzer.NewAnalyzer().PairGateways(p)
	graph, err := New(p).Translate()
	assert.NoError(t, err)
	return graph
}

// expectation entry: "source kind target"
func assertRelations(t *testing.T, graph *dcr.Graph, expectYaml string) {
	var expected []string
	assert.NoError(t, yaml.Unmarshal([]byte(expectYaml), &expected))
	for _, entry := range expected {
		parts := strings.Fields(entry)
		assert.True(t, graph.HasRelation(parts[0], parts[2], dcr.RelationKind(parts[1])),
			"missing relation %v", entry)
	}
}

func assertUniversalInvariants(t *testing.T, p *bpmn.Process, graph *dcr.Graph) {
	for _, id := range p.ElementIDs() {
		assert.True(t, graph.HasEvent(id), "element %v has no event", id)
	}
	for _, id := range graph.EventIDs() {
		assert.True(t, graph.HasRelation(id, id, dcr.Exclusion), "event %v has no self-exclusion", id)
	}
	seen := map[dcr.Relation]int{}
	for _, rel := range graph.Relations() {
		seen[rel]++
	}
	for rel, count := range seen {
		assert.Equal(t, 1, count, "duplicate relation %v", rel)
	}
}

func TestMinimalSequence(t *testing.T) {
	p := buildProcess(
		[]string{"se:startEvent", "work:task", "ee:endEvent"},
		[]string{"f1 se work", "f2 work ee"},
	)
	graph := translate(t, p)
	assertUniversalInvariants(t, p, graph)

	assert.ElementsMatch(t, []string{"se", "work", "ee"}, graph.EventIDs())
	assertRelations(t, graph, `
- se response work
- se inclusion work
- work response ee
- work inclusion ee
`)
	se := graph.Event("se")
	assert.Equal(t, "Start Event", se.Label)
	assert.True(t, se.Initial.Has(dcr.MarkPending))
	assert.True(t, se.Initial.Has(dcr.MarkIncluded))
	assert.Equal(t, "End Event", graph.Event("ee").Label)
	assert.False(t, graph.Event("ee").Initial.Has(dcr.MarkIncluded))
}

func TestExclusiveSplitJoin(t *testing.T) {
	p := buildProcess(
		[]string{"se:startEvent", "x1:exclusiveGateway", "a:task", "b:task", "x2:exclusiveGateway", "ee:endEvent"},
		[]string{"f1 se x1", "f2 x1 a", "f3 x1 b", "f4 a x2", "f5 b x2", "f6 x2 ee"},
	)
	graph := translate(t, p)
	assertUniversalInvariants(t, p, graph)

	assert.True(t, p.Element("a").HasMarking(bpmn.MarkSplitPlus, "x1"))
	assert.True(t, p.Element("b").HasMarking(bpmn.MarkSplitPlus, "x1"))

	assertRelations(t, graph, `
- se response x1
- se inclusion x1
- x1 response a
- x1 response b
- a exclusion b
- b exclusion a
- a response x2
- a inclusion x2
- b response x2
- x2 response ee
- x2 inclusion ee
`)
	// start connects to the split, not past it
	assert.False(t, graph.HasRelation("se", "a", dcr.Response))
	assert.False(t, graph.HasRelation("se", "b", dcr.Response))

	assert.Equal(t, "Exclusive Split\n[Pair 1]", graph.Event("x1").Label)
	assert.Equal(t, "Exclusive Join\n[Pair 1]", graph.Event("x2").Label)
}

func TestParallelSynchronization(t *testing.T) {
	p := buildProcess(
		[]string{"se:startEvent", "p1:parallelGateway", "a:task", "b:task", "p2:parallelGateway", "ee:endEvent"},
		[]string{"f1 se p1", "f2 p1 a", "f3 p1 b", "f4 a p2", "f5 b p2", "f6 p2 ee"},
	)
	graph := translate(t, p)
	assertUniversalInvariants(t, p, graph)

	stateA, stateB := "l_state_jn_a_1", "l_state_jn_b_2"
	assert.True(t, graph.HasEvent(stateA))
	assert.True(t, graph.HasEvent(stateB))
	assert.True(t, graph.Event(stateA).Initial.Has(dcr.MarkIncluded))
	assert.True(t, graph.Event(stateB).Initial.Has(dcr.MarkIncluded))
	assert.Contains(t, graph.Event(stateA).Label, "ParallelState 1")

	assertRelations(t, graph, `
- p1 response p2
- a exclusion l_state_jn_a_1
- l_state_jn_a_1 condition p2
- a inclusion p2
- b exclusion l_state_jn_b_2
- l_state_jn_b_2 condition p2
- b inclusion p2
`)
	// parallel joins take no generic response edge from their predecessors
	assert.False(t, graph.HasRelation("a", "p2", dcr.Response))
}

func inclusiveProcess() *bpmn.Process {
	p := buildProcess(
		[]string{"se:startEvent", "i1:inclusiveGateway", "a:task", "b:task", "i2:inclusiveGateway", "ee:endEvent"},
		nil,
	)
	p.AddFlow(&bpmn.SequenceFlow{ID: "f1", SourceRef: "se", TargetRef: "i1"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "fa", SourceRef: "i1", TargetRef: "a", Expression: "x>0"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "fb", SourceRef: "i1", TargetRef: "b", Expression: "y>0"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "f4", SourceRef: "a", TargetRef: "i2"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "f5", SourceRef: "b", TargetRef: "i2"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "f6", SourceRef: "i2", TargetRef: "ee"})
	return p
}

func TestInclusiveWithGuards(t *testing.T) {
	p := inclusiveProcess()
	graph := translate(t, p)
	assertUniversalInvariants(t, p, graph)

	exprA := "expr_" + dcr.HashPrefix([]byte("fa_x>0"))
	exprB := "expr_" + dcr.HashPrefix([]byte("fb_y>0"))
	assert.True(t, graph.HasEvent(exprA))
	assert.True(t, graph.HasEvent(exprB))
	assert.Equal(t, "x>0", graph.Event(exprA).Label)

	stateA, stateB := "n_state_jn_a_1", "n_state_jn_b_2"
	assert.True(t, graph.HasEvent(stateA))
	assert.True(t, graph.HasEvent(stateB))
	assert.False(t, graph.Event(stateA).Initial.Has(dcr.MarkIncluded))

	assertRelations(t, graph, `
- i1 response i2
- i1 response `+exprA+`
- i1 inclusion `+exprA+`
- `+exprA+` response a
- `+exprA+` inclusion a
- i1 response `+exprB+`
- i1 inclusion `+exprB+`
- `+exprB+` response b
- `+exprB+` inclusion b
- a exclusion n_state_jn_a_1
- n_state_jn_a_1 condition i2
- a inclusion i2
- `+exprA+` inclusion n_state_jn_a_1
- i2 exclusion `+exprA+`
- b exclusion n_state_jn_b_2
- n_state_jn_b_2 condition i2
- b inclusion i2
- `+exprB+` inclusion n_state_jn_b_2
- i2 exclusion `+exprB+`
`)
	// inclusive branches are guarded: no direct split-to-branch edge
	assert.False(t, graph.HasRelation("i1", "a", dcr.Response))
	assert.False(t, graph.HasRelation("i1", "a", dcr.Inclusion))
}

func TestExpressionEventFallbackLabels(t *testing.T) {
	p := buildProcess(
		[]string{"se:startEvent", "i1:inclusiveGateway", "a:task", "b:task", "i2:inclusiveGateway", "ee:endEvent"},
		nil,
	)
	p.AddFlow(&bpmn.SequenceFlow{ID: "f1", SourceRef: "se", TargetRef: "i1"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "fa", Name: "left branch", SourceRef: "i1", TargetRef: "a"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "fb", SourceRef: "i1", TargetRef: "b"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "f4", SourceRef: "a", TargetRef: "i2"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "f5", SourceRef: "b", TargetRef: "i2"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "f6", SourceRef: "i2", TargetRef: "ee"})
	graph := translate(t, p)

	named := graph.Event("expr_" + dcr.HashPrefix([]byte("fa_empty_on_fa")))
	anonymous := graph.Event("expr_" + dcr.HashPrefix([]byte("fb_empty_on_fb")))
	assert.NotNil(t, named)
	assert.NotNil(t, anonymous)
	assert.Equal(t, "[[Expression]]\nleft branch", named.Label)
	assert.Equal(t, "[[Expr ID]]\nfb", anonymous.Label)
}

func TestDoWhileLoop(t *testing.T) {
	p := buildProcess(
		[]string{"se:startEvent", "j:exclusiveGateway", "work:task", "s:exclusiveGateway", "ee:endEvent"},
		[]string{"f1 se j", "f2 j work", "f3 work s", "f4 s j", "f5 s ee"},
	)
	graph := translate(t, p)
	assertUniversalInvariants(t, p, graph)

	assert.Equal(t, bpmn.LoopEntryJoin, p.Element("j").LoopType)
	assert.Equal(t, bpmn.LoopConditionSplit, p.Element("s").LoopType)

	// loop pairs carry no pair suffix
	assert.Equal(t, "Exclusive Join", graph.Event("j").Label)
	assert.Equal(t, "Exclusive Split", graph.Event("s").Label)

	assertRelations(t, graph, `
- se response j
- se inclusion j
- j response work
- j inclusion work
- work response s
- work inclusion s
- s response j
- s inclusion j
- s response ee
- s inclusion ee
`)
}

func TestPairSuffixNumbering(t *testing.T) {
	// two disjoint exclusive diamonds in sequence; pair ids follow
	// lexicographic gateway-id order
	p := buildProcess(
		[]string{
			"se:startEvent",
			"ga:exclusiveGateway", "a1:task", "a2:task", "gb:exclusiveGateway",
			"gc:exclusiveGateway", "c1:task", "c2:task", "gd:exclusiveGateway",
			"ee:endEvent",
		},
		[]string{
			"f1 se ga", "f2 ga a1", "f3 ga a2", "f4 a1 gb", "f5 a2 gb",
			"f6 gb gc", "f7 gc c1", "f8 gc c2", "f9 c1 gd", "f10 c2 gd",
			"f11 gd ee",
		},
	)
	graph := translate(t, p)

	assert.Equal(t, "Exclusive Split\n[Pair 1]", graph.Event("ga").Label)
	assert.Equal(t, "Exclusive Join\n[Pair 1]", graph.Event("gb").Label)
	assert.Equal(t, "Exclusive Split\n[Pair 2]", graph.Event("gc").Label)
	assert.Equal(t, "Exclusive Join\n[Pair 2]", graph.Event("gd").Label)
}

func TestTaskNameFallsBackToID(t *testing.T) {
	p := bpmn.NewProcess("proc", "")
	p.AddElement(&bpmn.Element{ID: "se", Type: "startEvent", BaseType: "startEvent"})
	p.AddElement(&bpmn.Element{ID: "t1", Type: "task", BaseType: "task"})
	p.AddElement(&bpmn.Element{ID: "t2", Name: "Review order", Type: "userTask", BaseType: "task"})
	p.AddElement(&bpmn.Element{ID: "ee", Type: "endEvent", BaseType: "endEvent"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "f1", SourceRef: "se", TargetRef: "t1"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "f2", SourceRef: "t1", TargetRef: "t2"})
	p.AddFlow(&bpmn.SequenceFlow{ID: "f3", SourceRef: "t2", TargetRef: "ee"})

	graph := translate(t, p)
	assert.Equal(t, "t1", graph.Event("t1").Label)
	assert.Equal(t, "Review order", graph.Event("t2").Label)
}
