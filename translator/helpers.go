package translator

import (
	"strconv"
	"strings"

	"github.com/to1and/bpmn2dcr/bpmn"
	"github.com/to1and/bpmn2dcr/dcr"
)

// stateMarkerBlock is the visual marker carried by state-event labels.
const stateMarkerBlock = "✖✖✖✖✖✖✖✖\n✖✖✖✖✖✖✖✖"

// addHelperEvent registers a synthetic event; new helpers get the same
// self-exclusion as mapped events.
func (t *Translator) addHelperEvent(id, label string, initial dcr.MarkingSet) error {
	isNew := !t.graph.HasEvent(id)
	if err := t.graph.AddEvent(id, label, initial); err != nil {
		return err
	}
	if isNew {
		return t.graph.AddRelation(id, id, dcr.Exclusion)
	}
	return nil
}

// expressionEvent returns the id of the expression event for a flow,
// creating it on first use. Identity is the content hash of the flow id
// and expression text, so identical pairs collapse to one event.
func (t *Translator) expressionEvent(flow *bpmn.SequenceFlow) (string, error) {
	expression := strings.TrimSpace(flow.Expression)
	label := expression
	uniquePart := expression
	if uniquePart == "" {
		if flow.Name != "" {
			label = "[[Expression]]\n" + flow.Name
		} else {
			label = "[[Expr ID]]\n" + flow.ID
		}
		uniquePart = "empty_on_" + flow.ID
	}
	id := "expr_" + dcr.HashPrefix([]byte(flow.ID+"_"+uniquePart))
	if err := t.addHelperEvent(id, label, dcr.MarkingSet{}); err != nil {
		return "", err
	}
	return id, nil
}

// parallelStateEvent creates the initially-included branch-pending event
// for one predecessor of a parallel join.
func (t *Translator) parallelStateEvent(predecessorID, joinID string) (string, error) {
	i := t.parallelStateCounter
	t.parallelStateCounter++
	id := "l_state_jn_" + predecessorID + "_" + strconv.Itoa(i)
	label := stateMarkerBlock + "\nParallelState " + strconv.Itoa(i) + "\n" + t.pairSuffixes[joinID]
	if err := t.addHelperEvent(id, label, dcr.MarkingSet{dcr.MarkIncluded: true}); err != nil {
		return "", err
	}
	return id, nil
}

// inclusiveStateEvent creates the initially-excluded branch-pending event
// for one predecessor of an inclusive join.
func (t *Translator) inclusiveStateEvent(predecessorID, joinID string) (string, error) {
	i := t.inclusiveStateCounter
	t.inclusiveStateCounter++
	id := "n_state_jn_" + predecessorID + "_" + strconv.Itoa(i)
	label := stateMarkerBlock + "\nInclusiveState " + strconv.Itoa(i) + t.pairSuffixes[joinID]
	if err := t.addHelperEvent(id, label, dcr.MarkingSet{}); err != nil {
		return "", err
	}
	return id, nil
}
