package translator

import (
	"github.com/to1and/bpmn2dcr/bpmn"
	"github.com/to1and/bpmn2dcr/dcr"
)

// ordinaryTask reports a task element with no split/join markings.
func ordinaryTask(element *bpmn.Element) bool {
	return element != nil && element.IsTask() && len(element.Markings) == 0
}

// genericRules emits response+inclusion along every sequence flow whose
// endpoints match one of the generic edge cases: start/end events, task
// chains, and the flows entering or leaving a paired gateway that the
// per-type rules do not replace.
func (t *Translator) genericRules() error {
	for _, flowID := range t.process.FlowIDs() {
		flow := t.process.Flow(flowID)
		source := t.process.Element(flow.SourceRef)
		target := t.process.Element(flow.TargetRef)
		if source == nil || target == nil {
			continue
		}
		if !t.graph.HasEvent(source.ID) || !t.graph.HasEvent(target.ID) {
			continue
		}

		apply := false
		switch {
		case source.Type == "startEvent":
			apply = true
		case target.Type == "endEvent":
			apply = true
		case ordinaryTask(source) && target.IsTask():
			apply = true
		case source.IsTask() && ordinaryTask(target):
			apply = true
		case source.IsTask() && target.IsTask():
			apply = true
		case source.Direction == bpmn.DirectionJoin && target.HasMarking(bpmn.MarkJoinPlus, source.ID):
			apply = true
		case target.Direction == bpmn.DirectionSplit && source.HasMarking(bpmn.MarkSplitMinus, target.ID):
			apply = true
		case source.Direction == bpmn.DirectionSplit &&
			(source.GatewayType == "exclusive" || source.GatewayType == "parallel") &&
			target.HasMarking(bpmn.MarkSplitPlus, source.ID):
			// inclusive splits chain through expression events instead
			apply = true
		case target.Direction == bpmn.DirectionJoin && source.HasMarking(bpmn.MarkJoinMinus, target.ID):
			apply = target.GatewayType == "exclusive"
		}
		if !apply {
			continue
		}
		if err := t.graph.AddRelation(source.ID, target.ID, dcr.Response); err != nil {
			return err
		}
		if err := t.graph.AddRelation(source.ID, target.ID, dcr.Inclusion); err != nil {
			return err
		}
	}
	return nil
}

// exclusiveRules adds pairwise bidirectional exclusions between the
// branch entries of every exclusive split.
func (t *Translator) exclusiveRules() error {
	for _, id := range t.process.ElementIDs() {
		element := t.process.Element(id)
		if element.GatewayType != "exclusive" || element.Direction != bpmn.DirectionSplit {
			continue
		}
		if !t.graph.HasEvent(id) {
			continue
		}

		var branchEntries []string
		for _, flowID := range element.Outgoing {
			flow := t.process.Flow(flowID)
			if flow == nil {
				continue
			}
			target := t.process.Element(flow.TargetRef)
			if target != nil && target.HasMarking(bpmn.MarkSplitPlus, id) && t.graph.HasEvent(target.ID) {
				branchEntries = append(branchEntries, target.ID)
			}
		}

		for i := 0; i < len(branchEntries); i++ {
			for j := i + 1; j < len(branchEntries); j++ {
				if err := t.graph.AddRelation(branchEntries[i], branchEntries[j], dcr.Exclusion); err != nil {
					return err
				}
				if err := t.graph.AddRelation(branchEntries[j], branchEntries[i], dcr.Exclusion); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// parallelRules obliges every parallel split to reach its paired join and
// blocks the join behind one initially-included state event per
// predecessor: the join fires only once every predecessor has fired and
// excluded its state event.
func (t *Translator) parallelRules() error {
	for _, id := range t.process.ElementIDs() {
		element := t.process.Element(id)
		if element.GatewayType != "parallel" {
			continue
		}
		if !t.graph.HasEvent(id) {
			continue
		}

		switch element.Direction {
		case bpmn.DirectionSplit:
			if element.PairedID != "" && t.graph.HasEvent(element.PairedID) {
				if err := t.graph.AddRelation(id, element.PairedID, dcr.Response); err != nil {
					return err
				}
			}

		case bpmn.DirectionJoin:
			for _, flowID := range element.Incoming {
				flow := t.process.Flow(flowID)
				if flow == nil {
					continue
				}
				predecessorID := flow.SourceRef
				predecessor := t.process.Element(predecessorID)
				if predecessor == nil || !t.graph.HasEvent(predecessorID) ||
					!predecessor.HasMarking(bpmn.MarkJoinMinus, id) {
					continue
				}
				stateID, err := t.parallelStateEvent(predecessorID, id)
				if err != nil {
					return err
				}
				if err := t.graph.AddRelation(predecessorID, stateID, dcr.Exclusion); err != nil {
					return err
				}
				if err := t.graph.AddRelation(stateID, id, dcr.Condition); err != nil {
					return err
				}
				if err := t.graph.AddRelation(predecessorID, id, dcr.Inclusion); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// inclusiveRules chains each inclusive-split branch through its guarding
// expression event, and gates the paired join behind one state event per
// predecessor whose inclusion is driven by the originating guard. After
// the join, guards are excluded so an enclosing loop must re-perform
// them.
func (t *Translator) inclusiveRules() error {
	for _, id := range t.process.ElementIDs() {
		element := t.process.Element(id)
		if element.GatewayType != "inclusive" {
			continue
		}
		if !t.graph.HasEvent(id) {
			continue
		}

		switch element.Direction {
		case bpmn.DirectionSplit:
			if element.PairedID != "" && t.graph.HasEvent(element.PairedID) {
				if err := t.graph.AddRelation(id, element.PairedID, dcr.Response); err != nil {
					return err
				}
			}
			for _, flowID := range element.Outgoing {
				flow := t.process.Flow(flowID)
				if flow == nil {
					continue
				}
				target := t.process.Element(flow.TargetRef)
				if target == nil || !t.graph.HasEvent(target.ID) ||
					!target.HasMarking(bpmn.MarkSplitPlus, id) {
					continue
				}
				expressionID, err := t.expressionEvent(flow)
				if err != nil {
					return err
				}
				if err := t.graph.AddRelation(id, expressionID, dcr.Response); err != nil {
					return err
				}
				if err := t.graph.AddRelation(id, expressionID, dcr.Inclusion); err != nil {
					return err
				}
				if err := t.graph.AddRelation(expressionID, target.ID, dcr.Response); err != nil {
					return err
				}
				if err := t.graph.AddRelation(expressionID, target.ID, dcr.Inclusion); err != nil {
					return err
				}
			}

		case bpmn.DirectionJoin:
			for _, flowID := range element.Incoming {
				flow := t.process.Flow(flowID)
				if flow == nil {
					continue
				}
				predecessorID := flow.SourceRef
				predecessor := t.process.Element(predecessorID)
				if predecessor == nil || !t.graph.HasEvent(predecessorID) {
					continue
				}

				stateID := ""
				if predecessor.HasMarking(bpmn.MarkJoinMinus, id) {
					var err error
					stateID, err = t.inclusiveStateEvent(predecessorID, id)
					if err != nil {
						return err
					}
					if err := t.graph.AddRelation(predecessorID, stateID, dcr.Exclusion); err != nil {
						return err
					}
					if err := t.graph.AddRelation(stateID, id, dcr.Condition); err != nil {
						return err
					}
					if err := t.graph.AddRelation(predecessorID, id, dcr.Inclusion); err != nil {
						return err
					}
				}

				originFlow := t.process.Flow(predecessor.InclusivePathOriginFlowID)
				if originFlow == nil {
					continue
				}
				originExpressionID, err := t.expressionEvent(originFlow)
				if err != nil {
					return err
				}
				if stateID != "" {
					if err := t.graph.AddRelation(originExpressionID, stateID, dcr.Inclusion); err != nil {
						return err
					}
				}
				if err := t.graph.AddRelation(id, originExpressionID, dcr.Exclusion); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
