package analyzer

import (
	"github.com/to1and/bpmn2dcr/bpmn"
)

// PopulateMarkings attaches S+/S−/J+/J− markings to the elements adjacent
// to every split and join gateway. Markings are additive and duplicates
// collapse in the model.
func (a *Analyzer) PopulateMarkings(p *bpmn.Process) {
	for _, gatewayID := range p.Gateways() {
		gateway := p.Element(gatewayID)
		switch gateway.Direction {
		case bpmn.DirectionSplit:
			for _, flowID := range gateway.Incoming {
				if flow := p.Flow(flowID); flow != nil && flow.SourceRef != "" {
					p.AddMarking(flow.SourceRef, bpmn.MarkSplitMinus, gatewayID)
				}
			}
			for _, flowID := range gateway.Outgoing {
				if flow := p.Flow(flowID); flow != nil && flow.TargetRef != "" {
					p.AddMarking(flow.TargetRef, bpmn.MarkSplitPlus, gatewayID)
				}
			}
		case bpmn.DirectionJoin:
			for _, flowID := range gateway.Incoming {
				if flow := p.Flow(flowID); flow != nil && flow.SourceRef != "" {
					p.AddMarking(flow.SourceRef, bpmn.MarkJoinMinus, gatewayID)
				}
			}
			for _, flowID := range gateway.Outgoing {
				if flow := p.Flow(flowID); flow != nil && flow.TargetRef != "" {
					p.AddMarking(flow.TargetRef, bpmn.MarkJoinPlus, gatewayID)
				}
			}
		}
	}
}

// annotateInclusivePaths records, for every inclusive split with a paired
// join, which outgoing branch of the split carried control to each
// predecessor of the join. The translator recovers the guarding
// expression event from this.
func (a *Analyzer) annotateInclusivePaths(p *bpmn.Process) {
	for _, id := range p.ElementIDs() {
		split := p.Element(id)
		if split.GatewayType != "inclusive" || split.Direction != bpmn.DirectionSplit || split.PairedID == "" {
			continue
		}
		if p.Element(split.PairedID) == nil {
			continue
		}
		for _, flowID := range split.Outgoing {
			flow := p.Flow(flowID)
			if flow == nil || flow.TargetRef == "" {
				continue
			}
			a.traceInclusivePath(p, flowID, flow.TargetRef, split.PairedID)
		}
	}
}

// traceInclusivePath walks forward from the branch entry and tags every
// direct predecessor of the paired join with the originating flow id.
// First writer wins across branches; descent stops at the join.
func (a *Analyzer) traceInclusivePath(p *bpmn.Process, originFlowID, startID, joinID string) {
	if p.Element(startID) == nil {
		return
	}
	queue := []string{startID}
	visited := map[string]bool{startID: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		element := p.Element(cur)
		if element == nil {
			continue
		}

		feedsJoin := false
		for _, outFlowID := range element.Outgoing {
			if flow := p.Flow(outFlowID); flow != nil && flow.TargetRef == joinID {
				feedsJoin = true
				break
			}
		}
		if feedsJoin && element.InclusivePathOriginFlowID == "" {
			element.InclusivePathOriginFlowID = originFlowID
		}

		if cur == joinID {
			continue
		}
		for _, succ := range p.Successors(cur) {
			if !visited[succ] {
				visited[succ] = true
				queue = append(queue, succ)
			}
		}
	}
}
