package analyzer

import (
	"fmt"

	"github.com/to1and/bpmn2dcr/bpmn"
)

// PreconditionChecks validates the structural preconditions that gate the
// translation. All failures are collected; the returned list is empty when
// every check passes. Messages keep a stable order: start-event count and
// flows, end-event existence and flows, gateway flows, unpaired gateways,
// task flows.
func (a *Analyzer) PreconditionChecks(p *bpmn.Process) []string {
	var (
		startCountDetail     string
		startNeedsNoIncoming bool
		startNeedsOneOut     bool
		endMissing           bool
		endNeedsOneIncoming  bool
		endNeedsNoOutgoing   bool
		gatewayFlowExample   []int
		unpairedStructural   bool
		taskFlowInvalid      bool
	)

	var startEvents, endEvents []*bpmn.Element
	for _, id := range p.ElementIDs() {
		element := p.Element(id)
		switch element.Type {
		case "startEvent":
			startEvents = append(startEvents, element)
		case "endEvent":
			endEvents = append(endEvents, element)
		}
	}

	if len(startEvents) != 1 {
		startCountDetail = fmt.Sprintf("found %d", len(startEvents))
	} else {
		start := startEvents[0]
		if len(start.Incoming) != 0 {
			startNeedsNoIncoming = true
		}
		if len(start.Outgoing) != 1 {
			startNeedsOneOut = true
		}
	}

	if len(endEvents) == 0 {
		endMissing = true
	} else {
		for _, end := range endEvents {
			if len(end.Incoming) != 1 {
				endNeedsOneIncoming = true
			}
			if len(end.Outgoing) != 0 {
				endNeedsNoOutgoing = true
			}
		}
	}

	for _, id := range p.Gateways() {
		gateway := p.Element(id)
		in, out := len(gateway.Incoming), len(gateway.Outgoing)
		validSplit := in == 1 && out > 1
		validJoin := in > 1 && out == 1

		if !validSplit && !validJoin && gatewayFlowExample == nil {
			gatewayFlowExample = []int{in, out}
		}
		switch gateway.GatewayType {
		case "parallel", "exclusive", "inclusive":
			if (validSplit || validJoin) && gateway.PairedID == "" && gateway.LoopType == bpmn.LoopNone {
				unpairedStructural = true
			}
		}
	}

	for _, id := range p.ElementIDs() {
		element := p.Element(id)
		if element.IsGateway() || element.Type == "startEvent" || element.Type == "endEvent" {
			continue
		}
		if len(element.Incoming) != 1 || len(element.Outgoing) != 1 {
			taskFlowInvalid = true
			break
		}
	}

	var failures []string
	if startCountDetail != "" {
		failures = append(failures, fmt.Sprintf("● Expected 1 Start Event, %s.", startCountDetail))
	}
	if startNeedsNoIncoming {
		failures = append(failures, "● Start Event must have 0 incoming flows.")
	}
	if startNeedsOneOut {
		failures = append(failures, "● Start Event must have 1 outgoing flow.")
	}
	if endMissing {
		failures = append(failures, "● Expected at least 1 End Event, found 0.")
	}
	if endNeedsOneIncoming {
		failures = append(failures, "● Each End Event must have 1 incoming flow.")
	}
	if endNeedsNoOutgoing {
		failures = append(failures, "● Each End Event must have 0 outgoing flows.")
	}
	if gatewayFlowExample != nil {
		failures = append(failures, fmt.Sprintf("● A gateway has invalid flow counts (In: %d, Out: %d).",
			gatewayFlowExample[0], gatewayFlowExample[1]))
	}
	if unpairedStructural {
		failures = append(failures, "● One or more structural gateways (Exclusive, Parallel, Inclusive) are not correctly paired or part of a loop.")
	}
	if taskFlowInvalid {
		failures = append(failures, "● Tasks must have exactly 1 incoming and 1 outgoing flow.")
	}
	return failures
}
