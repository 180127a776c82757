// Package analyzer performs the structural analysis that gates the BPMN
// to DCR translation: gateway direction classification, loop detection,
// SESE split/join pairing, marking population and inclusive-path
// annotation.
package analyzer

import (
	"sort"

	"github.com/to1and/bpmn2dcr/bpmn"
)

// defaultMaxPathDepth bounds reachability BFS; 30 suffices for practical
// models.
const defaultMaxPathDepth = 30

type Analyzer struct {
	maxPathDepth int
}

type Option func(*Analyzer)

// WithMaxPathDepth overrides the reachability BFS depth bound.
func WithMaxPathDepth(depth int) Option {
	return func(a *Analyzer) {
		if depth > 0 {
			a.maxPathDepth = depth
		}
	}
}

func NewAnalyzer(options ...Option) *Analyzer {
	ret := &Analyzer{maxPathDepth: defaultMaxPathDepth}
	for _, opt := range options {
		if opt != nil {
			opt(ret)
		}
	}
	return ret
}

// ClassifyDirections derives every gateway's direction from its flow
// counts. Idempotent.
func (a *Analyzer) ClassifyDirections(p *bpmn.Process) {
	for _, id := range p.ElementIDs() {
		element := p.Element(id)
		if !element.IsGateway() {
			continue
		}
		in, out := len(element.Incoming), len(element.Outgoing)
		switch {
		case in == 1 && out > 1:
			element.Direction = bpmn.DirectionSplit
		case in > 1 && out == 1:
			element.Direction = bpmn.DirectionJoin
		case in == 1 && out == 1:
			element.Direction = bpmn.DirectionRouting
		default:
			element.Direction = bpmn.DirectionUndefined
		}
	}
}

// PairGateways runs the pairing fixpoint: each pass commits at most one
// pairing (loops first, then SESE regions, smallest candidate first) and
// the loop repeats until a pass makes no progress. Markings and
// inclusive-path annotations are populated afterwards.
func (a *Analyzer) PairGateways(p *bpmn.Process) {
	a.ClassifyDirections(p)
	for {
		if a.pairOneLoop(p) {
			continue
		}
		if a.pairOneSESE(p) {
			continue
		}
		break
	}
	a.PopulateMarkings(p)
	a.annotateInclusivePaths(p)
}

type pairCandidate struct {
	first  string // join for loops, split for SESE regions
	second string
	size   int
}

func sortCandidates(candidates []pairCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].size != candidates[j].size {
			return candidates[i].size < candidates[j].size
		}
		if candidates[i].first != candidates[j].first {
			return candidates[i].first < candidates[j].first
		}
		return candidates[i].second < candidates[j].second
	})
}

// pairOneLoop commits the smallest admissible (join, split) exclusive
// loop, if any.
func (a *Analyzer) pairOneLoop(p *bpmn.Process) bool {
	var joins, splits []string
	for _, id := range p.Gateways() {
		gw := p.Element(id)
		if gw.GatewayType != "exclusive" || gw.PairedID != "" {
			continue
		}
		switch gw.Direction {
		case bpmn.DirectionJoin:
			joins = append(joins, id)
		case bpmn.DirectionSplit:
			splits = append(splits, id)
		}
	}

	var candidates []pairCandidate
	for _, joinID := range joins {
		for _, splitID := range splits {
			if joinID == splitID {
				continue
			}
			ok, body := a.checkLoopCandidate(p, joinID, splitID)
			if !ok || containsUnpairedStructuralGateway(p, body) {
				continue
			}
			candidates = append(candidates, pairCandidate{first: joinID, second: splitID, size: len(body)})
		}
	}
	if len(candidates) == 0 {
		return false
	}
	sortCandidates(candidates)
	best := candidates[0]
	join, split := p.Element(best.first), p.Element(best.second)
	if join.PairedID != "" || split.PairedID != "" {
		return false
	}
	join.PairedID = best.second
	join.LoopType = bpmn.LoopEntryJoin
	split.PairedID = best.first
	split.LoopType = bpmn.LoopConditionSplit
	return true
}

// pairOneSESE commits the smallest clean (split, join) same-type region,
// if any.
func (a *Analyzer) pairOneSESE(p *bpmn.Process) bool {
	var candidates []pairCandidate
	for _, splitID := range p.Gateways() {
		split := p.Element(splitID)
		if split.Direction != bpmn.DirectionSplit || split.PairedID != "" || split.LoopType != bpmn.LoopNone {
			continue
		}
		for _, joinID := range p.Gateways() {
			if joinID == splitID {
				continue
			}
			join := p.Element(joinID)
			if join.Direction != bpmn.DirectionJoin || join.PairedID != "" || join.LoopType != bpmn.LoopNone ||
				join.GatewayType != split.GatewayType {
				continue
			}
			valid, region, clean := a.regionNodes(p, splitID, joinID)
			if valid && clean {
				candidates = append(candidates, pairCandidate{first: splitID, second: joinID, size: len(region)})
			}
		}
	}
	if len(candidates) == 0 {
		return false
	}
	sortCandidates(candidates)
	best := candidates[0]
	split, join := p.Element(best.first), p.Element(best.second)
	if split.PairedID != "" || join.PairedID != "" {
		return false
	}
	split.PairedID = best.second
	join.PairedID = best.first
	return true
}

// containsUnpairedStructuralGateway reports whether any node of the set
// is an unpaired split or join gateway of any type.
func containsUnpairedStructuralGateway(p *bpmn.Process, nodes map[string]bool) bool {
	for id := range nodes {
		element := p.Element(id)
		if element == nil || !element.IsGateway() || element.PairedID != "" {
			continue
		}
		if element.Direction == bpmn.DirectionSplit || element.Direction == bpmn.DirectionJoin {
			return true
		}
	}
	return false
}
