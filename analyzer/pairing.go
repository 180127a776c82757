package analyzer

import (
	"github.com/to1and/bpmn2dcr/bpmn"
)

// isPathBetween reports whether a directed path from start to end exists
// that avoids the given nodes. Depth-bounded BFS with a visited set;
// start == end counts as reachable.
func (a *Analyzer) isPathBetween(p *bpmn.Process, start, end string, avoid map[string]bool) bool {
	if start == end {
		return true
	}
	type item struct {
		node  string
		depth int
	}
	queue := []item{{node: start}}
	visited := map[string]bool{start: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= a.maxPathDepth {
			continue
		}
		for _, succ := range p.Successors(cur.node) {
			if succ == end {
				return true
			}
			if !visited[succ] && !avoid[succ] {
				visited[succ] = true
				queue = append(queue, item{node: succ, depth: cur.depth + 1})
			}
		}
	}
	return false
}

// checkLoopCandidate decides whether (joinID, splitID) form an exclusive
// do-while loop: the join's single successor opens a body that reaches
// the split, at least one split branch returns to the join and at least
// one branch leaves the loop entirely. The returned body is everything
// reachable from the body entry with the split treated as a sink; the
// join and split themselves are not part of it.
func (a *Analyzer) checkLoopCandidate(p *bpmn.Process, joinID, splitID string) (bool, map[string]bool) {
	join, split := p.Element(joinID), p.Element(splitID)
	if join == nil || split == nil ||
		join.GatewayType != "exclusive" || split.GatewayType != "exclusive" ||
		join.Direction != bpmn.DirectionJoin || split.Direction != bpmn.DirectionSplit ||
		join.PairedID != "" || split.PairedID != "" {
		return false, nil
	}

	joinSuccessors := p.Successors(joinID)
	if len(joinSuccessors) != 1 {
		return false, nil
	}
	bodyEntry := joinSuccessors[0]

	if !a.isPathBetween(p, bodyEntry, splitID, map[string]bool{joinID: true}) {
		return false, nil
	}

	splitSuccessors := p.Successors(splitID)
	if len(splitSuccessors) < 2 {
		return false, nil
	}

	backEdge := false
	for _, branch := range splitSuccessors {
		if a.isPathBetween(p, branch, joinID, map[string]bool{splitID: true}) {
			backEdge = true
			break
		}
	}
	if !backEdge {
		return false, nil
	}

	exits := false
	for _, branch := range splitSuccessors {
		if a.isPathBetween(p, branch, joinID, map[string]bool{splitID: true}) {
			continue
		}
		if branch == joinID || !a.isPathBetween(p, branch, splitID, map[string]bool{joinID: true}) {
			exits = true
			break
		}
	}
	if !exits {
		return false, nil
	}

	queue := []string{bodyEntry}
	visited := map[string]bool{joinID: true, bodyEntry: true}
	body := map[string]bool{}
	if bodyEntry != splitID {
		body[bodyEntry] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == splitID {
			continue
		}
		for _, succ := range p.Successors(cur) {
			if visited[succ] {
				continue
			}
			visited[succ] = true
			if succ != splitID {
				body[succ] = true
			}
			queue = append(queue, succ)
		}
	}
	return true, body
}

// regionNodes explores every branch of the split towards the join. It
// returns whether all branches reach the join without cycles or foreign
// same-type unpaired gateways on the way, the set of intermediate nodes
// visited during that exploration, and whether the region is clean (free
// of same-type unpaired structural gateways).
func (a *Analyzer) regionNodes(p *bpmn.Process, splitID, joinID string) (bool, map[string]bool, bool) {
	split := p.Element(splitID)
	branches := p.Successors(splitID)
	if len(branches) == 0 {
		return false, nil, false
	}

	intermediates := map[string]bool{}
	allBranchesClean := true

	for _, branchStart := range branches {
		type item struct {
			node string
			path []string
		}
		queue := []item{{node: branchStart, path: []string{splitID, branchStart}}}
		reachedJoin := false
		visited := map[string]bool{splitID: true}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			if cur.node == joinID {
				reachedJoin = true
				for _, node := range cur.path[1 : len(cur.path)-1] {
					intermediates[node] = true
				}
				break
			}

			element := p.Element(cur.node)
			if isSameTypeUnpairedStructural(element, split.GatewayType) &&
				cur.node != splitID && cur.node != joinID {
				allBranchesClean = false
				break
			}

			if cur.node != splitID && cur.node != joinID {
				intermediates[cur.node] = true
			}

			for _, succ := range p.Successors(cur.node) {
				if containsNode(cur.path, succ) {
					allBranchesClean = false
					break
				}
				if !visited[succ] || succ == joinID {
					if succ != joinID {
						visited[succ] = true
					}
					next := make([]string, len(cur.path), len(cur.path)+1)
					copy(next, cur.path)
					queue = append(queue, item{node: succ, path: append(next, succ)})
				}
			}
			if !allBranchesClean {
				break
			}
		}

		if !allBranchesClean {
			break
		}
		if !reachedJoin {
			allBranchesClean = false
			break
		}
	}

	if !allBranchesClean {
		return false, nil, false
	}

	regionClean := true
	for id := range intermediates {
		if isSameTypeUnpairedStructural(p.Element(id), split.GatewayType) {
			regionClean = false
			break
		}
	}
	return true, intermediates, regionClean
}

func isSameTypeUnpairedStructural(element *bpmn.Element, gatewayType string) bool {
	return element != nil && element.IsGateway() &&
		element.GatewayType == gatewayType &&
		element.PairedID == "" &&
		(element.Direction == bpmn.DirectionSplit || element.Direction == bpmn.DirectionJoin)
}

func containsNode(path []string, node string) bool {
	for _, p := range path {
		if p == node {
			return true
		}
	}
	return false
}
