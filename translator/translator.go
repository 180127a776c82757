// Package translator derives a DCR graph from an analyzed BPMN process:
// one event per BPMN element plus synthetic helper events, and typed
// relations produced by per-gateway translation rules.
package translator

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/to1and/bpmn2dcr/bpmn"
	"github.com/to1and/bpmn2dcr/dcr"
)

type Translator struct {
	process *bpmn.Process
	graph   *dcr.Graph

	// pair-label suffixes ("\n[Pair N]") shared by both partners
	pairSuffixes map[string]string

	parallelStateCounter  int
	inclusiveStateCounter int
}

func New(process *bpmn.Process) *Translator {
	graphID := "dcr_process"
	if process.ID != "" {
		graphID = "dcr_from_" + process.ID
	}
	graphName := "DCR Process"
	if process.Name != "" {
		graphName = "DCR graph for " + process.Name
	}
	t := &Translator{
		process:               process,
		graph:                 dcr.NewGraph(graphID, graphName),
		parallelStateCounter:  1,
		inclusiveStateCounter: 1,
	}
	t.pairSuffixes = t.assignPairSuffixes()
	return t
}

// Translate runs the rule phases in order and returns the resulting
// graph: event mapping, generic edge rules, then the exclusive, parallel
// and inclusive gateway rules.
func (t *Translator) Translate() (*dcr.Graph, error) {
	if err := t.mapEvents(); err != nil {
		return nil, err
	}
	if err := t.genericRules(); err != nil {
		return nil, err
	}
	if err := t.exclusiveRules(); err != nil {
		return nil, err
	}
	if err := t.parallelRules(); err != nil {
		return nil, err
	}
	if err := t.inclusiveRules(); err != nil {
		return nil, err
	}
	return t.graph, nil
}

// Graph returns the DCR graph built so far.
func (t *Translator) Graph() *dcr.Graph {
	return t.graph
}

// assignPairSuffixes numbers mutually-paired split/join gateways in
// lexicographic id order. Loop pairs carry no suffix.
func (t *Translator) assignPairSuffixes() map[string]string {
	suffixes := map[string]string{}
	processed := map[string]bool{}
	counter := 1

	var ids []string
	for _, id := range t.process.ElementIDs() {
		element := t.process.Element(id)
		if element.IsGateway() &&
			(element.Direction == bpmn.DirectionSplit || element.Direction == bpmn.DirectionJoin) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		if processed[id] {
			continue
		}
		element := t.process.Element(id)
		if element.LoopType != bpmn.LoopNone {
			continue
		}
		pairedID := element.PairedID
		if pairedID == "" {
			continue
		}
		paired := t.process.Element(pairedID)
		if paired == nil || paired.PairedID != id || processed[pairedID] || paired.LoopType != bpmn.LoopNone {
			continue
		}
		suffix := "\n[Pair " + strconv.Itoa(counter) + "]"
		suffixes[id] = suffix
		suffixes[pairedID] = suffix
		processed[id] = true
		processed[pairedID] = true
		counter++
	}
	return suffixes
}

// mapEvents creates one DCR event per BPMN element and gives every event
// its self-exclusion, so each fires at most once per inclusion phase.
func (t *Translator) mapEvents() error {
	for _, id := range t.process.ElementIDs() {
		element := t.process.Element(id)

		var label string
		initial := dcr.MarkingSet{}
		switch {
		case element.Type == "startEvent":
			label = "Start Event"
			initial = dcr.MarkingSet{dcr.MarkPending: true, dcr.MarkIncluded: true}
		case element.Type == "endEvent":
			label = "End Event"
		case element.IsTask():
			label = element.Name
			if label == "" {
				label = id
			}
		case element.IsGateway():
			base := capitalize(element.GatewayType)
			if base == "" {
				base = "Gateway"
			}
			direction := strings.ReplaceAll(capitalize(string(element.Direction)), "_", " ")
			label = strings.TrimSpace(base + " " + direction)
			if direction == "" && !strings.Contains(label, "Gateway") {
				label += " Gateway"
			}
			label += t.pairSuffixes[id]
		default:
			continue
		}

		if err := t.graph.AddEvent(id, label, initial); err != nil {
			return err
		}
		if err := t.graph.AddRelation(id, id, dcr.Exclusion); err != nil {
			return err
		}
	}
	return nil
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
