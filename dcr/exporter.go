package dcr

import (
	"encoding/xml"
	"fmt"
	"sort"
)

// The exporter emits the dcrgraph XML document consumed by DCR tooling:
// a specification part (resources and constraints) and a runtime part
// holding the initial marking. Relation ids are assigned monotonically in
// relation insertion order.

type xmlGraph struct {
	XMLName       xml.Name         `xml:"dcrgraph"`
	Specification xmlSpecification `xml:"specification"`
	Runtime       xmlRuntime       `xml:"runtime"`
}

type xmlSpecification struct {
	Resources   xmlResources   `xml:"resources"`
	Constraints xmlConstraints `xml:"constraints"`
}

type xmlResources struct {
	Events           xmlEvents           `xml:"events"`
	SubProcesses     xmlEmpty            `xml:"subProcesses"`
	Labels           xmlLabels           `xml:"labels"`
	LabelMappings    xmlLabelMappings    `xml:"labelMappings"`
	Variables        xmlEmpty            `xml:"variables"`
	Expressions      xmlEmpty            `xml:"expressions"`
	VariableAccesses xmlVariableAccesses `xml:"variableAccesses"`
}

type xmlEmpty struct{}

type xmlEvents struct {
	Events []xmlEvent `xml:"event"`
}

type xmlEvent struct {
	ID     string         `xml:"id,attr"`
	Custom xmlEventCustom `xml:"custom"`
}

type xmlEventCustom struct {
	Visualization xmlVisualization `xml:"visualization"`
}

type xmlVisualization struct {
	Location xmlLocation `xml:"location"`
	Size     xmlSize     `xml:"size"`
}

type xmlLocation struct {
	XLoc string `xml:"xLoc,attr"`
	YLoc string `xml:"yLoc,attr"`
}

type xmlSize struct {
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
}

type xmlLabels struct {
	Labels []xmlLabel `xml:"label"`
}

type xmlLabel struct {
	ID string `xml:"id,attr"`
}

type xmlLabelMappings struct {
	Mappings []xmlLabelMapping `xml:"labelMapping"`
}

type xmlLabelMapping struct {
	EventID string `xml:"eventId,attr"`
	LabelID string `xml:"labelId,attr"`
}

type xmlVariableAccesses struct {
	ReadAccesses  xmlEmpty `xml:"readAccessess"`
	WriteAccesses xmlEmpty `xml:"writeAccessess"`
}

type xmlConstraints struct {
	Conditions  xmlRelationGroup `xml:"conditions"`
	Responses   xmlRelationGroup `xml:"responses"`
	Coresponces xmlRelationGroup `xml:"coresponces"`
	Excludes    xmlRelationGroup `xml:"excludes"`
	Includes    xmlRelationGroup `xml:"includes"`
	Milestones  xmlRelationGroup `xml:"milestones"`
	Updates     xmlRelationGroup `xml:"updates"`
	Spawns      xmlRelationGroup `xml:"spawns"`
}

type xmlRelationGroup struct {
	Relations []xmlRelation
}

type xmlRelation struct {
	XMLName  xml.Name
	SourceID string            `xml:"sourceId,attr"`
	TargetID string            `xml:"targetId,attr"`
	Custom   xmlRelationCustom `xml:"custom"`
}

type xmlRelationCustom struct {
	Waypoints xmlEmpty `xml:"waypoints"`
	ID        xmlRef   `xml:"id"`
}

type xmlRef struct {
	ID string `xml:"id,attr"`
}

type xmlRuntime struct {
	Marking xmlMarking `xml:"marking"`
}

type xmlMarking struct {
	GlobalStore      xmlEmpty     `xml:"globalStore"`
	Executed         xmlEventRefs `xml:"executed"`
	Included         xmlEventRefs `xml:"included"`
	PendingResponses xmlEventRefs `xml:"pendingResponses"`
}

type xmlEventRefs struct {
	Events []xmlRef `xml:"event"`
}

// relation kind -> element tag inside its constraint group
var relationTags = map[RelationKind]string{
	Condition: "condition",
	Response:  "response",
	Exclusion: "exclude",
	Inclusion: "include",
	Milestone: "milestone",
}

// Exporter serializes a Graph to pretty-printed dcrgraph XML.
type Exporter struct {
	relationCounter int
}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) nextRelationID() string {
	e.relationCounter++
	return fmt.Sprintf("Relation_%07d", e.relationCounter)
}

// Export renders the graph as UTF-8 XML with a declaration and two-space
// indentation.
func (e *Exporter) Export(g *Graph) ([]byte, error) {
	doc := xmlGraph{}
	doc.Specification.Resources = e.buildResources(g)
	doc.Specification.Constraints = e.buildConstraints(g)
	doc.Runtime.Marking = e.buildMarking(g)

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dcrgraph: %w", err)
	}
	out := append([]byte(xml.Header), body...)
	out = append(out, '\n')
	return out, nil
}

func (e *Exporter) buildResources(g *Graph) xmlResources {
	resources := xmlResources{}
	labelSet := map[string]bool{}
	for _, id := range g.EventIDs() {
		event := g.Event(id)
		resources.Events.Events = append(resources.Events.Events, xmlEvent{
			ID: id,
			Custom: xmlEventCustom{
				Visualization: xmlVisualization{
					Location: xmlLocation{XLoc: "0", YLoc: "0"},
					Size:     xmlSize{Width: "130", Height: "150"},
				},
			},
		})
		if event.Label != "" {
			labelSet[event.Label] = true
			resources.LabelMappings.Mappings = append(resources.LabelMappings.Mappings,
				xmlLabelMapping{EventID: id, LabelID: event.Label})
		}
	}
	labels := make([]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		resources.Labels.Labels = append(resources.Labels.Labels, xmlLabel{ID: label})
	}
	return resources
}

func (e *Exporter) buildConstraints(g *Graph) xmlConstraints {
	constraints := xmlConstraints{}
	groups := map[RelationKind]*xmlRelationGroup{
		Condition: &constraints.Conditions,
		Response:  &constraints.Responses,
		Exclusion: &constraints.Excludes,
		Inclusion: &constraints.Includes,
		Milestone: &constraints.Milestones,
	}
	for _, rel := range g.Relations() {
		group := groups[rel.Kind]
		if group == nil {
			continue
		}
		group.Relations = append(group.Relations, xmlRelation{
			XMLName:  xml.Name{Local: relationTags[rel.Kind]},
			SourceID: rel.SourceID,
			TargetID: rel.TargetID,
			Custom: xmlRelationCustom{
				ID: xmlRef{ID: e.nextRelationID()},
			},
		})
	}
	return constraints
}

func (e *Exporter) buildMarking(g *Graph) xmlMarking {
	marking := xmlMarking{}
	for _, id := range g.EventIDs() {
		event := g.Event(id)
		if event.Initial.Has(MarkExecuted) {
			marking.Executed.Events = append(marking.Executed.Events, xmlRef{ID: id})
		}
		if event.Initial.Has(MarkIncluded) {
			marking.Included.Events = append(marking.Included.Events, xmlRef{ID: id})
		}
		if event.Initial.Has(MarkPending) {
			marking.PendingResponses.Events = append(marking.PendingResponses.Events, xmlRef{ID: id})
		}
	}
	return marking
}
