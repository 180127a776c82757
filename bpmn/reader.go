package bpmn

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Namespace is the BPMN 2.0 MODEL namespace.
const Namespace = "http://www.omg.org/spec/BPMN/20100524/MODEL"

var taskKinds = map[string]bool{
	"task":             true,
	"userTask":         true,
	"serviceTask":      true,
	"scriptTask":       true,
	"manualTask":       true,
	"businessRuleTask": true,
	"sendTask":         true,
	"receiveTask":      true,
}

var eventKinds = map[string]bool{
	"startEvent": true,
	"endEvent":   true,
}

var gatewayKinds = map[string]string{
	"parallelGateway":   "parallel",
	"exclusiveGateway":  "exclusive",
	"inclusiveGateway":  "inclusive",
	"complexGateway":    "complex",
	"eventBasedGateway": "eventBased",
}

// xmlElement mirrors a single <process> child. The reader decodes every
// child into this shape and dispatches on the local tag name, so prefixed
// and default-namespace documents behave the same.
type xmlElement struct {
	XMLName   xml.Name
	ID        string        `xml:"id,attr"`
	Name      string        `xml:"name,attr"`
	SourceRef string        `xml:"sourceRef,attr"`
	TargetRef string        `xml:"targetRef,attr"`
	Condition *xmlCondition `xml:"conditionExpression"`
}

type xmlCondition struct {
	Text string `xml:",chardata"`
}

// Reader parses BPMN 2.0 XML into a Process.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// Read parses the document and harvests the first <process> child: every
// task variant, start/end events, the five gateway kinds and all sequence
// flows. Unknown children are ignored. A missing <process> is an error.
func (r *Reader) Read(data []byte) (*Process, error) {
	process, err := findProcess(data, true)
	if process == nil && err == errProcessNotFound {
		process, err = findProcess(data, false)
	}
	if err != nil {
		return nil, err
	}

	p := NewProcess(process.id, process.name)
	var flows []*SequenceFlow
	for _, child := range process.children {
		kind := child.XMLName.Local
		switch {
		case taskKinds[kind] || eventKinds[kind]:
			if child.ID == "" {
				continue
			}
			baseType := kind
			if taskKinds[kind] {
				baseType = "task"
			}
			p.AddElement(&Element{ID: child.ID, Name: child.Name, Type: kind, BaseType: baseType})
		case gatewayKinds[kind] != "":
			if child.ID == "" {
				continue
			}
			p.AddElement(&Element{
				ID:          child.ID,
				Name:        child.Name,
				Type:        kind,
				BaseType:    kind,
				GatewayType: gatewayKinds[kind],
			})
		case kind == "sequenceFlow":
			if child.ID == "" || child.SourceRef == "" || child.TargetRef == "" {
				continue
			}
			flow := &SequenceFlow{
				ID:        child.ID,
				Name:      child.Name,
				SourceRef: child.SourceRef,
				TargetRef: child.TargetRef,
			}
			if child.Condition != nil {
				flow.Expression = strings.TrimSpace(child.Condition.Text)
			}
			flows = append(flows, flow)
		}
	}
	// Flows wire into adjacency lists, so every element has to exist first.
	for _, f := range flows {
		p.AddFlow(f)
	}
	return p, nil
}

type rawProcess struct {
	id       string
	name     string
	children []xmlElement
}

var errProcessNotFound = errors.New("<process> element not found")

// findProcess locates the first <process> element. The strict pass only
// accepts the BPMN MODEL namespace (or none at all); the relaxed pass
// matches on the local name alone, mirroring the tolerance of common
// modeler exports.
func findProcess(data []byte, strict bool) (*rawProcess, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errProcessNotFound
			}
			return nil, fmt.Errorf("xml parsing error: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "process" {
			continue
		}
		if strict && start.Name.Space != "" && start.Name.Space != Namespace {
			continue
		}
		proc := &rawProcess{}
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "id":
				proc.id = attr.Value
			case "name":
				proc.name = attr.Value
			}
		}
		var body struct {
			Children []xmlElement `xml:",any"`
		}
		if err := decoder.DecodeElement(&body, &start); err != nil {
			return nil, fmt.Errorf("xml parsing error: %w", err)
		}
		proc.children = body.Children
		return proc, nil
	}
}
