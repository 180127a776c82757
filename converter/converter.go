// Package converter wires the full pipeline: load BPMN XML, pair
// gateways, check structural preconditions, run the translation rules
// and export DCR XML. Failures surface as categorized diagnostics.
package converter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"go.uber.org/zap"

	"github.com/to1and/bpmn2dcr/analyzer"
	"github.com/to1and/bpmn2dcr/bpmn"
	"github.com/to1and/bpmn2dcr/dcr"
	"github.com/to1and/bpmn2dcr/translator"
)

// Category identifies the pipeline stage a diagnostic originates from.
type Category string

const (
	CategoryLoad             Category = "LOAD_ERROR"
	CategoryPairGateways     Category = "PAIR_GATEWAYS_ERROR"
	CategoryPrecondition     Category = "PRECONDITION_ERROR"
	CategoryTranslationRules Category = "TRANSLATION_RULES_ERROR"
	CategoryExport           Category = "EXPORT_ERROR"
)

// Diagnostic is a categorized translation failure. Precondition
// diagnostics carry one bulleted line per failed check.
type Diagnostic struct {
	Category Category
	Detail   string
	Failures []string
}

func (d *Diagnostic) Error() string {
	if len(d.Failures) > 0 {
		lines := make([]string, 0, len(d.Failures))
		for _, failure := range d.Failures {
			lines = append(lines, "  "+failure)
		}
		return fmt.Sprintf("%s: %s\n%s", d.Category, d.Detail, strings.Join(lines, "\n"))
	}
	return fmt.Sprintf("%s: %s", d.Category, d.Detail)
}

// Converter owns one translation pipeline. It is not safe for concurrent
// use; create one per translation run.
type Converter struct {
	fs       afs.Service
	logger   *zap.Logger
	reader   *bpmn.Reader
	analyzer *analyzer.Analyzer
}

type Option func(*Converter)

// WithLogger attaches a logger; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFS overrides the file service used by the file-based entry points.
func WithFS(fs afs.Service) Option {
	return func(c *Converter) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// WithAnalyzerOptions forwards options to the structural analyzer.
func WithAnalyzerOptions(options ...analyzer.Option) Option {
	return func(c *Converter) {
		c.analyzer = analyzer.NewAnalyzer(options...)
	}
}

func New(options ...Option) *Converter {
	ret := &Converter{
		fs:       afs.New(),
		logger:   zap.NewNop(),
		reader:   bpmn.NewReader(),
		analyzer: analyzer.NewAnalyzer(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(ret)
		}
	}
	return ret
}

// Translate converts BPMN XML text to DCR XML text. On failure the
// returned error is a *Diagnostic; no partial output is produced.
func (c *Converter) Translate(ctx context.Context, bpmnXML string) (string, error) {
	process, err := c.reader.Read([]byte(bpmnXML))
	if err != nil {
		return "", &Diagnostic{Category: CategoryLoad, Detail: fmt.Sprintf("failed to load BPMN XML: %v", err)}
	}
	c.logger.Debug("bpmn loaded",
		zap.String("process", process.ID),
		zap.Int("elements", len(process.ElementIDs())),
		zap.Int("flows", len(process.FlowIDs())))

	c.analyzer.PairGateways(process)
	if err := checkPairingConsistency(process); err != nil {
		return "", &Diagnostic{Category: CategoryPairGateways, Detail: err.Error()}
	}

	if failures := c.analyzer.PreconditionChecks(process); len(failures) > 0 {
		return "", &Diagnostic{
			Category: CategoryPrecondition,
			Detail:   "BPMN precondition checks failed:",
			Failures: failures,
		}
	}

	graph, err := translator.New(process).Translate()
	if err != nil {
		return "", &Diagnostic{Category: CategoryTranslationRules, Detail: err.Error()}
	}
	c.logger.Debug("translation complete",
		zap.Int("events", len(graph.EventIDs())),
		zap.Int("relations", len(graph.Relations())))

	output, err := dcr.NewExporter().Export(graph)
	if err != nil {
		return "", &Diagnostic{Category: CategoryExport, Detail: err.Error()}
	}
	return string(output), nil
}

// TranslateFile loads BPMN XML from an afs URL (plain paths work too) and
// translates it.
func (c *Converter) TranslateFile(ctx context.Context, URL string) (string, error) {
	data, err := c.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return "", &Diagnostic{Category: CategoryLoad, Detail: fmt.Sprintf("failed to read %v: %v", URL, err)}
	}
	return c.Translate(ctx, string(data))
}

// TranslateToFile translates the input document and writes the DCR XML to
// the destination URL.
func (c *Converter) TranslateToFile(ctx context.Context, sourceURL, destURL string) error {
	output, err := c.TranslateFile(ctx, sourceURL)
	if err != nil {
		return err
	}
	if err := c.fs.Upload(ctx, destURL, 0644, bytes.NewReader([]byte(output))); err != nil {
		return &Diagnostic{Category: CategoryExport, Detail: fmt.Sprintf("failed to write %v: %v", destURL, err)}
	}
	c.logger.Info("dcr graph written", zap.String("dest", destURL))
	return nil
}

// checkPairingConsistency rejects one-sided pair pointers left behind by
// a defective pairing pass.
func checkPairingConsistency(p *bpmn.Process) error {
	for _, id := range p.Gateways() {
		gateway := p.Element(id)
		if gateway.PairedID == "" {
			continue
		}
		paired := p.Element(gateway.PairedID)
		if paired == nil || paired.PairedID != id {
			return fmt.Errorf("gateway %v is paired with %v but the pairing is not mutual", id, gateway.PairedID)
		}
	}
	return nil
}
