// Package analyzer runs the two similarity passes over a set of parsed source
// units and summarizes what they found.
package analyzer

import (
	"context"
	"log/slog"

	"github.com/panbanda/dryscan/pkg/analyzer/dupes"
	"github.com/panbanda/dryscan/pkg/analyzer/normalize"
	"github.com/panbanda/dryscan/pkg/analyzer/typesim"
	"github.com/panbanda/dryscan/pkg/models"
)

// FileAnalyzer is the interface that all file-based analyzers must implement.
// It provides a standard way to analyze collections of files with context support.
type FileAnalyzer[T any] interface {
	// Analyze processes a collection of files and returns the analysis result.
	// The context can be used for cancellation and progress reporting.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}

// Default thresholds.
const (
	DefaultTypeThreshold = 2
	DefaultDRYThreshold  = 0
)

// Result is the outcome of one analysis run.
type Result struct {
	SimilarTypes  []models.Finding `json:"similar_types" yaml:"similar_types" toon:"similar_types"`
	DRYViolations []models.Finding `json:"dry_violations" yaml:"dry_violations" toon:"dry_violations"`
	Summary       Summary          `json:"summary" yaml:"summary" toon:"summary"`
}

// Empty reports whether the run produced no findings.
func (r *Result) Empty() bool {
	return len(r.SimilarTypes) == 0 && len(r.DRYViolations) == 0
}

// Orchestrator runs the type comparator and the duplication detector.
type Orchestrator struct {
	typeThreshold int
	dryThreshold  int
	types         bool
	methods       bool
	workers       int
	policy        normalize.Policy
	store         *dupes.Store
	logger        *slog.Logger
}

// Option is a functional option for configuring Orchestrator.
type Option func(*Orchestrator)

// WithTypes enables or disables the type similarity pass.
func WithTypes(enabled bool) Option {
	return func(o *Orchestrator) {
		o.types = enabled
	}
}

// WithMethods enables or disables the DRY violation pass.
func WithMethods(enabled bool) Option {
	return func(o *Orchestrator) {
		o.methods = enabled
	}
}

// WithWorkers sets the number of goroutines used by the type comparator.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		o.workers = n
	}
}

// WithBodyPolicy sets how method bodies are normalized.
func WithBodyPolicy(p normalize.Policy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

// WithStore makes the DRY pass use a caller-owned store.
func WithStore(s *dupes.Store) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithLogger sets the logger passed down to both passes.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an orchestrator with both passes enabled.
func New(typeThreshold, dryThreshold int, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		typeThreshold: typeThreshold,
		dryThreshold:  dryThreshold,
		types:         true,
		methods:       true,
		workers:       1,
		policy:        normalize.PolicyCompact,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Analyze is shorthand for New(typeThreshold, dryThreshold, opts...).Run(units).
func Analyze(units []models.SourceUnit, typeThreshold, dryThreshold int, opts ...Option) *Result {
	return New(typeThreshold, dryThreshold, opts...).Run(units)
}

// Run performs the enabled passes. Both passes see the units in the order
// given; the DRY pass walks methods independently of the type collection.
func (o *Orchestrator) Run(units []models.SourceUnit) *Result {
	result := &Result{
		SimilarTypes:  make([]models.Finding, 0),
		DRYViolations: make([]models.Finding, 0),
	}

	types := CollectTypes(units)
	if o.types {
		o.logger.Debug("comparing types", "count", len(types), "threshold", o.typeThreshold)
		result.SimilarTypes = typesim.New(o.typeThreshold,
			typesim.WithWorkers(o.workers),
			typesim.WithLogger(o.logger),
		).Compare(types)
	}

	methods := 0
	for _, u := range units {
		methods += len(u.Methods)
	}
	if o.methods {
		o.logger.Debug("checking method bodies", "count", methods, "threshold", o.dryThreshold, "policy", o.policy)
		result.DRYViolations = dupes.New(o.dryThreshold,
			dupes.WithPolicy(o.policy),
			dupes.WithStore(o.store),
			dupes.WithLogger(o.logger),
		).Detect(units)
	}

	result.Summary = Summarize(result.SimilarTypes, result.DRYViolations)
	result.Summary.TypesAnalyzed = len(types)
	result.Summary.MethodsAnalyzed = methods
	for _, u := range units {
		if u.HasErrors {
			result.Summary.UnitsWithErrors++
		}
	}
	return result
}

// CollectTypes concatenates the type declarations of every unit, in unit
// order then declaration order.
func CollectTypes(units []models.SourceUnit) []models.TypeDecl {
	var types []models.TypeDecl
	for _, u := range units {
		types = append(types, u.Types...)
	}
	return types
}
