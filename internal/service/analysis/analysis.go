// Package analysis wires file reading, parsing and the similarity passes
// into a single call.
package analysis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/panbanda/dryscan/internal/fileproc"
	"github.com/panbanda/dryscan/pkg/analyzer"
	"github.com/panbanda/dryscan/pkg/analyzer/normalize"
	"github.com/panbanda/dryscan/pkg/config"
	"github.com/panbanda/dryscan/pkg/models"
	"github.com/panbanda/dryscan/pkg/parser"
	"github.com/panbanda/dryscan/pkg/source"
)

// Service runs analyses over files read from a content source.
type Service struct {
	config *config.Config
	source source.ContentSource
	logger *slog.Logger
}

var _ analyzer.FileAnalyzer[*analyzer.Result] = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithSource sets where file content is read from. The default is the
// local filesystem.
func WithSource(src source.ContentSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		source: source.NewFilesystem(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Options override the configured passes and thresholds for one call.
// Nil fields keep the configured value.
type Options struct {
	TypeThreshold *int
	DRYThreshold  *int
	Types         *bool
	Methods       *bool
	BodyPolicy    string
}

// Analyze implements analyzer.FileAnalyzer using the configured settings.
func (s *Service) Analyze(ctx context.Context, files []string) (*analyzer.Result, error) {
	return s.AnalyzeFiles(ctx, files, Options{})
}

// AnalyzeFiles parses files and runs the similarity passes over them. Files
// that cannot be read or parsed are logged, counted in the summary and left
// out; they never abort the run. Progress is reported through an
// analyzer.Tracker carried by ctx.
func (s *Service) AnalyzeFiles(ctx context.Context, files []string, opts Options) (*analyzer.Result, error) {
	cfg := s.config
	typeThreshold := pick(opts.TypeThreshold, cfg.Thresholds.TypeSimilarity)
	dryThreshold := pick(opts.DRYThreshold, cfg.Thresholds.DRYViolation)
	bodyPolicy := cfg.DRY.BodyPolicy
	if opts.BodyPolicy != "" {
		bodyPolicy = opts.BodyPolicy
	}
	policy, err := normalize.ParsePolicy(bodyPolicy)
	if err != nil {
		return nil, err
	}

	units, errs := s.ParseUnits(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := analyzer.New(typeThreshold, dryThreshold,
		analyzer.WithTypes(pick(opts.Types, cfg.Analysis.Types)),
		analyzer.WithMethods(pick(opts.Methods, cfg.Analysis.Methods)),
		analyzer.WithWorkers(workers(cfg.Analysis.Workers)),
		analyzer.WithBodyPolicy(policy),
		analyzer.WithLogger(s.logger),
	).Run(units)

	result.Summary.FilesScanned = len(files)
	result.Summary.ParseErrors = errs.Len()
	s.logger.Info("analysis complete",
		"files", len(files),
		"types", result.Summary.TypesAnalyzed,
		"methods", result.Summary.MethodsAnalyzed,
		"similar_types", len(result.SimilarTypes),
		"dry_violations", len(result.DRYViolations),
	)
	return result, nil
}

// ParseUnits reads and parses files into source units, in input order.
// Unreadable, oversized and unparseable files are logged and reported in the
// returned errors.
func (s *Service) ParseUnits(ctx context.Context, files []string) ([]models.SourceUnit, *fileproc.ProcessingErrors) {
	units, errs := fileproc.MapSourceFiles(ctx, files, s.source,
		fileproc.SourceOptions{
			MaxSize: s.config.Analysis.MaxFileSize,
			Workers: s.config.Analysis.Workers,
		},
		func(psr *parser.Parser, path string, content []byte) (models.SourceUnit, error) {
			s.logger.Debug("parsing file", "path", path, "bytes", len(content))
			result, err := psr.Parse(content, parser.DetectLanguage(path), path)
			if err != nil {
				return models.SourceUnit{}, err
			}
			unit := parser.ExtractUnit(result)
			if unit.HasErrors {
				s.logger.Warn("syntax errors, using partial declarations", "path", path)
			}
			return unit, nil
		})

	if errs.HasErrors() {
		for _, pe := range errs.Errors {
			if errors.Is(pe.Err, fileproc.ErrFileTooLarge) {
				s.logger.Warn("skipping file", "path", pe.Path, "reason", pe.Err)
				continue
			}
			s.logger.Error("cannot analyze file", "path", pe.Path, "error", pe.Err)
		}
	}
	return units, errs
}

// Close implements analyzer.FileAnalyzer.
func (s *Service) Close() {}

func pick[T any](override *T, configured T) T {
	if override != nil {
		return *override
	}
	return configured
}

func workers(n int) int {
	if n <= 0 {
		return fileproc.DefaultWorkers()
	}
	return n
}
