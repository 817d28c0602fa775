package dupes

import (
	"log/slog"

	"github.com/panbanda/dryscan/pkg/analyzer/editdistance"
	"github.com/panbanda/dryscan/pkg/analyzer/normalize"
	"github.com/panbanda/dryscan/pkg/models"
)

// Detector compares each observed method against every method observed
// before it.
type Detector struct {
	threshold int
	policy    normalize.Policy
	store     *Store
	logger    *slog.Logger
}

// Option is a functional option for configuring Detector.
type Option func(*Detector)

// WithPolicy sets the body normalization policy.
func WithPolicy(p normalize.Policy) Option {
	return func(d *Detector) {
		d.policy = p
	}
}

// WithStore makes the detector read and write a caller-owned store, so the
// set of previously seen methods can be inspected or seeded.
func WithStore(s *Store) Option {
	return func(d *Detector) {
		if s != nil {
			d.store = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a detector reporting bodies with distance <= threshold.
func New(threshold int, opts ...Option) *Detector {
	d := &Detector{
		threshold: threshold,
		policy:    normalize.PolicyCompact,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		d.store = NewStore()
	}
	return d
}

// Store returns the store backing the detector.
func (d *Detector) Store() *Store {
	return d.store
}

// Observe normalizes m, compares it with every stored record and then stores
// it under its qualified name. The returned findings name m first.
func (d *Detector) Observe(m models.Method) []models.Finding {
	rec := NewRecord(m, d.policy.Method(m))

	var findings []models.Finding
	d.store.Each(func(prev Record) bool {
		dist, exact := d.distance(rec, prev)
		if dist <= d.threshold {
			findings = append(findings, models.Finding{
				Kind:      models.EntityMethod,
				NameA:     rec.QualifiedName,
				NameB:     prev.QualifiedName,
				Distance:  dist,
				LocationA: rec.Location,
				LocationB: prev.Location,
				Exact:     exact,
			})
		}
		return true
	})

	if d.store.Put(rec) {
		d.logger.Debug("method name seen again, replacing stored body", "method", rec.QualifiedName, "file", m.File)
	}
	return findings
}

// distance short-circuits identical bodies through their fingerprints.
func (d *Detector) distance(a, b Record) (int, bool) {
	if a.Hash == b.Hash && a.Body == b.Body {
		return 0, true
	}
	return editdistance.Words(a.Body, b.Body), false
}

// Detect observes every method of every unit, in unit order then declaration
// order.
func (d *Detector) Detect(units []models.SourceUnit) []models.Finding {
	findings := make([]models.Finding, 0)
	for _, u := range units {
		for _, m := range u.Methods {
			findings = append(findings, d.Observe(m)...)
		}
	}
	return findings
}

// DetectDuplicates runs a fresh detector over units.
func DetectDuplicates(units []models.SourceUnit, threshold int, opts ...Option) []models.Finding {
	return New(threshold, opts...).Detect(units)
}
