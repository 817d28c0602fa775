package typesim

import (
	"log/slog"

	"github.com/panbanda/dryscan/pkg/analyzer/editdistance"
	"github.com/panbanda/dryscan/pkg/models"
	"github.com/sourcegraph/conc/pool"
)

// Comparator compares every pair of type declarations by signature.
type Comparator struct {
	threshold int
	workers   int
	logger    *slog.Logger
}

// Option is a functional option for configuring Comparator.
type Option func(*Comparator)

// WithWorkers spreads the pair comparisons over n goroutines (one row of the
// pair matrix per task). Values <= 1 keep the comparison sequential. Output
// order does not depend on n.
func WithWorkers(n int) Option {
	return func(c *Comparator) {
		c.workers = n
	}
}

// WithLogger sets the logger used for extraction failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Comparator) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a comparator reporting pairs with distance <= threshold.
// Negative thresholds are accepted and never match.
func New(threshold int, opts ...Option) *Comparator {
	c := &Comparator{
		threshold: threshold,
		workers:   1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompareAll is shorthand for New(threshold).Compare(types).
func CompareAll(types []models.TypeDecl, threshold int) []models.Finding {
	return New(threshold).Compare(types)
}

// Compare returns one finding per similar pair (i, j), i < j, ordered by i
// then j.
func (c *Comparator) Compare(types []models.TypeDecl) []models.Finding {
	if len(types) < 2 {
		return []models.Finding{}
	}

	sigs := make([][]string, len(types))
	for i, decl := range types {
		sig, err := ExtractSignature(decl)
		if err != nil {
			c.logger.Warn("error while extracting type members",
				"type", decl.Name, "file", decl.File, "error", err)
		}
		sigs[i] = sig
	}

	rows := make([][]models.Finding, len(types))
	if c.workers <= 1 {
		for i := range types {
			rows[i] = c.row(i, types, sigs)
		}
	} else {
		p := pool.New().WithMaxGoroutines(c.workers)
		for i := range types {
			p.Go(func() {
				rows[i] = c.row(i, types, sigs)
			})
		}
		p.Wait()
	}

	findings := make([]models.Finding, 0)
	for _, row := range rows {
		findings = append(findings, row...)
	}
	return findings
}

// row compares types[i] with every later type.
func (c *Comparator) row(i int, types []models.TypeDecl, sigs [][]string) []models.Finding {
	var out []models.Finding
	for j := i + 1; j < len(types); j++ {
		d, ok := Similar(sigs[i], sigs[j], c.threshold)
		if !ok {
			continue
		}
		a, b := types[i], types[j]
		out = append(out, models.Finding{
			Kind:      models.EntityType,
			NameA:     a.Name,
			NameB:     b.Name,
			Distance:  d,
			LocationA: models.Location{File: a.File, Line: a.StartLine},
			LocationB: models.Location{File: b.File, Line: b.StartLine},
			Exact:     d == 0,
		})
	}
	return out
}

// Similar reports whether two signatures are within threshold. Two signatures
// are never similar when either is empty.
func Similar(a, b []string, threshold int) (int, bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	d := editdistance.Distance(a, b)
	return d, d <= threshold
}
