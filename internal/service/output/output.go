// Package output writes analysis reports to stdout or a file.
package output

import (
	"io"
	"os"

	"github.com/panbanda/dryscan/internal/output"
	"github.com/panbanda/dryscan/pkg/analyzer"
)

// Format represents output format.
type Format = output.Format

// Supported formats (re-exported for convenience).
const (
	FormatText     = output.FormatText
	FormatJSON     = output.FormatJSON
	FormatMarkdown = output.FormatMarkdown
	FormatYAML     = output.FormatYAML
	FormatTOON     = output.FormatTOON
)

// Service writes reports in one format to one destination.
type Service struct {
	format   Format
	writer   io.Writer
	colored  bool
	filePath string
	file     *os.File
}

// Option configures a Service.
type Option func(*Service)

// WithFormat sets the output format.
func WithFormat(f Format) Option {
	return func(s *Service) {
		s.format = f
	}
}

// WithWriter sets the destination used when no file is given.
func WithWriter(w io.Writer) Option {
	return func(s *Service) {
		s.writer = w
	}
}

// WithColor enables or disables colored text output.
func WithColor(enabled bool) Option {
	return func(s *Service) {
		s.colored = enabled
	}
}

// WithFile writes to path instead of the writer. An empty path is ignored.
func WithFile(path string) Option {
	return func(s *Service) {
		s.filePath = path
	}
}

// New creates the service, creating (or truncating) the output file if one
// was given. Files are never colored.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		format:  FormatText,
		writer:  os.Stdout,
		colored: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.filePath != "" {
		f, err := os.Create(s.filePath)
		if err != nil {
			return nil, err
		}
		s.file = f
		s.writer = f
		s.colored = false
	}
	return s, nil
}

// Close closes the output file, if any.
func (s *Service) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// Output writes data in the service's format.
func (s *Service) Output(data any) error {
	return output.NewFormatter(s.format, s.writer, s.colored).Output(data)
}

// ReportOptions select what a findings report shows.
type ReportOptions struct {
	Types   bool
	Methods bool
	Ref     string
}

// Report renders an analysis result.
func (s *Service) Report(result *analyzer.Result, opts ReportOptions) error {
	return s.Output(&output.FindingsReport{
		Result:    result,
		ShowTypes: opts.Types,
		ShowDRY:   opts.Methods,
		Ref:       opts.Ref,
	})
}

// ParseFormat parses a format string into a Format.
func ParseFormat(s string) Format {
	return output.ParseFormat(s)
}
