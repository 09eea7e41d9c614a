package parity

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// ServiceRef names a compose service.
type ServiceRef struct {
	File    string `json:"file" yaml:"file"`
	Service string `json:"service" yaml:"service"`
}

// Report collects every finding of a run.
type Report struct {
	Mismatches []Mismatch

	// Errors holds structural and identity failures.
	Errors []error

	// Uncovered lists compose services no rule mentions. They never fail a run.
	Uncovered []ServiceRef
}

// OK reports whether the run found nothing wrong.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0 && len(r.Errors) == 0
}

// Err folds every error and mismatch into one error, or returns nil when OK.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, err := range r.Errors {
		result = multierror.Append(result, err)
	}
	for _, m := range r.Mismatches {
		result = multierror.Append(result, m)
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = formatFindings
	return result.ErrorOrNil()
}

func formatFindings(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "\t* " + err.Error()
	}
	noun := "findings"
	if len(errs) == 1 {
		noun = "finding"
	}
	return fmt.Sprintf("parity check failed with %d %s:\n%s\n", len(errs), noun, strings.Join(lines, "\n"))
}

type reportView struct {
	OK         bool         `json:"ok" yaml:"ok"`
	Errors     []string     `json:"errors" yaml:"errors"`
	Mismatches []Mismatch   `json:"mismatches" yaml:"mismatches"`
	Uncovered  []ServiceRef `json:"uncovered" yaml:"uncovered"`
}

func (r *Report) view() reportView {
	v := reportView{
		OK:         r.OK(),
		Errors:     make([]string, 0, len(r.Errors)),
		Mismatches: r.Mismatches,
		Uncovered:  r.Uncovered,
	}
	for _, err := range r.Errors {
		v.Errors = append(v.Errors, err.Error())
	}
	if v.Mismatches == nil {
		v.Mismatches = []Mismatch{}
	}
	if v.Uncovered == nil {
		v.Uncovered = []ServiceRef{}
	}
	return v
}

// Write renders the report as "text", "json" or "yaml". A passing report
// writes nothing in text format.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		if err := r.Err(); err != nil {
			_, werr := io.WriteString(w, err.Error())
			return werr
		}
		return nil

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.view())

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.view()); err != nil {
			return err
		}
		return enc.Close()

	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
