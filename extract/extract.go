// Package extract pulls DOIs from a combined CSV file and finds the ones
// that occur exactly once.
//
// A DOI occurring once in the combined list of a run is treated as "new".
// This is a proxy only: the combined file contains all exports so far, so a
// DOI seen in an earlier export usually appears more than once. There is no
// registry of DOIs across runs.
package extract

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/miku/bibupdate/doi"
	"github.com/miku/bibupdate/schema/dimensions"
	"github.com/miku/bibupdate/xio"
	log "github.com/sirupsen/logrus"
)

// ErrNoHeader is returned, if the combined file is empty.
var ErrNoHeader = errors.New("missing header")

// Summary of an extraction run.
type Summary struct {
	Date string `json:"combine_date"`
	// Blanks counts rows with an empty identifier.
	Blanks int `json:"blank_dois"`
	// KeyErrors counts rows without an identifier column.
	KeyErrors int `json:"key_errors"`
	// Total number of valid identifiers, including duplicates.
	Total int `json:"total_doi_c"`
	// Unique is the number of distinct identifiers.
	Unique int `json:"unique_dois_c"`
	// New is the number of identifiers occurring once.
	New        int    `json:"new_doi_c"`
	OutputFile string `json:"doioutput_file_name"`
}

// Frequency counts values and remembers the order they were first seen in.
type Frequency struct {
	order  []string
	counts map[string]int
}

// NewFrequency returns an empty table.
func NewFrequency() *Frequency {
	return &Frequency{counts: make(map[string]int)}
}

// Add counts one occurrence of v.
func (f *Frequency) Add(v string) {
	if _, ok := f.counts[v]; !ok {
		f.order = append(f.order, v)
	}
	f.counts[v]++
}

// Count returns the number of occurrences of v.
func (f *Frequency) Count(v string) int { return f.counts[v] }

// Len returns the number of distinct values.
func (f *Frequency) Len() int { return len(f.order) }

// Singles returns values seen exactly once, in first seen order.
func (f *Frequency) Singles() []string {
	var result []string
	for _, v := range f.order {
		if f.counts[v] == 1 {
			result = append(result, v)
		}
	}
	return result
}

// Extractor classifies the identifiers of a combined file.
type Extractor struct {
	// Column is the name of the identifier column.
	Column string
	// Normalize cleans identifiers before counting, e.g. strips doi.org
	// prefixes and lowercases them; off by default.
	Normalize bool
	Logger    log.FieldLogger
}

// New returns an extractor for the DOI column.
func New() *Extractor {
	return &Extractor{Column: dimensions.DOIColumn}
}

func (e *Extractor) logger() log.FieldLogger {
	if e.Logger == nil {
		return log.StandardLogger()
	}
	return e.Logger
}

// Extract reads CSV data from r, classifies the identifier of every row and
// returns the frequency table of valid identifiers, together with partial
// summary counts.
func (e *Extractor) Extract(r io.Reader) (*Frequency, *Summary, error) {
	var (
		cr      = csv.NewReader(bufio.NewReader(r))
		freq    = NewFrequency()
		summary = &Summary{}
		logger  = e.logger()
	)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, ErrNoHeader
	}
	if err != nil {
		return nil, nil, fmt.Errorf("header: %w", err)
	}
	col := -1
	for i, name := range header {
		if name == e.Column {
			col = i
		}
	}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if col < 0 || col >= len(record) {
			summary.KeyErrors++
			continue
		}
		v := record[col]
		switch {
		case v == "":
			summary.Blanks++
		case v == e.Column:
			// stray header row
			continue
		case !doi.HasPrefix(v):
			logger.WithField("doi", v).Warn("invalid DOI")
		default:
			if e.Normalize {
				if cleaned := doi.Clean(v); cleaned != "" {
					v = cleaned
				} else {
					logger.WithField("doi", v).Debug("cannot normalize DOI, keeping as is")
				}
			}
			freq.Add(v)
			summary.Total++
		}
	}
	summary.Unique = freq.Len()
	summary.New = len(freq.Singles())
	return freq, summary, nil
}

// Run reads the combined file, writes all identifiers occurring exactly once
// to outputPath, one per line, and returns a summary.
func (e *Extractor) Run(date, combinedPath, outputPath string) (*Summary, error) {
	rc, err := xio.OpenFile(combinedPath)
	if err != nil {
		return nil, fmt.Errorf("combined file: %w", err)
	}
	freq, summary, err := e.Extract(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", combinedPath, err)
	}
	summary.Date = date
	summary.OutputFile = outputPath
	logger := e.logger().WithField("date", date)
	logger.WithFields(log.Fields{
		"blank":      summary.Blanks,
		"key_errors": summary.KeyErrors,
		"total":      summary.Total,
	}).Info("collated DOIs, some may be duplicates")
	singles := freq.Singles()
	logger.WithFields(log.Fields{
		"unique": summary.Unique,
		"new":    summary.New,
	}).Info("identified new DOIs (single occurrences)")
	f, err := xio.CreateFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("doi list: %w", err)
	}
	defer f.Abort()
	if err := WriteList(f, singles); err != nil {
		return nil, fmt.Errorf("doi list: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("doi list: %w", err)
	}
	logger.WithFields(log.Fields{
		"path":  outputPath,
		"lines": len(singles),
	}).Info("wrote new DOIs to file")
	return summary, nil
}

// WriteList writes values one per line.
func WriteList(w io.Writer, values []string) error {
	bw := bufio.NewWriter(w)
	for _, v := range values {
		if _, err := bw.WriteString(v + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
