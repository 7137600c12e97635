// Package collate combines a directory of dated database exports into a
// single CSV file with a fixed set of columns.
//
// Source files are mapped onto the target schema row by row and by column
// name: missing columns are filled with a placeholder, extra columns are
// dropped. The first lines of each export (usually a one line note about the
// search) are skipped, the next line is the column header.
package collate

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/miku/bibupdate/schema/dimensions"
	"github.com/miku/bibupdate/xio"
	log "github.com/sirupsen/logrus"
)

// DefaultPattern matches the publication exports.
const DefaultPattern = "Dimensions-Publication-2020*.csv"

const bom = "\ufeff"

// Entry is a single line of the inventory.
type Entry struct {
	Path       string `json:"path"`
	Index      int    `json:"index"`
	Rows       int    `json:"rows"`
	Cumulative int    `json:"cumulative"`
}

// Summary of a collation run.
type Summary struct {
	Date          string  `json:"combine_date"`
	Files         int     `json:"csv_count"`
	Rows          int     `json:"total_items"`
	CombinedFile  string  `json:"combined_file_name"`
	InventoryFile string  `json:"inventory_file_name"`
	Inventory     []Entry `json:"inventory,omitempty"`
}

// Collator finds source files and writes the combined file and inventory.
type Collator struct {
	SourceDir   string
	Pattern     string
	Fields      []string
	Placeholder string
	// Preamble is the number of lines to discard before the column header.
	Preamble int
	Logger   log.FieldLogger
}

// New returns a collator for the dimensions schema.
func New(sourceDir, pattern string) *Collator {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Collator{
		SourceDir:   sourceDir,
		Pattern:     pattern,
		Fields:      dimensions.Fields,
		Placeholder: dimensions.Placeholder,
		Preamble:    1,
	}
}

func (c *Collator) logger() log.FieldLogger {
	if c.Logger == nil {
		return log.StandardLogger()
	}
	return c.Logger
}

// Sources returns all paths matching the pattern, in lexical order.
func (c *Collator) Sources() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.SourceDir, c.Pattern))
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Run collates all source files into combinedPath and writes an inventory to
// inventoryPath. Paths that are not regular or not readable files are
// skipped. Output files only appear, if all sources could be processed.
func (c *Collator) Run(date, combinedPath, inventoryPath string) (*Summary, error) {
	sources, err := c.Sources()
	if err != nil {
		return nil, err
	}
	cf, err := xio.CreateFile(combinedPath)
	if err != nil {
		return nil, fmt.Errorf("combined file: %w", err)
	}
	defer cf.Abort()
	var (
		w       = csv.NewWriter(cf)
		summary = &Summary{
			Date:          date,
			CombinedFile:  combinedPath,
			InventoryFile: inventoryPath,
		}
		logger = c.logger()
	)
	if err := w.Write(c.Fields); err != nil {
		return nil, err
	}
	for _, path := range sources {
		rc, err := c.open(path)
		if err != nil {
			return nil, err
		}
		if rc == nil {
			continue
		}
		summary.Files++
		logger.WithField("file", path).Info("collating")
		n, err := c.copyRows(rc, w)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		summary.Rows += n
		summary.Inventory = append(summary.Inventory, Entry{
			Path:       path,
			Index:      summary.Files,
			Rows:       n,
			Cumulative: summary.Rows,
		})
		logger.WithFields(log.Fields{
			"file":       path,
			"rows":       n,
			"cumulative": summary.Rows,
		}).Debug("collated")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("combined file: %w", err)
	}
	if err := cf.Close(); err != nil {
		return nil, fmt.Errorf("combined file: %w", err)
	}
	logger.WithFields(log.Fields{
		"date":  date,
		"files": summary.Files,
		"rows":  summary.Rows,
		"path":  combinedPath,
	}).Info("combined csv files")
	inv, err := xio.CreateFile(inventoryPath)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	defer inv.Abort()
	if err := WriteInventory(inv, summary.Inventory); err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	if err := inv.Close(); err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	logger.WithField("path", inventoryPath).Info("logged csv list")
	return summary, nil
}

// open returns a reader for a source path, or nil, if the path is to be
// skipped.
func (c *Collator) open(path string) (io.ReadCloser, error) {
	logger := c.logger().WithField("file", path)
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		logger.Warn("not a file, skipping")
		return nil, nil
	}
	rc, err := xio.OpenFile(path)
	switch {
	case errors.Is(err, fs.ErrPermission):
		logger.WithError(err).Warn("not readable, skipping")
		return nil, nil
	case err != nil:
		return nil, err
	}
	return rc, nil
}

// copyRows reads a single export and writes projected rows to w. Returns the
// number of data rows written.
func (c *Collator) copyRows(r io.Reader, w *csv.Writer) (int, error) {
	br := bufio.NewReader(r)
	for i := 0; i < c.Preamble; i++ {
		_, err := br.ReadString('\n')
		if err == io.EOF {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
	}
	// encoding/csv has no limit on field size, long abstracts are fine
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	var n int
	for {
		values, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		row := dimensions.NewRecord(header, values).Row(c.Fields, c.Placeholder)
		if err := w.Write(row); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// WriteInventory writes a tab separated list of collated files, with a
// header line.
func WriteInventory(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	if _, err := io.WriteString(bw, "File\tNumber of CSVs\tLines\tCumulative Lines\n"); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%d\n", e.Path, e.Index, e.Rows, e.Cumulative); err != nil {
			return err
		}
	}
	return bw.Flush()
}
