// Package projectlog maintains the project log, a tab separated file with
// one line per update. Lines are only ever appended.
package projectlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/miku/bibupdate/collate"
	"github.com/miku/bibupdate/extract"
)

// DefaultNote is recorded for every update; notes are added by hand.
const DefaultNote = "No note recorded"

// DefaultName is the file name of the project log.
const DefaultName = "project_log.tsv"

// Header names the ten columns of the log.
var Header = []string{
	"Date_of_update",
	"Collated CSV files",
	"Number of items/articles in update",
	"Number of DOIs in update",
	"Unique DOIs in update (one or more occurrence)",
	"New DOIs in update (only one occurence)",
	"Note",
	"Combined CSV file",
	"CSV Inventory file",
	"New DOI file",
}

// ErrLogExists is returned, if a log would be overwritten.
var ErrLogExists = errors.New("project log exists")

// Entry is a single update.
type Entry struct {
	Date          string `json:"date"`
	Files         int    `json:"files"`
	Rows          int    `json:"rows"`
	TotalDOIs     int    `json:"total_dois"`
	UniqueDOIs    int    `json:"unique_dois"`
	NewDOIs       int    `json:"new_dois"`
	Note          string `json:"note"`
	CombinedFile  string `json:"combined_file"`
	InventoryFile string `json:"inventory_file"`
	DOIFile       string `json:"doi_file"`
}

// NewEntry assembles an entry from the stage summaries. Values are taken as
// they are.
func NewEntry(date string, c *collate.Summary, e *extract.Summary) Entry {
	return Entry{
		Date:          date,
		Files:         c.Files,
		Rows:          c.Rows,
		TotalDOIs:     e.Total,
		UniqueDOIs:    e.Unique,
		NewDOIs:       e.New,
		Note:          DefaultNote,
		CombinedFile:  c.CombinedFile,
		InventoryFile: c.InventoryFile,
		DOIFile:       e.OutputFile,
	}
}

// Fields returns the column values.
func (e Entry) Fields() []string {
	return []string{
		e.Date,
		strconv.Itoa(e.Files),
		strconv.Itoa(e.Rows),
		strconv.Itoa(e.TotalDOIs),
		strconv.Itoa(e.UniqueDOIs),
		strconv.Itoa(e.NewDOIs),
		e.Note,
		e.CombinedFile,
		e.InventoryFile,
		e.DOIFile,
	}
}

// String renders the entry as a tab separated line, without newline.
func (e Entry) String() string {
	return strings.Join(e.Fields(), "\t")
}

// Append adds an entry to the log at path, preceded by a newline. The file is
// created, if it does not exist. Existing content is never touched.
func Append(path string, e Entry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("project log: %w", err)
	}
	if _, err := io.WriteString(f, "\n"+e.String()); err != nil {
		f.Close()
		return fmt.Errorf("project log: %w", err)
	}
	return f.Close()
}

// Create writes a new log containing only the header line. An existing log
// is only replaced, if force is set.
func Create(path string, force bool) error {
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flag |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flag, 0644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s: %w", path, ErrLogExists)
	}
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, strings.Join(Header, "\t")); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadEntries parses a log. The header and blank lines are skipped. Counts
// that are not numbers are left at zero.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var (
		entries []Entry
		br      = bufio.NewReader(r)
	)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line != "" && !strings.HasPrefix(line, Header[0]) {
			entries = append(entries, parseEntry(line))
		}
		if err == io.EOF {
			break
		}
	}
	return entries, nil
}

func parseEntry(line string) Entry {
	fields := strings.Split(line, "\t")
	for len(fields) < len(Header) {
		fields = append(fields, "")
	}
	atoi := func(s string) int {
		v, _ := strconv.Atoi(strings.TrimSpace(s))
		return v
	}
	return Entry{
		Date:          fields[0],
		Files:         atoi(fields[1]),
		Rows:          atoi(fields[2]),
		TotalDOIs:     atoi(fields[3]),
		UniqueDOIs:    atoi(fields[4]),
		NewDOIs:       atoi(fields[5]),
		Note:          fields[6],
		CombinedFile:  fields[7],
		InventoryFile: fields[8],
		DOIFile:       fields[9],
	}
}
