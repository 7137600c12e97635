// bib-update combines the latest database exports, finds new DOIs and
// records the update in the project log.
//
// $ bib-update -t 20210501
// $ bib-update -l
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/miku/bibupdate"
	"github.com/miku/bibupdate/config"
	"github.com/miku/bibupdate/dateutil"
	"github.com/miku/bibupdate/projectlog"
	"github.com/miku/bibupdate/update"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
)

var docs = strings.TrimLeft(`
# bib-update - combine exports and find new DOIs

Reads all export files matching a pattern from the source directory, writes a
combined CSV with a fixed set of columns, lists the DOIs occurring only once
and appends a line to the project log.

Directories are relative to a base directory (default: ..):

    source-data/         exports, e.g. Dimensions-Publication-2020-05-01.csv
    combined-CSVs/       combination-list-YYYYMMDD.csv
    combined-CSV-logs/   csv_inventory_YYYYMMDD.tsv
    new-doi-lists/       unique_doi_output-YYYYMMDD.txt
    project-logs/        project_log.tsv

Settings can be put into a YAML file, cf. -c.

## flags

`, "\n")

var (
	dateTag      = flag.String("t", dateutil.Today(), "date tag for this update, usually YYYYMMDD")
	configFile   = flag.String("c", "", fmt.Sprintf("config file (default: $BIBUPDATE_CONFIG or %s)", config.DefaultFile()))
	baseDir      = flag.String("d", "", "base directory, overrides config")
	pattern      = flag.String("p", "", "source file pattern, overrides config")
	normalizeDOI = flag.Bool("normalize", false, "normalize DOIs before counting")
	emitJSON     = flag.Bool("j", false, "print stage summaries as JSON to stdout")
	listLog      = flag.Bool("l", false, "list entries of the project log and exit")
	verbose      = flag.Bool("v", false, "verbose output")
	showVersion  = flag.Bool("version", false, "show version")
)

func main() {
	flag.Usage = func() {
		io.WriteString(os.Stderr, docs)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Println(bibupdate.Version)
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *baseDir != "" {
		cfg.BaseDir = *baseDir
	}
	if *pattern != "" {
		cfg.Pattern = *pattern
	}
	if *normalizeDOI {
		cfg.NormalizeDOI = true
	}
	if *listLog {
		if err := listEntries(cfg.ProjectLog(), os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}
	if _, ok := dateutil.Tag(*dateTag); !ok {
		log.WithField("date", *dateTag).Warn("date tag is not a date, using it anyway")
	}
	runner := &update.Runner{Config: cfg}
	report, err := runner.Run(*dateTag)
	if *emitJSON && report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal(err)
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}

// listEntries writes a short overview of all updates in the log.
func listEntries(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	entries, err := projectlog.ReadEntries(f)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\tfiles=%d\trows=%d\tdois=%d\tunique=%d\tnew=%d\t%s\n",
			e.Date, e.Files, e.Rows, e.TotalDOIs, e.UniqueDOIs, e.NewDOIs, e.Note); err != nil {
			return err
		}
	}
	return nil
}
