// Package update runs the three stages of an update: collate the exports,
// extract new DOIs and append a line to the project log. Stages run one
// after another; each passes its summary on. The log is written last, so a
// failed run never leaves a log line, but files of earlier stages remain.
package update

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/miku/bibupdate/collate"
	"github.com/miku/bibupdate/config"
	"github.com/miku/bibupdate/extract"
	"github.com/miku/bibupdate/projectlog"
	log "github.com/sirupsen/logrus"
)

// Report groups the results of all stages.
type Report struct {
	RunID       string            `json:"run_id"`
	Date        string            `json:"date"`
	Collation   *collate.Summary  `json:"collation"`
	Identifiers *extract.Summary  `json:"identifiers"`
	Entry       *projectlog.Entry `json:"entry,omitempty"`
}

// Runner executes an update.
type Runner struct {
	Config *config.Config
	Logger log.FieldLogger
}

// Run executes all stages for a date tag.
func (r *Runner) Run(date string) (*Report, error) {
	var (
		cfg    = r.Config
		report = &Report{RunID: uuid.New().String(), Date: date}
		logger = r.Logger
	)
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger = logger.WithField("run", report.RunID)
	for _, dir := range cfg.Dirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return report, err
		}
	}
	c := collate.New(cfg.Sources(), cfg.Pattern)
	c.Placeholder = cfg.Placeholder
	c.Preamble = cfg.Preamble
	c.Logger = logger
	cs, err := c.Run(date, cfg.CombinedFile(date), cfg.InventoryFile(date))
	if err != nil {
		return report, fmt.Errorf("collate: %w", err)
	}
	report.Collation = cs
	e := extract.New()
	e.Normalize = cfg.NormalizeDOI
	e.Logger = logger
	es, err := e.Run(date, cs.CombinedFile, cfg.DOIFile(date))
	if err != nil {
		return report, fmt.Errorf("extract: %w", err)
	}
	report.Identifiers = es
	entry := projectlog.NewEntry(date, cs, es)
	if err := projectlog.Append(cfg.ProjectLog(), entry); err != nil {
		return report, err
	}
	report.Entry = &entry
	logger.WithFields(log.Fields{
		"date": date,
		"path": cfg.ProjectLog(),
	}).Info("updated project log, add notes by editing the file")
	return report, nil
}
