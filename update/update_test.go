package update

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miku/bibupdate/config"
	"github.com/miku/bibupdate/projectlog"
	"github.com/sirupsen/logrus/hooks/test"
)

func setup(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.BaseDir = t.TempDir()
	if err := os.MkdirAll(cfg.Sources(), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"Dimensions-Publication-2020-05-01.csv": "About the data\nDOI,Title\n10.1/a,A\n,B\n10.1/a,C\n",
		"Dimensions-Publication-2020-06-01.csv": "About the data\nTitle,DOI,Extra\nD,10.1/b,x\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(cfg.Sources(), name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func TestRun(t *testing.T) {
	cfg := setup(t)
	logger, _ := test.NewNullLogger()
	r := &Runner{Config: cfg, Logger: logger}
	report, err := r.Run("20200601")
	if err != nil {
		t.Fatal(err)
	}
	if report.RunID == "" {
		t.Fatal("missing run id")
	}
	want := projectlog.Entry{
		Date:          "20200601",
		Files:         2,
		Rows:          4,
		TotalDOIs:     3,
		UniqueDOIs:    2,
		NewDOIs:       1,
		Note:          projectlog.DefaultNote,
		CombinedFile:  cfg.CombinedFile("20200601"),
		InventoryFile: cfg.InventoryFile("20200601"),
		DOIFile:       cfg.DOIFile("20200601"),
	}
	if diff := cmp.Diff(&want, report.Entry); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
	if report.Identifiers.Blanks != 1 {
		t.Fatalf("got %d blanks, want 1", report.Identifiers.Blanks)
	}
	b, err := os.ReadFile(cfg.DOIFile("20200601"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "10.1/b\n" {
		t.Fatalf("got %q", string(b))
	}
	// a second run appends a second line
	if _, err := r.Run("20200602"); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(cfg.ProjectLog())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	entries, err := projectlog.ReadEntries(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	if diff := cmp.Diff(want, entries[0]); diff != "" {
		t.Fatalf("first entry changed (-want +got):\n%s", diff)
	}
}

func TestRunCompressed(t *testing.T) {
	cfg := setup(t)
	cfg.Compression = "gz"
	logger, _ := test.NewNullLogger()
	report, err := (&Runner{Config: cfg, Logger: logger}).Run("20200601")
	if err != nil {
		t.Fatal(err)
	}
	if report.Identifiers.New != 1 || report.Collation.Rows != 4 {
		t.Fatalf("unexpected report: %+v %+v", report.Collation, report.Identifiers)
	}
}

func TestRunLogFailureKeepsOutputs(t *testing.T) {
	cfg := setup(t)
	// the log path is a directory, so it cannot be opened for append
	if err := os.MkdirAll(cfg.ProjectLog(), 0755); err != nil {
		t.Fatal(err)
	}
	logger, _ := test.NewNullLogger()
	report, err := (&Runner{Config: cfg, Logger: logger}).Run("20200601")
	if err == nil {
		t.Fatal("expected error")
	}
	if report.Entry != nil {
		t.Fatal("entry must not be set on failure")
	}
	for _, path := range []string{
		cfg.CombinedFile("20200601"),
		cfg.InventoryFile("20200601"),
		cfg.DOIFile("20200601"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected output to remain: %v", err)
		}
	}
}
