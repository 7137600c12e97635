// bib-initlog writes a new, empty project log with a header line.
//
// $ bib-initlog
// $ bib-initlog -f -o /tmp/project_log.tsv
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/miku/bibupdate"
	"github.com/miku/bibupdate/config"
	"github.com/miku/bibupdate/projectlog"
	log "github.com/sirupsen/logrus"
)

var (
	configFile  = flag.String("c", "", "config file")
	output      = flag.String("o", "", "log file to create, if empty, the configured project log is used")
	force       = flag.Bool("f", false, "overwrite an existing log, all history will be lost")
	showVersion = flag.Bool("version", false, "show version")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(bibupdate.Version)
		os.Exit(0)
	}
	path := *output
	if path == "" {
		cfg, err := config.Load(*configFile)
		if err != nil {
			log.Fatal(err)
		}
		path = cfg.ProjectLog()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatal(err)
	}
	if err := projectlog.Create(path, *force); err != nil {
		log.Fatal(err)
	}
	log.WithField("path", path).Info("wrote new log file")
}
