// Package dimensions describes the publication export of the Dimensions
// database, as far as we need it for the combined CSV file.
package dimensions

const (
	// DOIColumn is the name of the identifier column.
	DOIColumn = "DOI"
	// Placeholder is written for any schema column a source file lacks.
	Placeholder = "Blank"
)

// Fields is the column order of the combined file, current as of May 2021.
// Later exports may add or drop columns; we keep this snapshot fixed. Note
// that "Publication Date" appears twice, both columns carry the same value.
var Fields = []string{
	"Rank",
	"Publication ID",
	"DOI",
	"PMID",
	"PMCID",
	"Title",
	"Abstract",
	"Acknowledgements",
	"Source title",
	"Anthology title",
	"MeSH terms",
	"Publication Date",
	"PubYear",
	"Volume",
	"Issue",
	"Pagination",
	"Open Access",
	"Publication Type",
	"Authors",
	"Authors (Raw Affiliation)",
	"Corresponding Author",
	"Authors Affiliations",
	"Research Organizations - standardized",
	"GRID IDs",
	"Country of Research organization",
	"Funder",
	"Times cited",
	"Recent citations",
	"RCR",
	"FCR",
	"Altmetric",
	"Source Linkout",
	"Dimensions URL",
	"FOR (ANZSRC) Categories",
	"Sustainable Development Goals",
	"Publication Date (print)",
	"Publication Date (online)",
	"Publication Date",
}

// Record is a single row of a source file, keyed by column name.
type Record map[string]string

// NewRecord pairs a header with values. If a header name occurs more than
// once, the last value wins. Missing trailing values are simply absent from
// the record, surplus values are dropped.
func NewRecord(header, values []string) Record {
	r := make(Record, len(header))
	for i, name := range header {
		if i >= len(values) {
			break
		}
		r[name] = values[i]
	}
	return r
}

// Row projects the record onto the given fields. Absent fields get the
// placeholder value, fields not in the list are ignored.
func (r Record) Row(fields []string, placeholder string) []string {
	row := make([]string, len(fields))
	for i, f := range fields {
		if v, ok := r[f]; ok {
			row[i] = v
		} else {
			row[i] = placeholder
		}
	}
	return row
}
