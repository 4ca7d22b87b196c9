package excel

// RawRowData represents a row of raw tabular data as string key-value pairs
type RawRowData map[string]string

// Table is a header row plus data rows, as read from a CSV or XLSX file
type Table struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether the table carries a column
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns every value of a column in row order
func (t *Table) Column(name string) ([]string, bool) {
	if !t.HasColumn(name) {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out, true
}

// Records flattens the table into header-ordered string records
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, len(t.Headers))
		for j, h := range t.Headers {
			rec[j] = r[h]
		}
		out[i] = rec
	}
	return out
}

// Sheet is one worksheet of an XLSX workbook to write
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}
