package excel

// ReaderConfig controls how delimited text files are decoded
type ReaderConfig struct {
	// Delimiter forces a field separator; zero sniffs it from the header line
	Delimiter rune `json:"delimiter" yaml:"delimiter"`
	// Latin1 decodes the file as ISO-8859-1 even when it is valid UTF-8
	Latin1 bool `json:"latin1" yaml:"latin1"`
	// Sheet is the worksheet read from XLSX files
	Sheet string `json:"sheet" yaml:"sheet"`
}

// DefaultReaderConfig sniffs delimiters, detects encoding and reads Sheet1
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{Sheet: "Sheet1"}
}

// OutputDelimiter is the separator every table written by the pipeline uses
const OutputDelimiter = ';'
