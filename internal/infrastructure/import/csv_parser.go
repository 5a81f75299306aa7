// Package csvimport reads cash book spreadsheets exported as CSV.
package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVParser reads a header row followed by data rows. Header names are
// matched case-insensitively and may be given as aliases.
type CSVParser struct {
	delimiter  rune
	detect     bool
	lazyQuotes bool
	aliases    map[string]string
	headerMap  map[string]int
	headers    []string
	currentRow int
	totalRows  int
	reader     *csv.Reader
	bufReader  *bufio.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter and turns off detection
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
		p.detect = false
	}
}

// WithLazyQuotes enables lazy quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// WithHeaderAliases maps alternative header spellings to canonical names.
// Keys are compared after normalizeHeader.
func WithHeaderAliases(aliases map[string]string) ParserOption {
	return func(p *CSVParser) {
		for k, v := range aliases {
			p.aliases[normalizeHeader(k)] = v
		}
	}
}

// NewCSVParser creates a parser. A UTF-8 BOM is dropped, other encodings are
// rejected. Without WithDelimiter the delimiter is ';' when the first line
// has semicolons but no commas, as spreadsheets in Vietnamese locales write.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter:  ',',
		detect:     true,
		lazyQuotes: true,
		aliases:    make(map[string]string),
		headerMap:  make(map[string]int),
	}

	for _, opt := range opts {
		opt(parser)
	}

	parser.bufReader = bufio.NewReader(r)

	content, err := parser.bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		_, _ = parser.bufReader.Discard(3)
	}

	sample, err := peekSample(parser.bufReader)
	if err != nil {
		return nil, err
	}
	if parser.detect {
		parser.delimiter = detectDelimiter(sample)
	}

	parser.reader = csv.NewReader(parser.bufReader)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.TrimLeadingSpace = true
	parser.reader.FieldsPerRecord = -1

	return parser, nil
}

// peekSample returns the first bytes of the file after checking they are UTF-8
func peekSample(r *bufio.Reader) ([]byte, error) {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyFile
	}

	// a multi-byte rune may be cut at the end of the sample
	for i := 0; i < utf8.UTFMax && !utf8.Valid(content) && len(content) == checkSize; i++ {
		content = content[:len(content)-1]
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}
	return content, nil
}

func detectDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	if bytes.IndexByte(line, ';') >= 0 && bytes.IndexByte(line, ',') < 0 {
		return ';'
	}
	return ','
}

// normalizeHeader lower-cases and collapses inner whitespace
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

// ParseHeader reads and parses the header row
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		header := normalizeHeader(h)
		if canonical, ok := p.aliases[header]; ok {
			header = canonical
		}
		p.headers[i] = header
		if _, dup := p.headerMap[header]; !dup && header != "" {
			p.headerMap[header] = i
		}
	}

	if len(p.headerMap) == 0 {
		return ErrMissingHeader
	}

	p.currentRow = 1 // Header is row 1
	return nil
}

// Headers returns the parsed header names after alias resolution
func (p *CSVParser) Headers() []string {
	return p.headers
}

// Delimiter returns the delimiter in use
func (p *CSVParser) Delimiter() rune {
	return p.delimiter
}

// HasHeader checks if a header exists
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// MissingHeaders returns the required headers that are absent
func (p *CSVParser) MissingHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row represents a parsed CSV row with its data and line number
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next row. io.EOF marks the end of the file.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			p.currentRow = pe.StartLine
		} else {
			p.currentRow++
		}
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}
	// file line, so blank lines skipped by the reader still count
	p.currentRow, _ = p.reader.FieldPos(0)
	p.totalRows++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headerMap)),
	}
	for header, i := range p.headerMap {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// CurrentRow returns the file line of the last row read (1-indexed)
func (p *CSVParser) CurrentRow() int {
	return p.currentRow
}

// TotalRows returns the total number of data rows read
func (p *CSVParser) TotalRows() int {
	return p.totalRows
}

// ParseFromBytes creates a parser from a byte slice
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}
