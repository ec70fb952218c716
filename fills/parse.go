package fills

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fixed column offsets of the execution export.
const (
	colInstrument = 0
	colAction     = 1
	colQuantity   = 2
	colPrice      = 3
	colTime       = 4
	colRole       = 6
	colAccount    = 12

	minColumns = colRole + 1
)

// DefaultAccount is used when the account column is missing or blank.
const DefaultAccount = "Unknown Account"

// ErrParse is wrapped by every ParseError.
var ErrParse = errors.New("parse error")

// ParseError reports a rejected row. Rejected rows never stop an import.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error { return ErrParse }

// timeLayouts are tried in order.
var timeLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseOptions controls row interpretation.
type ParseOptions struct {
	// Location for broker-local timestamps; nil means time.Local.
	Location *time.Location
	// DefaultAccount replaces a blank account column.
	DefaultAccount string
}

func (o ParseOptions) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o ParseOptions) defaultAccount() string {
	if o.DefaultAccount == "" {
		return DefaultAccount
	}
	return o.DefaultAccount
}

// ParseRow converts the fields of one row into an Execution.
func ParseRow(row []string, line int, opts ParseOptions) (Execution, error) {
	if isBlank(row) {
		return Execution{}, &ParseError{Line: line, Reason: "empty line"}
	}
	if len(row) < minColumns {
		return Execution{}, &ParseError{Line: line, Reason: fmt.Sprintf("expected at least %d columns, got %d", minColumns, len(row))}
	}

	inst := strings.TrimSpace(row[colInstrument])
	if inst == "" {
		return Execution{}, &ParseError{Line: line, Reason: "missing instrument"}
	}

	side, err := ParseSide(row[colAction])
	if err != nil {
		return Execution{}, &ParseError{Line: line, Reason: err.Error()}
	}

	qty, err := strconv.Atoi(strings.TrimSpace(row[colQuantity]))
	if err != nil {
		return Execution{}, &ParseError{Line: line, Reason: fmt.Sprintf("bad quantity %q", row[colQuantity])}
	}
	if qty <= 0 {
		return Execution{}, &ParseError{Line: line, Reason: fmt.Sprintf("quantity must be positive, got %d", qty)}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(row[colPrice]))
	if err != nil {
		return Execution{}, &ParseError{Line: line, Reason: fmt.Sprintf("bad price %q", row[colPrice])}
	}

	ts, err := parseTime(row[colTime], opts.location())
	if err != nil {
		return Execution{}, &ParseError{Line: line, Reason: err.Error()}
	}

	role, err := ParseRole(row[colRole])
	if err != nil {
		return Execution{}, &ParseError{Line: line, Reason: err.Error()}
	}

	account := ""
	if len(row) > colAccount {
		account = strings.TrimSpace(row[colAccount])
	}
	if account == "" {
		account = opts.defaultAccount()
	}

	return Execution{
		Instrument: inst,
		Side:       side,
		Quantity:   qty,
		Price:      price,
		Time:       ts,
		Role:       role,
		Account:    account,
		Line:       line,
	}, nil
}

// ParseLine parses a single comma-delimited line.
func ParseLine(text string, line int, opts ParseOptions) (Execution, error) {
	if strings.TrimSpace(text) == "" {
		return Execution{}, &ParseError{Line: line, Reason: "empty line"}
	}
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	row, err := r.Read()
	if err != nil {
		return Execution{}, &ParseError{Line: line, Reason: err.Error()}
	}
	return ParseRow(row, line, opts)
}

// Read parses a whole export in file order. Blank rows and a leading header
// row are skipped; malformed rows are returned as *ParseError values while
// parsing continues. The returned error is only set when r itself fails.
func Read(r io.Reader, opts ParseOptions) ([]Execution, []*ParseError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var (
		out      []Execution
		rejected []*ParseError
		sawFirst bool
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rejected = append(rejected, &ParseError{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return out, rejected, fmt.Errorf("read executions: %w", err)
		}
		if isBlank(row) {
			continue
		}
		line, _ := cr.FieldPos(0)

		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "instrument") {
				continue
			}
		}

		e, err := ParseRow(row, line, opts)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				rejected = append(rejected, perr)
				continue
			}
			return out, rejected, err
		}
		out = append(out, e)
	}
	return out, rejected, nil
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
