package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/grassjelly/internal/model"
)

// CSVParser reads bills from a delimited file with the header
// description,amount,paid_by,split_among. split_among separates names with
// semicolons.
type CSVParser struct {
	Comma rune   // defaults to ','
	Name  string // defaults to "csv"
}

// Header is the expected header row.
var Header = []string{"description", "amount", "paid_by", "split_among"}

const (
	numFields   = 4
	colDesc     = 0
	colAmount   = 1
	colPaidBy   = 2
	colSplit    = 3
	splitSep    = ";"
	currencySym = "$"
)

// Format returns the parser name.
func (p *CSVParser) Format() string {
	if p.Name != "" {
		return p.Name
	}
	return "csv"
}

// Parse reads every bill row. Names are returned as written; staging
// canonicalizes and validates them.
func (p *CSVParser) Parse(r io.Reader) ([]model.Bill, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true
	if p.Comma != 0 {
		cr.Comma = p.Comma
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bills %s: %w", p.Format(), err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if !strings.EqualFold(strings.TrimSpace(records[0][colDesc]), Header[colDesc]) {
		return nil, fmt.Errorf("missing header row, want %s", strings.Join(Header, ","))
	}

	var bills []model.Bill
	for i, rec := range records[1:] {
		bill, err := parseBillRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

func parseBillRow(rec []string) (model.Bill, error) {
	raw := strings.TrimSpace(rec[colAmount])
	raw = strings.TrimPrefix(raw, currencySym)
	raw = strings.ReplaceAll(raw, ",", "")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Bill{}, fmt.Errorf("parsing amount %q: %w", rec[colAmount], err)
	}

	var split []string
	for _, name := range strings.Split(rec[colSplit], splitSep) {
		if name = strings.TrimSpace(name); name != "" {
			split = append(split, name)
		}
	}

	return model.Bill{
		Description: strings.TrimSpace(rec[colDesc]),
		Amount:      amount,
		PaidBy:      strings.TrimSpace(rec[colPaidBy]),
		SplitAmong:  split,
	}, nil
}
