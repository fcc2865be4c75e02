package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// WriteMarkdown renders the summary as a Markdown document.
func WriteMarkdown(w io.Writer, s Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", strings.ToUpper(s.Group))
	fmt.Fprintf(&b, "Generated on: %s\n\n", s.GeneratedAt.Format(DateFormat))

	b.WriteString("## Current Balances\n\n")
	if len(s.Owed) == 0 {
		b.WriteString("Everyone is settled up.\n\n")
	}
	for _, creditor := range s.Creditors() {
		fmt.Fprintf(&b, "### %s\n\n", creditor)
		for _, d := range s.Owed {
			if d.OwedTo == creditor {
				fmt.Fprintf(&b, "- %s owes %s %s\n", d.Ower, d.OwedTo, d.Display)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Expense History\n\n")
	if len(s.History) == 0 {
		b.WriteString("No expenses yet.\n")
	} else {
		b.WriteString("| ID | Date Added | Paid By | Amount | Description | Split Among |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, r := range s.History {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				r.ID, r.Date, cell(r.PaidBy), r.Amount, cell(r.Description), cell(r.Split()))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// HistoryHeader is the CSV header written by WriteCSV.
var HistoryHeader = []string{"id", "date", "paid_by", "amount", "description", "split_among"}

// WriteCSV writes the expense history table as CSV.
func WriteCSV(w io.Writer, s Summary) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(HistoryHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range s.History {
		if err := cw.Write([]string{r.ID, r.Date, r.PaidBy, r.Amount, r.Description, r.Split()}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
