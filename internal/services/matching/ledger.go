package matching

import (
	"fmt"
	"strings"
)

// ColumnMapping names the upstream columns that hold each field. ID is
// optional; without it ids are derived from the row number.
type ColumnMapping struct {
	ID          string `json:"id,omitempty"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// DefaultColumnMapping matches the column names of the original exports.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{Date: "Data", Amount: "Valor", Description: "Descricao"}
}

// Validate requires the three matching fields to be mapped.
func (m ColumnMapping) Validate() error {
	switch {
	case strings.TrimSpace(m.Date) == "":
		return &ValidationError{Field: "mapping.date", Reason: "column is required"}
	case strings.TrimSpace(m.Amount) == "":
		return &ValidationError{Field: "mapping.amount", Reason: "column is required"}
	case strings.TrimSpace(m.Description) == "":
		return &ValidationError{Field: "mapping.description", Reason: "column is required"}
	}
	return nil
}

// BuildLedger normalizes decoded rows into transactions of one side.
//
// A row missing a mapped column, a blank or duplicate explicit id, or an
// invalid mapping fails the whole ledger with a ValidationError. Rows whose
// date or amount cannot be parsed are left out and returned as rejects.
func (n Normalizer) BuildLedger(side Side, rows []map[string]string, mapping ColumnMapping) ([]Transaction, []UnparseableRecordError, error) {
	if err := mapping.Validate(); err != nil {
		return nil, nil, err
	}

	ledger := make([]Transaction, 0, len(rows))
	var rejected []UnparseableRecordError
	seen := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		rowNum := i + 1

		id := fmt.Sprintf("%s-%d", side, rowNum)
		if mapping.ID != "" {
			v, ok := row[mapping.ID]
			if !ok || strings.TrimSpace(v) == "" {
				return nil, nil, &ValidationError{
					Field:  mapping.ID,
					Reason: fmt.Sprintf("%s row %d has no id", side, rowNum),
				}
			}
			id = strings.TrimSpace(v)
		}
		if _, dup := seen[id]; dup {
			return nil, nil, &ValidationError{
				Field:  "id",
				Reason: fmt.Sprintf("duplicate %s id %q", side, id),
			}
		}
		seen[id] = struct{}{}

		rawDate, okDate := row[mapping.Date]
		rawAmount, okAmount := row[mapping.Amount]
		rawDesc, okDesc := row[mapping.Description]
		if !okDate || !okAmount || !okDesc {
			return nil, nil, &ValidationError{
				Field:  "mapping",
				Reason: fmt.Sprintf("%s row %d is missing a mapped column", side, rowNum),
			}
		}

		date := n.Normalize(rawDate, FieldDate)
		if !date.OK {
			rejected = append(rejected, UnparseableRecordError{Side: side, Row: rowNum, ID: id, Field: "date", Value: rawDate})
			continue
		}
		amount := n.Normalize(rawAmount, FieldAmount)
		if !amount.OK {
			rejected = append(rejected, UnparseableRecordError{Side: side, Row: rowNum, ID: id, Field: "amount", Value: rawAmount})
			continue
		}

		ledger = append(ledger, Transaction{
			ID:                    id,
			Side:                  side,
			Index:                 len(ledger),
			Date:                  date.Date,
			Amount:                amount.Amount,
			Description:           strings.TrimSpace(rawDesc),
			NormalizedDescription: n.Description(rawDesc),
			RawRow:                copyRow(row),
		})
	}
	return ledger, rejected, nil
}

func copyRow(row map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
