package pgsql

import (
	"fmt"
	"strings"

	"github.com/SscSPs/money_records_app/internal/core/domain"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere translates a filter into a WHERE clause with positional arguments.
// The clause is empty when no filter field is set.
func buildWhere(filter domain.TransactionFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.DateFrom != nil {
		add("date >= $%d", filter.DateFrom.UTC())
	}
	if filter.DateTo != nil {
		add("date <= $%d", filter.DateTo.UTC())
	}
	if filter.AmountMin != nil {
		add("amount >= $%d", *filter.AmountMin)
	}
	if filter.AmountMax != nil {
		add("amount <= $%d", *filter.AmountMax)
	}
	if filter.DescriptionContains != "" {
		add(`description ILIKE $%d ESCAPE '\'`, "%"+likeEscaper.Replace(filter.DescriptionContains)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
