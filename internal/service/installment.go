package service

import (
	"fmt"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitInstallments expands a draft into the rows to persist. With installments <= 1 the draft
// is returned as the only row, without group fields. Otherwise every row gets amount/N rounded
// to cents (the last row is not adjusted, so the sum may drift by a few cents), the draft date
// moved by i months, a "(i/N)" description suffix and a shared group id from newGroupID.
// Rows are returned in date order.
func SplitInstallments(draft *domain.Transaction, installments int, newGroupID func() uuid.UUID) []*domain.Transaction {
	if installments <= 1 {
		row := *draft
		row.InstallmentGroupID = nil
		row.InstallmentNumber = nil
		row.TotalInstallments = nil
		return []*domain.Transaction{&row}
	}

	groupID := newGroupID()
	total := int32(installments)
	amount := draft.Amount.Div(decimal.NewFromInt(int64(installments))).Round(2)

	rows := make([]*domain.Transaction, 0, installments)
	for i := 0; i < installments; i++ {
		row := *draft
		number := int32(i + 1)
		gid := groupID

		row.Description = fmt.Sprintf("%s (%d/%d)", draft.Description, number, total)
		row.Amount = amount
		row.Date = util.AddMonths(draft.Date, i)
		row.InstallmentGroupID = &gid
		row.InstallmentNumber = &number
		row.TotalInstallments = &total
		rows = append(rows, &row)
	}
	return rows
}
