package commission

import (
	"github.com/csm-garage/backoffice-go/internal/domain/commission"
	"github.com/csm-garage/backoffice-go/internal/domain/sale"
	"github.com/csm-garage/backoffice-go/internal/pkg/money"
)

// Calculate attributes commission on item to each assignee that has a
// setting for the item's service. Only positive amounts produce a row.
// The result follows the order of assignees.
func Calculate(item sale.SaleItem, assignees []string, settings []commission.Setting) []commission.Commission {
	if !item.EarnsCommission() {
		return nil
	}

	byEmployee := make(map[string]commission.Setting, len(settings))
	for _, s := range settings {
		if s.ServiceID == *item.ServiceID {
			byEmployee[s.EmployeeID] = s
		}
	}

	var result []commission.Commission
	seen := make(map[string]bool, len(assignees))
	for _, employeeID := range assignees {
		if seen[employeeID] {
			continue
		}
		seen[employeeID] = true

		setting, ok := byEmployee[employeeID]
		if !ok {
			continue
		}
		amount := money.Round(money.Percent(item.Amount, setting.Percentage))
		if !amount.IsPositive() {
			continue
		}
		saleDate := item.SaleDate
		result = append(result, commission.Commission{
			EmployeeID: employeeID,
			SaleItemID: item.ID,
			Amount:     amount,
			SaleDate:   &saleDate,
		})
	}
	return result
}
