package commission

import (
	"testing"
	"time"

	"github.com/csm-garage/backoffice-go/internal/domain/commission"
	"github.com/csm-garage/backoffice-go/internal/domain/sale"
	"github.com/csm-garage/backoffice-go/internal/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceItem(serviceID, amount string) sale.SaleItem {
	return sale.SaleItem{
		ID:        "item-1",
		Type:      sale.ItemTypeService,
		ServiceID: &serviceID,
		Amount:    money.MustParse(amount),
		SaleDate:  time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC),
	}
}

func setting(employeeID, serviceID, pct string) commission.Setting {
	return commission.Setting{EmployeeID: employeeID, ServiceID: serviceID, Percentage: money.MustParse(pct)}
}

func TestCalculate(t *testing.T) {
	item := serviceItem("svc-1", "2500")
	settings := []commission.Setting{
		setting("emp-a", "svc-1", "10"),
		setting("emp-b", "svc-1", "12.5"),
		setting("emp-c", "svc-2", "50"),
	}

	got := Calculate(item, []string{"emp-a", "emp-b", "emp-c", "emp-d"}, settings)
	require.Len(t, got, 2)

	assert.Equal(t, "emp-a", got[0].EmployeeID)
	assert.True(t, money.MustParse("250").Equal(got[0].Amount))
	assert.Equal(t, "emp-b", got[1].EmployeeID)
	assert.True(t, money.MustParse("312.50").Equal(got[1].Amount))
	assert.Equal(t, "item-1", got[1].SaleItemID)
	require.NotNil(t, got[0].SaleDate)
	assert.Equal(t, item.SaleDate, *got[0].SaleDate)
}

func TestCalculate_RoundsToCents(t *testing.T) {
	item := serviceItem("svc-1", "333.33")
	got := Calculate(item, []string{"emp-a"}, []commission.Setting{setting("emp-a", "svc-1", "7.5")})
	require.Len(t, got, 1)
	assert.Equal(t, "25", got[0].Amount.StringFixed(0))
	assert.True(t, money.MustParse("25.00").Equal(got[0].Amount))
}

func TestCalculate_NoRows(t *testing.T) {
	tests := []struct {
		name      string
		item      sale.SaleItem
		assignees []string
		settings  []commission.Setting
	}{
		{
			name:      "product item",
			item:      sale.SaleItem{ID: "item-1", Type: sale.ItemTypeProduct, Amount: money.MustParse("1000")},
			assignees: []string{"emp-a"},
			settings:  []commission.Setting{setting("emp-a", "svc-1", "10")},
		},
		{
			name:      "service item without service",
			item:      sale.SaleItem{ID: "item-1", Type: sale.ItemTypeService, Amount: money.MustParse("1000")},
			assignees: []string{"emp-a"},
			settings:  []commission.Setting{setting("emp-a", "svc-1", "10")},
		},
		{
			name:      "zero percentage",
			item:      serviceItem("svc-1", "1000"),
			assignees: []string{"emp-a"},
			settings:  []commission.Setting{setting("emp-a", "svc-1", "0")},
		},
		{
			name:      "zero amount",
			item:      serviceItem("svc-1", "0"),
			assignees: []string{"emp-a"},
			settings:  []commission.Setting{setting("emp-a", "svc-1", "10")},
		},
		{
			name:      "no setting",
			item:      serviceItem("svc-1", "1000"),
			assignees: []string{"emp-a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Calculate(tt.item, tt.assignees, tt.settings))
		})
	}
}

func TestCalculate_DuplicateAssigneeCountedOnce(t *testing.T) {
	item := serviceItem("svc-1", "1000")
	got := Calculate(item, []string{"emp-a", "emp-a"}, []commission.Setting{setting("emp-a", "svc-1", "10")})
	assert.Len(t, got, 1)
}
