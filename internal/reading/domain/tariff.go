package domain

import (
	"github.com/shopspring/decimal"

	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
)

// Charges is the priced outcome of one consumption figure under a tariff.
type Charges struct {
	Base         decimal.Decimal `json:"base_charge"`
	ExcessVolume float64         `json:"excess_volume"`
	ExcessCharge decimal.Decimal `json:"excess_charge"`
	Total        decimal.Decimal `json:"total_charge"`
}

// ComputeCharges prices a consumption under the project tariff. Consumption
// up to the included allowance is covered by the base fee; every cubic meter
// above it is billed at the unit price.
func ComputeCharges(t projectdomain.Tariff, consumption float64) Charges {
	excess := consumption - t.IncludedAllowance
	if excess < 0 {
		excess = 0
	}
	excessCharge := t.UnitPrice.Mul(decimal.NewFromFloat(excess))
	return Charges{
		Base:         t.BaseFee,
		ExcessVolume: excess,
		ExcessCharge: excessCharge,
		Total:        t.BaseFee.Add(excessCharge),
	}
}

// ZeroCharges is the charge set recorded on initial readings.
func ZeroCharges() Charges {
	return Charges{
		Base:         decimal.Zero,
		ExcessCharge: decimal.Zero,
		Total:        decimal.Zero,
	}
}
