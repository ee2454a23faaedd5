package fundamentals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"FinScreen/internal/domain/models"
)

func facts(single map[string]string, multi map[string][]string) models.FactTable {
	ft := models.NewFactTable()
	for k, v := range single {
		ft.SetValue(k, v)
	}
	for k, v := range multi {
		ft.SetValues(k, v)
	}
	return ft
}

func TestScorePerStockAllMissing(t *testing.T) {
	ft := facts(map[string]string{
		models.FactCurrentAssets:        "",
		models.FactInvestmentSecurities: "",
		models.FactLiabilities:          "",
		models.FactIssuedShares:         "",
	}, nil)
	assert.Equal(t, 0.0, ScorePerStock(ft))
	assert.Equal(t, 0.0, ScorePerStock(models.NewFactTable()))
}

func TestScorePerStock(t *testing.T) {
	tests := []struct {
		name   string
		single map[string]string
		want   float64
	}{
		{
			name: "all present",
			single: map[string]string{
				models.FactCurrentAssets:        "1000",
				models.FactInvestmentSecurities: "500",
				models.FactLiabilities:          "300",
				models.FactIssuedShares:         "10",
			},
			want: (1000 + 500*0.6 - 300) / 10.0,
		},
		{
			name:   "shares missing divides by one",
			single: map[string]string{models.FactCurrentAssets: "1000", models.FactLiabilities: "400"},
			want:   600,
		},
		{
			name:   "zero shares divides by one",
			single: map[string]string{models.FactCurrentAssets: "50", models.FactIssuedShares: "0"},
			want:   50,
		},
		{
			name:   "unparsable amount is absent",
			single: map[string]string{models.FactCurrentAssets: "n/a", models.FactLiabilities: "100", models.FactIssuedShares: "4"},
			want:   -25,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScorePerStock(facts(tt.single, nil)), 1e-9)
		})
	}
}

func TestEarningsLossPerStockPrefersIFRS(t *testing.T) {
	tests := []struct {
		name     string
		ifrs     string
		domestic string
		want     float64
	}{
		{"both present", "12.3", "9.9", 12.3},
		{"ifrs only", "12.3", "", 12.3},
		{"domestic only", "", "9.9", 9.9},
		{"neither", "", "", 0},
		{"negative", "", "-4.5", -4.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := facts(map[string]string{models.FactEPSIFRS: tt.ifrs, models.FactEPS: tt.domestic}, nil)
			assert.Equal(t, tt.want, EarningsLossPerStock(ft))
		})
	}
}

func TestAverageBoardMemberRewardParallelTotals(t *testing.T) {
	ft := facts(nil, map[string][]string{
		models.FactDirectorRewardTotals: {"1000", "2000"},
		models.FactDirectorCounts:       {"5", "5"},
	})
	// 3000 / 10
	assert.Equal(t, 300.0, AverageBoardMemberReward(ft))
}

func TestAverageBoardMemberRewardFallbacks(t *testing.T) {
	rewards := []string{"900"}
	tests := []struct {
		name  string
		multi map[string][]string
		want  float64
	}{
		{"names", map[string][]string{
			models.FactDirectorRewardTotals: rewards,
			models.FactDirectorCounts:       {"0"},
			models.FactDirectorNames:        {"a", "b", "c"},
			models.FactDirectorBirthDates:   {"1960-01-01"},
		}, 300},
		{"birthdates", map[string][]string{
			models.FactDirectorRewardTotals: rewards,
			models.FactDirectorBirthDates:   {"1960-01-01", "1970-01-01"},
		}, 450},
		{"one", map[string][]string{
			models.FactDirectorRewardTotals: rewards,
		}, 900},
		{"nothing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageBoardMemberReward(facts(nil, tt.multi)))
		})
	}
}

func TestAverageBoardMemberAge(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	ft := facts(nil, map[string][]string{
		// 60 (birthday passed), 49 (birthday tomorrow), 40 (birthday today)
		models.FactDirectorBirthDates: {"1964-01-10", "1974-06-16", "1984-06-15", "unknown"},
	})
	assert.InDelta(t, (60.0+49.0+40.0)/3.0, AverageBoardMemberAge(ft, now), 1e-9)
}

func TestAverageBoardMemberAgeEmptyIsZero(t *testing.T) {
	ft := facts(nil, map[string][]string{models.FactDirectorBirthDates: {}})
	assert.Equal(t, 0.0, AverageBoardMemberAge(ft, time.Now()))
}

func TestScalarCoercions(t *testing.T) {
	ft := facts(map[string]string{
		models.FactAverageAnnualSalary:      "7250000",
		models.FactIssuedShares:             "1500000",
		models.FactEmployeesNonConsolidated: "320",
		models.FactEmployeesConsolidated:    "9999",
		models.FactAverageEmployeeAge:       "41.2",
	}, nil)

	assert.Equal(t, 7250000.0, AverageSalary(ft))
	assert.Equal(t, int64(1500000), NumberOfIssuedShares(ft))
	assert.Equal(t, int64(320), NumberOfEmployees(ft))
	assert.Equal(t, 41.2, AverageEmployeeAge(ft))

	empty := models.NewFactTable()
	assert.Equal(t, 0.0, AverageSalary(empty))
	assert.Equal(t, int64(0), NumberOfIssuedShares(empty))
	assert.Equal(t, int64(0), NumberOfEmployees(empty))
	assert.Equal(t, 0.0, AverageEmployeeAge(empty))
}

func TestEmployeeEarningPower(t *testing.T) {
	m := models.CompanyMetrics{
		EarningsLossPerStock: 100,
		NumberOfIssuedShares: 1000,
		NumberOfEmployees:    10,
		AverageSalary:        5000,
	}
	assert.Equal(t, 2.0, EmployeeEarningPower(m))

	m.NumberOfEmployees = 0
	assert.Equal(t, 0.0, EmployeeEarningPower(m))
	m.NumberOfEmployees = 10
	m.AverageSalary = 0
	assert.Equal(t, 0.0, EmployeeEarningPower(m))
}

func TestCompute(t *testing.T) {
	ft := facts(map[string]string{
		models.FactCompanyName:   "サンプル株式会社",
		models.FactCurrentAssets: "1500",
		models.FactIssuedShares:  "10",
		models.FactEPSIFRS:       "120",
	}, nil)
	m := Compute(ft, time.Now())

	assert.Equal(t, "サンプル株式会社", m.CompanyName)
	assert.Equal(t, 150.0, m.ScorePerStock)
	assert.Equal(t, 120.0, m.EarningsLossPerStock)
	assert.Equal(t, int64(10), m.NumberOfIssuedShares)
}
