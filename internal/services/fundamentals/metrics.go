// Package fundamentals derives per-filing company metrics from extracted facts.
//
// Every function here is total: missing or unparsable facts resolve to the
// documented default and no input can cause a division by zero.
package fundamentals

import (
	"time"

	"FinScreen/internal/domain/models"
	"FinScreen/pkg/util"
)

// InvestmentSecuritiesWeight discounts securities when scoring net current assets.
const InvestmentSecuritiesWeight = 0.6

// Compute derives all metrics for one filing. now anchors board member ages.
func Compute(ft models.FactTable, now time.Time) models.CompanyMetrics {
	return models.CompanyMetrics{
		CompanyName:              CompanyName(ft),
		ScorePerStock:            ScorePerStock(ft),
		EarningsLossPerStock:     EarningsLossPerStock(ft),
		AverageSalary:            AverageSalary(ft),
		NumberOfIssuedShares:     NumberOfIssuedShares(ft),
		NumberOfEmployees:        NumberOfEmployees(ft),
		AverageBoardMemberReward: AverageBoardMemberReward(ft),
		AverageBoardMemberAge:    AverageBoardMemberAge(ft, now),
		AverageEmployeeAge:       AverageEmployeeAge(ft),
	}
}

func CompanyName(ft models.FactTable) string {
	return ft.Value(models.FactCompanyName)
}

// ScorePerStock is (current assets + securities*0.6 - liabilities) / issued shares.
// Missing amounts count as 0 and missing shares as 1.
func ScorePerStock(ft models.FactTable) float64 {
	assets := floatFact(ft, models.FactCurrentAssets, 0)
	securities := floatFact(ft, models.FactInvestmentSecurities, 0)
	liabilities := floatFact(ft, models.FactLiabilities, 0)
	shares := floatFact(ft, models.FactIssuedShares, 1)
	if shares == 0 {
		shares = 1
	}
	return (assets + securities*InvestmentSecuritiesWeight - liabilities) / shares
}

// EarningsLossPerStock prefers the IFRS figure whenever it is present.
func EarningsLossPerStock(ft models.FactTable) float64 {
	if v := ft.Value(models.FactEPSIFRS); v != "" {
		return util.ParseFloatDefault(v, 0)
	}
	return floatFact(ft, models.FactEPS, 0)
}

func AverageSalary(ft models.FactTable) float64 {
	return floatFact(ft, models.FactAverageAnnualSalary, 0)
}

func NumberOfIssuedShares(ft models.FactTable) int64 {
	return util.ParseInt64Default(ft.Value(models.FactIssuedShares), 0)
}

// NumberOfEmployees reads the non-consolidated headcount.
func NumberOfEmployees(ft models.FactTable) int64 {
	return util.ParseInt64Default(ft.Value(models.FactEmployeesNonConsolidated), 0)
}

// AverageBoardMemberReward divides the summed remuneration totals by the
// summed headcounts. The lists are independent totals per officer category,
// not pairs. A zero headcount falls back to the number of director names,
// then birthdates, then 1.
func AverageBoardMemberReward(ft models.FactTable) float64 {
	var total float64
	for _, v := range ft.Values(models.FactDirectorRewardTotals) {
		total += util.ParseFloatDefault(v, 0)
	}

	var count float64
	for _, v := range ft.Values(models.FactDirectorCounts) {
		count += util.ParseFloatDefault(v, 0)
	}

	if count == 0 {
		count = float64(len(ft.Values(models.FactDirectorNames)))
	}
	if count == 0 {
		count = float64(len(ft.Values(models.FactDirectorBirthDates)))
	}
	if count == 0 {
		count = 1
	}
	return total / count
}

// AverageBoardMemberAge averages director ages at now. Birthdates that do not
// parse as YYYY-MM-DD are skipped; with none left the result is 0.
func AverageBoardMemberAge(ft models.FactTable, now time.Time) float64 {
	var sum, n int
	for _, v := range ft.Values(models.FactDirectorBirthDates) {
		born, err := time.Parse(util.DateLayout, v)
		if err != nil {
			continue
		}
		sum += AgeAt(born, now)
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// AgeAt returns completed years between born and now.
func AgeAt(born, now time.Time) int {
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age
}

func AverageEmployeeAge(ft models.FactTable) float64 {
	return floatFact(ft, models.FactAverageEmployeeAge, 0)
}

// EmployeeEarningPower is per-employee earnings relative to the average salary.
// It is 0 when either denominator is 0.
func EmployeeEarningPower(m models.CompanyMetrics) float64 {
	if m.NumberOfEmployees == 0 || m.AverageSalary == 0 {
		return 0
	}
	perEmployee := m.EarningsLossPerStock * float64(m.NumberOfIssuedShares) / float64(m.NumberOfEmployees)
	return perEmployee / m.AverageSalary
}

func floatFact(ft models.FactTable, name string, def float64) float64 {
	return util.ParseFloatDefault(ft.Value(name), def)
}
