package models

// CompanyMetrics are derived from one filing's facts.
type CompanyMetrics struct {
	CompanyName              string
	ScorePerStock            float64
	EarningsLossPerStock     float64
	AverageSalary            float64
	NumberOfIssuedShares     int64
	NumberOfEmployees        int64
	AverageBoardMemberReward float64
	AverageBoardMemberAge    float64
	AverageEmployeeAge       float64
}
