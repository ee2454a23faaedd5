package xbrl

import "FinScreen/internal/domain/models"

// Rule describes how one fact is pulled out of an instance document.
type Rule struct {
	Name      string
	DomainKey string
	// ContextFilter is matched as a substring of the item's contextRef.
	// Empty accepts every context.
	ContextFilter string
	Cardinality   models.Cardinality
}

var defaultRules = [...]Rule{
	{models.FactEdinetCode, "jpdei_cor:EDINETCodeDEI", "", models.Single},
	{models.FactFilingDate, "jpcrp_cor:FilingDateCoverPage", "", models.Single},
	{models.FactCompanyName, "jpcrp_cor:CompanyNameCoverPage", "", models.Single},
	{models.FactCompanyNameEnglish, "jpcrp_cor:CompanyNameInEnglishCoverPage", "", models.Single},
	{models.FactHeadOfficeAddress, "jpcrp_cor:AddressOfRegisteredHeadquarterCoverPage", "", models.Single},
	{models.FactRepresentative, "jpcrp_cor:TitleAndNameOfRepresentativeCoverPage", "", models.Single},
	{models.FactCurrentAssets, "jppfs_cor:CurrentAssets", "CurrentYearInstant", models.Single},
	{models.FactInvestmentSecurities, "jppfs_cor:InvestmentSecurities", "CurrentYearInstant", models.Single},
	{models.FactLiabilities, "jppfs_cor:Liabilities", "CurrentYearInstant", models.Single},
	{models.FactIssuedShares, "jpcrp_cor:TotalNumberOfIssuedSharesSummaryOfBusinessResults", "CurrentYearInstant", models.Single},
	{models.FactEmployeesConsolidated, "jpcrp_cor:NumberOfEmployees", "CurrentYearInstant", models.Single},
	{models.FactEmployeesNonConsolidated, "jpcrp_cor:NumberOfEmployees", "CurrentYearInstant_NonConsolidatedMember", models.Single},
	{models.FactAverageLengthOfService, "jpcrp_cor:AverageLengthOfServiceYearsInformationAboutReportingCompanyInformationAboutEmployees", "CurrentYearInstant", models.Single},
	{models.FactAverageEmployeeAge, "jpcrp_cor:AverageAgeYearsInformationAboutReportingCompanyInformationAboutEmployees", "CurrentYearInstant", models.Single},
	{models.FactAverageAnnualSalary, "jpcrp_cor:AverageAnnualSalaryInformationAboutReportingCompanyInformationAboutEmployees", "CurrentYearInstant", models.Single},
	{models.FactDirectorRewardTotals, "jpcrp_cor:TotalAmountOfRemunerationEtcRemunerationEtcByCategoryOfDirectorsAndOtherOfficers", "", models.Multi},
	{models.FactDirectorCounts, "jpcrp_cor:NumberOfDirectorsAndOtherOfficersRemunerationEtcByCategoryOfDirectorsAndOtherOfficers", "", models.Multi},
	{models.FactDirectorNames, "jpcrp_cor:NameInformationAboutDirectorsAndCorporateAuditors", "", models.Multi},
	{models.FactDirectorBirthDates, "jpcrp_cor:DateOfBirthInformationAboutDirectorsAndCorporateAuditors", "", models.Multi},
	{models.FactEPSIFRS, "jpcrp_cor:BasicEarningsLossPerShareIFRSSummaryOfBusinessResults", "CurrentYearDuration", models.Single},
	{models.FactEPS, "jpcrp_cor:BasicEarningsLossPerShareSummaryOfBusinessResults", "CurrentYearDuration", models.Single},
}

// DefaultRules returns the fact rules for annual securities reports, in
// extraction order. The returned slice is a fresh copy.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules[:])
	return out
}
