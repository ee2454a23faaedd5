package models

// Cardinality tells the extractor whether a rule keeps one value or all of them.
type Cardinality int

const (
	Single Cardinality = iota
	Multi
)

func (c Cardinality) String() string {
	if c == Multi {
		return "multi"
	}
	return "single"
}

// DataItem is one fact instance as exposed by the document parser.
// Value is nil when the instance carries xsi:nil or no text.
type DataItem struct {
	Value      *string
	ContextRef string
}

// Fact names produced by the default extraction rules.
const (
	FactEdinetCode               = "EdinetCode"
	FactFilingDate               = "FilingDate"
	FactCompanyName              = "CompanyName"
	FactCompanyNameEnglish       = "CompanyNameEnglish"
	FactHeadOfficeAddress        = "HeadOfficeAddress"
	FactRepresentative           = "Representative"
	FactCurrentAssets            = "CurrentAssets"
	FactInvestmentSecurities     = "InvestmentSecurities"
	FactLiabilities              = "Liabilities"
	FactIssuedShares             = "IssuedShares"
	FactEmployeesConsolidated    = "EmployeesConsolidated"
	FactEmployeesNonConsolidated = "EmployeesNonConsolidated"
	FactAverageLengthOfService   = "AverageLengthOfService"
	FactAverageEmployeeAge       = "AverageEmployeeAge"
	FactAverageAnnualSalary      = "AverageAnnualSalary"
	FactDirectorRewardTotals     = "DirectorRewardTotals"
	FactDirectorCounts           = "DirectorCounts"
	FactDirectorNames            = "DirectorNames"
	FactDirectorBirthDates       = "DirectorBirthDates"
	FactEPSIFRS                  = "EPSIFRS"
	FactEPS                      = "EPS"
)

// FactTable maps rule names to extracted values.
//
// A name registered as single always reads back as a string ("" when nothing
// matched); a name registered as multi always reads back as a slice (empty when
// nothing matched). Reading an unregistered name returns the zero value.
type FactTable struct {
	names  []string
	single map[string]string
	multi  map[string][]string
}

func NewFactTable() FactTable {
	return FactTable{
		single: make(map[string]string),
		multi:  make(map[string][]string),
	}
}

// SetValue registers name as a single fact.
func (t *FactTable) SetValue(name, value string) {
	if t.single == nil {
		*t = NewFactTable()
	}
	t.register(name)
	delete(t.multi, name)
	t.single[name] = value
}

// SetValues registers name as a multi fact. A nil slice is stored as empty.
func (t *FactTable) SetValues(name string, values []string) {
	if t.single == nil {
		*t = NewFactTable()
	}
	t.register(name)
	delete(t.single, name)
	if values == nil {
		values = []string{}
	}
	t.multi[name] = values
}

func (t *FactTable) register(name string) {
	if _, ok := t.single[name]; ok {
		return
	}
	if _, ok := t.multi[name]; ok {
		return
	}
	t.names = append(t.names, name)
}

// Value returns the single fact stored under name.
func (t FactTable) Value(name string) string {
	return t.single[name]
}

// Values returns a copy of the multi fact stored under name.
func (t FactTable) Values(name string) []string {
	v, ok := t.multi[name]
	if !ok {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// Has reports whether name was registered by extraction.
func (t FactTable) Has(name string) bool {
	if _, ok := t.single[name]; ok {
		return true
	}
	_, ok := t.multi[name]
	return ok
}

// Cardinality returns how name was registered. ok is false for unknown names.
func (t FactTable) Cardinality(name string) (c Cardinality, ok bool) {
	if _, ok := t.single[name]; ok {
		return Single, true
	}
	if _, ok := t.multi[name]; ok {
		return Multi, true
	}
	return Single, false
}

// Names returns registered names in rule order.
func (t FactTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t FactTable) Len() int { return len(t.names) }
