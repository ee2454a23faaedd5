package xbrl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinScreen/internal/domain/models"
)

func TestParseFileSample(t *testing.T) {
	inst, err := ParseFile("testdata/sample.xbrl")
	require.NoError(t, err)

	name := inst.DataList("jpcrp_cor:CompanyNameCoverPage")
	require.Len(t, name, 1)
	require.NotNil(t, name[0].Value)
	assert.Equal(t, "サンプル株式会社", *name[0].Value)

	english := inst.DataList("jpcrp_cor:CompanyNameInEnglishCoverPage")
	require.Len(t, english, 1)
	assert.Nil(t, english[0].Value)

	assets := inst.DataList("jppfs_cor:CurrentAssets")
	require.Len(t, assets, 2)
	assert.Equal(t, "Prior1YearInstant", assets[0].ContextRef)

	block := inst.DataList("jpcrp_cor:BusinessPolicyTextBlock")
	require.Len(t, block, 1)
	assert.Equal(t, "<p>policy</p>", *block[0].Value)

	assert.Empty(t, inst.DataList("jppfs_cor:InvestmentSecurities"))
	// contexts are not facts
	assert.Empty(t, inst.DataList("xbrli:context"))
}

func TestParseThenExtract(t *testing.T) {
	inst, err := ParseFile("testdata/sample.xbrl")
	require.NoError(t, err)

	ft := Extract(inst, DefaultRules())
	assert.Equal(t, "E00001", ft.Value(models.FactEdinetCode))
	assert.Equal(t, "サンプル株式会社", ft.Value(models.FactCompanyName))
	assert.Equal(t, "", ft.Value(models.FactCompanyNameEnglish))
	assert.Equal(t, "1000000000", ft.Value(models.FactCurrentAssets))
	assert.Equal(t, "1200", ft.Value(models.FactEmployeesConsolidated))
	assert.Equal(t, "300", ft.Value(models.FactEmployeesNonConsolidated))
	assert.Equal(t, []string{"山田 太郎", "鈴木 花子"}, ft.Values(models.FactDirectorNames))
	assert.Equal(t, []string{}, ft.Values(models.FactDirectorBirthDates))
}

func TestParseRejectsNonInstance(t *testing.T) {
	_, err := Parse(strings.NewReader(`<?xml version="1.0"?><html><body/></html>`))
	assert.ErrorIs(t, err, ErrNotInstance)

	_, err = Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNotInstance)
}

func TestParseNestedContentIgnored(t *testing.T) {
	doc := `<xbrli:xbrl xmlns:xbrli="x" xmlns:a="y">
<a:Tuple contextRef="C"><a:Inner contextRef="C">inner</a:Inner>outer</a:Tuple>
<a:After contextRef="C">after</a:After>
</xbrli:xbrl>`
	inst, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	tuple := inst.DataList("a:Tuple")
	require.Len(t, tuple, 1)
	assert.Equal(t, "outer", *tuple[0].Value)
	assert.Empty(t, inst.DataList("a:Inner"))
	assert.Len(t, inst.DataList("a:After"), 1)
	assert.Equal(t, 2, inst.Len())
}
