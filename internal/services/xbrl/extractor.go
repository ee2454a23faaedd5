package xbrl

import (
	"strings"

	"FinScreen/internal/domain/models"
)

// Document is anything that can list fact instances for a taxonomy key.
// Items come back in document order.
type Document interface {
	DataList(domainKey string) []models.DataItem
}

// Extract applies rules to doc. Every rule name is present in the result:
// single rules default to "" and multi rules to an empty list.
func Extract(doc Document, rules []Rule) models.FactTable {
	ft := models.NewFactTable()
	for _, r := range rules {
		var items []models.DataItem
		if doc != nil {
			items = doc.DataList(r.DomainKey)
		}
		values := collect(items, r)
		if r.Cardinality == models.Multi {
			ft.SetValues(r.Name, values)
			continue
		}
		if len(values) == 0 {
			ft.SetValue(r.Name, "")
		} else {
			ft.SetValue(r.Name, values[0])
		}
	}
	return ft
}

func collect(items []models.DataItem, r Rule) []string {
	values := make([]string, 0, len(items))
	for _, it := range items {
		if !strings.Contains(it.ContextRef, r.ContextFilter) {
			continue
		}
		if it.Value == nil {
			continue
		}
		values = append(values, *it.Value)
		if r.Cardinality == models.Single {
			break
		}
	}
	return values
}
