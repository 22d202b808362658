package usecase

import (
	"sort"

	"refdocs/internal/domain"
)

// Assemble folds resolved elements into a record. Params and type
// parameters are ordered by name, exceptions by cref.
func Assemble(elements []domain.Element) domain.Record {
	var rec domain.Record
	for _, el := range elements {
		switch el.Kind {
		case domain.ElementSummary:
			rec.Summary = el.Content
		case domain.ElementRemarks:
			rec.Remarks = el.Content
		case domain.ElementReturns:
			rec.Returns = el.Content
		case domain.ElementExample:
			rec.Example = el.Content
		case domain.ElementParam:
			rec.Params = append(rec.Params, domain.Named{Name: el.Name, Content: el.Content})
		case domain.ElementTypeparam:
			rec.Typeparams = append(rec.Typeparams, domain.Named{Name: el.Name, Content: el.Content})
		case domain.ElementException:
			rec.Exceptions = append(rec.Exceptions, domain.Named{Name: el.Name, Content: el.Content})
		}
	}

	for _, list := range [][]domain.Named{rec.Params, rec.Typeparams, rec.Exceptions} {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	return rec
}
