package pipeline

// categoryAliases normalizes merchant-supplied category labels to their
// canonical names.
var categoryAliases = map[string]string{
	"Dining Out":       "Dining",
	"Grocery Store":    "Groceries",
	"Electric Bill":    "Utilities",
	"Online Sales":     "Sales",
	"Freelance Client": "Freelance",
}

// CorrectCategoryAliases rewrites known category aliases to their
// canonical names, leaving unknown labels untouched. Like the outlier
// filter it is an optional stage invoked explicitly by callers.
func CorrectCategoryAliases(records []RawRecord) []RawRecord {
	for i := range records {
		if canonical, ok := categoryAliases[records[i].Category]; ok {
			records[i].Category = canonical
		}
	}
	return records
}
