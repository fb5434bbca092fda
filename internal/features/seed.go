package features

import "github.com/abhisek/counsel/internal/table"

var kindSeed = map[Kind][]string{
	KindBinary: {
		"school", "sex", "address", "famsize", "Pstatus", "schoolsup",
		"famsup", "paid", "activities", "nursery", "higher", "internet",
		"romantic",
	},
	KindNumeric: {
		"age", "Medu", "Fedu", "traveltime", "studytime", "failures",
		"famrel", "freetime", "goout", "Dalc", "Walc", "health",
		"absences", "FinalGrade",
	},
	KindNominal: {"Mjob", "Fjob", "reason", "guardian"},
}

var categoricalSeed = []string{
	"school", "sex", "address", "famsize", "Pstatus", "Mjob", "Fjob",
	"reason", "guardian", "schoolsup", "famsup", "paid", "activities",
	"nursery", "higher", "internet", "romantic",
}

var yesNo = []string{"yes", "no"}

var actionableSeed = []Actionable{
	{Name: "studytime", Description: "weekly study time, 1 (<2h) to 4 (>10h)", Kind: KindNumeric, Min: 1, Max: 4, Default: table.Num(4)},
	{Name: "absences", Description: "number of school absences", Kind: KindNumeric, Min: 0, Max: 20, Default: table.Num(0)},
	{Name: "Dalc", Description: "workday alcohol use, 1 (very low) to 5 (very high)", Kind: KindNumeric, Min: 1, Max: 5, Default: table.Num(1)},
	{Name: "Walc", Description: "weekend alcohol use, 1 (very low) to 5 (very high)", Kind: KindNumeric, Min: 1, Max: 5, Default: table.Num(1)},
	{Name: "freetime", Description: "free time after school, 1 (very low) to 5 (very high)", Kind: KindNumeric, Min: 1, Max: 5, Default: table.Num(5)},
	{Name: "schoolsup", Description: "extra educational support from the school", Kind: KindBinary, Options: yesNo, Default: table.Str("yes")},
	{Name: "famsup", Description: "educational support from the family", Kind: KindBinary, Options: yesNo, Default: table.Str("yes")},
	{Name: "paid", Description: "extra paid classes in the course subject", Kind: KindBinary, Options: yesNo, Default: table.Str("yes")},
}

func init() {
	if err := Validate(); err != nil {
		panic(err)
	}
}
