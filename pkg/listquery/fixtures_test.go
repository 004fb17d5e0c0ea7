package listquery

import "time"

type produce struct {
	Seq      int
	Name     string
	Category string
	Status   *string
	Price    *float64
	Stock    int
	Created  time.Time
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func produceSchema() Schema[produce] {
	name := func(p produce) (string, bool) { return p.Name, true }
	price := func(p produce) (float64, bool) {
		if p.Price == nil {
			return 0, false
		}
		return *p.Price, true
	}
	return Schema[produce]{
		Name: "products",
		Status: func(p produce) (string, bool) {
			if p.Status == nil {
				return "", false
			}
			return *p.Status, true
		},
		Statuses: []string{"ACTIVE", "EXPIRED", "PENDING"},
		SearchFields: []TextField[produce]{
			name,
			func(p produce) (string, bool) { return p.Category, p.Category != "" },
		},
		Sorts: []SortOption[produce]{
			{Key: "NEWEST", Compare: Newest(func(p produce) (time.Time, bool) { return p.Created, !p.Created.IsZero() })},
			{Key: "PRICE_ASC", Compare: Ascending(price)},
			{Key: "PRICE_DESC", Compare: Descending(price)},
			{Key: "STOCK_LOW", Compare: Ascending(func(p produce) (float64, bool) { return float64(p.Stock), true })},
			{Key: "NAME", Compare: Lexical(name)},
		},
		DefaultSort: "NEWEST",
	}
}

func scenarioRecords() []produce {
	return []produce{
		{Seq: 0, Name: "Tomato", Status: strPtr("ACTIVE"), Price: floatPtr(10), Stock: 5},
		{Seq: 1, Name: "Onion", Status: strPtr("EXPIRED"), Price: floatPtr(5), Stock: 20},
		{Seq: 2, Name: "Pepper", Status: strPtr("ACTIVE"), Price: floatPtr(20), Stock: 2},
	}
}

func names(records []produce) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}
