package seller

import (
	"time"

	"github.com/agripanel/listquery/pkg/listquery"
)

func text[T any](get func(T) string) listquery.TextField[T] {
	return func(r T) (string, bool) {
		v := get(r)
		return v, v != ""
	}
}

func float[T any](get func(T) *float64) listquery.NumberField[T] {
	return func(r T) (float64, bool) {
		if v := get(r); v != nil {
			return *v, true
		}
		return 0, false
	}
}

func integer[T any](get func(T) *int) listquery.NumberField[T] {
	return func(r T) (float64, bool) {
		if v := get(r); v != nil {
			return float64(*v), true
		}
		return 0, false
	}
}

func timestamp[T any](get func(T) *time.Time) listquery.TimeField[T] {
	return func(r T) (time.Time, bool) {
		if v := get(r); v != nil {
			return *v, true
		}
		return time.Time{}, false
	}
}

// ProductSchema binds the product screen.
func ProductSchema() listquery.Schema[Product] {
	name := text(func(p Product) string { return p.Name })
	price := float(func(p Product) *float64 { return p.Price })
	return listquery.Schema[Product]{
		Name:         "products",
		Status:       text(func(p Product) string { return p.Status }),
		Statuses:     []string{ProductActive, ProductExpired, ProductPending},
		SearchFields: []listquery.TextField[Product]{name, text(func(p Product) string { return p.Category })},
		Sorts: []listquery.SortOption[Product]{
			{Key: SortNewest, Compare: listquery.Newest(timestamp(func(p Product) *time.Time { return p.CreatedAt }))},
			{Key: SortPriceAsc, Compare: listquery.Ascending(price)},
			{Key: SortPriceDesc, Compare: listquery.Descending(price)},
			{Key: SortStockLow, Compare: listquery.Ascending(integer(func(p Product) *int { return p.Stock }))},
			{Key: SortName, Compare: listquery.Lexical(name)},
		},
		DefaultSort: SortNewest,
	}
}

// OrderSchema binds the orders screen.
func OrderSchema() listquery.Schema[Order] {
	product := text(func(o Order) string { return o.ProductName })
	created := timestamp(func(o Order) *time.Time { return o.CreatedAt })
	amount := float(func(o Order) *float64 { return o.Amount })
	return listquery.Schema[Order]{
		Name:     "orders",
		Status:   text(func(o Order) string { return o.Status }),
		Statuses: []string{OrderPending, OrderAccepted, OrderRejected, OrderFulfilled, OrderDelivered},
		SearchFields: []listquery.TextField[Order]{
			product,
			text(func(o Order) string { return o.BuyerName }),
		},
		Sorts: []listquery.SortOption[Order]{
			{Key: SortDateDesc, Compare: listquery.Newest(created)},
			{Key: SortDateAsc, Compare: listquery.Oldest(created)},
			{Key: SortAmountDesc, Compare: listquery.Descending(amount)},
			{Key: SortAmountAsc, Compare: listquery.Ascending(amount)},
			{Key: SortName, Compare: listquery.Lexical(product)},
		},
		DefaultSort: SortDateDesc,
	}
}

// InventorySchema binds the inventory screen. Status is derived, not stored.
func InventorySchema() listquery.Schema[InventoryItem] {
	product := text(func(i InventoryItem) string { return i.ProductName })
	return listquery.Schema[InventoryItem]{
		Name:     "inventory",
		Status:   InventoryItem.StockStatus,
		Statuses: []string{InventoryInStock, InventoryLowStock, InventoryOutOfStock},
		SearchFields: []listquery.TextField[InventoryItem]{
			product,
			text(func(i InventoryItem) string { return i.Category }),
		},
		Sorts: []listquery.SortOption[InventoryItem]{
			{Key: SortStockLow, Compare: listquery.Ascending(integer(func(i InventoryItem) *int { return i.Stock }))},
			{Key: SortName, Compare: listquery.Lexical(product)},
			{Key: SortNewest, Compare: listquery.Newest(timestamp(func(i InventoryItem) *time.Time { return i.UpdatedAt }))},
		},
		DefaultSort: SortStockLow,
	}
}

// ForecastSchema binds the forecast screen. The filter chips are risk levels.
func ForecastSchema() listquery.Schema[Forecast] {
	product := text(func(f Forecast) string { return f.ProductName })
	return listquery.Schema[Forecast]{
		Name:     "forecasts",
		Status:   text(func(f Forecast) string { return f.Risk }),
		Statuses: []string{ForecastHigh, ForecastMedium, ForecastLow},
		SearchFields: []listquery.TextField[Forecast]{
			product,
			text(func(f Forecast) string { return f.Category }),
		},
		Sorts: []listquery.SortOption[Forecast]{
			{Key: SortConfidenceDesc, Compare: listquery.Descending(float(func(f Forecast) *float64 { return f.Confidence }))},
			{Key: SortNewest, Compare: listquery.Newest(timestamp(func(f Forecast) *time.Time { return f.CreatedAt }))},
			{Key: SortName, Compare: listquery.Lexical(product)},
		},
		DefaultSort: SortConfidenceDesc,
	}
}

// OfferSchema binds the OPAS offers and offer history screens.
func OfferSchema() listquery.Schema[Offer] {
	product := text(func(o Offer) string { return o.ProductName })
	created := timestamp(func(o Offer) *time.Time { return o.CreatedAt })
	price := float(func(o Offer) *float64 { return o.Price })
	return listquery.Schema[Offer]{
		Name:     "offers",
		Status:   text(func(o Offer) string { return o.Status }),
		Statuses: []string{OfferPending, OfferApproved, OfferRejected, OfferCompleted},
		SearchFields: []listquery.TextField[Offer]{
			product,
			text(func(o Offer) string { return o.Category }),
		},
		Sorts: []listquery.SortOption[Offer]{
			{Key: SortDateDesc, Compare: listquery.Newest(created)},
			{Key: SortDateAsc, Compare: listquery.Oldest(created)},
			{Key: SortPriceDesc, Compare: listquery.Descending(price)},
			{Key: SortPriceAsc, Compare: listquery.Ascending(price)},
			{Key: SortName, Compare: listquery.Lexical(product)},
		},
		DefaultSort: SortDateDesc,
	}
}
