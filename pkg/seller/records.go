// Package seller binds the seller panel's list screens to the list query engine.
//
// Each record type carries its own status vocabulary and sort keys. Optional fields
// are pointers; a nil pointer is a missing value and sorts as the zero value.
package seller

import (
	"strconv"
	"time"
)

// Product statuses.
const (
	ProductActive  = "ACTIVE"
	ProductExpired = "EXPIRED"
	ProductPending = "PENDING"
)

// Order statuses.
const (
	OrderPending   = "PENDING"
	OrderAccepted  = "ACCEPTED"
	OrderRejected  = "REJECTED"
	OrderFulfilled = "FULFILLED"
	OrderDelivered = "DELIVERED"
)

// Inventory statuses, derived from stock and threshold.
const (
	InventoryInStock    = "IN_STOCK"
	InventoryLowStock   = "LOW_STOCK"
	InventoryOutOfStock = "OUT_OF_STOCK"
)

// Forecast risk levels.
const (
	ForecastHigh   = "HIGH"
	ForecastMedium = "MEDIUM"
	ForecastLow    = "LOW"
)

// Offer statuses, shared by OPAS offers and offer history.
const (
	OfferPending   = "PENDING"
	OfferApproved  = "APPROVED"
	OfferRejected  = "REJECTED"
	OfferCompleted = "COMPLETED"
)

// Sort keys used across screens.
const (
	SortNewest         = "NEWEST"
	SortPriceAsc       = "PRICE_ASC"
	SortPriceDesc      = "PRICE_DESC"
	SortStockLow       = "STOCK_LOW"
	SortDateDesc       = "DATE_DESC"
	SortDateAsc        = "DATE_ASC"
	SortAmountDesc     = "AMOUNT_DESC"
	SortAmountAsc      = "AMOUNT_ASC"
	SortConfidenceDesc = "CONFIDENCE_DESC"
	SortName           = "NAME"
)

// Product is a listing on the product screen.
type Product struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Category  string     `json:"category,omitempty" yaml:"category,omitempty"`
	Status    string     `json:"status,omitempty" yaml:"status,omitempty"`
	Price     *float64   `json:"price,omitempty" yaml:"price,omitempty"`
	Stock     *int       `json:"stock,omitempty" yaml:"stock,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Order is a buyer order on the orders screen.
type Order struct {
	ID          string     `json:"id" yaml:"id"`
	ProductName string     `json:"product_name" yaml:"product_name"`
	BuyerName   string     `json:"buyer_name,omitempty" yaml:"buyer_name,omitempty"`
	Status      string     `json:"status,omitempty" yaml:"status,omitempty"`
	Amount      *float64   `json:"amount,omitempty" yaml:"amount,omitempty"`
	Quantity    *int       `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// InventoryItem is a stock row on the inventory screen.
type InventoryItem struct {
	ID          string     `json:"id" yaml:"id"`
	ProductName string     `json:"product_name" yaml:"product_name"`
	Category    string     `json:"category,omitempty" yaml:"category,omitempty"`
	Stock       *int       `json:"stock,omitempty" yaml:"stock,omitempty"`
	Threshold   *int       `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// StockStatus derives the inventory status. Without a stock value there is no status.
// An item at or below its threshold is low; zero or less is out of stock.
func (i InventoryItem) StockStatus() (string, bool) {
	if i.Stock == nil {
		return "", false
	}
	switch {
	case *i.Stock <= 0:
		return InventoryOutOfStock, true
	case i.Threshold != nil && *i.Stock <= *i.Threshold:
		return InventoryLowStock, true
	default:
		return InventoryInStock, true
	}
}

// Forecast is a demand forecast row.
type Forecast struct {
	ID              string     `json:"id" yaml:"id"`
	ProductName     string     `json:"product_name" yaml:"product_name"`
	Category        string     `json:"category,omitempty" yaml:"category,omitempty"`
	Risk            string     `json:"risk,omitempty" yaml:"risk,omitempty"`
	Confidence      *float64   `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	PredictedDemand *float64   `json:"predicted_demand,omitempty" yaml:"predicted_demand,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Offer is an OPAS sell offer or an entry of the offer history.
type Offer struct {
	ID          string     `json:"id" yaml:"id"`
	ProductName string     `json:"product_name" yaml:"product_name"`
	Category    string     `json:"category,omitempty" yaml:"category,omitempty"`
	Status      string     `json:"status,omitempty" yaml:"status,omitempty"`
	Price       *float64   `json:"price,omitempty" yaml:"price,omitempty"`
	Quantity    *int       `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Row renders the product for table output.
func (p Product) Row() []string {
	return []string{formatText(p.ID), formatText(p.Name), formatText(p.Category), formatText(p.Status), formatFloat(p.Price), formatInt(p.Stock), formatTime(p.CreatedAt)}
}

// Row renders the order for table output.
func (o Order) Row() []string {
	return []string{formatText(o.ID), formatText(o.ProductName), formatText(o.BuyerName), formatText(o.Status), formatFloat(o.Amount), formatInt(o.Quantity), formatTime(o.CreatedAt)}
}

// Row renders the inventory item for table output.
func (i InventoryItem) Row() []string {
	status, _ := i.StockStatus()
	return []string{formatText(i.ID), formatText(i.ProductName), formatText(i.Category), formatText(status), formatInt(i.Stock), formatInt(i.Threshold), formatTime(i.UpdatedAt)}
}

// Row renders the forecast for table output.
func (f Forecast) Row() []string {
	return []string{formatText(f.ID), formatText(f.ProductName), formatText(f.Category), formatText(f.Risk), formatFloat(f.Confidence), formatFloat(f.PredictedDemand), formatTime(f.CreatedAt)}
}

// Row renders the offer for table output.
func (o Offer) Row() []string {
	return []string{formatText(o.ID), formatText(o.ProductName), formatText(o.Category), formatText(o.Status), formatFloat(o.Price), formatInt(o.Quantity), formatTime(o.CreatedAt)}
}

func formatText(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func formatTime(v *time.Time) string {
	if v == nil || v.IsZero() {
		return "-"
	}
	return v.UTC().Format(time.RFC3339)
}
