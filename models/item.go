package models

// Item is an inventory entry of the sample service.
type Item struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price,omitempty"`
}

// ItemSummary aggregates the whole inventory.
type ItemSummary struct {
	Count      int
	TotalValue float64
}
