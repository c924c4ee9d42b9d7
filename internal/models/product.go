package models

// Product is a catalog entry. Price is in display major units and may be 0
// for promotional items that are never charged.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Category string  `json:"category,omitempty"`
}

// IsFree reports whether the product is given away rather than sold
func (p Product) IsFree() bool {
	return p.Price <= 0
}

// Snapshot copies the catalog fields a cart line keeps at add time
func (p Product) Snapshot(quantity int) LineItem {
	return LineItem{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	}
}
