package domain

// CartItem snapshots the unit price at add time; later catalog changes do not
// reprice lines already in the cart.
type CartItem struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Image     string `json:"image"`
}

// Cart holds at most one line per product.
type Cart struct {
	Items []CartItem `json:"items"`
}

func (c *Cart) index(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add increments the line for p, or appends a new one priced at the
// product's effective price.
func (c *Cart) Add(p Product) {
	if i := c.index(p.ID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	c.Items = append(c.Items, CartItem{
		ProductID: p.ID,
		Quantity:  1,
		Price:     p.EffectivePrice(),
		Name:      p.Name,
		Brand:     p.Brand,
		Image:     p.Image,
	})
}

func (c *Cart) Remove(productID string) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// SetQuantity overwrites the quantity of an existing line. Zero removes the
// line; negative quantities are ignored. It reports whether the cart changed.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	if quantity < 0 {
		return false
	}
	i := c.index(productID)
	if i < 0 {
		return false
	}
	if quantity == 0 {
		c.Remove(productID)
		return true
	}
	c.Items[i].Quantity = quantity
	return true
}

func (c *Cart) ItemQuantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

func (c *Cart) TotalItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() int64 {
	var sum int64
	for _, it := range c.Items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// OrderItems converts the cart lines into order lines.
func (c *Cart) OrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return items
}

// Normalize merges duplicate product lines and drops lines with a
// non-positive quantity. Used on snapshots supplied by clients.
func (c *Cart) Normalize() {
	merged := make([]CartItem, 0, len(c.Items))
	pos := make(map[string]int, len(c.Items))
	for _, it := range c.Items {
		if it.Quantity <= 0 || it.ProductID == "" {
			continue
		}
		if i, ok := pos[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		pos[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	c.Items = merged
}
