package models

// Category groups courses on the catalog pages. The Position field carries
// the manual display order.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Position  int    `json:"position"`
	CreatedAt int64  `json:"created_at"`
}

// Part is a level within a category (e.g. Foundation, Advanced). Parts are
// ordered manually within their category.
type Part struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Position   int    `json:"position"`
	CreatedAt  int64  `json:"created_at"`
}
