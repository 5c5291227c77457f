package entity

import "time"

// Catalog enumerations. Stored as plain strings in Postgres and in the
// Elasticsearch index.
const (
	CategoryShirts      = "shirts"
	CategoryPants       = "pants"
	CategoryShoes       = "shoes"
	CategoryAccessories = "accessories"

	GenderMen    = "men"
	GenderWomen  = "women"
	GenderUnisex = "unisex"
)

// Categories lists every valid product category.
func Categories() []string {
	return []string{CategoryShirts, CategoryPants, CategoryShoes, CategoryAccessories}
}

// Genders lists every valid product gender.
func Genders() []string {
	return []string{GenderMen, GenderWomen, GenderUnisex}
}

// ImageAsset is one remotely stored image variant.
type ImageAsset struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// ImageSet holds the two derived variants of a product image. After any
// successful commit either both variants are populated or both are empty.
type ImageSet struct {
	Original  ImageAsset `json:"original"`
	Thumbnail ImageAsset `json:"thumbnail"`
}

// Empty reports whether no variant is set.
func (s ImageSet) Empty() bool {
	return s.Original.PublicID == "" && s.Thumbnail.PublicID == ""
}

// Product is the aggregate root for the catalog domain.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Gender      string    `json:"gender"`
	Price       float64   `json:"price"`
	Images      ImageSet  `json:"image_urls"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
