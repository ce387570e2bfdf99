// Package catalog defines the product and category entities served by the API.
package catalog

import "time"

// Category is a label a product belongs to. A product embeds a value copy of
// its category at write time (denormalized snapshot); later category edits do
// not propagate to products that already reference it.
type Category struct {
	ID   string `json:"id,omitempty"   bson:"_id,omitempty"`
	Name string `json:"name"           bson:"name"`
}

// Product is the catalog entity persisted in the products collection.
// ID is store-assigned and absent on a not-yet-created instance. CreatedAt is
// set once at creation time and never recomputed on update. Photo holds the
// stored filename of an uploaded image and is absent until an upload occurs.
type Product struct {
	ID        string     `json:"id,omitempty"        bson:"_id,omitempty"`
	Name      string     `json:"name"                bson:"name"       validate:"required"`
	Price     float64    `json:"price"               bson:"price"      validate:"required,gte=0"`
	Category  Category   `json:"category"            bson:"category"`
	Photo     string     `json:"photo,omitempty"     bson:"photo,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}
