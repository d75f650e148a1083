package model

import (
	"encoding/json"
	"strings"
)

// Ownership classifies an item as owned or wished for.
type Ownership string

const (
	OwnershipUnset    Ownership = ""
	OwnershipOwn      Ownership = "own"
	OwnershipWishlist Ownership = "wishlist"
)

// Valid reports whether o is one of the assignable values.
func (o Ownership) Valid() bool {
	return o == OwnershipOwn || o == OwnershipWishlist
}

// ParseOwnership normalizes user input into an Ownership.
func ParseOwnership(s string) Ownership {
	return Ownership(strings.ToLower(strings.TrimSpace(s)))
}

// Item is a saved product reference. Metadata is scraped server-side.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"image_url,omitempty"`
	Price       string    `json:"price,omitempty"`
	SourceURL   string    `json:"source"`
	SiteName    string    `json:"site_name,omitempty"`
	SiteIconURL string    `json:"site_icon_url,omitempty"`
	Ownership   Ownership `json:"ownership,omitempty"`
	Category    string    `json:"category,omitempty"`
	Subcategory string    `json:"subcategory,omitempty"`
}

// UnmarshalJSON accepts the legacy "_id" key when "id" is absent.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var aux struct {
		plain
		LegacyID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = Item(aux.plain)
	if i.ID == "" {
		i.ID = aux.LegacyID
	}
	return nil
}

// DisplayPrice returns the price or the placeholder shown when scraping found none.
func (i Item) DisplayPrice() string {
	if strings.TrimSpace(i.Price) == "" {
		return "Price unavailable"
	}
	return i.Price
}

// ShareText is the message used when sharing an item.
func (i Item) ShareText() string {
	return i.Title + "\n" + i.SourceURL
}

// Categorization is the user's ownership/category choice for one item.
type Categorization struct {
	Ownership   Ownership `json:"ownership"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
}

// CategoryAssignment is the body of POST /items/assign-category/.
type CategoryAssignment struct {
	ItemID      string    `json:"item_id"`
	Ownership   Ownership `json:"ownership"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	UserID      string    `json:"users_id"`
}
