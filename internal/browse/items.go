package browse

import "strings"

// Item is one selectable iftar food.
type Item struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

const ItemOthers = "others"

var Items = []Item{
	{Key: "kacchibiriyani", Label: "Kacchi Biriyani"},
	{Key: "tehari", Label: "Tehari"},
	{Key: "morogpolao", Label: "Morog Polao"},
	{Key: "gorurmangso", Label: "Gorur Mangso"},
	{Key: "budmuri", Label: "Bud Muri"},
	{Key: "chickenbiriyani", Label: "Chicken Biriyani"},
	{Key: "khasirbiriyani", Label: "Mixed Food"},
	{Key: "misro", Label: "Misro"},
	{Key: ItemOthers, Label: "Others"},
}

// keys with a dedicated image under /Items/.
var itemsWithImage = map[string]struct{}{
	"kacchibiriyani":  {},
	"tehari":          {},
	"morogpolao":      {},
	"gorurmangso":     {},
	"budmuri":         {},
	"chickenbiriyani": {},
	"khasirbiriyani":  {},
	"misro":           {},
}

const fallbackItemImage = "/Items/misro.png"

// ItemLabel returns the display label for key, or key itself for custom items.
func ItemLabel(key string) string {
	for _, item := range Items {
		if item.Key == key {
			return item.Label
		}
	}
	return key
}

// ItemImage returns the image path for key.
func ItemImage(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return fallbackItemImage
	}
	if _, ok := itemsWithImage[key]; ok {
		return "/Items/" + key + ".png"
	}
	return fallbackItemImage
}

// FilterableItems lists the catalog without the free-form "others" entry.
func FilterableItems() []Item {
	out := make([]Item, 0, len(Items))
	for _, item := range Items {
		if item.Key == ItemOthers {
			continue
		}
		out = append(out, item)
	}
	return out
}

// CustomItemKey derives a key for a free-form item name: lower case with all
// whitespace removed.
func CustomItemKey(text string) string {
	key := strings.Join(strings.Fields(strings.ToLower(text)), "")
	if key == "" {
		return ItemOthers
	}
	return key
}
