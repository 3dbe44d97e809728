package inventory

import (
	"strings"

	"gorm.io/gorm"
)

// DefaultSort is applied when no sort key, or an unknown one, is requested.
const DefaultSort = "name"

// sortColumns whitelists the sort keys accepted from clients; nothing else reaches ORDER BY.
var sortColumns = map[string]string{
	"id":         "product.id",
	"name":       "product.name",
	"price":      "product.price",
	"quantity":   "product.quantity",
	"category":   "category.name",
	"created_at": "product.created_at",
	"updated_at": "product.updated_at",
}

// SortKeys lists the accepted sort keys (without the descending prefix).
func SortKeys() []string {
	return []string{"name", "price", "quantity", "category", "id", "created_at", "updated_at"}
}

// Ordering is a resolved, whitelisted sort order.
type Ordering struct {
	Key    string
	Column string
	Desc   bool
}

// String renders the ordering back in request form, e.g. "-price".
func (o Ordering) String() string {
	if o.Desc {
		return "-" + o.Key
	}
	return o.Key
}

// Clause renders the ORDER BY expression. product.id breaks ties so paging is stable.
func (o Ordering) Clause() string {
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	if o.Column == "product.id" {
		return o.Column + " " + dir
	}
	return o.Column + " " + dir + ", product.id ASC"
}

// ResolveSort maps a requested sort key ("price", "-price") to an Ordering.
// Unknown keys resolve to DefaultSort and ok is false.
func ResolveSort(sort string) (ord Ordering, ok bool) {
	key := strings.ToLower(strings.TrimSpace(sort))
	desc := strings.HasPrefix(key, "-")
	key = strings.TrimPrefix(key, "-")
	if col, found := sortColumns[key]; found {
		return Ordering{Key: key, Column: col, Desc: desc}, true
	}
	return Ordering{Key: DefaultSort, Column: sortColumns[DefaultSort]}, key == ""
}

// ProductQuery holds the list filters accepted from the product list endpoint.
type ProductQuery struct {
	Search string `json:"search"`
	Sort   string `json:"sort"`
}

// Normalize trims the search term and rewrites Sort to its resolved form.
func (q ProductQuery) Normalize() ProductQuery {
	ord, _ := ResolveSort(q.Sort)
	return ProductQuery{
		Search: strings.TrimSpace(q.Search),
		Sort:   ord.String(),
	}
}

// Filter restricts db to the products matching the search term.
// The category table is joined so that the category sort key can be used.
func (q ProductQuery) Filter(db *gorm.DB) *gorm.DB {
	db = db.Joins("JOIN category ON category.id = product.category_id")
	search := strings.TrimSpace(q.Search)
	if search == "" {
		return db
	}
	pattern := "%" + escapeLike(search) + "%"
	if strings.EqualFold(db.Dialector.Name(), "postgres") {
		return db.Where("product.name ILIKE ? ESCAPE '\\'", pattern)
	}
	// sqlite LOWER folds ASCII only; non-ASCII letters match case-sensitively
	return db.Where("LOWER(product.name) LIKE LOWER(?) ESCAPE '\\'", pattern)
}

// Apply filters and orders db.
func (q ProductQuery) Apply(db *gorm.DB) *gorm.DB {
	ord, _ := ResolveSort(q.Sort)
	return q.Filter(db).Order(ord.Clause())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
