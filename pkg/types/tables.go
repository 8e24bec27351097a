package types

// Standard table names for Catalog.GetTable.
const (
	TableArticles = "articles"
	TableLessons  = "lessons"
	TableProducts = "products"
	TableCarts    = "carts"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableArticles,
	TableLessons,
	TableProducts,
	TableCarts,
}
