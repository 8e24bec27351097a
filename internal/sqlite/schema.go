package sqlite

// Schema DDL for all tables. JSON-shaped fields (localized text, related
// article references) are stored as TEXT and listed in jsonColumns.
const (
	createArticles = `CREATE TABLE articles (
    article_id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    localized TEXT,
    created_at TEXT
);`

	createLessons = `CREATE TABLE lessons (
    lesson_id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    video_url TEXT,
    related_articles TEXT,
    locked INTEGER NOT NULL DEFAULT 0,
    localized TEXT,
    created_at TEXT
);`

	createProducts = `CREATE TABLE products (
    product_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    category TEXT,
    price TEXT NOT NULL,
    image_url TEXT,
    created_at TEXT
);`

	createCarts = `CREATE TABLE carts (
    cart_id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createCartLines = `CREATE TABLE cart_lines (
    cart_id TEXT NOT NULL,
    product_id INTEGER NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity >= 1),
    position INTEGER NOT NULL,
    PRIMARY KEY (cart_id, product_id),
    FOREIGN KEY (cart_id) REFERENCES carts(cart_id)
);`
)

// Index DDL for common queries.
const (
	idxLessonsLocked    = `CREATE INDEX idx_lessons_locked ON lessons(locked);`
	idxProductsCategory = `CREATE INDEX idx_products_category ON products(category COLLATE NOCASE);`
	idxCartLinesCart    = `CREATE INDEX idx_cart_lines_cart ON cart_lines(cart_id, position);`
	idxCartLinesProduct = `CREATE INDEX idx_cart_lines_product ON cart_lines(product_id);`
	idxCartsCreatedAt   = `CREATE INDEX idx_carts_created_at ON carts(created_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createArticles,
	createLessons,
	createProducts,
	createCarts,
	createCartLines,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxLessonsLocked,
	idxProductsCategory,
	idxCartLinesCart,
	idxCartLinesProduct,
	idxCartsCreatedAt,
}
