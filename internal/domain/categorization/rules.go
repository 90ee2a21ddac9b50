// Package categorization assigns spending categories to imported
// transaction descriptions using multi-pattern keyword matching with a
// fuzzy fallback for near-miss brand spellings.
package categorization

// Category names used across the importer. Statements are mostly
// Russian-language, so the visible names are too.
const (
	CategoryUncategorized = "Без категории"
	CategoryTransfers     = "Переводы"
	CategoryCafes         = "Кафе и рестораны"
	CategorySupermarkets  = "Супермаркеты"
	CategorySalary        = "Зарплата"
	CategoryTransport     = "Транспорт"
	CategoryShopping      = "Покупки"
)

// Rule maps a set of description keywords to a category. Rules are
// ordered: earlier rules win when several match, so brand-specific
// rules must come before generic ones.
type Rule struct {
	Keywords []string
	Category string
	// CleanName, when set, replaces the raw description as the
	// transaction title.
	CleanName string
}

// DefaultRules is the built-in rule table, most specific first.
func DefaultRules() []Rule {
	return []Rule{
		{Keywords: []string{"ozon", "озон"}, Category: CategoryShopping, CleanName: "Ozon"},
		{Keywords: []string{"wildberries", "вайлдберриз"}, Category: CategoryShopping, CleanName: "Wildberries"},
		{Keywords: []string{"яндекс такси", "yandex go", "ситимобил"}, Category: CategoryTransport},
		{Keywords: []string{"сбп", "перевод", "пополнение"}, Category: CategoryTransfers},
		{Keywords: []string{"зарплата", "аванс", "заработн"}, Category: CategorySalary},
		{Keywords: []string{"пятёрочка", "пятерочка", "магнит", "перекрёсток", "перекресток", "лента", "ашан", "дикси"}, Category: CategorySupermarkets},
		{Keywords: []string{"кафе", "ресторан", "кофейня", "бургер", "пицц", "суши", "шаурма", "столовая"}, Category: CategoryCafes},
		{Keywords: []string{"метро", "автобус", "троллейбус", "такси", "каршеринг", "азс", "заправка"}, Category: CategoryTransport},
		{Keywords: []string{"маркетплейс", "интернет-магазин"}, Category: CategoryShopping},
	}
}
