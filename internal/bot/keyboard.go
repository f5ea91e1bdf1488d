package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/akarpov/teleshop/internal/shop"
)

func menuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Каталог", "catalog"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Корзина", "cart"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("FAQ", "faq"),
		),
	)
}

func subscriptionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Проверить подписку", "check_subscription"),
		),
	)
}

// paginationRow builds the prev/next row for offset pagination. Only the
// existing directions get buttons.
func paginationRow(page int, hasNext bool, action func(page int) string) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if page > 1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", action(page-1)))
	}
	if hasNext {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Вперед ➡️", action(page+1)))
	}
	return row
}

func categoriesKeyboard(categories []shop.Category, page int, hasNext bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, category := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(category.Title, categoryAction(category.ID, 1)),
		))
	}
	if row := paginationRow(page, hasNext, catalogAction); row != nil {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Меню", "menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func subcategoriesKeyboard(categoryID uint, subcategories []shop.Subcategory, page int, hasNext bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, subcategory := range subcategories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(subcategory.Title, subcategoryAction(subcategory.ID, 1)),
		))
	}
	if row := paginationRow(page, hasNext, func(p int) string { return categoryAction(categoryID, p) }); row != nil {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ К категориям", "catalog"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productsKeyboard(subcategoryID uint, products []shop.Product, page int, hasNext bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, product := range products {
		label := fmt.Sprintf("%s — %s ₽", product.Title, product.Price.StringFixed(2))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, productAction(product.ID)),
		))
	}
	if row := paginationRow(page, hasNext, func(p int) string { return subcategoryAction(subcategoryID, p) }); row != nil {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ К каталогу", "catalog"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// productKeyboard renders the quantity controls for a product card. The
// quantity stays within [1, stock].
func productKeyboard(product *shop.Product, qty uint) tgbotapi.InlineKeyboardMarkup {
	decQty := qty
	if decQty > 1 {
		decQty--
	}
	incQty := qty
	if incQty < product.Stock {
		incQty++
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", qtyAction(product.ID, decQty)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d шт.", qty), qtyAction(product.ID, qty)),
			tgbotapi.NewInlineKeyboardButtonData("➕", qtyAction(product.ID, incQty)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Добавить в корзину", addAction(product.ID, qty)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ К каталогу", "catalog"),
		),
	)
}

func cartKeyboard(items []shop.CartItem) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, item := range items {
		label := fmt.Sprintf("❌ %s x%d", item.Product.Title, item.Quantity)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cartRemoveAction(item.ID)),
		))
	}
	if len(items) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Оформить заказ", "checkout"),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Меню", "menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить заказ", "confirm"),
		),
	)
}

func paymentKeyboard(url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💳 Оплатить заказ", url),
		),
	)
}
