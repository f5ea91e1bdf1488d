package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/akarpov/teleshop/internal/checkout"
	"github.com/akarpov/teleshop/internal/shop"
)

const (
	msgGenericError = "Произошла ошибка, попробуйте позже."
	msgChooseMenu   = "Выберите раздел:"
	msgCatalogTitle = "📚 Каталог товаров:\n\nВыберите категорию:"
	msgEmptyCart    = "🛒 Корзина пуста."
	msgNoImage      = "Изображение товара отсутствует."
	msgFAQ          = "ℹ️ Это магазин в Telegram.\n\nВыберите товары в каталоге, добавьте их в корзину и оформите заказ. После подтверждения вы получите ссылку на оплату."
	msgNotInStock   = "Товара недостаточно на складе."
	msgOutOfStock   = "Товара нет в наличии."
	msgOrderCreated = "✅ Заказ оформлен! Оплатите его по ссылке ниже."
)

type Handler struct {
	api         *tgbotapi.BotAPI
	shop        shop.ShopService
	workflow    *checkout.Workflow
	log         *logrus.Entry
	channelID   string
	channelName string
}

func NewHandler(api *tgbotapi.BotAPI, shopService shop.ShopService, workflow *checkout.Workflow,
	channelID, channelName string, log *logrus.Entry) *Handler {
	return &Handler{
		api:         api,
		shop:        shopService,
		workflow:    workflow,
		log:         log,
		channelID:   channelID,
		channelName: channelName,
	}
}

func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		h.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		h.handleCallback(update.CallbackQuery)
	}
}

func (h *Handler) handleMessage(message *tgbotapi.Message) {
	if message.IsCommand() {
		if message.Command() == "start" {
			h.handleStart(message)
		}
		return
	}

	userID := message.From.ID
	if !h.workflow.Active(userID) {
		return
	}

	reply, state, err := h.workflow.HandleInput(userID, message.Text)
	if err != nil {
		h.log.Errorf("handleMessage: workflow input failed for user %d - %v", userID, err)
		h.sendText(message.Chat.ID, msgGenericError)
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, reply)
	if state == checkout.StateAwaitingConfirmation {
		msg.ReplyMarkup = confirmKeyboard()
	}
	h.send(msg)
}

func (h *Handler) handleStart(message *tgbotapi.Message) {
	from := message.From
	if _, err := h.shop.RegisterUser(from.ID, from.UserName, from.FirstName, from.LastName); err != nil {
		h.log.Errorf("handleStart: failed to register user %d - %v", from.ID, err)
		h.sendText(message.Chat.ID, msgGenericError)
		return
	}
	if _, err := h.shop.GetOrCreateCart(from.ID); err != nil {
		h.log.Errorf("handleStart: failed to create cart for user %d - %v", from.ID, err)
		h.sendText(message.Chat.ID, msgGenericError)
		return
	}

	if !h.isSubscribed(from.ID) {
		msg := tgbotapi.NewMessage(message.Chat.ID, h.subscriptionMessage())
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = subscriptionKeyboard()
		h.send(msg)
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, msgChooseMenu)
	msg.ReplyMarkup = menuKeyboard()
	h.send(msg)
}

func (h *Handler) handleCallback(callback *tgbotapi.CallbackQuery) {
	action, err := ParseAction(callback.Data)
	if err != nil {
		h.log.Warnf("handleCallback: rejected callback %q from user %d", callback.Data, callback.From.ID)
		h.answer(callback, "")
		return
	}

	switch action.Kind {
	case KindMenu:
		h.editText(callback, msgChooseMenu, menuKeyboard())
	case KindCatalog:
		h.showCatalog(callback, action.Page)
	case KindCategory:
		h.showSubcategories(callback, action.ID, action.Page)
	case KindSubcategory:
		h.showProducts(callback, action.ID, action.Page)
	case KindProduct:
		h.showProduct(callback, action.ID, 1)
	case KindQty:
		h.showProductQty(callback, action.ID, action.Qty)
	case KindAddToCart:
		h.addToCart(callback, action.ID, action.Qty)
	case KindCart:
		h.showCart(callback)
	case KindCartRemove:
		h.removeCartItem(callback, action.ID)
	case KindCheckout:
		h.startCheckout(callback)
	case KindConfirm:
		h.confirmCheckout(callback)
	case KindCheckSubscription:
		// answers the callback itself, possibly with an alert
		h.checkSubscription(callback)
		return
	case KindFAQ:
		h.editText(callback, msgFAQ, menuKeyboard())
	}
	h.answer(callback, "")
}

func (h *Handler) showCatalog(callback *tgbotapi.CallbackQuery, page int) {
	categories, hasNext, err := h.shop.CategoriesPage(page)
	if err != nil {
		h.log.Errorf("showCatalog: %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}
	h.editText(callback, msgCatalogTitle, categoriesKeyboard(categories, page, hasNext))
}

func (h *Handler) showSubcategories(callback *tgbotapi.CallbackQuery, categoryID uint, page int) {
	subcategories, hasNext, err := h.shop.SubcategoriesPage(categoryID, page)
	if err != nil {
		h.log.Errorf("showSubcategories: %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}
	h.editText(callback, "Выберите подкатегорию:", subcategoriesKeyboard(categoryID, subcategories, page, hasNext))
}

func (h *Handler) showProducts(callback *tgbotapi.CallbackQuery, subcategoryID uint, page int) {
	products, hasNext, err := h.shop.ProductsPage(subcategoryID, page)
	if err != nil {
		h.log.Errorf("showProducts: %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}
	h.editText(callback, "Выберите товар:", productsKeyboard(subcategoryID, products, page, hasNext))
}

func (h *Handler) showProduct(callback *tgbotapi.CallbackQuery, productID, qty uint) {
	product, err := h.shop.GetProductByID(productID)
	if err != nil {
		h.log.Errorf("showProduct: %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}

	caption := fmt.Sprintf("<b>%s</b>\n\n%s\n\nЦена: %s ₽\nВ наличии: %d шт.",
		product.Title, product.Description, product.Price.StringFixed(2), product.Stock)

	if product.Stock == 0 {
		h.sendText(callback.Message.Chat.ID, msgOutOfStock)
		return
	}

	if product.Image != "" {
		photo := tgbotapi.NewPhoto(callback.Message.Chat.ID, tgbotapi.FileURL(product.Image))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = productKeyboard(product, qty)
		h.send(photo)
		return
	}

	msg := tgbotapi.NewMessage(callback.Message.Chat.ID, caption+"\n\n"+msgNoImage)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = productKeyboard(product, qty)
	h.send(msg)
}

func (h *Handler) showProductQty(callback *tgbotapi.CallbackQuery, productID, qty uint) {
	product, err := h.shop.GetProductByID(productID)
	if err != nil {
		h.log.Errorf("showProductQty: %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}

	// a sold-out product would otherwise render a keyboard with zero
	// quantities that no callback token accepts
	if product.Stock == 0 {
		h.sendText(callback.Message.Chat.ID, msgOutOfStock)
		return
	}

	if qty < 1 {
		qty = 1
	}
	if qty > product.Stock {
		qty = product.Stock
	}

	markup := productKeyboard(product, qty)
	edit := tgbotapi.NewEditMessageReplyMarkup(callback.Message.Chat.ID, callback.Message.MessageID, markup)
	h.send(edit)
}

func (h *Handler) addToCart(callback *tgbotapi.CallbackQuery, productID, qty uint) {
	product, err := h.shop.GetProductByID(productID)
	if err != nil {
		h.log.Errorf("addToCart: %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}

	// the stock bound is enforced here, at interaction time
	if qty > product.Stock {
		h.sendText(callback.Message.Chat.ID, msgNotInStock)
		return
	}

	cart, err := h.shop.GetOrCreateCart(callback.From.ID)
	if err != nil {
		h.log.Errorf("addToCart: failed to get cart for user %d - %v", callback.From.ID, err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}

	if err := h.shop.UpsertCartItem(cart.ID, productID, qty); err != nil {
		h.log.Errorf("addToCart: failed to upsert item - %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}

	h.sendText(callback.Message.Chat.ID, fmt.Sprintf("✅ %s x%d добавлен в корзину.", product.Title, qty))
}

func (h *Handler) showCart(callback *tgbotapi.CallbackQuery) {
	items, err := h.cartItemsFor(callback.From.ID)
	if err != nil {
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}

	if len(items) == 0 {
		h.editText(callback, msgEmptyCart, menuKeyboard())
		return
	}

	var sb strings.Builder
	sb.WriteString("🛒 Ваша корзина:\n\n")
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%s — %s ₽ x%d\n",
			item.Product.Title, item.Product.Price.StringFixed(2), item.Quantity))
	}
	sb.WriteString(fmt.Sprintf("\nИтого: %s ₽", h.shop.CartTotal(items).StringFixed(2)))

	h.editText(callback, sb.String(), cartKeyboard(items))
}

func (h *Handler) removeCartItem(callback *tgbotapi.CallbackQuery, itemID uint) {
	if err := h.shop.RemoveCartItem(itemID); err != nil {
		h.log.Errorf("removeCartItem: %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}
	h.showCart(callback)
}

func (h *Handler) startCheckout(callback *tgbotapi.CallbackQuery) {
	user, err := h.shop.GetUserByTelegramID(callback.From.ID)
	if err != nil {
		h.log.Errorf("startCheckout: %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}

	cart, err := h.shop.GetOrCreateCart(callback.From.ID)
	if err != nil {
		h.log.Errorf("startCheckout: failed to get cart - %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}

	items, err := h.shop.CartItems(cart.ID)
	if err != nil {
		h.log.Errorf("startCheckout: failed to list items - %v", err)
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}
	if len(items) == 0 {
		h.sendText(callback.Message.Chat.ID, msgEmptyCart)
		return
	}

	total := h.shop.CartTotal(items)
	prompt, err := h.workflow.Start(callback.From.ID, user.ID, cart.ID, total)
	if err != nil {
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}
	h.sendText(callback.Message.Chat.ID, prompt)
}

func (h *Handler) confirmCheckout(callback *tgbotapi.CallbackQuery) {
	url, err := h.workflow.Confirm(callback.From.ID)
	if err != nil {
		if err == checkout.ErrNotConfirmable {
			h.answer(callback, "Нет заказа, ожидающего подтверждения.")
			return
		}
		h.sendText(callback.Message.Chat.ID, msgGenericError)
		return
	}

	msg := tgbotapi.NewMessage(callback.Message.Chat.ID, msgOrderCreated)
	msg.ReplyMarkup = paymentKeyboard(url)
	h.send(msg)
}

func (h *Handler) checkSubscription(callback *tgbotapi.CallbackQuery) {
	if h.isSubscribed(callback.From.ID) {
		h.answer(callback, "")
		edit := tgbotapi.NewEditMessageText(callback.Message.Chat.ID, callback.Message.MessageID,
			"✅ Спасибо за подписку! Теперь вам доступен бот.")
		h.send(edit)
		msg := tgbotapi.NewMessage(callback.Message.Chat.ID, msgChooseMenu)
		msg.ReplyMarkup = menuKeyboard()
		h.send(msg)
		return
	}
	h.answerAlert(callback, "Вы ещё не подписались на канал!")
}

// NotifyPaid tells the user their payment went through. Called from the
// payment webhook.
func (h *Handler) NotifyPaid(telegramID int64, orderID uint) {
	h.sendText(telegramID, fmt.Sprintf("💰 Оплата заказа №%d получена. Заказ передан в обработку.", orderID))
}

func (h *Handler) cartItemsFor(telegramID int64) ([]shop.CartItem, error) {
	cart, err := h.shop.GetOrCreateCart(telegramID)
	if err != nil {
		h.log.Errorf("cartItemsFor: failed to get cart for user %d - %v", telegramID, err)
		return nil, err
	}
	items, err := h.shop.CartItems(cart.ID)
	if err != nil {
		h.log.Errorf("cartItemsFor: failed to list items - %v", err)
		return nil, err
	}
	return items, nil
}

func (h *Handler) isSubscribed(userID int64) bool {
	if h.channelID == "" {
		return true
	}

	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID},
	}
	if chatID, err := strconv.ParseInt(h.channelID, 10, 64); err == nil {
		cfg.ChatID = chatID
	} else {
		cfg.SuperGroupUsername = h.channelID
	}

	member, err := h.api.GetChatMember(cfg)
	if err != nil {
		h.log.Errorf("isSubscribed: failed to check subscription for user %d - %v", userID, err)
		return false
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true
	default:
		return false
	}
}

func (h *Handler) subscriptionMessage() string {
	return fmt.Sprintf(
		"⚠️ Для доступа к боту подпишитесь на канал: <a href=\"https://t.me/%s\">наш канал</a>\n\n"+
			"После подписки нажмите «Проверить подписку».", h.channelName)
}

func (h *Handler) editText(callback *tgbotapi.CallbackQuery, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(callback.Message.Chat.ID, callback.Message.MessageID, text, markup)
	if _, err := h.api.Send(edit); err != nil {
		// the previous message may be a photo card that cannot be edited
		msg := tgbotapi.NewMessage(callback.Message.Chat.ID, text)
		msg.ReplyMarkup = markup
		h.send(msg)
	}
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.api.Send(c); err != nil {
		h.log.Errorf("send: %v", err)
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) answer(callback *tgbotapi.CallbackQuery, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(callback.ID, text)); err != nil {
		h.log.Errorf("answer: %v", err)
	}
}

func (h *Handler) answerAlert(callback *tgbotapi.CallbackQuery, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallbackWithAlert(callback.ID, text)); err != nil {
		h.log.Errorf("answerAlert: %v", err)
	}
}
