package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errMalformedAction = errors.New("malformed callback action")

type ActionKind int

const (
	KindMenu ActionKind = iota
	KindCatalog
	KindCategory
	KindSubcategory
	KindProduct
	KindQty
	KindAddToCart
	KindCart
	KindCartRemove
	KindCheckout
	KindConfirm
	KindCheckSubscription
	KindFAQ
)

// Action is a callback token parsed into a tagged value at the transport
// boundary. Callback data is attacker controllable, so everything numeric
// is validated here and nothing string-keyed leaks into the handlers.
type Action struct {
	Kind ActionKind
	ID   uint
	Page int
	Qty  uint
}

func ParseAction(data string) (Action, error) {
	parts := strings.Split(data, "_")

	switch parts[0] {
	case "menu":
		return simple(KindMenu, parts)
	case "cart":
		return simple(KindCart, parts)
	case "checkout":
		return simple(KindCheckout, parts)
	case "confirm":
		return simple(KindConfirm, parts)
	case "faq":
		return simple(KindFAQ, parts)
	case "check":
		// "check_subscription"
		if len(parts) != 2 || parts[1] != "subscription" {
			return Action{}, errMalformedAction
		}
		return Action{Kind: KindCheckSubscription}, nil
	case "catalog":
		switch len(parts) {
		case 1:
			return Action{Kind: KindCatalog, Page: 1}, nil
		case 2:
			page, err := parsePage(parts[1])
			if err != nil {
				return Action{}, err
			}
			return Action{Kind: KindCatalog, Page: page}, nil
		default:
			return Action{}, errMalformedAction
		}
	case "category", "subcategory":
		if len(parts) != 3 {
			return Action{}, errMalformedAction
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Action{}, err
		}
		page, err := parsePage(parts[2])
		if err != nil {
			return Action{}, err
		}
		kind := KindCategory
		if parts[0] == "subcategory" {
			kind = KindSubcategory
		}
		return Action{Kind: kind, ID: id, Page: page}, nil
	case "product":
		if len(parts) != 2 {
			return Action{}, errMalformedAction
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: KindProduct, ID: id}, nil
	case "qty", "add":
		if len(parts) != 3 {
			return Action{}, errMalformedAction
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Action{}, err
		}
		qty, err := parseID(parts[2])
		if err != nil {
			return Action{}, err
		}
		kind := KindQty
		if parts[0] == "add" {
			kind = KindAddToCart
		}
		return Action{Kind: kind, ID: id, Qty: qty}, nil
	case "cartdel":
		if len(parts) != 2 {
			return Action{}, errMalformedAction
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: KindCartRemove, ID: id}, nil
	default:
		return Action{}, errMalformedAction
	}
}

func simple(kind ActionKind, parts []string) (Action, error) {
	if len(parts) != 1 {
		return Action{}, errMalformedAction
	}
	return Action{Kind: kind}, nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, errMalformedAction
	}
	return uint(id), nil
}

func parsePage(s string) (int, error) {
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 0, errMalformedAction
	}
	return page, nil
}

func catalogAction(page int) string {
	return fmt.Sprintf("catalog_%d", page)
}

func categoryAction(id uint, page int) string {
	return fmt.Sprintf("category_%d_%d", id, page)
}

func subcategoryAction(id uint, page int) string {
	return fmt.Sprintf("subcategory_%d_%d", id, page)
}

func productAction(id uint) string {
	return fmt.Sprintf("product_%d", id)
}

func qtyAction(id, qty uint) string {
	return fmt.Sprintf("qty_%d_%d", id, qty)
}

func addAction(id, qty uint) string {
	return fmt.Sprintf("add_%d_%d", id, qty)
}

func cartRemoveAction(itemID uint) string {
	return fmt.Sprintf("cartdel_%d", itemID)
}
