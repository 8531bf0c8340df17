package entity

import (
	"fmt"

	"stockroom/internal/errs"
)

// Type is the closed set of business records a chatter thread can attach
// to. Anything outside this set is rejected at the boundary.
type Type string

const (
	TypeItem          Type = "item"
	TypeCheckout      Type = "checkout"
	TypePurchaseOrder Type = "purchase_order"
	TypeStockCount    Type = "stock_count"
	TypePickList      Type = "pick_list"
	TypeReceive       Type = "receive"
)

var labels = map[Type]string{
	TypeItem:          "item",
	TypeCheckout:      "checkout",
	TypePurchaseOrder: "purchase order",
	TypeStockCount:    "stock count",
	TypePickList:      "pick list",
	TypeReceive:       "receive",
}

func Parse(s string) (Type, error) {
	t := Type(s)
	if _, ok := labels[t]; !ok {
		return "", fmt.Errorf("%w: unknown entity type %q", errs.ErrValidation, s)
	}
	return t, nil
}

func (t Type) String() string {
	return string(t)
}

// Label is the human-readable form used in notification text.
func (t Type) Label() string {
	if l, ok := labels[t]; ok {
		return l
	}
	return string(t)
}
