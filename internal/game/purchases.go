package game

import "fmt"

type BuyHardware struct {
	ItemID string `json:"itemId"`
}

func (BuyHardware) Name() string { return "buy_hardware" }

func (a BuyHardware) Apply(s GameState, env Env) (GameState, error) {
	item, ok := env.Catalog.HardwareItem(a.ItemID)
	if !ok {
		return s, fmt.Errorf("%w: hardware %q", ErrUnknownItem, a.ItemID)
	}
	return buyLoadout(s, item, func(g *GameState) map[string]string { return g.Computer })
}

type BuySoftware struct {
	ItemID string `json:"itemId"`
}

func (BuySoftware) Name() string { return "buy_software" }

func (a BuySoftware) Apply(s GameState, env Env) (GameState, error) {
	item, ok := env.Catalog.SoftwareItem(a.ItemID)
	if !ok {
		return s, fmt.Errorf("%w: software %q", ErrUnknownItem, a.ItemID)
	}
	return buyLoadout(s, item, func(g *GameState) map[string]string { return g.Software })
}

func buyLoadout(s GameState, item Item, slot func(*GameState) map[string]string) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	if slot(&s)[item.Category] == item.ID {
		return s, ErrAlreadyOwned
	}
	price, err := charge(s, item.BasePrice)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.Stats.Money -= price
	slot(&next)[item.Category] = item.ID
	refreshDerived(&next)
	appendLog(&next, "purchase", fmt.Sprintf("Bought %s for %.2f", item.Name, price), item.ID)
	return next, nil
}

type BuyShopItem struct {
	ItemID string `json:"itemId"`
}

func (BuyShopItem) Name() string { return "buy_shop_item" }

func (a BuyShopItem) Apply(s GameState, env Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	item, ok := env.Catalog.ShopItem(a.ItemID)
	if !ok {
		return s, fmt.Errorf("%w: shop item %q", ErrUnknownItem, a.ItemID)
	}
	price, err := charge(s, item.BasePrice)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.Stats.Money -= price
	next.Stats.adjust(item.Mood, item.Health, item.Stamina)
	appendLog(&next, "purchase", fmt.Sprintf("Bought %s for %.2f", item.Name, price), item.ID)
	return next, nil
}
