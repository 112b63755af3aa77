package cart

import (
	"testing"
)

func strPtr(s string) *string { return &s }

func TestAddItemAccumulatesQuantity(t *testing.T) {
	c := NewCart(nil)
	c.AddItem(Item{ProductID: "p1", Name: "Breaker", Quantity: 1})
	c.AddItem(Item{ProductID: "p1", Name: "Breaker", Quantity: 2})

	if c.Len() != 1 {
		t.Fatalf("expected 1 distinct item, got %d", c.Len())
	}
	if got := c.Items()[0].Quantity; got != 3 {
		t.Fatalf("expected quantity 3, got %d", got)
	}
}

func TestAddItemStripsDataURIImages(t *testing.T) {
	c := NewCart(nil)
	c.AddItem(Item{
		ProductID: "p1",
		Name:      "Breaker",
		Quantity:  1,
		ImageURL:  strPtr("data:image/png;base64,iVBORw0KGgo="),
	})

	if got := c.Items()[0].ImageURL; got != nil {
		t.Fatalf("expected data-URI image stripped, got %q", *got)
	}

	c.AddItem(Item{
		ProductID: "p2",
		Name:      "Relay",
		Quantity:  1,
		ImageURL:  strPtr("https://cdn.voltline.test/relay.png"),
	})
	if got := c.Items()[1].ImageURL; got == nil || *got != "https://cdn.voltline.test/relay.png" {
		t.Fatalf("regular image URLs must survive, got %v", got)
	}
}

func TestNewCartSanitizesLoadedItems(t *testing.T) {
	c := NewCart([]Item{{
		ProductID: "p1",
		Name:      "Breaker",
		Quantity:  1,
		ImageURL:  strPtr("data:image/jpeg;base64,AAAA"),
	}})
	if got := c.Items()[0].ImageURL; got != nil {
		t.Fatalf("expected sanitization on load, got %q", *got)
	}
}

func TestUpdateQuantityBelowOneRemoves(t *testing.T) {
	c := NewCart(nil)
	c.AddItem(Item{ProductID: "p1", Name: "Breaker", Quantity: 5})

	for _, qty := range []int{0, -2} {
		c.AddItem(Item{ProductID: "p1", Name: "Breaker", Quantity: 1})
		if !c.UpdateQuantity("p1", qty) {
			t.Fatalf("expected item found for qty %d", qty)
		}
		if c.IsInCart("p1") {
			t.Fatalf("quantity %d must remove the item", qty)
		}
	}
}

func TestUpdateQuantityMissingItem(t *testing.T) {
	c := NewCart(nil)
	if c.UpdateQuantity("ghost", 3) {
		t.Fatal("expected false for absent item")
	}
}

func TestRemoveItemAbsentIsNoOp(t *testing.T) {
	c := NewCart(nil)
	c.AddItem(Item{ProductID: "p1", Name: "Breaker", Quantity: 1})
	c.RemoveItem("ghost")
	if c.Len() != 1 {
		t.Fatalf("expected cart untouched, got %d items", c.Len())
	}
}

func TestTotalItemsSumsQuantities(t *testing.T) {
	c := NewCart(nil)
	c.AddItem(Item{ProductID: "p1", Quantity: 2})
	c.AddItem(Item{ProductID: "p2", Quantity: 3})
	c.AddItem(Item{ProductID: "p1", Quantity: 1})

	if got := c.TotalItems(); got != 6 {
		t.Fatalf("expected total 6, got %d", got)
	}
}

func TestUpdateCustomSpecsKeepsSnapshot(t *testing.T) {
	c := NewCart(nil)
	c.AddItem(Item{ProductID: "p1", Quantity: 1, Specifications: strPtr("2P, 32A, curve C")})

	if !c.UpdateCustomSpecs("p1", strPtr("IP65 enclosure")) {
		t.Fatal("expected item found")
	}
	item := c.Items()[0]
	if item.CustomSpecs == nil || *item.CustomSpecs != "IP65 enclosure" {
		t.Fatalf("unexpected custom specs %v", item.CustomSpecs)
	}
	if item.Specifications == nil || *item.Specifications != "2P, 32A, curve C" {
		t.Fatalf("product snapshot must survive an override, got %v", item.Specifications)
	}
	if got := item.EffectiveSpecs(); got == nil || *got != "IP65 enclosure" {
		t.Fatalf("expected override to win, got %v", got)
	}

	if !c.UpdateCustomSpecs("p1", nil) {
		t.Fatal("expected item found")
	}
	item = c.Items()[0]
	if item.CustomSpecs != nil {
		t.Fatalf("expected override cleared, got %q", *item.CustomSpecs)
	}
	if got := item.EffectiveSpecs(); got == nil || *got != "2P, 32A, curve C" {
		t.Fatalf("expected revert to product snapshot, got %v", got)
	}

	c.UpdateCustomSpecs("p1", strPtr("short leads"))
	if !c.UpdateCustomSpecs("p1", strPtr("   ")) {
		t.Fatal("expected item found")
	}
	if c.Items()[0].CustomSpecs != nil {
		t.Fatal("a blank override must clear the previous one")
	}
}

func TestClearAndOrderingStable(t *testing.T) {
	c := NewCart(nil)
	c.AddItem(Item{ProductID: "p1", Quantity: 1})
	c.AddItem(Item{ProductID: "p2", Quantity: 1})
	c.AddItem(Item{ProductID: "p3", Quantity: 1})
	c.RemoveItem("p2")

	items := c.Items()
	if len(items) != 2 || items[0].ProductID != "p1" || items[1].ProductID != "p3" {
		t.Fatalf("expected stable insertion order, got %+v", items)
	}

	c.Clear()
	if c.Len() != 0 || c.TotalItems() != 0 {
		t.Fatal("expected empty cart after clear")
	}
}
