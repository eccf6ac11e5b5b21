package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/grobuddy/internal/model"
)

// Seeded category ids.
const (
	produceID int64 = 1
	dairyID   int64 = 2
	bakeryID  int64 = 4
)

func milk(categoryID int64) model.ItemFields {
	return model.ItemFields{Name: "Milk", Quantity: 2, Unit: "L", Price: 1.5, CategoryID: categoryID}
}

func setupGroceryTestDB(t *testing.T) (*GroceryStore, *UserStore) {
	t.Helper()
	db := setupTestDB(t)
	return NewGroceryStore(db), NewUserStore(db)
}

// fixedClock returns a clock that advances one minute per call.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func TestItemCRUD(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, us, "alice")

	// Create
	item, err := gs.CreateItem(ctx, u.ID, milk(dairyID))
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Name != "Milk" {
		t.Errorf("name = %q, want %q", item.Name, "Milk")
	}
	if item.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", item.Quantity)
	}
	if item.Unit != "L" {
		t.Errorf("unit = %q, want %q", item.Unit, "L")
	}
	if item.CategoryName != "Dairy" {
		t.Errorf("category_name = %q, want %q", item.CategoryName, "Dairy")
	}
	if item.Purchased || item.PurchasedAt != nil {
		t.Error("expected new item to be unpurchased")
	}
	if item.UserID != u.ID {
		t.Errorf("user_id = %d, want %d", item.UserID, u.ID)
	}
	if got := item.Price * float64(item.Quantity); got != 3.0 {
		t.Errorf("price*quantity = %v, want 3.0", got)
	}

	// Update
	name := "Whole Milk"
	qty := 3
	updated, err := gs.UpdateItem(ctx, u.ID, item.ID, model.ItemPatch{Name: &name, Quantity: &qty})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Name != "Whole Milk" {
		t.Errorf("updated name = %q, want %q", updated.Name, "Whole Milk")
	}
	if updated.Quantity != 3 {
		t.Errorf("updated quantity = %d, want 3", updated.Quantity)
	}
	if updated.Unit != "L" {
		t.Errorf("unit changed on partial update: %q", updated.Unit)
	}

	// List
	items, err := gs.ListItems(ctx, u.ID, nil)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	// Delete
	if err := gs.DeleteItem(ctx, u.ID, item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	got, err := gs.GetItemByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get deleted item: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted item")
	}
}

func TestCreateItemInvalidCategory(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, us, "alice")

	_, err := gs.CreateItem(ctx, u.ID, milk(9999))
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("err = %v, want ErrInvalidCategory", err)
	}

	var count int
	gs.db.QueryRow(`SELECT COUNT(*) FROM grocery_items`).Scan(&count)
	if count != 0 {
		t.Errorf("expected no rows persisted, got %d", count)
	}
}

func TestUpdateItemInvalidCategory(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, us, "alice")
	item, _ := gs.CreateItem(ctx, u.ID, milk(dairyID))

	bad := int64(9999)
	_, err := gs.UpdateItem(ctx, u.ID, item.ID, model.ItemPatch{CategoryID: &bad})
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("err = %v, want ErrInvalidCategory", err)
	}

	got, _ := gs.GetItemByID(ctx, item.ID)
	if got.CategoryID != dairyID {
		t.Errorf("category_id = %d, want %d", got.CategoryID, dairyID)
	}
}

func TestItemOwnership(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, us, "alice")
	bob := createTestUser(t, us, "bob")

	item, _ := gs.CreateItem(ctx, alice.ID, milk(dairyID))
	name := "Stolen"

	if _, err := gs.UpdateItem(ctx, bob.ID, item.ID, model.ItemPatch{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Errorf("update: err = %v, want ErrForbidden", err)
	}
	if err := gs.DeleteItem(ctx, bob.ID, item.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete: err = %v, want ErrForbidden", err)
	}
	if _, err := gs.SetPurchased(ctx, bob.ID, item.ID, true); !errors.Is(err, ErrForbidden) {
		t.Errorf("set purchased: err = %v, want ErrForbidden", err)
	}

	if _, err := gs.UpdateItem(ctx, alice.ID, 9999, model.ItemPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing: err = %v, want ErrNotFound", err)
	}
	if err := gs.DeleteItem(ctx, alice.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing: err = %v, want ErrNotFound", err)
	}

	got, _ := gs.GetItemByID(ctx, item.ID)
	if got == nil || got.Name != "Milk" || got.Purchased {
		t.Errorf("item changed by non-owner: %+v", got)
	}

	bobItems, err := gs.ListItems(ctx, bob.ID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bobItems) != 0 {
		t.Errorf("bob sees %d items, want 0", len(bobItems))
	}
}

func TestSetPurchasedTogglesTimestamp(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, us, "alice")
	item, _ := gs.CreateItem(ctx, u.ID, milk(dairyID))

	purchased, err := gs.SetPurchased(ctx, u.ID, item.ID, true)
	if err != nil {
		t.Fatalf("set purchased: %v", err)
	}
	if !purchased.Purchased {
		t.Error("expected purchased")
	}
	if purchased.PurchasedAt == nil {
		t.Fatal("expected purchased_at to be set")
	}

	unpurchased, err := gs.SetPurchased(ctx, u.ID, item.ID, false)
	if err != nil {
		t.Fatalf("set unpurchased: %v", err)
	}
	if unpurchased.Purchased {
		t.Error("expected unpurchased")
	}
	if unpurchased.PurchasedAt != nil {
		t.Errorf("purchased_at = %v, want nil", unpurchased.PurchasedAt)
	}
}

func TestListItemsFilterAndOrder(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, us, "alice")

	bread, _ := gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "Bread", Quantity: 1, CategoryID: bakeryID})
	apples, _ := gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "Apples", Quantity: 6, CategoryID: produceID})
	gs.SetPurchased(ctx, u.ID, bread.ID, true)

	all, err := gs.ListItems(ctx, u.ID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
	// Unpurchased items come first
	if all[0].ID != apples.ID {
		t.Errorf("items[0] = %q, want %q", all[0].Name, "Apples")
	}

	no := false
	open, _ := gs.ListItems(ctx, u.ID, &no)
	if len(open) != 1 || open[0].ID != apples.ID {
		t.Errorf("unpurchased = %+v, want only Apples", open)
	}

	yes := true
	done, _ := gs.ListItems(ctx, u.ID, &yes)
	if len(done) != 1 || done[0].ID != bread.ID {
		t.Errorf("purchased = %+v, want only Bread", done)
	}
}

func TestSearchItems(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, us, "alice")

	gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "Whole Milk", CategoryID: dairyID})
	gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "Oat milk", CategoryID: dairyID})
	gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "Bread", CategoryID: bakeryID})

	items, err := gs.SearchItems(ctx, u.ID, "MILK")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 matches, got %d", len(items))
	}

	none, err := gs.SearchItems(ctx, u.ID, "cheese")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
}

func TestSearchItemsWildcardsAreLiteral(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, us, "alice")

	gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "Milk", CategoryID: dairyID})
	gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "100% juice", CategoryID: dairyID})
	gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "snack_bar", CategoryID: bakeryID})
	gs.CreateItem(ctx, u.ID, model.ItemFields{Name: `back\slash`, CategoryID: bakeryID})

	tests := []struct {
		query string
		want  []string
	}{
		{"%", []string{"100% juice"}},
		{"_", []string{"snack_bar"}},
		{"k_b", []string{"snack_bar"}},
		{"M_lk", nil},
		{`\`, []string{`back\slash`}},
	}
	for _, tt := range tests {
		items, err := gs.SearchItems(ctx, u.ID, tt.query)
		if err != nil {
			t.Fatalf("search %q: %v", tt.query, err)
		}
		var got []string
		for _, it := range items {
			got = append(got, it.Name)
		}
		if len(got) != len(tt.want) {
			t.Errorf("search %q = %v, want %v", tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("search %q = %v, want %v", tt.query, got, tt.want)
			}
		}
	}
}

func TestRecentPurchasesOrder(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	gs.now = fixedClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	u := createTestUser(t, us, "alice")

	first, _ := gs.CreateItem(ctx, u.ID, milk(dairyID))
	second, _ := gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "Bread", Quantity: 1, Price: 2, CategoryID: bakeryID})
	gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "Apples", Quantity: 1, CategoryID: produceID})

	gs.SetPurchased(ctx, u.ID, first.ID, true)
	gs.SetPurchased(ctx, u.ID, second.ID, true)

	recent, err := gs.ListRecentPurchases(ctx, u.ID)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 purchases, got %d", len(recent))
	}
	if recent[0].ID != second.ID || recent[1].ID != first.ID {
		t.Errorf("order = [%q, %q], want [Bread, Milk]", recent[0].Name, recent[1].Name)
	}
}

func TestPurchaseAll(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, us, "alice")
	bob := createTestUser(t, us, "bob")

	gs.CreateItem(ctx, alice.ID, milk(dairyID))
	gs.CreateItem(ctx, alice.ID, model.ItemFields{Name: "Bread", CategoryID: bakeryID})
	bobItem, _ := gs.CreateItem(ctx, bob.ID, milk(dairyID))

	n, err := gs.PurchaseAll(ctx, alice.ID)
	if err != nil {
		t.Fatalf("purchase all: %v", err)
	}
	if n != 2 {
		t.Errorf("updated = %d, want 2", n)
	}

	got, _ := gs.GetItemByID(ctx, bobItem.ID)
	if got.Purchased {
		t.Error("purchase all touched another user's item")
	}
}

func TestClearPurchased(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, us, "alice")
	bob := createTestUser(t, us, "bob")

	bought, _ := gs.CreateItem(ctx, alice.ID, milk(dairyID))
	kept, _ := gs.CreateItem(ctx, alice.ID, model.ItemFields{Name: "Bread", CategoryID: bakeryID})
	bobItem, _ := gs.CreateItem(ctx, bob.ID, milk(dairyID))
	gs.SetPurchased(ctx, alice.ID, bought.ID, true)
	gs.SetPurchased(ctx, bob.ID, bobItem.ID, true)

	n, err := gs.ClearPurchased(ctx, alice.ID)
	if err != nil {
		t.Fatalf("clear purchased: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared = %d, want 1", n)
	}

	if got, _ := gs.GetItemByID(ctx, bought.ID); got != nil {
		t.Error("purchased item should be gone")
	}
	if got, _ := gs.GetItemByID(ctx, kept.ID); got == nil {
		t.Error("unpurchased item should remain")
	}
	if got, _ := gs.GetItemByID(ctx, bobItem.ID); got == nil {
		t.Error("another user's purchased item should remain")
	}
}

func TestTotalCost(t *testing.T) {
	gs, us := setupGroceryTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, us, "alice")

	total, err := gs.TotalCost(ctx, u.ID)
	if err != nil {
		t.Fatalf("total with no purchases: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %v, want 0", total)
	}

	item, _ := gs.CreateItem(ctx, u.ID, milk(dairyID))
	gs.CreateItem(ctx, u.ID, model.ItemFields{Name: "Bread", Quantity: 1, Price: 4.25, CategoryID: bakeryID})

	total, _ = gs.TotalCost(ctx, u.ID)
	if total != 0 {
		t.Errorf("total with only unpurchased items = %v, want 0", total)
	}

	gs.SetPurchased(ctx, u.ID, item.ID, true)
	total, err = gs.TotalCost(ctx, u.ID)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 3.0 {
		t.Errorf("total = %v, want 3.0", total)
	}
}
