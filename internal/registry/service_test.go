package registry

import (
	"context"
	"errors"
	"testing"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
const testAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

func newFixture(t *testing.T) (*Service, context.Context) {
	t.Helper()
	return NewService(NewMemStore()), context.Background()
}

func TestCreatePaymentMethodValidation(t *testing.T) {
	svc, ctx := newFixture(t)

	if _, err := svc.CreatePaymentMethod(ctx, 1, "BTC", testKeyHex); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("unsupported type: expected ErrInvalidType, got %v", err)
	}
	if _, err := svc.CreatePaymentMethod(ctx, 1, MethodETH, "not-hex"); !errors.Is(err, ErrInvalidKeyMaterial) {
		t.Fatalf("bad key: expected ErrInvalidKeyMaterial, got %v", err)
	}

	m, err := svc.CreatePaymentMethod(ctx, 1, MethodETH, "0x"+testKeyHex)
	if err != nil {
		t.Fatalf("CreatePaymentMethod: %v", err)
	}
	if m.ID != 1 || m.UserID != 1 || m.Type != MethodETH {
		t.Fatalf("unexpected method: %+v", m)
	}
	if m.Key.Reveal() != testKeyHex {
		t.Fatal("key material not normalized")
	}
}

func TestOwnershipScoping(t *testing.T) {
	svc, ctx := newFixture(t)

	mine, err := svc.CreatePaymentMethod(ctx, 1, MethodETH, testKeyHex)
	if err != nil {
		t.Fatal(err)
	}

	// User 2 cannot see, fetch, or delete user 1's method; every answer is
	// the same ErrNotFound an absent id would produce.
	if list, _ := svc.ListPaymentMethods(ctx, 2); len(list) != 0 {
		t.Fatalf("user 2 sees foreign methods: %+v", list)
	}
	if _, err := svc.GetPaymentMethod(ctx, 2, mine.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.DeletePaymentMethod(ctx, 2, mine.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The owner still has it.
	if _, err := svc.GetPaymentMethod(ctx, 1, mine.ID); err != nil {
		t.Fatalf("owner lost access: %v", err)
	}
}

func TestDeleteIsNotIdempotent(t *testing.T) {
	svc, ctx := newFixture(t)

	m, err := svc.CreatePaymentMethod(ctx, 1, MethodETH, testKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeletePaymentMethod(ctx, 1, m.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.DeletePaymentMethod(ctx, 1, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRuleBlockedByPayments(t *testing.T) {
	store := NewMemStore()
	svc := NewService(store)
	ctx := context.Background()

	m, _ := svc.CreatePaymentMethod(ctx, 1, MethodETH, testKeyHex)
	f, _ := svc.CreateFoundation(ctx, "Water", "clean water", testAddress)
	rule, err := svc.CreatePaymentRule(ctx, 1, m.ID, f.ID, "0.5")
	if err != nil {
		t.Fatal(err)
	}

	inUse := map[int64]bool{rule.ID: true}
	store.SetRuleInUse(func(_ context.Context, id int64) (bool, error) {
		return inUse[id], nil
	})

	if err := svc.DeletePaymentRule(ctx, 1, rule.ID); !errors.Is(err, ErrInUse) {
		t.Fatalf("rule with payments: expected ErrInUse, got %v", err)
	}
	if _, err := svc.GetPaymentRule(ctx, 1, rule.ID); err != nil {
		t.Fatalf("blocked delete must leave the rule, got %v", err)
	}

	inUse[rule.ID] = false
	if err := svc.DeletePaymentRule(ctx, 1, rule.ID); err != nil {
		t.Fatalf("delete after payments gone: %v", err)
	}
}

func TestDeleteMethodBlockedByRules(t *testing.T) {
	svc, ctx := newFixture(t)

	m, _ := svc.CreatePaymentMethod(ctx, 1, MethodETH, testKeyHex)
	f, _ := svc.CreateFoundation(ctx, "Water", "clean water", testAddress)
	if _, err := svc.CreatePaymentRule(ctx, 1, m.ID, f.ID, "0.5"); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeletePaymentMethod(ctx, 1, m.ID); !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
}

func TestCreatePaymentRuleValidation(t *testing.T) {
	svc, ctx := newFixture(t)

	m, _ := svc.CreatePaymentMethod(ctx, 1, MethodETH, testKeyHex)
	f, _ := svc.CreateFoundation(ctx, "Water", "clean water", testAddress)

	for _, amount := range []string{"0", "-1", "abc", ""} {
		if _, err := svc.CreatePaymentRule(ctx, 1, m.ID, f.ID, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %q: expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	if _, err := svc.CreatePaymentRule(ctx, 1, m.ID, f.ID+100, "0.5"); !errors.Is(err, ErrFoundationNotFound) {
		t.Fatalf("expected ErrFoundationNotFound, got %v", err)
	}
	if list, _ := svc.ListPaymentRules(ctx, 1); len(list) != 0 {
		t.Fatalf("failed creates must leave no rows, got %+v", list)
	}

	// A method owned by another user is as good as absent.
	if _, err := svc.CreatePaymentRule(ctx, 2, m.ID, f.ID, "0.5"); !errors.Is(err, ErrPaymentMethodNotFound) {
		t.Fatalf("expected ErrPaymentMethodNotFound, got %v", err)
	}

	// Existence wins over amount validation when both are wrong.
	if _, err := svc.CreatePaymentRule(ctx, 1, m.ID, f.ID+100, "abc"); !errors.Is(err, ErrFoundationNotFound) {
		t.Fatalf("missing foundation with bad amount: expected ErrFoundationNotFound, got %v", err)
	}
	if _, err := svc.CreatePaymentRule(ctx, 2, m.ID, f.ID, "abc"); !errors.Is(err, ErrPaymentMethodNotFound) {
		t.Fatalf("foreign method with bad amount: expected ErrPaymentMethodNotFound, got %v", err)
	}

	rule, err := svc.CreatePaymentRule(ctx, 1, m.ID, f.ID, "0.5")
	if err != nil {
		t.Fatalf("CreatePaymentRule: %v", err)
	}
	if rule.ID != 1 || rule.Amount != "0.5" {
		t.Fatalf("unexpected rule: %+v", rule)
	}
}

func TestRuleOwnershipIsTransitive(t *testing.T) {
	svc, ctx := newFixture(t)

	m, _ := svc.CreatePaymentMethod(ctx, 1, MethodETH, testKeyHex)
	f, _ := svc.CreateFoundation(ctx, "Water", "clean water", testAddress)
	rule, err := svc.CreatePaymentRule(ctx, 1, m.ID, f.ID, "0.5")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetPaymentRule(ctx, 2, rule.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign rule, got %v", err)
	}
	if err := svc.DeletePaymentRule(ctx, 2, rule.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}

	ok, err := svc.BelongsToUser(ctx, rule.ID, 1)
	if err != nil || !ok {
		t.Fatalf("BelongsToUser(owner): ok=%v err=%v", ok, err)
	}
	ok, err = svc.BelongsToUser(ctx, rule.ID, 2)
	if err != nil || ok {
		t.Fatalf("BelongsToUser(stranger): ok=%v err=%v", ok, err)
	}
	ok, err = svc.BelongsToUser(ctx, rule.ID+100, 1)
	if err != nil || ok {
		t.Fatalf("BelongsToUser(absent): ok=%v err=%v", ok, err)
	}
}

func TestResolveRule(t *testing.T) {
	svc, ctx := newFixture(t)

	m, _ := svc.CreatePaymentMethod(ctx, 1, MethodETH, testKeyHex)
	f, _ := svc.CreateFoundation(ctx, "Water", "clean water", testAddress)
	rule, _ := svc.CreatePaymentRule(ctx, 1, m.ID, f.ID, "0.5")

	res, err := svc.ResolveRule(ctx, 1, rule.ID)
	if err != nil {
		t.Fatalf("ResolveRule: %v", err)
	}
	if res.Method.ID != m.ID || res.Foundation.PaymentAddress != testAddress || res.Rule.Amount != "0.5" {
		t.Fatalf("unexpected resolution: %+v", res)
	}

	if _, err := svc.ResolveRule(ctx, 2, rule.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign resolve: expected ErrNotFound, got %v", err)
	}
}

func TestFoundationValidation(t *testing.T) {
	svc, ctx := newFixture(t)

	if _, err := svc.CreateFoundation(ctx, "", "desc", testAddress); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.CreateFoundation(ctx, "Water", "desc", "not-an-address"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}

	f, err := svc.CreateFoundation(ctx, "Water", "clean water", testAddress)
	if err != nil {
		t.Fatal(err)
	}
	list, err := svc.ListFoundations(ctx)
	if err != nil || len(list) != 1 || list[0].ID != f.ID {
		t.Fatalf("ListFoundations: %+v err=%v", list, err)
	}
}
