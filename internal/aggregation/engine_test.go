package aggregation

import (
	"math/rand"
	"testing"
	"time"

	"txn-aggregation-go/internal/models"

	"github.com/shopspring/decimal"
)

var base = time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC)

func tx(id, user string, typ models.TransactionType, amount string) models.Transaction {
	return models.Transaction{
		Id:        id,
		UserId:    user,
		CreatedAt: base,
		Type:      typ,
		Amount:    decimal.RequireFromString(amount),
	}
}

func assertAggregate(t *testing.T, got *models.UserAggregatedData, balance, earned, spent, payout string) {
	t.Helper()
	if got == nil {
		t.Fatal("Expected aggregate, got nil")
	}
	checks := []struct {
		field string
		got   decimal.Decimal
		want  string
	}{
		{"balance", got.Balance, balance},
		{"earned", got.Earned, earned},
		{"spent", got.Spent, spent},
		{"payout", got.Payout, payout},
		{"paidOut", got.PaidOut, "0"},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("%s: expected %s, got %s", c.field, c.want, c.got.String())
		}
	}
}

func TestAggregate_EarnedSpentPayout(t *testing.T) {
	result := Aggregate([]models.Transaction{
		tx("1", "U", models.TransactionEarned, "150"),
		tx("2", "U", models.TransactionSpent, "50"),
		tx("3", "U", models.TransactionPayout, "75"),
	})

	assertAggregate(t, result.Users["U"], "175", "150", "50", "75")
	if len(result.Declined) != 0 {
		t.Errorf("Expected no declines, got %d", len(result.Declined))
	}
}

func TestAggregate_SpentWithoutFundsIsDeclined(t *testing.T) {
	result := Aggregate([]models.Transaction{
		tx("1", "U", models.TransactionSpent, "100"),
	})

	if _, ok := result.Users["U"]; ok {
		t.Fatal("Expected no aggregate entry for user with only a declined transaction")
	}
	if len(result.Order) != 0 {
		t.Errorf("Expected empty order, got %v", result.Order)
	}
	if len(result.Declined) != 1 || result.Declined[0].Id != "1" {
		t.Errorf("Expected transaction 1 declined, got %+v", result.Declined)
	}
}

func TestAggregate_DeclineLeavesStateUntouched(t *testing.T) {
	result := Aggregate([]models.Transaction{
		tx("1", "U", models.TransactionEarned, "10"),
		tx("2", "U", models.TransactionSpent, "10.01"),
		tx("3", "U", models.TransactionSpent, "10"),
	})

	assertAggregate(t, result.Users["U"], "0", "10", "10", "0")
	if len(result.Declined) != 1 || result.Declined[0].Id != "2" {
		t.Errorf("Expected only transaction 2 declined, got %+v", result.Declined)
	}
}

func TestAggregate_OrderDependentDeclines(t *testing.T) {
	spentFirst := Aggregate([]models.Transaction{
		tx("1", "U", models.TransactionSpent, "12"),
		tx("2", "U", models.TransactionEarned, "20"),
	})
	earnedFirst := Aggregate([]models.Transaction{
		tx("2", "U", models.TransactionEarned, "20"),
		tx("1", "U", models.TransactionSpent, "12"),
	})

	assertAggregate(t, spentFirst.Users["U"], "20", "20", "0", "0")
	assertAggregate(t, earnedFirst.Users["U"], "8", "20", "12", "0")
}

func TestAggregate_PayoutFundsLaterSpend(t *testing.T) {
	result := Aggregate([]models.Transaction{
		tx("1", "U", models.TransactionPayout, "30"),
		tx("2", "U", models.TransactionSpent, "12"),
		tx("3", "U", models.TransactionEarned, "1.2"),
	})

	assertAggregate(t, result.Users["U"], "19.2", "1.2", "12", "30")
}

func TestAggregate_MultipleUsersFirstAppearanceOrder(t *testing.T) {
	result := Aggregate([]models.Transaction{
		tx("1", "B", models.TransactionEarned, "1"),
		tx("2", "A", models.TransactionSpent, "5"), // declined, A not yet present
		tx("3", "C", models.TransactionPayout, "2"),
		tx("4", "A", models.TransactionEarned, "3"),
		tx("5", "B", models.TransactionEarned, "1"),
	})

	want := []string{"B", "C", "A"}
	if len(result.Order) != len(want) {
		t.Fatalf("Expected order %v, got %v", want, result.Order)
	}
	for i := range want {
		if result.Order[i] != want[i] {
			t.Errorf("Expected order %v, got %v", want, result.Order)
			break
		}
	}

	aggs := result.Aggregates()
	if len(aggs) != 3 || aggs[0].UserId != "B" || aggs[2].UserId != "A" {
		t.Errorf("Aggregates not in first-appearance order: %+v", aggs)
	}
	assertAggregate(t, result.Users["A"], "3", "3", "0", "0")
	assertAggregate(t, result.Users["B"], "2", "2", "0", "0")
}

func TestAggregate_UnknownTypeSkipped(t *testing.T) {
	result := Aggregate([]models.Transaction{
		tx("1", "U", models.TransactionType("refund"), "5"),
	})

	if len(result.Users) != 0 {
		t.Errorf("Expected no users, got %d", len(result.Users))
	}
	if len(result.Skipped) != 1 {
		t.Errorf("Expected 1 skipped transaction, got %d", len(result.Skipped))
	}
}

func TestAggregate_Empty(t *testing.T) {
	result := Aggregate(nil)
	if len(result.Users) != 0 || len(result.Order) != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	batch := []models.Transaction{
		tx("1", "U", models.TransactionEarned, "5"),
		tx("2", "U", models.TransactionSpent, "7"),
		tx("3", "V", models.TransactionPayout, "2"),
	}
	first := Aggregate(batch)
	second := Aggregate(batch)

	for userId, agg := range first.Users {
		other := second.Users[userId]
		if other == nil || !agg.Balance.Equal(other.Balance) || !agg.Spent.Equal(other.Spent) {
			t.Errorf("Aggregate not deterministic for %s", userId)
		}
	}
}

func TestAggregate_BalanceInvariantRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	types := []models.TransactionType{models.TransactionEarned, models.TransactionSpent, models.TransactionPayout}
	users := []string{"u1", "u2", "u3", "u4"}

	for round := 0; round < 200; round++ {
		n := rng.Intn(40)
		batch := make([]models.Transaction, 0, n)
		for i := 0; i < n; i++ {
			batch = append(batch, models.Transaction{
				Id:     "tx",
				UserId: users[rng.Intn(len(users))],
				Type:   types[rng.Intn(len(types))],
				Amount: decimal.New(rng.Int63n(10000), -2),
			})
		}

		result := Aggregate(batch)
		for userId, agg := range result.Users {
			if !agg.Consistent() {
				t.Fatalf("round %d user %s: balance %s != earned %s - spent %s + payout %s",
					round, userId, agg.Balance, agg.Earned, agg.Spent, agg.Payout)
			}
			if agg.Balance.IsNegative() || agg.Spent.IsNegative() {
				t.Fatalf("round %d user %s: negative balance or spent", round, userId)
			}
		}
	}
}
