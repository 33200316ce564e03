package source

import (
	"context"
	"testing"
	"time"

	"txn-aggregation-go/internal/models"

	"github.com/shopspring/decimal"
)

func tx(id, user string, at time.Time, typ models.TransactionType, amount string) models.Transaction {
	return models.Transaction{
		Id:        id,
		UserId:    user,
		CreatedAt: at,
		Type:      typ,
		Amount:    decimal.RequireFromString(amount),
	}
}

func TestStubClient_FiltersHalfOpenWindow(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	client := NewStubClient([]models.Transaction{
		tx("before", "u1", base.Add(-time.Second), models.TransactionEarned, "1"),
		tx("at-start", "u1", base, models.TransactionEarned, "2"),
		tx("inside", "u1", base.Add(time.Minute), models.TransactionSpent, "1"),
		tx("at-end", "u1", base.Add(time.Hour), models.TransactionPayout, "3"),
	}, 10)

	page, err := client.Fetch(context.Background(), base, base.Add(time.Hour), 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(page.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].Id != "at-start" || page.Items[1].Id != "inside" {
		t.Errorf("Unexpected items or order: %s, %s", page.Items[0].Id, page.Items[1].Id)
	}
	if page.Meta.TotalItems != 2 || page.Meta.ItemCount != 2 || page.Meta.CurrentPage != 1 {
		t.Errorf("Unexpected meta: %+v", page.Meta)
	}
}

func TestStubClient_Pagination(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]models.Transaction, 0, 5)
	for i := 0; i < 5; i++ {
		records = append(records, tx(string(rune('a'+i)), "u1", base.Add(time.Duration(i)*time.Second), models.TransactionEarned, "1"))
	}
	client := NewStubClient(records, 2)
	ctx := context.Background()

	tests := []struct {
		page      int
		wantCount int
		wantFirst string
	}{
		{1, 2, "a"},
		{2, 2, "c"},
		{3, 1, "e"},
		{4, 0, ""},
		{0, 2, "a"}, // normalized to page 1
	}
	for _, tt := range tests {
		page, err := client.Fetch(ctx, base, base.Add(time.Hour), tt.page)
		if err != nil {
			t.Fatalf("Fetch page %d failed: %v", tt.page, err)
		}
		if len(page.Items) != tt.wantCount {
			t.Errorf("page %d: expected %d items, got %d", tt.page, tt.wantCount, len(page.Items))
			continue
		}
		if tt.wantCount > 0 && page.Items[0].Id != tt.wantFirst {
			t.Errorf("page %d: expected first %s, got %s", tt.page, tt.wantFirst, page.Items[0].Id)
		}
		if page.Meta.TotalPages != 3 || page.Meta.TotalItems != 5 || page.Meta.ItemsPerPage != 2 {
			t.Errorf("page %d: unexpected meta %+v", tt.page, page.Meta)
		}
	}
}

func TestStubClient_CancelledContext(t *testing.T) {
	client := NewStubClient(DefaultFixtures(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Fetch(ctx, time.Unix(0, 0), time.Now(), 1); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}

func TestStubClient_DefaultFixturesFromEpoch(t *testing.T) {
	client := NewStubClient(DefaultFixtures(), 0)

	page, err := client.Fetch(context.Background(), time.Unix(0, 0).UTC(), time.Now(), 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(page.Items) != 9 {
		t.Errorf("Expected all 9 default fixtures, got %d", len(page.Items))
	}
	if page.Meta.ItemsPerPage != DefaultPageSize {
		t.Errorf("Expected default page size %d, got %d", DefaultPageSize, page.Meta.ItemsPerPage)
	}
}
