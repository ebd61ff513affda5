package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestVoucherDiscountFor(t *testing.T) {
	tests := []struct {
		name     string
		percent  string
		max      string
		subtotal string
		want     string
	}{
		{name: "capped", percent: "10", max: "5000", subtotal: "100000", want: "5000"},
		{name: "under cap", percent: "10", max: "5000", subtotal: "20000", want: "2000"},
		{name: "exactly at cap", percent: "5", max: "5000", subtotal: "100000", want: "5000"},
		{name: "fractional percent", percent: "12.5", max: "100000", subtotal: "999", want: "124.875"},
		{name: "zero percent", percent: "0", max: "5000", subtotal: "100000", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Voucher{
				DiscountPercentage: decimal.RequireFromString(tt.percent),
				MaxDiscount:        decimal.RequireFromString(tt.max),
			}
			got := v.DiscountFor(decimal.RequireFromString(tt.subtotal))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("DiscountFor = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestVoucherUsable(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	if !(&Voucher{ExpiresAt: future}).Usable(now) {
		t.Fatal("fresh voucher should be usable")
	}
	if (&Voucher{ExpiresAt: future, IsUsed: true}).Usable(now) {
		t.Fatal("used voucher should not be usable")
	}
	if (&Voucher{ExpiresAt: past}).Usable(now) {
		t.Fatal("expired voucher should not be usable")
	}
	if (&Voucher{ExpiresAt: now}).Usable(now) {
		t.Fatal("voucher expiring now should not be usable")
	}
}

func TestProductPriceFor(t *testing.T) {
	now := time.Now()
	later := now.Add(24 * time.Hour)
	earlier := now.Add(-24 * time.Hour)
	p := &Product{
		Price:           decimal.NewFromInt(100),
		SubscriberPrice: decimal.NewNullDecimal(decimal.NewFromInt(80)),
	}

	if got := p.PriceFor(&User{}, now); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("regular price = %s", got)
	}
	if got := p.PriceFor(&User{IsSubscriber: true, SubscriptionExpiresAt: &later}, now); !got.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("subscriber price = %s", got)
	}
	if got := p.PriceFor(&User{IsSubscriber: true, SubscriptionExpiresAt: &earlier}, now); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("lapsed subscriber price = %s", got)
	}
}
