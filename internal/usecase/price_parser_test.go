package usecase

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Price
	}{
		{name: "rupee with grouping and decimals", raw: "₹5,500.00", want: 5500},
		{name: "rupee without decimals", raw: "₹5,999", want: 5999},
		{name: "rs abbreviation", raw: "Rs. 4,499", want: 4499},
		{name: "inr suffix", raw: "12,000 INR", want: 12000},
		{name: "plain number", raw: "799", want: 799},
		{name: "decimal only", raw: "0.99", want: 0.99},
		{name: "zero is a real price", raw: "₹0", want: 0},
		{name: "sale range keeps digits only", raw: "Sale price₹3,299.00", want: 3299},
		{name: "surrounding whitespace", raw: "  ₹ 1,234  ", want: 1234},
		{name: "no digits", raw: "No price", want: UnknownPrice},
		{name: "contact for price", raw: "Contact for price", want: UnknownPrice},
		{name: "empty", raw: "", want: UnknownPrice},
		{name: "trailing abbreviation", raw: "5,999 Rs.", want: 5999},
		{name: "separator only", raw: "Rs.", want: UnknownPrice},
		{name: "multiple separators", raw: "1.2.3", want: UnknownPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.raw)
			if got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestUnknownPriceOrdering(t *testing.T) {
	unknown := ParsePrice("TBD")

	if !IsUnknownPrice(unknown) {
		t.Fatalf("IsUnknownPrice(%v) = false, want true", unknown)
	}
	if IsUnknownPrice(ParsePrice("1")) {
		t.Errorf("IsUnknownPrice(1) = true, want false")
	}
	if !(ParsePrice("9999999") < unknown) {
		t.Errorf("known price should sort before the unknown sentinel")
	}
	if !math.IsInf(float64(unknown), 1) {
		t.Errorf("unknown price = %v, want +Inf", unknown)
	}
}

func TestPriceJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Known   domain.Price `json:"known"`
		Unknown domain.Price `json:"unknown"`
	}{Known: 5999, Unknown: UnknownPrice})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(data) != `{"known":5999,"unknown":null}` {
		t.Errorf("json.Marshal() = %s, want unknown rendered as null", data)
	}

	var decoded struct {
		Unknown domain.Price `json:"unknown"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded.Unknown.IsKnown() {
		t.Errorf("decoded null price = %v, want unknown", decoded.Unknown)
	}
}
