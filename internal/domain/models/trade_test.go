package models

import (
	"encoding/json"
	"testing"
)

func TestNumericDecodesQuotedAndBareNumbers(t *testing.T) {
	var tr Trade
	if err := json.Unmarshal([]byte(`{"price":"0.42","size":1000}`), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tr.Price.Float64() != 0.42 || tr.Size.Float64() != 1000 {
		t.Fatalf("decoded price=%v size=%v", tr.Price, tr.Size)
	}
}

func TestNumericMalformedValuesDecodeAsZero(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"non-numeric string", `{"price":"abc","size":"1000"}`},
		{"empty string", `{"price":"","size":"1000"}`},
		{"null", `{"price":null,"size":"1000"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var tr Trade
			if err := json.Unmarshal([]byte(tc.body), &tr); err != nil {
				t.Fatalf("malformed numeric must not error: %v", err)
			}
			if tr.Price.Float64() != 0 {
				t.Fatalf("price = %v, want 0", tr.Price)
			}
			if tr.Size.Float64() != 1000 {
				t.Fatalf("size = %v, want 1000", tr.Size)
			}
		})
	}
}

func TestComputeValueUSD(t *testing.T) {
	var tr Trade
	if err := json.Unmarshal([]byte(`{"price":"0.42","size":"1000"}`), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := tr.ComputeValueUSD(); got != 420.0 {
		t.Fatalf("value = %v, want 420", got)
	}
	if tr.ValueUSD != 420.0 {
		t.Fatalf("derived value not attached: %v", tr.ValueUSD)
	}
}

func TestComputeValueUSDMalformedIsZero(t *testing.T) {
	var tr Trade
	if err := json.Unmarshal([]byte(`{"price":"abc","size":"1000"}`), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := tr.ComputeValueUSD(); got != 0 {
		t.Fatalf("value = %v, want 0", got)
	}
}
