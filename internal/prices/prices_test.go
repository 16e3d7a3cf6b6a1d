package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSelectPrice(t *testing.T) {
	full := &Quote{
		Available: true,
		USD:       "1.50",
		USDFoil:   "4.00",
		USDEtched: "9.99",
		EUR:       "1.20",
	}

	tests := []struct {
		name        string
		quote       *Quote
		productName string
		productSKU  string
		wantPrice   string
		wantOK      bool
	}{
		{name: "plain card gets plain price", quote: full, productName: "Lightning Bolt", wantPrice: "1.50", wantOK: true},
		{name: "foil name gets foil price", quote: full, productName: "Lightning Bolt Foil", wantPrice: "4.00", wantOK: true},
		{name: "foil SKU gets foil price", quote: full, productName: "Lightning Bolt", productSKU: "mtg-lb-hf-01", wantPrice: "4.00", wantOK: true},
		{name: "etched SKU gets etched price", quote: full, productName: "Lightning Bolt", productSKU: "MTG-LB-EF-01", wantPrice: "9.99", wantOK: true},
		{name: "etched name gets etched price", quote: full, productName: "Sol Ring Etched Foil", wantPrice: "9.99", wantOK: true},
		{
			name:        "foil falls back when no foil price",
			quote:       &Quote{Available: true, USD: "2.00"},
			productName: "Swamp Foil",
			wantPrice:   "2.00",
			wantOK:      true,
		},
		{
			name:        "EUR is the last resort",
			quote:       &Quote{Available: true, EUR: "0.80"},
			productName: "Swamp",
			wantPrice:   "0.80",
			wantOK:      true,
		},
		{name: "unavailable quote", quote: &Quote{}, productName: "Swamp", wantOK: false},
		{name: "nil quote", quote: nil, productName: "Swamp", wantOK: false},
		{name: "empty quote", quote: &Quote{Available: true}, productName: "Swamp", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok := SelectPrice(tt.quote, tt.productName, tt.productSKU)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if price != tt.wantPrice {
				t.Errorf("price = %q, want %q", price, tt.wantPrice)
			}
		})
	}
}

func TestClientQuote(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch r.URL.Path {
		case "/cards/tcgplayer/50001":
			w.Write([]byte(`{"prices":{"usd":"1.50","usd_foil":"4.00"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL)

	quote, err := c.Quote(context.Background(), "50001")
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if !quote.Available || quote.USD != "1.50" || quote.USDFoil != "4.00" {
		t.Errorf("quote = %+v", quote)
	}

	// Second lookup hits the cache, not the server.
	if _, err := c.Quote(context.Background(), "50001"); err != nil {
		t.Fatalf("cached Quote() error = %v", err)
	}
	if requests != 1 {
		t.Errorf("server requests = %d, want 1", requests)
	}

	// 404 means no price data, not an error, and is cached too.
	missing, err := c.Quote(context.Background(), "99999")
	if err != nil {
		t.Fatalf("Quote() for missing card error = %v", err)
	}
	if missing.Available {
		t.Error("missing card quote marked available")
	}
	if _, err := c.Quote(context.Background(), "99999"); err != nil {
		t.Fatalf("cached missing Quote() error = %v", err)
	}
	if requests != 2 {
		t.Errorf("server requests = %d, want 2", requests)
	}
}
