package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientSubmit(t *testing.T) {
	var lastForm map[string]string
	var respond func(w http.ResponseWriter)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("wc-ajax") != "add_to_cart" {
			t.Errorf("unexpected path %s", r.URL.String())
		}
		if got := r.Header.Get("X-Requested-With"); got != "XMLHttpRequest" {
			t.Errorf("X-Requested-With = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("bad form: %v", err)
		}
		lastForm = map[string]string{
			"product_id":  r.PostForm.Get("product_id"),
			"quantity":    r.PostForm.Get("quantity"),
			"product_sku": r.PostForm.Get("product_sku"),
		}
		respond(w)
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL)
	ctx := context.Background()

	t.Run("successful add", func(t *testing.T) {
		respond = func(w http.ResponseWriter) {
			w.Write([]byte(`{"error":false,"product_name":"Lightning Bolt"}`))
		}
		res, err := c.Submit(ctx, "1001", 3, "MTG-LB-001")
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if !res.Success || res.ProductName != "Lightning Bolt" {
			t.Errorf("result = %+v", res)
		}
		if lastForm["product_id"] != "1001" || lastForm["quantity"] != "3" || lastForm["product_sku"] != "MTG-LB-001" {
			t.Errorf("form = %v", lastForm)
		}
	})

	t.Run("store rejection on 200", func(t *testing.T) {
		respond = func(w http.ResponseWriter) {
			w.Write([]byte(`{"error":true,"message":"Out of stock"}`))
		}
		res, err := c.Submit(ctx, "1001", 1, "")
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if res.Success || res.Error != "Out of stock" {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("HTML answer on 200 counts as success", func(t *testing.T) {
		respond = func(w http.ResponseWriter) {
			w.Write([]byte(`<div class="cart">added</div>`))
		}
		res, err := c.Submit(ctx, "1001", 1, "")
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if !res.Success {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("non-200 is a failed result", func(t *testing.T) {
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		res, err := c.Submit(ctx, "1001", 1, "")
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if res.Success {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("quantity below one is clamped", func(t *testing.T) {
		respond = func(w http.ResponseWriter) {
			w.Write([]byte(`{"error":false}`))
		}
		if _, err := c.Submit(ctx, "1001", 0, ""); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if lastForm["quantity"] != "1" {
			t.Errorf("quantity = %s, want 1", lastForm["quantity"])
		}
	})
}

func TestHTTPClientSubmitNoProductID(t *testing.T) {
	c := NewHTTPClient("http://unused.invalid")
	res, err := c.Submit(context.Background(), "", 1, "")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Success {
		t.Error("empty catalog ID must fail without a network call")
	}
}
