// Package cart wraps the storefront's add-to-cart endpoint. It is the only
// side-effecting primitive the bulk import path uses.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const cartDefaultTimeout = 15 * time.Second

// Result is the storefront's answer to one add-to-cart submission.
type Result struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

// Client is the cart submission collaborator. Implementations must treat a
// failed submission as a Result with Success=false whenever the storefront
// answered at all; transport-level problems are returned as errors.
type Client interface {
	Submit(ctx context.Context, catalogID string, quantity int, sku string) (*Result, error)
}

// HTTPClient submits to the storefront's WooCommerce-style AJAX cart
// endpoint with a form POST.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a cart client for the given store base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: cartDefaultTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// cartResponse is the subset of the storefront's JSON answer we care about.
// An "error" field means the item was rejected even on HTTP 200.
type cartResponse struct {
	Error       bool   `json:"error"`
	ProductName string `json:"product_name"`
	Message     string `json:"message"`
}

// Submit adds quantity units of the product to the cart. A quantity below 1
// is submitted as 1, matching the storefront's own default.
func (c *HTTPClient) Submit(ctx context.Context, catalogID string, quantity int, sku string) (*Result, error) {
	if catalogID == "" {
		return &Result{Success: false, Error: "no product ID provided"}, nil
	}
	if quantity < 1 {
		quantity = 1
	}

	form := url.Values{}
	form.Set("product_id", catalogID)
	form.Set("quantity", strconv.Itoa(quantity))
	if sku != "" {
		form.Set("product_sku", sku)
	}

	endpoint := c.baseURL + "/?wc-ajax=add_to_cart"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("failed to add to cart: %s", resp.Status),
		}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed cartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Some storefront configurations answer with an HTML fragment on
		// success; treat a 200 we can't parse as accepted.
		return &Result{Success: true}, nil
	}
	if parsed.Error {
		msg := parsed.Message
		if msg == "" {
			msg = "store rejected the item"
		}
		return &Result{Success: false, Error: msg}, nil
	}

	return &Result{Success: true, ProductName: parsed.ProductName}, nil
}
