package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestLoginDecodesNumericUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/users/login", r.URL.Path)

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "ada@example.com", creds.Email)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId": 42, "name": "Ada", "token": "tok-42"}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL + "/api")
	require.NoError(t, err)

	result, err := client.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "42", result.UserID.String())
	assert.Equal(t, "Ada", result.Name)
	assert.Equal(t, "tok-42", result.Token)
}

func TestLoginSurfacesServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "Invalid credentials"}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), Credentials{Email: "x", Password: "y"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestErrorFallbackWhenBodyUnreadable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream broke</html>"))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	_, err = client.Categories(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request failed with status 502", apiErr.Message)
}

func TestProductsCategoryFilter(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Widget", "price": 9.99, "category": "tools"}]`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	products, err := client.Products(context.Background(), "tools")
	require.NoError(t, err)
	assert.Equal(t, "category=tools", gotQuery)
	require.Len(t, products, 1)
	assert.Equal(t, "1", products[0].ID.String())

	_, err = client.Products(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestCreateOrderWireShape(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message": "Order created", "orderId": 7, "totalAmount": 25.0}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	summary, err := client.CreateOrder(context.Background(), OrderRequest{
		UserID: "42",
		Items:  []OrderItem{{ProductID: "1", Quantity: 2, Price: 10}},
		Shipping: ShippingAddress{
			Name: "Ada", Address: "1 Main St", City: "Springfield", State: "IL",
			Zip: "62704", Country: "United States", Phone: "555-0100",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "7", summary.OrderID.String())
	assert.Equal(t, 25.0, summary.TotalAmount)

	// Numeric identifiers travel as JSON numbers, matching the original wire
	// format.
	assert.Equal(t, float64(42), captured["userId"])
	items := captured["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, float64(1), item["productId"])
	assert.Equal(t, float64(2), item["quantity"])
	shipping := captured["shipping"].(map[string]any)
	assert.Equal(t, "Springfield", shipping["city"])
}

func TestCancelOrderUsesPutOnCancelPath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"message": "Order cancelled successfully", "orderId": 7}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)
	require.NoError(t, client.CancelOrder(context.Background(), "7"))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/orders/7/cancel", gotPath)
}

func TestCancelOrderNonPendingSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "Cannot cancel order with status: shipped"}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	err = client.CancelOrder(context.Background(), "7")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "shipped")
}

func TestRequestCarriesAuthAndRequestID(t *testing.T) {
	var auth, requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithTokenSource(staticToken("tok-9")))
	require.NoError(t, err)

	_, err = client.UserOrders(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-9", auth)
	assert.NotEmpty(t, requestID)
}

func TestAnonymousRequestOmitsAuthHeader(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithTokenSource(staticToken("")))
	require.NoError(t, err)

	_, err = client.Categories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "::bad::"} {
		if _, err := New(raw); err == nil {
			t.Fatalf("expected error for base url %q", raw)
		}
	}
}

func TestShippingAddressTrimAndValidate(t *testing.T) {
	addr := ShippingAddress{
		Name: "  Ada  ", Address: " 1 Main St ", City: "Springfield", State: "IL",
		Zip: "62704", Country: " United States ", Phone: " 555-0100 ",
	}
	trimmed := addr.Trimmed()
	assert.Equal(t, "Ada", trimmed.Name)
	assert.Equal(t, "United States", trimmed.Country)
	assert.Empty(t, trimmed.MissingFields())

	incomplete := ShippingAddress{Name: "Ada", Zip: "  "}
	missing := incomplete.MissingFields()
	assert.Contains(t, missing, "address")
	assert.Contains(t, missing, "zip")
	assert.NotContains(t, missing, "name")
}
