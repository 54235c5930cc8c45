package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/transport"
)

// Image is an uploaded product image.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Product is a marketplace listing. The "decription" spelling is the
// server's field name.
type Product struct {
	ID           string  `json:"_id,omitempty"`
	Name         string  `json:"productname"`
	Description  string  `json:"decription"`
	Type         string  `json:"producttype"`
	Images       []Image `json:"images"`
	SellerName   string  `json:"sellername,omitempty"`
	SellerNumber string  `json:"sellernumber,omitempty"`
}

// PaymentResult is the outcome of a payment verification.
type PaymentResult struct {
	Reference  string `json:"reference"`
	Message    string `json:"message"`
	Successful bool   `json:"successful"`
}

// MarketClient calls the marketplace endpoints.
type MarketClient struct {
	client *transport.Client
}

// NewMarketClient creates a MarketClient.
func NewMarketClient(c *transport.Client) *MarketClient {
	return &MarketClient{client: c}
}

// ListProducts returns every listed product.
func (m *MarketClient) ListProducts(ctx context.Context) ([]Product, error) {
	var resp struct {
		Products []Product `json:"allproductindb"`
	}
	if err := m.client.Get(ctx, "/marketplace", &resp); err != nil {
		return nil, err
	}
	if resp.Products == nil {
		return []Product{}, nil
	}
	return resp.Products, nil
}

// AddProduct lists a product. Only verified sellers are accepted by the server.
func (m *MarketClient) AddProduct(ctx context.Context, p Product) error {
	if p.Name == "" || p.Description == "" || p.Type == "" {
		return domain.ErrMissingArgument.WithDetails("name, description and type are required")
	}
	if p.Images == nil {
		p.Images = []Image{}
	}
	p.ID, p.SellerName, p.SellerNumber = "", "", ""
	return m.client.Post(ctx, "/addproduct", p, nil)
}

// VerifyPayment asks the server to confirm a payment by its reference.
func (m *MarketClient) VerifyPayment(ctx context.Context, reference string) (PaymentResult, error) {
	if reference == "" {
		return PaymentResult{}, domain.ErrMissingArgument.WithDetails("payment reference is required")
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := m.client.Get(ctx, "/verify/"+url.PathEscape(reference), &resp); err != nil {
		return PaymentResult{}, err
	}
	return PaymentResult{
		Reference:  reference,
		Message:    resp.Message,
		Successful: strings.Contains(strings.ToLower(resp.Message), "successful"),
	}, nil
}
