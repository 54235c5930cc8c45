package transport

import (
	"context"
	"net/http"
)

// Client is the typed entry point used by the API clients. Non-2xx responses
// become domain errors.
type Client struct {
	doer Doer
}

// NewClient creates a Client over doer, usually a reauth-wrapped HTTPClient.
func NewClient(doer Doer) *Client {
	return &Client{doer: doer}
}

// Do sends req and returns the response when its status is 2xx.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := CheckResponse(resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Request sends a request and decodes the JSON response into out when out is non-nil.
func (c *Client) Request(ctx context.Context, method, path string, body any, header http.Header, out any) error {
	req := NewRequest(method, path, body)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Request(ctx, http.MethodGet, path, nil, nil, out)
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPost, path, body, nil, out)
}
