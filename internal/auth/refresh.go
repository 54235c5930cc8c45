package auth

import (
	"context"
	"net/http"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/transport"
)

// HTTPRefresher exchanges the refresh cookie for a new access token.
//
// It must be given the base client, not the reauth-wrapped one, so that a
// rejected refresh is never itself refreshed.
type HTTPRefresher struct {
	doer transport.Doer
	path string
}

// NewHTTPRefresher creates a refresher posting to path.
func NewHTTPRefresher(doer transport.Doer, path string) *HTTPRefresher {
	return &HTTPRefresher{doer: doer, path: path}
}

// Refresh implements transport.Refresher.
func (r *HTTPRefresher) Refresh(ctx context.Context) (string, error) {
	resp, err := r.doer.Do(ctx, transport.NewRequest(http.MethodPost, r.path, nil))
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", domain.ErrRefreshRejected.
			WithStatus(resp.StatusCode).
			WithDetails(transport.ServerMessage(resp.Body))
	}
	return TokenFromResponse(resp)
}
