package googledrive

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewService creates a Google Drive API service using the provided
// TokenSource. Extra client options (endpoint overrides in tests) are
// appended after the token source.
func NewService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*drive.Service, error) {
	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	return drive.NewService(ctx, all...)
}

// NewDriveLimiter returns the shared rate limiter for Drive calls.
// Google allows 10 requests/sec/user; stay under it.
func NewDriveLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(8), 10)
}
