package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-training/gh-notifier/pkg/core"
)

// safeCall performs req and decodes a 2xx JSON body into out. Failures are
// returned wrapping a core.NetworkError kind. Cancellation of ctx is returned
// as ctx.Err() and carries no kind.
func (c *Client) safeCall(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()
	return responseToResult(resp, out)
}

// transportError classifies an error returned before any response arrived.
func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %w", core.NetworkNoInternet, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return fmt.Errorf("%w: %w", core.NetworkNoInternet, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", core.NetworkRequestTimeout, err)
	}
	return fmt.Errorf("%w: %w", core.NetworkUnknown, err)
}

// responseToResult maps the HTTP status to a result.
func responseToResult(resp *http.Response, out any) error {
	switch code := resp.StatusCode; {
	case code >= 200 && code <= 299:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %w", core.NetworkSerialization, err)
		}
		return nil
	case code == http.StatusRequestTimeout:
		return fmt.Errorf("%w: status %d", core.NetworkRequestTimeout, code)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", core.NetworkTooManyRequests, code)
	case code >= 500 && code <= 599:
		return fmt.Errorf("%w: status %d", core.NetworkServerError, code)
	default:
		return fmt.Errorf("%w: status %d", core.NetworkUnknown, code)
	}
}
