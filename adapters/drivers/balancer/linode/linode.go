package linode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	balancerdrv "github.com/kompox/nbcertsync/adapters/drivers/balancer"
	"github.com/kompox/nbcertsync/domain"
	"github.com/kompox/nbcertsync/domain/model"
	"github.com/kompox/nbcertsync/internal/metrics"
	"github.com/kompox/nbcertsync/internal/retry"
)

const (
	// DefaultAPIURL is the Linode API v4 base URL.
	DefaultAPIURL = "https://api.linode.com/v4"

	defaultTimeout  = 30 * time.Second
	maxResponseBody = 64 << 10
)

// driver implements the Linode NodeBalancer driver.
type driver struct {
	token     string
	apiURL    string
	client    *http.Client
	timeout   time.Duration
	policy    retry.Policy
	limiter   *rate.Limiter
	userAgent string
	metrics   *metrics.Recorder
}

// ID returns the driver identifier.
func (d *driver) ID() string { return "linode" }

func init() {
	balancerdrv.Register("linode", New)
}

// New builds the Linode driver from settings.
func New(s *balancerdrv.Settings) (balancerdrv.Driver, error) {
	if s == nil {
		return nil, fmt.Errorf("linode settings are required")
	}
	if strings.TrimSpace(s.Token) == "" {
		return nil, fmt.Errorf("linode API token is required")
	}
	apiURL := strings.TrimRight(s.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if u, err := url.Parse(apiURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid linode API URL %q", s.APIURL)
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := s.HTTPClient
	if client == nil {
		client = newHTTPClient()
	}
	var limiter *rate.Limiter
	if s.RateLimit > 0 {
		burst := s.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.RateLimit), burst)
	}
	ua := s.UserAgent
	if ua == "" {
		ua = "nbcertsync"
	}
	return &driver{
		token:     s.Token,
		apiURL:    apiURL,
		client:    client,
		timeout:   timeout,
		policy:    s.Retry,
		limiter:   limiter,
		userAgent: ua,
		metrics:   s.Metrics,
	}, nil
}

// newHTTPClient returns a pooled client. Per-call deadlines come from contexts.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       60 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// configUpdate is the NodeBalancer config update body.
type configUpdate struct {
	Protocol string `json:"protocol"`
	SSLCert  string `json:"ssl_cert"`
	SSLKey   string `json:"ssl_key"`
}

// apiErrorBody is Linode's error envelope.
type apiErrorBody struct {
	Errors []struct {
		Reason string `json:"reason"`
		Field  string `json:"field,omitempty"`
	} `json:"errors"`
}

// PushCertificate sends the material as the HTTPS config's ssl_cert/ssl_key.
// The request is a full PUT of the same body for the same material, so
// repeating it converges to the same config.
func (d *driver) PushCertificate(ctx context.Context, target model.LoadBalancerTarget, material *model.CredentialMaterial) (res *domain.PushResult, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "PushCertificate", target)
	defer func() { cleanup(err) }()

	if err := target.Validate(); err != nil {
		return nil, &model.PushError{Kind: model.PushRejected, Reason: err.Error()}
	}
	if material == nil {
		return nil, &model.PushError{Kind: model.PushRejected, Reason: "no certificate material"}
	}
	body, err := json.Marshal(configUpdate{
		Protocol: "https",
		SSLCert:  string(material.CertificatePEM),
		SSLKey:   string(material.PrivateKeyPEM),
	})
	if err != nil {
		return nil, fmt.Errorf("encode config update: %w", err)
	}
	endpoint := d.apiURL + "/nodebalancers/" + url.PathEscape(target.BalancerID) + "/configs/" + url.PathEscape(target.HTTPSConfigID)

	var lastStatus int
	attempts, err := retry.Do(ctx, d.policy, func(ctx context.Context, _ int) error {
		status, err := d.call(ctx, http.MethodPut, endpoint, body, d.metrics.ObservePushAttempt)
		lastStatus = status
		return err
	})
	if err == nil {
		return &domain.PushResult{Attempts: attempts, StatusCode: lastStatus}, nil
	}
	if !retry.IsRetryable(err) {
		pe := &model.PushError{Kind: model.PushRejected, Attempts: attempts, Err: err}
		var ae *apiError
		if errors.As(err, &ae) {
			pe.StatusCode, pe.Reason, pe.Err = ae.StatusCode, ae.Reason, nil
		}
		return nil, pe
	}
	return nil, &model.PushError{Kind: model.PushExhausted, StatusCode: lastStatus, Attempts: attempts, Err: errors.Unwrap(err)}
}

// Check reads the NodeBalancer once to confirm reachability and credentials.
func (d *driver) Check(ctx context.Context, target model.LoadBalancerTarget) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "Check", target)
	defer func() { cleanup(err) }()

	if err := target.Validate(); err != nil {
		return err
	}
	endpoint := d.apiURL + "/nodebalancers/" + url.PathEscape(target.BalancerID)
	if _, err := d.call(ctx, http.MethodGet, endpoint, nil, nil); err != nil {
		return fmt.Errorf("linode nodebalancer %s: %w", target.BalancerID, err)
	}
	return nil
}

// apiError is a non-2xx API response.
type apiError struct {
	StatusCode int
	Reason     string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Reason)
}

// call performs one API request. It returns the HTTP status (0 when no
// response arrived) and an error classified for retry: transport failures,
// timeouts, 429 and 5xx are Retryable; other non-2xx are terminal *apiError.
// observe, when set, sees the status of every request that was sent (0 for
// transport failures).
func (d *driver) call(ctx context.Context, method, endpoint string, body []byte, observe func(code int)) (int, error) {
	if observe == nil {
		observe = func(int) {}
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return 0, retry.Retryable(fmt.Errorf("rate limiter: %w", err))
		}
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", d.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		observe(0)
		return 0, retry.Retryable(fmt.Errorf("%s %s: %w", method, req.URL.Path, err))
	}
	defer resp.Body.Close()
	observe(resp.StatusCode)
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		err := &apiError{StatusCode: resp.StatusCode, Reason: errorReason(data, resp.Status)}
		return resp.StatusCode, retry.RetryableAfter(err, parseRetryAfter(resp.Header.Get("Retry-After")))
	default:
		return resp.StatusCode, &apiError{StatusCode: resp.StatusCode, Reason: errorReason(data, resp.Status)}
	}
}

// errorReason extracts Linode's error reasons, falling back to the status text.
func errorReason(data []byte, status string) string {
	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Errors) == 0 {
		return status
	}
	reasons := make([]string, 0, len(body.Errors))
	for _, e := range body.Errors {
		if e.Field != "" {
			reasons = append(reasons, e.Field+": "+e.Reason)
		} else {
			reasons = append(reasons, e.Reason)
		}
	}
	return strings.Join(reasons, "; ")
}

// parseRetryAfter accepts delta-seconds or an HTTP date. Zero when absent or invalid.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
