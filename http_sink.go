package spankit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

const (
	transactionsHTTPMethod = "POST"
	transactionsHTTPPath   = "/v1/transactions"

	contentTypeHeaderKey   = "Content-Type"
	contentTypeJSON        = "application/json"
	authorizationHeaderKey = "Authorization"
)

// HTTPSink delivers transaction events to a collector endpoint as JSON over
// HTTP. Transient failures are retried by the underlying client; a response
// with an error status after the retry budget is exhausted surfaces as an
// error from Capture.
type HTTPSink struct {
	endpoint    string
	accessToken string

	client *retryablehttp.Client
}

// NewHTTPSink builds a sink for the endpoint and credentials in opts.
func NewHTTPSink(opts Options) *HTTPSink {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.HTTPClient.Timeout = opts.ReportTimeout
	client.Logger = nil

	return &HTTPSink{
		endpoint:    opts.Endpoint,
		accessToken: opts.AccessToken,
		client:      client,
	}
}

func (s *HTTPSink) Capture(event *TransactionEvent) error {
	body, err := sonic.Marshal(event)
	if err != nil {
		return err
	}

	request, err := s.toRequest(body)
	if err != nil {
		return err
	}

	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	io.Copy(io.Discard, response.Body)

	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("collector returned status %d", response.StatusCode)
	}

	return nil
}

func (s *HTTPSink) toRequest(body []byte) (*retryablehttp.Request, error) {
	request, err := retryablehttp.NewRequest(transactionsHTTPMethod, s.endpoint+transactionsHTTPPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set(contentTypeHeaderKey, contentTypeJSON)
	if s.accessToken != "" {
		request.Header.Set(authorizationHeaderKey, "Bearer "+s.accessToken)
	}
	return request, nil
}
