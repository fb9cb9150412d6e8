// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/mia-platform/hooklog/internal/destination"
	"github.com/mia-platform/hooklog/internal/info"
)

const (
	defaultAuthPath = "/oauth/token"

	// maxDetailBytes caps how much of an error response body ends up in the failure detail.
	maxDetailBytes = 512
)

var (
	errMissingEndpoint     = errors.New("missing webhook endpoint")
	errMultipleAuthMethods = errors.New("multiple authentication methods configured")
	errMissingClientID     = errors.New("client secret provided without client id")
	errMissingClientSecret = errors.New("client id provided without client secret")
)

var _ destination.Sender = &webhookDestination{}

// WebhookError is returned when the destination can not be configured.
type WebhookError struct {
	err error
}

func (e *WebhookError) Error() string {
	return "webhook: " + e.err.Error()
}

func (e *WebhookError) Unwrap() error {
	return e.err
}

func (e *WebhookError) Is(target error) bool {
	we, ok := target.(*WebhookError)
	if !ok {
		return false
	}

	return e.err.Error() == we.err.Error()
}

// webhookDestination implements destination.Sender posting every message to a webhook endpoint.
type webhookDestination struct {
	Endpoint     string        `env:"HOOKLOG_WEBHOOK_URL"`
	Token        string        `env:"HOOKLOG_WEBHOOK_TOKEN"`
	ClientID     string        `env:"HOOKLOG_WEBHOOK_CLIENT_ID"`
	ClientSecret string        `env:"HOOKLOG_WEBHOOK_CLIENT_SECRET"`
	AuthEndpoint string        `env:"HOOKLOG_WEBHOOK_AUTH_ENDPOINT"`
	Timeout      time.Duration `env:"HOOKLOG_WEBHOOK_TIMEOUT" envDefault:"10s"`

	client *http.Client
}

// NewDestination returns a new destination.Sender posting to endpoint. Every field can be
// overridden by the corresponding environment variable.
func NewDestination(ctx context.Context, endpoint string) (destination.Sender, error) {
	destination := &webhookDestination{
		Endpoint: endpoint,
	}
	if err := env.Parse(destination); err != nil {
		return nil, handleError(err)
	}

	if err := destination.validate(); err != nil {
		return nil, handleError(err)
	}

	destination.client = &http.Client{
		Timeout:   destination.Timeout,
		Transport: newTransport(ctx, destination.AuthEndpoint, destination.ClientID, destination.ClientSecret),
	}

	return destination, nil
}

// validate checks the endpoints and the authentication setup, filling the default auth endpoint.
func (d *webhookDestination) validate() error {
	if d.Endpoint == "" {
		return errMissingEndpoint
	}

	endpoint, err := url.Parse(d.Endpoint)
	if err != nil {
		return err
	}

	switch {
	case d.Token != "" && (d.ClientID != "" || d.ClientSecret != ""):
		return errMultipleAuthMethods
	case d.ClientID != "" && d.ClientSecret == "":
		return errMissingClientSecret
	case d.ClientID == "" && d.ClientSecret != "":
		return errMissingClientID
	}

	if d.AuthEndpoint == "" {
		d.AuthEndpoint = endpoint.Scheme + "://" + endpoint.Host + defaultAuthPath
		return nil
	}

	_, err = url.Parse(d.AuthEndpoint)
	return err
}

// newTransport returns a transport that authenticates every request with a client credentials
// token when both client id and secret are set.
func newTransport(ctx context.Context, tokenURL, clientID, clientSecret string) http.RoundTripper {
	if clientID == "" || clientSecret == "" {
		return http.DefaultTransport
	}

	config := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &oauth2.Transport{
		Source: config.TokenSource(ctx),
	}
}

// Send implements destination.Sender.
func (d *webhookDestination) Send(ctx context.Context, message *destination.Message) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}

	request.Header.Set("User-Agent", userAgentString())
	request.Header.Set("Content-Type", "application/json")
	if d.Token != "" {
		request.Header.Set("Authorization", "Bearer "+d.Token)
	}

	resp, err := d.httpClient().Do(request)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return destination.NewNoResponseError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return destination.NewStatusError(resp.StatusCode, responseDetail(resp))
}

func (d *webhookDestination) httpClient() *http.Client {
	if d.client == nil {
		return http.DefaultClient
	}
	return d.client
}

// responseDetail formats the status and the beginning of the response body.
func responseDetail(resp *http.Response) string {
	detail := fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
	if err != nil {
		return detail
	}

	if body := strings.TrimSpace(string(data)); body != "" {
		detail += " - " + body
	}
	return detail
}

// userAgentString returns the User-Agent string to be used in HTTP requests.
func userAgentString() string {
	return info.AppName + "/" + info.Version
}

func handleError(err error) error {
	var parseErr env.AggregateError
	if errors.As(err, &parseErr) {
		err = parseErr.Errors[0]
	}

	return &WebhookError{
		err: err,
	}
}
