// Package render hands an exported project to the owner's external rendering
// backend. This service never renders anything itself.
package render

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Shimizu-Technology/storyboard-api/internal/apperr"
	"github.com/Shimizu-Technology/storyboard-api/internal/logging"
	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// Target is where, and with which key, a payload is submitted.
type Target struct {
	URL    string
	APIKey string
}

// Service submits export payloads to a rendering backend.
//
// Backend URLs come from owner settings, so by default the service refuses
// to connect to loopback, private, link-local and unspecified addresses.
// The check runs before the request and again at dial time, which also
// covers redirects and DNS answers that change between the two.
type Service struct {
	client       *http.Client
	log          *logging.Logger
	allowPrivate bool
}

// New creates a render submission service. A nil client gets a 30s timeout
// and a traced transport whose dialer enforces the address guard.
func New(client *http.Client, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	s := &Service{log: log}
	if client == nil {
		dialer := &net.Dialer{Timeout: 10 * time.Second, Control: s.checkDial}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = dialer.DialContext
		client = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(transport),
		}
	}
	s.client = client
	return s
}

// AllowPrivateHosts disables the address guard, for single-tenant setups
// where the render backend runs on the same host or network.
func (s *Service) AllowPrivateHosts() *Service {
	s.allowPrivate = true
	return s
}

// blockedIP reports whether ip is an address owner-supplied URLs must not reach.
func blockedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast()
}

// checkDial is the dialer Control hook; address is the resolved ip:port.
func (s *Service) checkDial(_, address string, _ syscall.RawConn) error {
	if s.allowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip != nil && blockedIP(ip) {
		return fmt.Errorf("render backend address %s is not allowed", host)
	}
	return nil
}

// checkHost resolves host and rejects it when any address is blocked.
// Lookup failures are left to the dial, which reports them as unreachable.
func (s *Service) checkHost(ctx context.Context, host string) error {
	if s.allowPrivate {
		return nil
	}
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil
		}
		for _, a := range addrs {
			ips = append(ips, a.IP)
		}
	}
	for _, ip := range ips {
		if blockedIP(ip) {
			return apperr.Configuration("renderBackendUrl points at a private or local address, which this server does not call")
		}
	}
	return nil
}

// SignPayload creates an HMAC-SHA256 signature for a payload so the backend
// can check it came from us.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Submit POSTs payload to target once. There is no retry: the caller sees
// the backend's answer (or failure) directly.
func (s *Service) Submit(ctx context.Context, target Target, payload models.ExportPayload) (*models.RenderSubmission, error) {
	endpoint := strings.TrimSpace(target.URL)
	if endpoint == "" {
		return nil, apperr.Configuration("render backend not configured; save renderBackendUrl in your settings")
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.Configuration("renderBackendUrl must be an absolute http(s) URL")
	}
	if err := s.checkHost(ctx, u.Hostname()); err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "StoryboardAPI-Render/1.0")
	if target.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+target.APIKey)
		req.Header.Set("X-Storyboard-Signature", SignPayload(body, target.APIKey))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("render submission failed", "project_id", payload.ID, "error", err)
		return nil, apperr.Provider(0, err, "render backend unreachable")
	}
	defer resp.Body.Close()

	// Keep only a bounded snippet of the backend's answer.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))

	submission := &models.RenderSubmission{
		ProjectID:   payload.ID,
		BackendURL:  endpoint,
		StatusCode:  resp.StatusCode,
		Response:    strings.TrimSpace(string(snippet)),
		SubmittedAt: time.Now().UTC(),
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return submission, apperr.Configuration("render backend rejected the key; check renderBackendApiKey in your settings")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return submission, apperr.Provider(resp.StatusCode, nil, "render backend returned %d", resp.StatusCode)
	}

	s.log.Info("✅ Render submitted", "project_id", payload.ID, "status", resp.StatusCode)
	return submission, nil
}
