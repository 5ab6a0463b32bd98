package task

import (
	"SwipeVault/config"
	"SwipeVault/internal/storage"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// HTTPStatusError is returned for non-200 HTTP responses.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

func hostAllowed(host string, allowlist []string) bool {
	if len(allowlist) == 0 {
		return true
	}
	host = strings.ToLower(strings.TrimSpace(host))
	for _, entry := range allowlist {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, ".") {
			if strings.HasSuffix(host, entry) {
				return true
			}
			continue
		}
		if host == entry {
			return true
		}
	}
	return false
}

func isLocalHostname(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "localhost" || host == "localhost.localdomain" {
		return true
	}
	return strings.HasSuffix(host, ".local")
}

func isBlockedIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if ip.IsLoopback() || ip.IsMulticast() || ip.IsLinkLocalMulticast() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
		return true
	}
	return ip.IsPrivate()
}

func validateIngestURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme")
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("missing host")
	}
	if !hostAllowed(host, config.AppConfig.IngestAllowedHosts) {
		return nil, fmt.Errorf("host not allowed")
	}
	if config.AppConfig.IngestAllowPrivate {
		return u, nil
	}
	if isLocalHostname(host) {
		return nil, fmt.Errorf("host not allowed")
	}
	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return nil, fmt.Errorf("ip not allowed")
		}
		return u, nil
	}
	ips, err := net.LookupIP(host)
	if err != nil || len(ips) == 0 {
		return nil, fmt.Errorf("host not resolvable")
	}
	for _, ip := range ips {
		if isBlockedIP(ip) {
			return nil, fmt.Errorf("ip not allowed")
		}
	}
	return u, nil
}

// ValidateIngestSourceURL validates an ingest source URL before job creation.
func ValidateIngestSourceURL(rawURL string) error {
	_, err := validateIngestURL(rawURL)
	return err
}

// DownloadToStorage streams a source URL into the blob store under key and
// returns the stored size and content type.
func DownloadToStorage(ctx context.Context, rawURL, key string) (int64, string, error) {
	parsed, err := validateIngestURL(rawURL)
	if err != nil {
		return 0, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return 0, "", err
	}
	client := &http.Client{
		Timeout: config.AppConfig.IngestHTTPTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			_, err := validateIngestURL(req.URL.String())
			return err
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, "", &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}
	if config.AppConfig.IngestMaxBytes > 0 {
		if resp.ContentLength < 0 {
			return 0, "", fmt.Errorf("unknown content length")
		}
		if resp.ContentLength > config.AppConfig.IngestMaxBytes {
			return 0, "", fmt.Errorf("content too large")
		}
	}
	if storage.Default == nil {
		return 0, "", fmt.Errorf("storage not initialized")
	}
	contentType := resp.Header.Get("Content-Type")
	if err := storage.Default.PutObject(
		ctx,
		key,
		resp.Body,
		resp.ContentLength,
		storage.PutOptions{ContentType: contentType},
	); err != nil {
		return 0, "", err
	}
	return resp.ContentLength, contentType, nil
}
