package archive

import (
	"fmt"
	"net/url"
	"strings"

	"saafetch/pkg/config"
)

// Endpoints holds the archive URLs a Client talks to
type Endpoints struct {
	// BaseURL is the origin highres part URLs are resolved against
	BaseURL string
	// DownloadInfoURL is the directory holding <identifier>.xml descriptors
	DownloadInfoURL string
	// QueueDownloadURL is the directory holding <identifier>.xml preparation triggers
	QueueDownloadURL string
}

// DefaultEndpoints returns the Stadsarchief Amsterdam endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{
		BaseURL:          config.DefaultBaseURL,
		DownloadInfoURL:  config.DefaultDownloadInfoURL,
		QueueDownloadURL: config.DefaultQueueDownloadURL,
	}
}

// EndpointsFromConfig copies the configured endpoints
func EndpointsFromConfig(cfg config.ArchiveConfig) Endpoints {
	return Endpoints{
		BaseURL:          cfg.BaseURL,
		DownloadInfoURL:  cfg.DownloadInfoURL,
		QueueDownloadURL: cfg.QueueDownloadURL,
	}
}

// ForServer points every endpoint at the standard API paths under baseURL.
// Handy for test servers and mirrors.
func ForServer(baseURL string) Endpoints {
	base := strings.TrimSuffix(baseURL, "/")
	return Endpoints{
		BaseURL:          base,
		DownloadInfoURL:  base + "/api/download_info/0/",
		QueueDownloadURL: base + "/api/queue_download/0/",
	}
}

// DescriptorURL returns the descriptor location for an identifier
func (e Endpoints) DescriptorURL(identifier string) string {
	return itemURL(e.DownloadInfoURL, identifier)
}

// QueueURL returns the preparation trigger for an identifier
func (e Endpoints) QueueURL(identifier string) string {
	return itemURL(e.QueueDownloadURL, identifier)
}

// Resolve resolves a part URL from a descriptor against the archive origin
func (e Endpoints) Resolve(ref string) (string, error) {
	base, err := url.Parse(e.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("parse part URL %q: %w", ref, err)
	}
	return base.ResolveReference(u).String(), nil
}

func itemURL(dir, identifier string) string {
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir + url.PathEscape(identifier) + ".xml"
}
