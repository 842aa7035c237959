// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchClient wraps the Elasticsearch client
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// NewElasticsearch creates a client for a single node URL. Credentials in the
// URL's user info are used for basic auth.
func NewElasticsearch(esURL string, timeout time.Duration) (*ElasticsearchClient, error) {
	u, err := url.Parse(esURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid elasticsearch url %q", esURL)
	}

	esCfg := elasticsearch.Config{}
	if u.User != nil {
		esCfg.Username = u.User.Username()
		esCfg.Password, _ = u.User.Password()
		u.User = nil
	}
	esCfg.Addresses = []string{u.String()}
	if timeout > 0 {
		esCfg.Transport = &http.Transport{ResponseHeaderTimeout: timeout}
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

// Ping tests the Elasticsearch connection
func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(
		c.Client.Ping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}
