package database

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"work-advisor/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchClient keeps one document per key in a dedicated index.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
	index  string
}

type kvDocument struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.GetURL() != "" {
		addresses = []string{cfg.GetURL()}
	}
	esCfg := elasticsearch.Config{
		Addresses: addresses,
	}

	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	index := cfg.Index
	if index == "" {
		index = "work-advisor-kv"
	}
	return &ElasticsearchClient{Client: es, index: index}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

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

func (c *ElasticsearchClient) Get(ctx context.Context, key string) (string, error) {
	res, err := c.Client.Get(c.index, key, c.Client.Get.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("elasticsearch get %s: %w", key, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return "", ErrKeyNotFound
	}
	if res.IsError() {
		return "", fmt.Errorf("elasticsearch get %s: %s", key, res.Status())
	}

	var body struct {
		Found  bool       `json:"found"`
		Source kvDocument `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode elasticsearch document %s: %w", key, err)
	}
	if !body.Found {
		return "", ErrKeyNotFound
	}
	return body.Source.Value, nil
}

func (c *ElasticsearchClient) Set(ctx context.Context, key, value string) error {
	doc, err := json.Marshal(kvDocument{Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	res, err := c.Client.Index(
		c.index,
		strings.NewReader(string(doc)),
		c.Client.Index.WithDocumentID(key),
		c.Client.Index.WithRefresh("true"),
		c.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index %s: %w", key, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch index %s: %s", key, res.Status())
	}
	return nil
}

// Close is a no-op; the client holds no long-lived connections of its own.
func (c *ElasticsearchClient) Close() error { return nil }
