// Package oembed turns a video page URL into provider embed markup.
package oembed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"educa/logger"
)

// Resolver returns embed HTML for a video URL. An empty result means the
// video is rendered as a plain link.
type Resolver interface {
	Resolve(ctx context.Context, videoURL string) (string, error)
}

type response struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

// Client queries one oEmbed endpoint, e.g. https://www.youtube.com/oembed.
type Client struct {
	endpoint string
	http     *resty.Client
	log      *logger.Logger
}

func New(endpoint string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		endpoint: endpoint,
		http:     resty.New().SetTimeout(5 * time.Second).SetRetryCount(1),
		log:      log.With("service", "OEmbed"),
	}
}

func (c *Client) Resolve(ctx context.Context, videoURL string) (string, error) {
	var out response
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"url": videoURL, "format": "json"}).
		SetResult(&out).
		Get(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("oembed request: %w", err)
	}
	if resp.StatusCode() != 200 {
		c.log.Warn("oembed lookup failed", "url", videoURL, "status", resp.StatusCode())
		return "", nil
	}
	if out.Type != "video" && out.Type != "rich" {
		return "", nil
	}
	return strings.TrimSpace(out.HTML), nil
}

// Nop never embeds.
type Nop struct{}

func (Nop) Resolve(context.Context, string) (string, error) { return "", nil }
