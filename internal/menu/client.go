package menu

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound    = errors.New("catalog item not found")
	ErrBadStatus   = errors.New("catalog bad status")
	ErrUnavailable = errors.New("catalog unavailable")
)

// Client talks to the catalog service's menu-items API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 3 * time.Second},
	}
}

// List returns every item, newest first.
func (c *Client) List(ctx context.Context) ([]Item, error) {
	var out []Item
	if err := c.getJSON(ctx, "/menu-items", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search runs a free-text name search. A blank query matches nothing.
func (c *Client) Search(ctx context.Context, query string) ([]Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Item{}, nil
	}

	var out []Item
	if err := c.getJSON(ctx, "/menu-items", url.Values{"q": {query}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (Item, error) {
	var it Item
	if err := c.getJSON(ctx, "/menu-items/"+url.PathEscape(id), nil, &it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// GetMany fetches the given ids in one round trip. Unknown ids are simply
// absent from the result.
func (c *Client) GetMany(ctx context.Context, ids []string) ([]Item, error) {
	if len(ids) == 0 {
		return []Item{}, nil
	}

	var out []Item
	if err := c.getJSON(ctx, "/menu-items", url.Values{"ids": {strings.Join(ids, ",")}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/readyz", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrBadStatus, "status=%d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		_, _ = io.Copy(io.Discard, resp.Body)
		return errors.Wrapf(ErrUnavailable, "status=%d", resp.StatusCode)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return errors.Wrapf(ErrBadStatus, "status=%d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode catalog response")
	}
	return nil
}

// SearchSource adapts a name search to a listing Source.
func SearchSource(c *Client, query string) Source {
	return SourceFunc(func(ctx context.Context) ([]Item, error) {
		return c.Search(ctx, query)
	})
}
