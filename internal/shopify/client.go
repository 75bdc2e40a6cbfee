// Package shopify implements the catalog client against the Shopify Admin
// GraphQL API.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/skusweep/internal/retry"
	"github.com/agentstation/skusweep/internal/transport"
	"github.com/agentstation/skusweep/internal/utils/ptr"
	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
	"github.com/agentstation/skusweep/pkg/logging"
)

// Client looks up and deletes products through the Admin GraphQL API.
type Client struct {
	http     *transport.Client
	endpoint string
	strict   bool
	pageSize int
	maxPages int
}

// Option configures a Client.
type Option func(*Client)

// WithStrictMatch controls whether a product only counts as a match when one
// of its variants carries the identifier exactly. Enabled by default; when
// disabled every product returned by the search counts.
func WithStrictMatch(strict bool) Option {
	return func(c *Client) {
		c.strict = strict
	}
}

// WithPageSize sets how many products are requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= constants.DefaultPageSize {
			c.pageSize = n
		}
	}
}

// WithMaxPages bounds pagination for a single identifier.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithEndpoint overrides the GraphQL endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// New creates a Client that sends requests to endpoint through tr.
func New(tr *transport.Client, endpoint string, opts ...Option) *Client {
	c := &Client{
		http:     tr,
		endpoint: endpoint,
		strict:   true,
		pageSize: constants.DefaultPageSize,
		maxPages: constants.MaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint builds the Admin GraphQL URL for a shop. The shop may be given as
// a bare name ("demo"), a domain ("demo.myshopify.com") or a full URL.
func Endpoint(shop, apiVersion string) (string, error) {
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return "", errors.NewConfigError("shopify", "shop is required", errors.ErrInvalidInput)
	}
	if apiVersion == "" {
		apiVersion = constants.DefaultShopifyAPIVersion
	}

	host := shop
	scheme := "https"
	if strings.Contains(shop, "://") {
		u, err := url.Parse(shop)
		if err != nil || u.Host == "" {
			return "", errors.NewConfigError("shopify", fmt.Sprintf("invalid shop URL %q", shop), err)
		}
		scheme, host = u.Scheme, u.Host
	} else if !strings.Contains(shop, ".") {
		host = shop + ".myshopify.com"
	}
	host = strings.TrimSuffix(host, "/")

	return fmt.Sprintf("%s://%s/admin/api/%s/graphql.json", scheme, host, apiVersion), nil
}

// FindByIdentifier implements catalog.Finder.
func (c *Client) FindByIdentifier(ctx context.Context, id catalog.Identifier) ([]catalog.Record, error) {
	sku := string(id)
	logger := logging.FromContext(ctx)

	records := []catalog.Record{}
	var after *string
	for page := 1; ; page++ {
		vars := map[string]any{
			"query":    searchQuery(sku),
			"first":    c.pageSize,
			"variants": constants.VariantsPerProduct,
		}
		if after != nil {
			vars["after"] = *after
		}

		var data productsData
		if err := c.execute(ctx, findProductsQuery, vars, &data); err != nil {
			return nil, err
		}

		for _, edge := range data.Products.Edges {
			node := edge.Node
			if c.strict && !node.hasSKU(sku) {
				continue
			}
			records = append(records, toRecord(node, sku))
		}

		info := data.Products.PageInfo
		if !info.HasNextPage || info.EndCursor == nil {
			break
		}
		if page >= c.maxPages {
			logger.Warn().
				Str("sku", sku).
				Int("pages", page).
				Msg("Stopped paginating products, results truncated")
			break
		}
		after = info.EndCursor
	}

	logger.Debug().Str("sku", sku).Int("matches", len(records)).Msg("Looked up products")
	return records, nil
}

// Delete implements catalog.Deleter.
func (c *Client) Delete(ctx context.Context, recordID string) (catalog.DeleteResult, error) {
	vars := map[string]any{
		"input": map[string]any{"id": recordID},
	}

	var data deleteData
	if err := c.execute(ctx, deleteProductMutation, vars, &data); err != nil {
		var gqlErr *queryError
		if errors.As(err, &gqlErr) {
			if isMissing(gqlErr.message) {
				return catalog.NotFound, nil
			}
			return catalog.NotFound, errors.NewDeletionError(recordID, "", gqlErr.message)
		}
		return catalog.NotFound, err
	}

	res := data.ProductDelete
	for _, ue := range res.UserErrors {
		if isMissing(ue.Message) {
			return catalog.NotFound, nil
		}
	}
	if len(res.UserErrors) > 0 {
		first := res.UserErrors[0]
		return catalog.NotFound, errors.NewDeletionError(recordID, strings.Join(first.Field, "."), first.Message)
	}
	if res.DeletedProductID == nil || *res.DeletedProductID == "" {
		return catalog.NotFound, nil
	}
	return catalog.Deleted, nil
}

// CheckAccess verifies that the endpoint is reachable and the token accepted.
func (c *Client) CheckAccess(ctx context.Context) (string, error) {
	var data shopData
	if err := c.execute(ctx, shopQuery, nil, &data); err != nil {
		return "", err
	}
	return data.Shop.MyshopifyDomain, nil
}

// queryError is a non-throttling GraphQL error returned in a 200 response.
type queryError struct {
	message string
	code    string
}

func (e *queryError) Error() string {
	if e.code != "" {
		return fmt.Sprintf("graphql error (%s): %s", e.code, e.message)
	}
	return "graphql error: " + e.message
}

// execute sends a GraphQL document and decodes its data into result.
//
// Shopify reports throttling as a 200 response with a THROTTLED error code,
// which the transport cannot see. Those are retried here with the
// transport's policy. HTTP level failures were already retried by the
// transport and are returned as is.
func (c *Client) execute(ctx context.Context, query string, vars map[string]any, result any) error {
	logger := logging.FromContext(ctx)
	_, err := retry.Do(ctx, c.http.RetryPolicy(), func(int) error {
		var resp graphQLResponse
		if err := c.http.PostJSON(ctx, c.endpoint, graphQLRequest{Query: query, Variables: vars}, &resp); err != nil {
			return retry.Stop(err)
		}
		if err := c.responseError(resp); err != nil {
			return err
		}
		if result != nil && len(resp.Data) > 0 {
			if err := json.Unmarshal(resp.Data, result); err != nil {
				return errors.WrapParse("json", "graphql data", err)
			}
		}
		return nil
	}, func(attempt int, err error, next time.Duration) {
		logger.Debug().Err(err).Int("attempt", attempt).Dur("backoff", next).Msg("Shopify throttled request, retrying")
	})
	return err
}

// responseError maps the first GraphQL error to a typed error.
func (c *Client) responseError(resp graphQLResponse) error {
	if len(resp.Errors) == 0 {
		return nil
	}
	first := resp.Errors[0]
	switch first.code() {
	case "THROTTLED":
		return &errors.APIError{
			Provider:   constants.ProviderShopify,
			StatusCode: http.StatusTooManyRequests,
			Message:    first.Message,
			Endpoint:   c.endpoint,
		}
	case "ACCESS_DENIED":
		return &errors.AuthenticationError{
			Provider: constants.ProviderShopify,
			Method:   "access_token",
			Message:  first.Message,
			Err:      errors.ErrAccessTokenInvalid,
		}
	}
	return &queryError{message: first.Message, code: first.code()}
}

// searchQuery builds the product search expression for an exact SKU.
func searchQuery(sku string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(sku)
	return `sku:"` + escaped + `"`
}

func isMissing(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "does not exist") || strings.Contains(m, "not found")
}

func toRecord(p productNode, sku string) catalog.Record {
	return catalog.Record{
		ID:              p.ID,
		IdentifierValue: sku,
		Title:           p.Title,
		Description:     p.DescriptionHTML,
		State:           catalog.ParseLifecycleState(p.Status),
		UpdatedAt:       parseTime(p.UpdatedAt),
		PublishedAt:     parseTime(p.PublishedAt),
		VariantCount:    len(p.Variants.Edges),
	}
}

func parseTime(s *string) *utc.Time {
	v := ptr.Deref(s, "")
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return ptr.To(utc.New(t))
}

var _ catalog.Client = (*Client)(nil)
