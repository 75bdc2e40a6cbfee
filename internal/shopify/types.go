package shopify

import (
	"encoding/json"
	"strings"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

type graphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// code returns the Shopify error code, e.g. THROTTLED.
func (e graphQLError) code() string {
	if c, ok := e.Extensions["code"].(string); ok {
		return c
	}
	return ""
}

type productsData struct {
	Products struct {
		Edges []struct {
			Node productNode `json:"node"`
		} `json:"edges"`
		PageInfo struct {
			HasNextPage bool    `json:"hasNextPage"`
			EndCursor   *string `json:"endCursor"`
		} `json:"pageInfo"`
	} `json:"products"`
}

type productNode struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	DescriptionHTML string  `json:"descriptionHtml"`
	Status          string  `json:"status"`
	UpdatedAt       *string `json:"updatedAt"`
	PublishedAt     *string `json:"publishedAt"`
	Variants        struct {
		Edges []struct {
			Node struct {
				ID  string `json:"id"`
				SKU string `json:"sku"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

// hasSKU reports whether any variant carries exactly sku.
func (p productNode) hasSKU(sku string) bool {
	for _, v := range p.Variants.Edges {
		if strings.TrimSpace(v.Node.SKU) == sku {
			return true
		}
	}
	return false
}

type deleteData struct {
	ProductDelete struct {
		DeletedProductID *string     `json:"deletedProductId"`
		UserErrors       []userError `json:"userErrors"`
	} `json:"productDelete"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type shopData struct {
	Shop struct {
		Name            string `json:"name"`
		MyshopifyDomain string `json:"myshopifyDomain"`
	} `json:"shop"`
}
