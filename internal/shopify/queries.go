package shopify

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

var findProductsQuery = mustParse("FindProductsBySKU", `
query FindProductsBySKU($query: String!, $first: Int!, $after: String, $variants: Int!) {
  products(first: $first, after: $after, query: $query) {
    edges {
      node {
        id
        title
        descriptionHtml
        status
        updatedAt
        publishedAt
        variants(first: $variants) {
          edges {
            node {
              id
              sku
            }
          }
        }
      }
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}`)

var deleteProductMutation = mustParse("DeleteProduct", `
mutation DeleteProduct($input: ProductDeleteInput!) {
  productDelete(input: $input) {
    deletedProductId
    userErrors {
      field
      message
    }
  }
}`)

var shopQuery = mustParse("Shop", `
query Shop {
  shop {
    name
    myshopifyDomain
  }
}`)

// mustParse syntax-checks a GraphQL document and returns it unchanged.
func mustParse(name, doc string) string {
	if _, err := parser.ParseQuery(&ast.Source{Name: name, Input: doc}); err != nil {
		panic(fmt.Sprintf("shopify: invalid GraphQL document %s: %v", name, err))
	}
	return doc
}
