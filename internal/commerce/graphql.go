package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultAPIVersion = "2024-01"

type Config struct {
	Domain     string
	Token      string
	APIVersion string
	Timeout    time.Duration
}

// GraphQLClient talks to the storefront GraphQL endpoint of the hosted
// commerce platform.
type GraphQLClient struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

func NewGraphQLClient(cfg Config) (*GraphQLClient, error) {
	if !IsConfigured(cfg.Domain, cfg.Token) {
		return nil, fmt.Errorf("commerce domain and token are required")
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	base := strings.TrimSuffix(cfg.Domain, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &GraphQLClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoint:   fmt.Sprintf("%s/api/%s/graphql.json", base, version),
		token:      cfg.Token,
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

func (c *GraphQLClient) do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commerce request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("commerce returned status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(raw, &gqlResp); err != nil {
		return fmt.Errorf("unmarshal response failed: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("commerce graphql error: %s", gqlResp.Errors[0].Message)
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("unmarshal data failed: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}

const checkoutFields = `
	id
	webUrl
	completedAt
	lineItems(first: 100) {
		edges {
			node {
				id
				title
				quantity
				variant {
					id
					title
					price { amount }
					image { url }
					product { id }
				}
			}
		}
	}`

const productsQuery = `
query products {
	products(first: 50) {
		edges {
			node {
				id
				title
				productType
				featuredImage { url }
				priceRange { minVariantPrice { amount } }
				compareAtPriceRange { minVariantPrice { amount } }
				rating: metafield(namespace: "reviews", key: "rating") { value }
				ratingCount: metafield(namespace: "reviews", key: "rating_count") { value }
				variants(first: 20) {
					edges {
						node {
							id
							title
							price { amount }
							compareAtPrice { amount }
						}
					}
				}
			}
		}
	}
}`

var (
	createCheckoutMutation = `
mutation checkoutCreate($input: CheckoutCreateInput!) {
	checkoutCreate(input: $input) {
		checkout {` + checkoutFields + `
		}
		checkoutUserErrors { message }
	}
}`

	fetchCheckoutQuery = `
query checkout($id: ID!) {
	node(id: $id) {
		... on Checkout {` + checkoutFields + `
		}
	}
}`

	addLinesMutation = `
mutation checkoutLineItemsAdd($checkoutId: ID!, $lineItems: [CheckoutLineItemInput!]!) {
	checkoutLineItemsAdd(checkoutId: $checkoutId, lineItems: $lineItems) {
		checkout {` + checkoutFields + `
		}
		checkoutUserErrors { message }
	}
}`

	removeLinesMutation = `
mutation checkoutLineItemsRemove($checkoutId: ID!, $lineItemIds: [ID!]!) {
	checkoutLineItemsRemove(checkoutId: $checkoutId, lineItemIds: $lineItemIds) {
		checkout {` + checkoutFields + `
		}
		checkoutUserErrors { message }
	}
}`

	updateLinesMutation = `
mutation checkoutLineItemsUpdate($checkoutId: ID!, $lineItems: [CheckoutLineItemUpdateInput!]!) {
	checkoutLineItemsUpdate(checkoutId: $checkoutId, lineItems: $lineItems) {
		checkout {` + checkoutFields + `
		}
		checkoutUserErrors { message }
	}
}`
)

type moneyV2 struct {
	Amount string `json:"amount"`
}

type imageRef struct {
	URL string `json:"url"`
}

type metafield struct {
	Value string `json:"value"`
}

type productRef struct {
	ID string `json:"id"`
}

type lineVariant struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Price   moneyV2    `json:"price"`
	Image   *imageRef  `json:"image"`
	Product productRef `json:"product"`
}

type lineItemNode struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Quantity int          `json:"quantity"`
	Variant  *lineVariant `json:"variant"`
}

type lineItemEdge struct {
	Node lineItemNode `json:"node"`
}

type lineItemConnection struct {
	Edges []lineItemEdge `json:"edges"`
}

type checkoutNode struct {
	ID          string             `json:"id"`
	WebURL      string             `json:"webUrl"`
	CompletedAt *string            `json:"completedAt"`
	LineItems   lineItemConnection `json:"lineItems"`
}

type checkoutPayload struct {
	Checkout   *checkoutNode  `json:"checkout"`
	UserErrors []graphQLError `json:"checkoutUserErrors"`
}

type priceRange struct {
	MinVariantPrice moneyV2 `json:"minVariantPrice"`
}

type variantNode struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Price          moneyV2  `json:"price"`
	CompareAtPrice *moneyV2 `json:"compareAtPrice"`
}

type variantEdge struct {
	Node variantNode `json:"node"`
}

type variantConnection struct {
	Edges []variantEdge `json:"edges"`
}

type productNode struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	ProductType         string            `json:"productType"`
	FeaturedImage       *imageRef         `json:"featuredImage"`
	PriceRange          priceRange        `json:"priceRange"`
	CompareAtPriceRange *priceRange       `json:"compareAtPriceRange"`
	Rating              *metafield        `json:"rating"`
	RatingCount         *metafield        `json:"ratingCount"`
	Variants            variantConnection `json:"variants"`
}

type productEdge struct {
	Node productNode `json:"node"`
}

func (c *GraphQLClient) Products(ctx context.Context) ([]domain.RemoteProduct, error) {
	var data struct {
		Products struct {
			Edges []productEdge `json:"edges"`
		} `json:"products"`
	}
	if err := c.do(ctx, productsQuery, nil, &data); err != nil {
		return nil, err
	}

	products := make([]domain.RemoteProduct, 0, len(data.Products.Edges))
	for _, edge := range data.Products.Edges {
		products = append(products, convertProduct(edge.Node))
	}
	return products, nil
}

func (c *GraphQLClient) CreateCheckout(ctx context.Context) (*domain.CheckoutSession, error) {
	var data struct {
		Payload checkoutPayload `json:"checkoutCreate"`
	}
	vars := map[string]any{"input": map[string]any{}}
	if err := c.do(ctx, createCheckoutMutation, vars, &data); err != nil {
		return nil, err
	}
	return convertPayload(data.Payload)
}

func (c *GraphQLClient) FetchCheckout(ctx context.Context, checkoutID string) (*domain.CheckoutSession, error) {
	var data struct {
		Node *checkoutNode `json:"node"`
	}
	if err := c.do(ctx, fetchCheckoutQuery, map[string]any{"id": checkoutID}, &data); err != nil {
		return nil, err
	}
	if data.Node == nil || data.Node.ID == "" {
		return nil, ErrCheckoutNotFound
	}
	return convertCheckout(data.Node), nil
}

func (c *GraphQLClient) AddLines(ctx context.Context, checkoutID string, lines []LineInput) (*domain.CheckoutSession, error) {
	items := make([]map[string]any, len(lines))
	for i, l := range lines {
		items[i] = map[string]any{"variantId": l.VariantID, "quantity": l.Quantity}
	}
	var data struct {
		Payload checkoutPayload `json:"checkoutLineItemsAdd"`
	}
	vars := map[string]any{"checkoutId": checkoutID, "lineItems": items}
	if err := c.do(ctx, addLinesMutation, vars, &data); err != nil {
		return nil, err
	}
	return convertPayload(data.Payload)
}

func (c *GraphQLClient) RemoveLines(ctx context.Context, checkoutID string, lineIDs []string) (*domain.CheckoutSession, error) {
	var data struct {
		Payload checkoutPayload `json:"checkoutLineItemsRemove"`
	}
	vars := map[string]any{"checkoutId": checkoutID, "lineItemIds": lineIDs}
	if err := c.do(ctx, removeLinesMutation, vars, &data); err != nil {
		return nil, err
	}
	return convertPayload(data.Payload)
}

func (c *GraphQLClient) UpdateLines(ctx context.Context, checkoutID string, lines []LineUpdate) (*domain.CheckoutSession, error) {
	items := make([]map[string]any, len(lines))
	for i, l := range lines {
		items[i] = map[string]any{"id": l.LineID, "quantity": l.Quantity}
	}
	var data struct {
		Payload checkoutPayload `json:"checkoutLineItemsUpdate"`
	}
	vars := map[string]any{"checkoutId": checkoutID, "lineItems": items}
	if err := c.do(ctx, updateLinesMutation, vars, &data); err != nil {
		return nil, err
	}
	return convertPayload(data.Payload)
}

func convertPayload(p checkoutPayload) (*domain.CheckoutSession, error) {
	if len(p.UserErrors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUserError, p.UserErrors[0].Message)
	}
	if p.Checkout == nil {
		return nil, ErrCheckoutNotFound
	}
	return convertCheckout(p.Checkout), nil
}

func convertCheckout(n *checkoutNode) *domain.CheckoutSession {
	session := &domain.CheckoutSession{
		ID:        n.ID,
		WebURL:    n.WebURL,
		Completed: n.CompletedAt != nil && *n.CompletedAt != "",
		Lines:     make([]domain.CheckoutLine, 0, len(n.LineItems.Edges)),
	}
	for _, edge := range n.LineItems.Edges {
		node := edge.Node
		line := domain.CheckoutLine{
			ID:       node.ID,
			Title:    node.Title,
			Quantity: node.Quantity,
		}
		if v := node.Variant; v != nil {
			line.ProductID = v.Product.ID
			line.VariantID = v.ID
			line.VariantTitle = v.Title
			line.UnitPrice = parseAmount(v.Price.Amount)
			if v.Image != nil {
				line.Image = v.Image.URL
			}
		}
		session.Lines = append(session.Lines, line)
	}
	return session
}

func convertProduct(n productNode) domain.RemoteProduct {
	p := domain.RemoteProduct{
		ID:          n.ID,
		Title:       n.Title,
		ProductType: n.ProductType,
		Price:       parseAmount(n.PriceRange.MinVariantPrice.Amount),
	}
	if n.FeaturedImage != nil {
		p.Image = n.FeaturedImage.URL
	}
	if n.CompareAtPriceRange != nil {
		if compare := parseAmount(n.CompareAtPriceRange.MinVariantPrice.Amount); compare.IsPositive() {
			p.ComparePrice = &compare
		}
	}
	if n.Rating != nil {
		if r, err := strconv.ParseFloat(n.Rating.Value, 64); err == nil {
			p.Rating = &r
		}
	}
	if n.RatingCount != nil {
		if c, err := strconv.Atoi(n.RatingCount.Value); err == nil {
			p.ReviewCount = &c
		}
	}
	for _, edge := range n.Variants.Edges {
		v := domain.RemoteVariant{
			ID:    edge.Node.ID,
			Title: edge.Node.Title,
			Price: parseAmount(edge.Node.Price.Amount),
		}
		if edge.Node.CompareAtPrice != nil {
			if compare := parseAmount(edge.Node.CompareAtPrice.Amount); compare.IsPositive() {
				v.ComparePrice = &compare
			}
		}
		p.Variants = append(p.Variants, v)
	}
	return p
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
