// Package posapi is the HTTP client for the remote POS backend. It owns
// all network I/O of the terminal: authentication, catalog and user
// management, and sale submission. Cart and validation logic never call
// through here; they run purely in memory.
package posapi

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

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/example/pos-terminal/internal/domain/catalog"
	"github.com/example/pos-terminal/internal/domain/transaction"
)

// Client talks to one POS API instance. The access token is supplied by
// Login or SetToken; authenticated endpoints live under /auth.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// New creates a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs an access token obtained out of band.
func (c *Client) SetToken(token string) {
	c.token = token
}

// LoginResult is the /login response body.
type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login authenticates a staff member and stores the returned token on
// the client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}

	resp, err := c.post(ctx, "/login", body, false)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login: %s", readAPIError(resp))
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("login: decode response: %w", err)
	}
	c.token = result.Token
	return &result, nil
}

// Register creates a staff account. Role is "admin" or "cashier".
func (c *Client) Register(ctx context.Context, username, password, role string) error {
	body := map[string]string{"username": username, "password": password, "role": role}

	resp, err := c.post(ctx, "/register", body, false)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("register: %s", readAPIError(resp))
	}
	return nil
}

// Load fetches the product catalog. It implements catalog.Loader, so a
// Client can back a transaction session directly.
func (c *Client) Load(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.fetch(ctx, "/auth/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// NewProduct is the write shape for product create and update.
type NewProduct struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, p NewProduct) (*catalog.Product, error) {
	resp, err := c.post(ctx, "/auth/products", p, true)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create product: %s", readAPIError(resp))
	}

	var created catalog.Product
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("create product: decode response: %w", err)
	}
	return &created, nil
}

// UpdateProduct replaces the fields of an existing product.
func (c *Client) UpdateProduct(ctx context.Context, id int, p NewProduct) error {
	resp, err := c.send(ctx, http.MethodPut, "/auth/products/"+strconv.Itoa(id), p, true)
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update product %d: %s", id, readAPIError(resp))
	}
	return nil
}

// DeleteProduct removes a product from the catalog.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	resp, err := c.send(ctx, http.MethodDelete, "/auth/products/"+strconv.Itoa(id), nil, true)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete product %d: %s", id, readAPIError(resp))
	}
	return nil
}

// User is one staff account as listed by the API.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Users lists staff accounts.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.fetch(ctx, "/auth/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// TransactionRecord is one completed sale as listed by the API.
type TransactionRecord struct {
	ID          int                `json:"id"`
	CustomerID  int                `json:"customer_id"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Items       []transaction.Item `json:"items"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Transactions lists completed sales.
func (c *Client) Transactions(ctx context.Context) ([]TransactionRecord, error) {
	var records []TransactionRecord
	if err := c.fetch(ctx, "/auth/transactions", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SubmitTransaction posts a finalized sale. A rejection (stock conflict,
// expired auth, validation) comes back as a *SubmissionError carrying
// the server's message; nothing is retried here.
func (c *Client) SubmitTransaction(ctx context.Context, req *transaction.Request) error {
	resp, err := c.post(ctx, "/auth/transactions", req, true)
	if err != nil {
		return &SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &SubmissionError{Status: resp.StatusCode, Message: readAPIError(resp)}
	}
	return nil
}

// fetch GETs path and decodes the JSON body into out, classifying every
// failure as a *FetchError.
func (c *Client) fetch(ctx context.Context, path string, out any) error {
	resp, err := c.send(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return &FetchError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Endpoint: path, Status: resp.StatusCode, Message: readAPIError(resp)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Endpoint: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, authed bool) (*http.Response, error) {
	return c.send(ctx, http.MethodPost, path, body, authed)
}

func (c *Client) send(ctx context.Context, method, path string, body any, authed bool) (*http.Response, error) {
	if authed {
		if err := c.checkToken(); err != nil {
			return nil, err
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpc.Do(req)
}

// checkToken rejects calls whose token is already expired, saving a
// round trip the server would 401 anyway. Claims are inspected without
// signature verification; only the server holds the key. A token that
// does not parse or carries no expiry is sent as-is and left to the
// server to judge.
func (c *Client) checkToken() error {
	if c.token == "" {
		return nil
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return ErrTokenExpired
	}
	return nil
}

// readAPIError extracts the server's error message. Auth endpoints use
// {"message": ...}, transaction endpoints use {"error": ...}; fall back
// to the raw body, then the status text.
func readAPIError(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(data) > 0 {
		var envelope struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(data, &envelope); jsonErr == nil {
			if envelope.Error != "" {
				return envelope.Error
			}
			if envelope.Message != "" {
				return envelope.Message
			}
		}
		if s := strings.TrimSpace(string(data)); s != "" {
			return s
		}
	}
	return http.StatusText(resp.StatusCode)
}
