package fedapay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/metrics"
)

var (
	// ErrInvalidAPIKey - шлюз ответил 401 на наш секретный ключ
	ErrInvalidAPIKey = errors.New("fedapay: invalid api key")
	// ErrIncompleteResponse - в ответе нет id или payment_url
	ErrIncompleteResponse = errors.New("fedapay: incomplete response")
	// ErrTransport - сеть, таймаут или исчерпаны повторы
	ErrTransport = errors.New("fedapay: transport error")
)

// APIError - ответ шлюза с кодом не 2xx
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fedapay: api error %d: %s", e.StatusCode, e.Message)
}

var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

type Config struct {
	APIURL      string
	SecretKey   string
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

type Customer struct {
	Firstname    string
	Lastname     string
	Email        string
	PhoneNumber  string
	PhoneCountry string
}

type CreateTransactionRequest struct {
	Description string
	Amount      float64
	Currency    string
	CallbackURL string
	WebhookURL  string
	Reference   string
	Customer    Customer
}

// TransactionResult - поля транзакции из ответа шлюза
type TransactionResult struct {
	ID           string
	PaymentToken string
	PaymentURL   string
	Status       string
	Raw          json.RawMessage
}

// Gateway - то, что платёжный сервис ждёт от шлюза
type Gateway interface {
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*TransactionResult, error)
	GetTransactionStatus(ctx context.Context, id string) (string, error)
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff == 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = 8 * time.Second
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*TransactionResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = "XOF"
	}
	firstname := req.Customer.Firstname
	if firstname == "" {
		firstname = "Utilisateur"
	}
	lastname := req.Customer.Lastname
	if lastname == "" {
		lastname = "CV"
	}

	payload := map[string]interface{}{
		"description":  req.Description,
		"amount":       req.Amount,
		"currency":     map[string]string{"iso": currency},
		"callback_url": req.CallbackURL,
		"webhook_url":  req.WebhookURL,
		"reference":    req.Reference,
		"customer": map[string]interface{}{
			"firstname": firstname,
			"lastname":  lastname,
			"email":     req.Customer.Email,
			"phone_number": map[string]string{
				"number":  req.Customer.PhoneNumber,
				"country": req.Customer.PhoneCountry,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fedapay: marshal request: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/transactions", body)
	metrics.ObserveGateway("create_transaction", err)
	if err != nil {
		return nil, err
	}

	res := parseTransaction(raw)
	if res.ID == "" || res.PaymentURL == "" {
		logger.CtxError(ctx, "fedapay response is missing critical fields",
			"fedapay_id", res.ID,
			"payment_url", res.PaymentURL,
		)
		return nil, ErrIncompleteResponse
	}
	return res, nil
}

func (c *Client) GetTransactionStatus(ctx context.Context, id string) (string, error) {
	raw, err := c.do(ctx, http.MethodGet, "/transactions/"+id, nil)
	metrics.ObserveGateway("get_transaction", err)
	if err != nil {
		return "", err
	}

	res := parseTransaction(raw)
	if res.Status == "" {
		return "", ErrIncompleteResponse
	}
	return res.Status, nil
}

// do выполняет запрос с повторами на 429/5xx и сетевых ошибках
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.backoff(attempt - 1)):
			case <-ctx.Done():
				return nil, errors.Join(ErrTransport, ctx.Err())
			}
		}

		status, raw, err := c.once(ctx, method, path, body)
		if err != nil {
			lastErr = errors.Join(ErrTransport, err)
			logger.CtxWarn(ctx, "fedapay request failed", "attempt", attempt, "path", path, "error", err)
			continue
		}

		switch {
		case status >= 200 && status < 300:
			return raw, nil
		case status == http.StatusUnauthorized:
			return nil, ErrInvalidAPIKey
		case retryStatuses[status]:
			lastErr = errors.Join(ErrTransport, &APIError{StatusCode: status, Message: errorMessage(raw)})
			logger.CtxWarn(ctx, "fedapay retryable status", "attempt", attempt, "status", status)
			continue
		default:
			return nil, &APIError{StatusCode: status, Message: errorMessage(raw)}
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) backoff(retry int) time.Duration {
	d := time.Duration(float64(c.cfg.BaseBackoff) * math.Pow(2, float64(retry-1)))
	if d > c.cfg.MaxBackoff {
		return c.cfg.MaxBackoff
	}
	return d
}

// parseTransaction: транзакция лежит под "v1/transaction", "transaction"
// или прямо в корне ответа
func parseTransaction(raw []byte) *TransactionResult {
	node := gjson.ParseBytes(raw)
	for _, key := range []string{"v1/transaction", "transaction"} {
		if v := node.Get(key); v.IsObject() && len(v.Map()) > 0 {
			node = v
			break
		}
	}
	return &TransactionResult{
		ID:           node.Get("id").String(),
		PaymentToken: node.Get("payment_token").String(),
		PaymentURL:   node.Get("payment_url").String(),
		Status:       node.Get("status").String(),
		Raw:          json.RawMessage(raw),
	}
}

func errorMessage(raw []byte) string {
	body := gjson.ParseBytes(raw)
	if m := body.Get("message").String(); m != "" {
		return m
	}
	if m := body.Get("error").String(); m != "" {
		return m
	}
	return string(raw)
}
