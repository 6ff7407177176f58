package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	vnpDateLayout      = "20060102150405"
	vnpSuccessCode     = "00"
	defaultVNPVersion  = "2.1.0"
	defaultVNPCurrency = "VND"
	defaultVNPLocale   = "vn"
)

// VNPayConfig collects the merchant credentials issued by the gateway.
type VNPayConfig struct {
	PayURL     string
	TmnCode    string
	HashSecret string
	ReturnURL  string
	Version    string
	Currency   string
}

// VNPayProvider builds signed hosted-payment-page URLs and verifies the
// signature on return callbacks, using HMAC-SHA512 over the sorted,
// URL-encoded parameter string.
type VNPayProvider struct {
	cfg VNPayConfig
}

// NewVNPayProvider validates the configuration and constructs the adapter.
func NewVNPayProvider(cfg VNPayConfig) (*VNPayProvider, error) {
	if strings.TrimSpace(cfg.PayURL) == "" {
		return nil, errors.New("payments: vnpay pay url is required")
	}
	if strings.TrimSpace(cfg.TmnCode) == "" {
		return nil, errors.New("payments: vnpay tmn code is required")
	}
	if strings.TrimSpace(cfg.HashSecret) == "" {
		return nil, errors.New("payments: vnpay hash secret is required")
	}
	if cfg.Version == "" {
		cfg.Version = defaultVNPVersion
	}
	if cfg.Currency == "" {
		cfg.Currency = defaultVNPCurrency
	}
	return &VNPayProvider{cfg: cfg}, nil
}

// PaymentURL implements the Provider interface.
func (p *VNPayProvider) PaymentURL(_ context.Context, req PaymentURLRequest) (string, error) {
	if req.OrderID <= 0 {
		return "", errors.New("payments: order id is required")
	}
	if req.Amount <= 0 {
		return "", errors.New("payments: amount must be positive")
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	locale := req.Locale
	if locale == "" {
		locale = defaultVNPLocale
	}
	orderInfo := req.OrderInfo
	if orderInfo == "" {
		orderInfo = fmt.Sprintf("Thanh toan don hang %d", req.OrderID)
	}

	params := url.Values{}
	params.Set("vnp_Version", p.cfg.Version)
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", p.cfg.TmnCode)
	// The gateway expects the amount multiplied by 100 to drop decimals.
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_CurrCode", p.cfg.Currency)
	params.Set("vnp_TxnRef", strconv.FormatInt(req.OrderID, 10))
	params.Set("vnp_OrderInfo", orderInfo)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", locale)
	params.Set("vnp_ReturnUrl", p.cfg.ReturnURL)
	params.Set("vnp_IpAddr", req.ClientIP)
	params.Set("vnp_CreateDate", createdAt.Format(vnpDateLayout))

	signed := signedQuery(params, p.cfg.HashSecret)
	return p.cfg.PayURL + "?" + signed, nil
}

// VerifyReturn implements the Provider interface.
func (p *VNPayProvider) VerifyReturn(_ context.Context, params url.Values) (ReturnResult, error) {
	presented := params.Get("vnp_SecureHash")
	if presented == "" {
		return ReturnResult{}, ErrInvalidSignature
	}

	verifiable := url.Values{}
	for key, values := range params {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		for _, value := range values {
			verifiable.Add(key, value)
		}
	}

	expected := computeSignature(verifiable, p.cfg.HashSecret)
	if !hmac.Equal([]byte(strings.ToLower(presented)), []byte(expected)) {
		return ReturnResult{}, ErrInvalidSignature
	}

	orderID, err := strconv.ParseInt(params.Get("vnp_TxnRef"), 10, 64)
	if err != nil {
		return ReturnResult{}, fmt.Errorf("payments: invalid txn ref: %w", err)
	}
	amount, err := strconv.ParseInt(params.Get("vnp_Amount"), 10, 64)
	if err != nil {
		return ReturnResult{}, fmt.Errorf("payments: invalid amount: %w", err)
	}

	raw := make(map[string]string, len(params))
	for key := range params {
		raw[key] = params.Get(key)
	}

	responseCode := params.Get("vnp_ResponseCode")
	return ReturnResult{
		OrderID:       orderID,
		Amount:        amount / 100,
		TransactionID: params.Get("vnp_TransactionNo"),
		ResponseCode:  responseCode,
		Succeeded:     responseCode == vnpSuccessCode,
		Raw:           raw,
	}, nil
}

// signedQuery encodes the parameters sorted by key and appends the secure hash.
func signedQuery(params url.Values, secret string) string {
	encoded := encodeSorted(params)
	signature := hmacSHA512(secret, encoded)
	return encoded + "&vnp_SecureHash=" + signature
}

func computeSignature(params url.Values, secret string) string {
	return hmacSHA512(secret, encodeSorted(params))
}

// encodeSorted mirrors the gateway's canonical form: keys sorted
// alphabetically, values query-escaped with '+' for spaces.
func encodeSorted(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(key)))
	}
	return b.String()
}

// SignReturnParams builds a signed gateway return parameter set. Intended
// for tests and sandbox tooling that need a verifiable callback.
func SignReturnParams(values map[string]string, secret string) url.Values {
	params := url.Values{}
	for key, value := range values {
		params.Set(key, value)
	}
	params.Set("vnp_SecureHash", computeSignature(params, secret))
	return params
}

func hmacSHA512(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ Provider = (*VNPayProvider)(nil)
