// Package payment models the external online-payment collaborator: it only
// produces a redirect URL for an order and verifies the signed return call.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"shopcart/internal/model"
)

var (
	// ErrBadSignature means the return parameters fail verification.
	ErrBadSignature = errors.New("payment: bad signature")
	// ErrPaymentFailed means the gateway reported a non-success result.
	ErrPaymentFailed = errors.New("payment: gateway reported failure")
)

// Gateway is the external payment-URL generator. Implementations may fail
// with provider errors; callers treat those as retryable.
type Gateway interface {
	// PaymentURL builds the redirect URL the buyer is sent to.
	PaymentURL(order *model.Order) (string, error)
	// VerifyReturn checks the gateway's return parameters and yields the
	// order number they refer to.
	VerifyReturn(params url.Values) (orderNo string, err error)
}

// SignedURLGateway implements the common hosted-checkout shape: the merchant
// signs the query string with a shared secret, the gateway signs the return
// the same way.
type SignedURLGateway struct {
	baseURL   string
	merchant  string
	secret    string
	returnURL string
}

func NewSignedURLGateway(baseURL, merchant, secret, returnURL string) *SignedURLGateway {
	return &SignedURLGateway{baseURL: baseURL, merchant: merchant, secret: secret, returnURL: returnURL}
}

// sign computes the hex HMAC-SHA256 over the sorted key=value pairs.
func (g *SignedURLGateway) sign(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params.Get(k))
	}

	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *SignedURLGateway) PaymentURL(order *model.Order) (string, error) {
	if order.OrderNo == "" {
		return "", fmt.Errorf("payment: order %d has no order number", order.ID)
	}
	params := url.Values{}
	params.Set("merchant", g.merchant)
	params.Set("order_no", order.OrderNo)
	params.Set("amount", fmt.Sprintf("%d", order.TotalAmount))
	params.Set("return_url", g.returnURL)
	params.Set("signature", g.sign(params))
	return g.baseURL + "?" + params.Encode(), nil
}

func (g *SignedURLGateway) VerifyReturn(params url.Values) (string, error) {
	got := params.Get("signature")
	want := g.sign(params)
	if got == "" || !hmac.Equal([]byte(got), []byte(want)) {
		return "", ErrBadSignature
	}
	if params.Get("status") != "success" {
		return "", ErrPaymentFailed
	}
	orderNo := params.Get("order_no")
	if orderNo == "" {
		return "", ErrBadSignature
	}
	return orderNo, nil
}
