package mpesa

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ResultCodeSuccess is the STK result code for a completed transaction.
const ResultCodeSuccess = 0

// TransactionDateLayout is the layout of the TransactionDate metadata item.
const TransactionDateLayout = "20060102150405"

var ErrInvalidCallback = errors.New("invalid mpesa callback payload")

var validate = validator.New()

// Kenyan M-Pesa timestamps are East Africa Time.
var eat = time.FixedZone("EAT", 3*60*60)

// CallbackEnvelope is the body Safaricom posts to the STK push callback URL.
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID" validate:"required"`
	ResultCode        *int              `json:"ResultCode" validate:"required"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item" validate:"dive"`
}

type MetadataItem struct {
	Name  string          `json:"Name" validate:"required"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// Confirmation is the flattened outcome of a callback.
type Confirmation struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Amount            decimal.Decimal
	ReceiptNumber     string
	TransactionDate   time.Time
	PhoneNumber       string
}

func (c Confirmation) Succeeded() bool {
	return c.ResultCode == ResultCodeSuccess
}

// Acknowledgement is the JSON body returned to the gateway.
type Acknowledgement struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func Accepted() Acknowledgement {
	return Acknowledgement{ResultCode: 0, ResultDesc: "Success"}
}

func Rejected(desc string) Acknowledgement {
	return Acknowledgement{ResultCode: 1, ResultDesc: desc}
}

// ParseCallback decodes and validates an STK callback body.
// now is used when a successful callback carries no TransactionDate.
func ParseCallback(body []byte, now time.Time) (Confirmation, error) {
	var env CallbackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Confirmation{}, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}

	cb := env.Body.STKCallback
	if err := validate.Struct(cb); err != nil {
		return Confirmation{}, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}

	c := Confirmation{
		CheckoutRequestID: strings.TrimSpace(cb.CheckoutRequestID),
		ResultCode:        *cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
		TransactionDate:   now,
	}
	if !c.Succeeded() || cb.CallbackMetadata == nil {
		return c, nil
	}

	for _, item := range cb.CallbackMetadata.Item {
		raw := scalar(item.Value)
		if raw == "" {
			continue
		}
		switch item.Name {
		case "Amount":
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return Confirmation{}, fmt.Errorf("%w: amount %q", ErrInvalidCallback, raw)
			}
			c.Amount = amount
		case "MpesaReceiptNumber":
			c.ReceiptNumber = raw
		case "TransactionDate":
			ts, err := time.ParseInLocation(TransactionDateLayout, raw, eat)
			if err != nil {
				return Confirmation{}, fmt.Errorf("%w: transaction date %q", ErrInvalidCallback, raw)
			}
			c.TransactionDate = ts
		case "PhoneNumber":
			c.PhoneNumber = raw
		}
	}

	return c, nil
}

// scalar renders a JSON number or string as its literal text.
func scalar(v json.RawMessage) string {
	s := strings.TrimSpace(string(v))
	if s == "" || s == "null" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			return ""
		}
		return strings.TrimSpace(str)
	}
	return s
}

// Verifier checks the shared token appended to the registered callback URL.
type Verifier struct {
	token string
}

func NewVerifier(token string) *Verifier {
	return &Verifier{token: strings.TrimSpace(token)}
}

// Verify reports whether token matches. An unconfigured verifier accepts everything.
func (v *Verifier) Verify(token string) bool {
	if v == nil || v.token == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(v.token)) == 1
}
