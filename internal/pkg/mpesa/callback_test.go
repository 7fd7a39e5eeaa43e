package mpesa

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successBody = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 1500.50},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "Balance"},
          {"Name": "TransactionDate", "Value": 20191219102115},
          {"Name": "PhoneNumber", "Value": 254708374149}
        ]
      }
    }
  }
}`

const failedBody = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 1032,
      "ResultDesc": "Request cancelled by user"
    }
  }
}`

func TestParseCallback_Success(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := ParseCallback([]byte(successBody), now)
	require.NoError(t, err)

	assert.True(t, c.Succeeded())
	assert.Equal(t, "ws_CO_191220191020363925", c.CheckoutRequestID)
	assert.True(t, c.Amount.Equal(decimal.RequireFromString("1500.50")))
	assert.Equal(t, "NLJ7RT61SV", c.ReceiptNumber)
	assert.Equal(t, "254708374149", c.PhoneNumber)
	assert.Equal(t, time.Date(2019, 12, 19, 7, 21, 15, 0, time.UTC), c.TransactionDate.UTC())
}

func TestParseCallback_Failure(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := ParseCallback([]byte(failedBody), now)
	require.NoError(t, err)

	assert.False(t, c.Succeeded())
	assert.Equal(t, 1032, c.ResultCode)
	assert.Equal(t, "Request cancelled by user", c.ResultDesc)
	assert.True(t, c.Amount.IsZero())
}

func TestParseCallback_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":         `{`,
		"missing checkout": `{"Body":{"stkCallback":{"ResultCode":0}}}`,
		"missing result":   `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_1"}}}`,
		"bad amount":       `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_1","ResultCode":0,"CallbackMetadata":{"Item":[{"Name":"Amount","Value":"abc"}]}}}}`,
		"bad date":         `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_1","ResultCode":0,"CallbackMetadata":{"Item":[{"Name":"TransactionDate","Value":2019}]}}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCallback([]byte(body), time.Now())
			assert.ErrorIs(t, err, ErrInvalidCallback)
		})
	}
}

func TestAcknowledgements(t *testing.T) {
	assert.Equal(t, Acknowledgement{ResultCode: 0, ResultDesc: "Success"}, Accepted())
	assert.Equal(t, Acknowledgement{ResultCode: 1, ResultDesc: "Transaction failed"}, Rejected("Transaction failed"))
}

func TestVerifier(t *testing.T) {
	assert.True(t, NewVerifier("").Verify("anything"))
	v := NewVerifier("s3cret")
	assert.True(t, v.Verify("s3cret"))
	assert.True(t, v.Verify(" s3cret "))
	assert.False(t, v.Verify("wrong"))
	assert.False(t, v.Verify(""))
}
