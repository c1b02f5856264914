package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    Decimal
		wantErr bool
	}{
		{in: `12.5`, want: "12.5"},
		{in: `"12.50"`, want: "12.50"},
		{in: `" 7 "`, want: "7"},
		{in: `1e2`, want: "1e2"},
		{in: `0.1000000000000000055511151231257827`, want: "0.1000000000000000055511151231257827"},
		{in: `null`, want: ""},
		{in: `"abc"`, want: "abc"},
		{in: `true`, wantErr: true},
		{in: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Decimal
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestDecimal_InMessage(t *testing.T) {
	var req CreateExpenseRequest
	err := json.Unmarshal([]byte(`{
		"groupId": "g1",
		"amount": 100,
		"payerId": 1,
		"splitType": "PERCENT",
		"shares": [{"userId": 1, "percent": 50}, {"userId": 2, "percent": "50"}]
	}`), &req)
	require.NoError(t, err)

	assert.Equal(t, Decimal("100"), req.Amount)
	require.Len(t, req.Shares, 2)
	assert.Equal(t, Decimal("50"), *req.Shares[0].Percent)
	assert.Equal(t, Decimal("50"), *req.Shares[1].Percent)
	assert.Nil(t, req.Shares[0].Amount)

	out, err := json.Marshal(Share{UserID: 1, Amount: "0.50", AmountMinor: 50})
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":1,"amount":"0.50","amountMinor":50}`, string(out))
}
