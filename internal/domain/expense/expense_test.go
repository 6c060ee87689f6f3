package expense

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/finanzcord/finanzcord/internal/domain/category"
	"github.com/finanzcord/finanzcord/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
		err  error
	}{
		{in: "12", want: 1200},
		{in: "12.5", want: 1250},
		{in: "12.05", want: 1205},
		{in: "-3.10", want: -310},
		{in: ".5", want: 50},
		{in: "1e2", want: 10000},
		{in: "1.25E1", want: 1250},
		{in: "-1.5e-1", want: -15},
		{in: "1.234e0", err: ErrAmountPrecision},
		{in: "1e-3", err: ErrAmountPrecision},
		{in: "1e9", err: ErrAmountRange},
		{in: "99999999.99", want: MaxAmount},
		{in: "100000000", err: ErrAmountRange},
		{in: "1.234", err: ErrAmountPrecision},
		{in: "abc", err: ErrInvalidAmount},
		{in: "1.-5", err: ErrInvalidAmount},
		{in: "", err: ErrInvalidAmount},
		{in: ".", err: ErrInvalidAmount},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestAmountJSON(t *testing.T) {
	var body struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 19.99, "b": "7.5"}`), &body))
	assert.Equal(t, Amount(1999), body.A)
	assert.Equal(t, Amount(750), body.B)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 19.99, "b": 7.50}`, string(out))

	assert.Equal(t, "-0.05", Amount(-5).String())
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-09"`), &d))
	assert.Equal(t, "2024-03-09", d.String())

	require.NoError(t, json.Unmarshal([]byte(`"2024-03-09T18:30:00Z"`), &d))
	assert.Equal(t, "2024-03-09", d.String())

	assert.ErrorIs(t, json.Unmarshal([]byte(`"09/03/2024"`), &d), ErrInvalidDate)

	out, err := json.Marshal(NewDate(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2023-12-31"`, string(out))
}

func TestRangePageSize(t *testing.T) {
	assert.Equal(t, 100, RangePageSize(1, 1))
	assert.Equal(t, 199, RangePageSize(2, 2))
	assert.Equal(t, 298, RangePageSize(3, 3))
	assert.Equal(t, -7, RangePageSize(8, 0))
}

func TestPageWindow(t *testing.T) {
	assert.Equal(t, Window{Limit: 100, Offset: 0}, PageWindow(1, 100))
	assert.Equal(t, Window{Limit: 100, Offset: 200}, PageWindow(3, 100))
	assert.Equal(t, Window{Limit: 199, Offset: 199}, PageWindow(2, RangePageSize(2, 2)))
	assert.Equal(t, Window{Limit: 100, Offset: 0}, PageWindow(0, 100))
	assert.Equal(t, Window{Limit: 20, Offset: 0}, PageWindow(1, -5))
	assert.Equal(t, Window{Limit: 20, Offset: 20}, PageWindow(2, 0))
	assert.Equal(t, Window{Limit: 20, Offset: 140}, PageWindow(8, RangePageSize(8, 0)))
}

func TestJoin_DanglingReferencesAreNull(t *testing.T) {
	catID, missingCat := int64(1), int64(99)
	pmID, missingPM := int64(5), int64(77)

	expenses := []Expense{
		{ID: 10, Concept: "lunch", CategoryID: &catID, PaymentID: &pmID, Amount: 1200},
		{ID: 11, Concept: "taxi", CategoryID: &missingCat, PaymentID: &missingPM, Amount: 800},
		{ID: 12, Concept: "misc", Amount: 100},
	}
	cats := []category.Category{{ID: 1, Description: "Food"}}
	methods := []payment.Method{{ID: 5, Name: "Cash"}}

	out := Join(expenses, cats, methods)
	require.Len(t, out, 3)

	require.NotNil(t, out[0].Category)
	assert.Equal(t, "Food", out[0].Category.Description)
	require.NotNil(t, out[0].Payment)
	assert.Equal(t, "Cash", out[0].Payment.Name)

	assert.Nil(t, out[1].Category)
	assert.Nil(t, out[1].Payment)
	assert.Nil(t, out[2].Category)
	assert.Nil(t, out[2].Payment)

	raw, err := json.Marshal(out[1])
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Contains(t, m, "category")
	assert.Nil(t, m["category"])
	assert.Nil(t, m["payment"])
}

func TestUpdateRequest_IsEmpty(t *testing.T) {
	var req UpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.True(t, req.IsEmpty())

	require.NoError(t, json.Unmarshal([]byte(`{"concept": null, "amount": null}`), &req))
	assert.True(t, req.IsEmpty())

	require.NoError(t, json.Unmarshal([]byte(`{"priority": 2}`), &req))
	assert.False(t, req.IsEmpty())
}
