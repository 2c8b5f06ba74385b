package parser_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgerd/internal/parser"
	"ledgerd/internal/port"
	"ledgerd/mocks"
)

func TestTextParser_PaymentKeepsCreditSign(t *testing.T) {
	// This tier reports credits positive; "PAYMENT RECEIVED -500.00" in
	// the source is a credit, so the model reports +500.00.
	m := new(mocks.MockChatModel)
	m.On("Model").Return("gpt-4o-mini")
	m.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return strings.Contains(req.Text, "PAYMENT RECEIVED")
	})).Return(`{"transactions": [{"date": null, "merchant": null, "description": "PAYMENT RECEIVED", "amount": 500.00, "currency": "USD"}]}`, nil)

	p := parser.NewTextParser(m)
	res, err := p.Parse(context.Background(), "PAYMENT RECEIVED -500.00")
	require.NoError(t, err)

	require.Len(t, res.Transactions, 1)
	assert.True(t, res.Transactions[0].Amount.Equal(decimal.RequireFromString("500")))
}

func TestTextParser_DiscardsMissingDescriptionAndZeroAmount(t *testing.T) {
	m := new(mocks.MockChatModel)
	m.On("Model").Return("gpt-4o-mini")
	m.On("Complete", mock.Anything, mock.Anything).Return(`{"transactions": [
		{"description": "", "amount": 12.00},
		{"description": "VOID", "amount": 0},
		{"description": "KEPT", "amount": -8.50}
	]}`, nil)

	p := parser.NewTextParser(m)
	res, err := p.Parse(context.Background(), "some text")
	require.NoError(t, err)

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "KEPT", res.Transactions[0].Description)
}

func TestTextParser_TruncatesLongInput(t *testing.T) {
	m := new(mocks.MockChatModel)
	m.On("Model").Return("gpt-4o-mini")
	m.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return len(req.Text) == 12000
	})).Return(`{"transactions": []}`, nil)

	p := parser.NewTextParser(m)
	_, err := p.Parse(context.Background(), strings.Repeat("x", 20000))
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestTextParser_TruncationNeverSplitsARune(t *testing.T) {
	m := new(mocks.MockChatModel)
	m.On("Model").Return("gpt-4o-mini")
	m.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return utf8.ValidString(req.Text) && len(req.Text) <= 12000
	})).Return(`{"transactions": []}`, nil)

	// The two-byte "é" straddles the 12000-byte cutoff; truncation must
	// back off to the rune start rather than send a broken byte.
	input := strings.Repeat("a", 11999) + "é" + strings.Repeat("b", 9000)

	p := parser.NewTextParser(m)
	_, err := p.Parse(context.Background(), input)
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestTextParser_EmptyTransactionsIsValid(t *testing.T) {
	m := new(mocks.MockChatModel)
	m.On("Model").Return("gpt-4o-mini")
	m.On("Complete", mock.Anything, mock.Anything).Return(`{"transactions": []}`, nil)

	p := parser.NewTextParser(m)
	res, err := p.Parse(context.Background(), "header text only")
	require.NoError(t, err)
	assert.Empty(t, res.Transactions)
	assert.Empty(t, res.ParseError)
}

func TestTextParser_TransportErrorPropagates(t *testing.T) {
	m := new(mocks.MockChatModel)
	m.On("Model").Return("gpt-4o-mini")
	m.On("Complete", mock.Anything, mock.Anything).Return("", assert.AnError)

	p := parser.NewTextParser(m)
	_, err := p.Parse(context.Background(), "text")
	assert.Error(t, err)
}
