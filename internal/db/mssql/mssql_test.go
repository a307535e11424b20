package mssql

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bgunnarsson/dbpeek/internal/db"
)

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"users", "[users]"},
		{"dbo.users", "[dbo].[users]"},
		{"dbo.odd]name", "[dbo].[odd]]name]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, quoteIdent(tt.in))
		})
	}
}

func TestFormatUniqueIdentifier(t *testing.T) {
	b := []byte{
		0x33, 0x22, 0x11, 0x00,
		0x55, 0x44,
		0x77, 0x66,
		0x88, 0x99,
		0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
	}
	assert.Equal(t, "00112233-4455-6677-8899-aabbccddeeff", formatUniqueIdentifier(b))
	assert.Equal(t, "0102", formatUniqueIdentifier([]byte{1, 2}))
}

func TestOpenEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.EqualError(t, err, "empty mssql DSN")
}

func TestOpenHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, "sqlserver://nobody@127.0.0.1:1")
	assert.ErrorAs(t, err, new(*db.StoreError))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
