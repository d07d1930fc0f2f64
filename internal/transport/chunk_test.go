package transport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name      string
		payload   int
		max       int
		wantSizes []int
	}{
		{"serial block", 1024, 64, repeatSizes(64, 16)},
		{"uneven tail", 100, 64, []int{64, 36}},
		{"exact multiple", 128, 64, []int{64, 64}},
		{"single short chunk", 10, 64, []int{10}},
		{"chunk of one", 3, 1, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := make([]byte, tt.payload)
			for i := range payload {
				payload[i] = byte(i)
			}

			chunks := SplitChunks(payload, tt.max)

			require.Len(t, chunks, len(tt.wantSizes))
			for i, c := range chunks {
				assert.Len(t, c, tt.wantSizes[i], "chunk %d", i)
			}
			assert.Equal(t, payload, bytes.Join(chunks, nil), "chunks must concatenate back to the payload")
		})
	}
}

func TestSplitChunks_Degenerate(t *testing.T) {
	assert.Nil(t, SplitChunks(nil, 64))
	assert.Nil(t, SplitChunks([]byte{}, 64))
	assert.Nil(t, SplitChunks([]byte{1, 2, 3}, 0))
	assert.Nil(t, SplitChunks([]byte{1, 2, 3}, -1))
}

func repeatSizes(size, n int) []int {
	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = size
	}
	return sizes
}
