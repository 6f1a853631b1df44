package orders

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewOrderNoFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	orderNo, err := NewOrderNo(at)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^ORD20260314150926[0-9A-F]{6}$`), orderNo)
}

func TestNewOrderNoSuffixVaries(t *testing.T) {
	at := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		orderNo, err := NewOrderNo(at)
		require.NoError(t, err)
		seen[orderNo] = true
	}
	require.Greater(t, len(seen), 1)
}
