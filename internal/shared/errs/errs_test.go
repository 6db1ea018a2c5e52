package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errors.New("holding not found")

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: Validation("holding.AddManual", "symbol is required"), want: KindValidation},
		{name: "not found", err: NotFound("holding.Delete", errSentinel), want: KindNotFound},
		{name: "upstream", err: Upstream("brokerage.Exchange", "brokerage", errors.New("503")), want: KindUpstream},
		{name: "persistence", err: Persistence("snapshot.Record", errors.New("conn reset")), want: KindPersistence},
		{name: "wrapped", err: fmt.Errorf("outer: %w", Validation("x", "y")), want: KindValidation},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_UnwrapKeepsSentinel(t *testing.T) {
	err := NotFound("holding.Delete", errSentinel)

	assert.ErrorIs(t, err, errSentinel)
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
	assert.Equal(t, "holding.Delete: resource not found: holding not found", err.Error())
}
