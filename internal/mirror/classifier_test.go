package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"counterTradeBot/internal/domain"
)

func baseEvent() domain.OrderEvent {
	return domain.OrderEvent{
		OrderID: "abc123",
		LinkID:  "manual-entry-1",
		Symbol:  "ETHUSDT",
		Side:    domain.Buy,
		Type:    domain.Limit,
		Status:  domain.StatusNew,
		Origin:  domain.OriginUser,
		Qty:     "0.5",
		Price:   "2000",
	}
}

func TestShouldMirror(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*domain.OrderEvent)
		want   bool
	}{
		{
			name:   "new user order qualifies",
			modify: func(ev *domain.OrderEvent) {},
			want:   true,
		},
		{
			name:   "created status qualifies",
			modify: func(ev *domain.OrderEvent) { ev.Status = domain.StatusCreated },
			want:   true,
		},
		{
			name:   "filled status qualifies",
			modify: func(ev *domain.OrderEvent) { ev.Status = domain.StatusFilled },
			want:   true,
		},
		{
			name:   "partially filled status qualifies",
			modify: func(ev *domain.OrderEvent) { ev.Status = domain.StatusPartiallyFilled },
			want:   true,
		},
		{
			name:   "cancelled status is ignored",
			modify: func(ev *domain.OrderEvent) { ev.Status = domain.StatusCancelled },
			want:   false,
		},
		{
			name:   "rejected status is ignored",
			modify: func(ev *domain.OrderEvent) { ev.Status = domain.StatusRejected },
			want:   false,
		},
		{
			name:   "expired status is ignored",
			modify: func(ev *domain.OrderEvent) { ev.Status = domain.StatusExpired },
			want:   false,
		},
		{
			name:   "system-generated order is ignored",
			modify: func(ev *domain.OrderEvent) { ev.Origin = domain.OriginSystem },
			want:   false,
		},
		{
			name:   "own counter-order is ignored",
			modify: func(ev *domain.OrderEvent) { ev.LinkID = "counter_abc123" },
			want:   false,
		},
		{
			name: "own counter-order is ignored regardless of status",
			modify: func(ev *domain.OrderEvent) {
				ev.LinkID = "counter_abc123"
				ev.Status = domain.StatusFilled
			},
			want: false,
		},
		{
			name:   "empty link id qualifies",
			modify: func(ev *domain.OrderEvent) { ev.LinkID = "" },
			want:   true,
		},
		{
			name:   "prefix only in the middle of the link id qualifies",
			modify: func(ev *domain.OrderEvent) { ev.LinkID = "my_counter_tag" },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := baseEvent()
			tt.modify(&ev)
			assert.Equal(t, tt.want, ShouldMirror(ev))
		})
	}
}
