package mocks

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/palantircloud/resourcegroups/query"
)

func TestMockHandleSatisfiesInterface(t *testing.T) {
	ctrl := gomock.NewController(t)
	var h query.Handle = NewMockHandle(ctrl)

	m := h.(*MockHandle)
	m.EXPECT().ID().Return("q1")
	m.EXPECT().Start(gomock.Any())
	m.EXPECT().State().Return(query.StateRunning)
	m.EXPECT().AddStateChangeListener(gomock.Any())
	m.EXPECT().TotalMemoryReservationBytes().Return(int64(1024))

	require.Equal(t, "q1", h.ID())
	h.Start(context.Background())
	require.Equal(t, query.StateRunning, h.State())
	h.AddStateChangeListener(func(query.State) {})
	require.EqualValues(t, 1024, h.TotalMemoryReservationBytes())
}
