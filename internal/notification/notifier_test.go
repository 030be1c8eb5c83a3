package notification

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, msg *Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockRepository) ListByShop(ctx context.Context, shopID int64, limit int) ([]Message, error) {
	args := m.Called(ctx, shopID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Message), args.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, shopID, id int64) error {
	args := m.Called(ctx, shopID, id)
	return args.Error(0)
}

type failingBroadcaster struct {
	*Registry
	calls int
}

func (f *failingBroadcaster) Publish(ctx context.Context, shopID int64, msg Message) (int, error) {
	f.calls++
	return 0, errors.New("redis down")
}

func TestNotifier_OneMessagePerDistinctShop(t *testing.T) {
	ctx := context.Background()
	store := new(MockRepository)
	reg := NewRegistry(4)
	n := NewNotifier(store, reg)
	n.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }

	shop7 := reg.Subscribe(7)
	shop9 := reg.Subscribe(9)
	shop8 := reg.Subscribe(8)

	var created []int64
	store.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		created = append(created, args.Get(1).(*Message).ShopID)
	}).Return(nil)

	n.NotifyOrderPlaced(ctx, 55, []int64{9, 7, 9, 7})

	assert.Equal(t, []int64{9, 7}, created)

	require.Len(t, shop7.C, 1)
	require.Len(t, shop9.C, 1)
	assert.Len(t, shop8.C, 0)

	msg := <-shop7.C
	assert.Equal(t, "New order received, id=55", msg.Message)
	assert.Equal(t, TypeOrderPlaced, msg.Type)
	require.NotNil(t, msg.OrderID)
	assert.Equal(t, int64(55), *msg.OrderID)
}

func TestNotifier_StoreFailureStillPublishes(t *testing.T) {
	ctx := context.Background()
	store := new(MockRepository)
	reg := NewRegistry(4)
	sub := reg.Subscribe(7)

	store.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	NewNotifier(store, reg).NotifyOrderPlaced(ctx, 1, []int64{7})
	assert.Len(t, sub.C, 1)
}

func TestNotifier_PublishFailureIsSwallowed(t *testing.T) {
	b := &failingBroadcaster{Registry: NewRegistry(1)}

	assert.NotPanics(t, func() {
		NewNotifier(nil, b).NotifyOrderPlaced(context.Background(), 1, []int64{7, 8})
	})
	assert.Equal(t, 2, b.calls)
}

func TestNotifier_DisconnectedVendorGetsNothing(t *testing.T) {
	reg := NewRegistry(4)
	sub := reg.Subscribe(7)
	reg.Unsubscribe(sub)

	NewNotifier(nil, reg).NotifyOrderPlaced(context.Background(), 2, []int64{7})

	st := reg.Stats()
	assert.Zero(t, st.Delivered)
	assert.Zero(t, st.Subscribers)
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComment(&buf, "connected"))
	require.NoError(t, WriteFrame(&buf, Message{ShopID: 7, Type: TypeOrderPlaced, Message: "hi"}))

	out := buf.String()
	assert.Contains(t, out, ": connected\n\n")
	assert.Regexp(t, `data: \{.*"shopId":7.*"message":"hi".*\}\n\n$`, out)
}
