package review

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, r Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockStore) List(ctx context.Context, filter Filter) ([]Review, error) {
	args := m.Called(ctx, filter)
	reviews, _ := args.Get(0).([]Review)
	return reviews, args.Error(1)
}

func (m *mockStore) Close() {
	m.Called()
}

type countingRecorder struct {
	targets []string
}

func (c *countingRecorder) RecordReview(target string) {
	c.targets = append(c.targets, target)
}

var fixedNow = time.Date(2024, 5, 9, 12, 30, 15, 500, time.UTC)

func TestServiceAdd(t *testing.T) {
	store := NewMemoryStore()
	recorder := &countingRecorder{}
	svc := NewService(store, WithRecorder(recorder), WithClock(func() time.Time { return fixedNow }))

	stored, err := svc.Add(context.Background(), Review{
		Text:   "<script>alert(1)</script><b>Great</b> tyres & service",
		User:   `<a href="x">Pavel</a>`,
		Target: Tyres,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.ID.String(), "rev_"))
	assert.Equal(t, "Great tyres & service", stored.Text)
	assert.Equal(t, "Pavel", stored.User)
	assert.Equal(t, fixedNow.Truncate(time.Second), stored.Date)
	assert.Equal(t, []string{"Tyres"}, recorder.targets)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []Review{stored}, all)
}

func TestServiceAddKeepsClientDate(t *testing.T) {
	svc := NewService(NewMemoryStore(), WithClock(func() time.Time { return fixedNow }))

	date := time.Date(2023, 1, 2, 3, 4, 5, 0, time.FixedZone("MSK", 3*3600))
	stored, err := svc.Add(context.Background(), Review{Text: "ok", User: "u", Date: date, Target: Cleaning})
	require.NoError(t, err)
	assert.True(t, stored.Date.Equal(date))
	assert.Equal(t, time.UTC, stored.Date.Location())
}

func TestServiceAddRejectsInvalid(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store)

	_, err := svc.Add(context.Background(), Review{Text: "<b></b>", User: "u", Target: Tyres})
	assert.ErrorIs(t, err, ErrInvalidReview)

	_, err = svc.Add(context.Background(), Review{Text: "ok", User: "u"})
	assert.ErrorIs(t, err, ErrInvalidReview)

	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestServiceAddStoreFailure(t *testing.T) {
	store := &mockStore{}
	boom := errors.New("connection refused")
	store.On("Insert", mock.Anything, mock.AnythingOfType("Review")).Return(boom)

	recorder := &countingRecorder{}
	svc := NewService(store, WithRecorder(recorder))

	_, err := svc.Add(context.Background(), Review{Text: "ok", User: "u", Target: HomeMaster})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, recorder.targets)
	store.AssertExpectations(t)
}

func TestServiceList(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	for _, target := range []Target{Tyres, Cleaning, Tyres, HomeMaster} {
		_, err := svc.Add(ctx, Review{Text: "text", User: "user", Target: target})
		require.NoError(t, err)
	}

	tyres, err := svc.List(ctx, "TYRES")
	require.NoError(t, err)
	assert.Len(t, tyres, 2)
	for _, r := range tyres {
		assert.Equal(t, Tyres, r.Target)
	}

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = svc.List(ctx, "Boats")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestServiceListStoreFailure(t *testing.T) {
	store := &mockStore{}
	store.On("List", mock.Anything, Filter{Target: Cleaning}).Return(nil, errors.New("timeout"))
	store.On("Close").Return()

	svc := NewService(store)
	_, err := svc.List(context.Background(), "Cleaning")
	assert.EqualError(t, err, "list reviews: timeout")

	svc.Close()
	store.AssertExpectations(t)
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Insert(ctx, Review{}), context.Canceled)
	_, err := store.List(ctx, Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}
