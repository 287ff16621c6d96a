package notification

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeed_Seeded(t *testing.T) {
	f := NewFeed()
	items := f.List()

	require.Len(t, items, 2)
	assert.Equal(t, "System Maintenance scheduled for 2 AM", items[0].Title)
	assert.Equal(t, KindInfo, items[0].Type)
	assert.Equal(t, "New Shift Schedule available", items[1].Title)
	assert.Equal(t, KindSuccess, items[1].Type)
}

func TestPush_MostRecentFirst(t *testing.T) {
	f := NewEmptyFeed()
	f.Push("first", KindInfo)
	n := f.Push("second", KindAlert)

	items := f.List()
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Title)
	assert.Equal(t, JustNow, n.Time)
	assert.NotEmpty(t, n.ID)
}

func TestPush_BoundedToTen(t *testing.T) {
	f := NewFeed()
	for i := 0; i < 25; i++ {
		f.Push(fmt.Sprintf("event %d", i), KindInfo)
		assert.LessOrEqual(t, f.Len(), MaxItems)
	}

	items := f.List()
	require.Len(t, items, MaxItems)
	assert.Equal(t, "event 24", items[0].Title)
	assert.Equal(t, "event 15", items[MaxItems-1].Title)
}

func TestClear(t *testing.T) {
	f := NewFeed()
	f.Clear()
	assert.Equal(t, 0, f.Len())

	f.Push("after clear", KindSuccess)
	assert.Equal(t, 1, f.Len())
}

func TestSubscribers(t *testing.T) {
	f := NewEmptyFeed()
	var got []string
	var ticker string
	f.Subscribe(func(n Notification) { got = append(got, n.Title) })
	f.SubscribeTicker(func(s string) { ticker = s })

	f.Push("Order Placed: 2 items for Rajesh Kumar", KindInfo)
	f.SetLastUpdate("New Order for Rajesh Kumar")

	assert.Equal(t, []string{"Order Placed: 2 items for Rajesh Kumar"}, got)
	assert.Equal(t, "New Order for Rajesh Kumar", ticker)
	assert.Equal(t, "New Order for Rajesh Kumar", f.LastUpdate())
}

func TestHandler_ListAndClear(t *testing.T) {
	f := NewFeed()
	f.SetLastUpdate("System Online")
	h := NewHandler(f, NewHub())

	rr := httptest.NewRecorder()
	h.ListNotifications(rr, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp FeedResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Notifications, 2)
	assert.Equal(t, "System Online", resp.LastUpdate)

	rr = httptest.NewRecorder()
	h.ClearNotifications(rr, httptest.NewRequest(http.MethodDelete, "/notifications", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 0, f.Len())
}
