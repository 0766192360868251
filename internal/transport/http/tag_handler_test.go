package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httptestGet(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func urlEscape(s string) string {
	return url.QueryEscape(s)
}

type tagDoc struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

func TestTags(t *testing.T) {
	s := newTestServer(t)

	create := func(body string) tagDoc {
		rec := s.doJSON(t, http.MethodPost, "/tags", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[tagDoc](t, rec)
	}
	sale := create(`{"title":"sale","color":"red","priority":2}`)
	eco := create(`{"title":"eco"}`)

	t.Run("find by id flattens extensions", func(t *testing.T) {
		rec := s.do(httptestGet("/tags/" + sale.ID))
		require.Equal(t, http.StatusOK, rec.Code)
		doc := decode[map[string]interface{}](t, rec)
		assert.Equal(t, "red", doc["color"])
		assert.Equal(t, float64(2), doc["priority"])
	})

	t.Run("find and count", func(t *testing.T) {
		rec := s.do(httptestGet("/tags?filter=" + urlEscape(`{"order":["title ASC"]}`)))
		require.Equal(t, http.StatusOK, rec.Code)
		docs := decode[[]tagDoc](t, rec)
		require.Len(t, docs, 2)
		assert.Equal(t, "eco", docs[0].Title)

		rec = s.do(httptestGet("/tags/count?where=" + urlEscape(`{"color":"red"}`)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(1), decode[CountResponse](t, rec).Count)
	})

	t.Run("validation", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPost, "/tags", `{"color":"red"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = s.doJSON(t, http.MethodPost, "/tags", `{"title":"x","id":"mine"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = s.doJSON(t, http.MethodPatch, "/tags/"+eco.ID, `{"title":12}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPatch, "/tags/"+eco.ID, `{"color":"green"}`)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		got := decode[tagDoc](t, s.do(httptestGet("/tags/"+eco.ID)))
		assert.Equal(t, "green", got.Color)
	})

	t.Run("delete by path and by query", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodDelete, "/tags/"+sale.ID, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.doJSON(t, http.MethodDelete, "/tags?id="+eco.ID, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.doJSON(t, http.MethodDelete, "/tags", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.doJSON(t, http.MethodDelete, "/tags/"+eco.ID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.do(httptestGet("/tags/count"))
		assert.Equal(t, int64(0), decode[CountResponse](t, rec).Count)
	})
}

func TestEventsAndHealth(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct(t, map[string]string{"name": "Mug"})
	rec := s.doJSON(t, http.MethodPatch, "/products/"+p.ID, `{"name":"Cup"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(httptestGet("/events?aggregateId=" + p.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[EventListResponse](t, rec)
	assert.Equal(t, int64(2), list.TotalCount)
	require.Len(t, list.Events, 2)
	types := []string{list.Events[0].EventType, list.Events[1].EventType}
	assert.ElementsMatch(t, []string{"product.created", "product.updated"}, types)
	assert.Equal(t, "pending", list.Events[0].Status)

	rec = s.do(httptestGet("/events?eventType=product.updated&limit=1"))
	list = decode[EventListResponse](t, rec)
	require.Len(t, list.Events, 1)
	assert.Contains(t, string(list.Events[0].Payload), p.ID)

	rec = s.do(httptestGet("/health"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(httptestGet("/nowhere"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFoundError", decode[ErrorBody](t, rec).Error.Name)
}
