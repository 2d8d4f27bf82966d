package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeCollection implements store.Collection with overridable calls.
type fakeCollection struct {
	insertOneFn        func(ctx context.Context, doc store.Document) (store.InsertResult, error)
	findFn             func(ctx context.Context, filter store.Filter, opts store.FindOptions) ([]store.Document, error)
	findOneFn          func(ctx context.Context, filter store.Filter) (store.Document, error)
	updateOneFn        func(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error)
	findOneAndUpdateFn func(ctx context.Context, filter store.Filter, set store.Document) (store.Document, error)
	deleteOneFn        func(ctx context.Context, filter store.Filter) (store.DeleteResult, error)
	countFn            func(ctx context.Context, filter store.Filter) (int64, error)
}

func (f *fakeCollection) InsertOne(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	if f.insertOneFn != nil {
		return f.insertOneFn(ctx, doc)
	}
	return store.InsertResult{Acknowledged: true}, nil
}

func (f *fakeCollection) Find(ctx context.Context, filter store.Filter, opts store.FindOptions) ([]store.Document, error) {
	if f.findFn != nil {
		return f.findFn(ctx, filter, opts)
	}
	return []store.Document{}, nil
}

func (f *fakeCollection) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	if f.findOneFn != nil {
		return f.findOneFn(ctx, filter)
	}
	return nil, store.ErrNotFound
}

func (f *fakeCollection) UpdateOne(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error) {
	if f.updateOneFn != nil {
		return f.updateOneFn(ctx, filter, set)
	}
	return store.UpdateResult{Acknowledged: true}, nil
}

func (f *fakeCollection) FindOneAndUpdate(ctx context.Context, filter store.Filter, set store.Document) (store.Document, error) {
	if f.findOneAndUpdateFn != nil {
		return f.findOneAndUpdateFn(ctx, filter, set)
	}
	return nil, store.ErrNotFound
}

func (f *fakeCollection) DeleteOne(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	if f.deleteOneFn != nil {
		return f.deleteOneFn(ctx, filter)
	}
	return store.DeleteResult{Acknowledged: true}, nil
}

func (f *fakeCollection) CountDocuments(ctx context.Context, filter store.Filter) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx, filter)
	}
	return 0, nil
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a json object: %v body=%s", err, w.Body.String())
	}
	return out
}

func assertEnvelope(t *testing.T, w *httptest.ResponseRecorder, status int, message string) map[string]any {
	t.Helper()

	if w.Code != status {
		t.Fatalf("status: got %d, want %d, body=%s", w.Code, status, w.Body.String())
	}

	body := decode(t, w)
	if body["success"] != true || body["message"] != message {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("envelope without data: %v", body)
	}
	return body
}
