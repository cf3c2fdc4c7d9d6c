package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hab-telemetry/rockblock-receiver/internal/domain"
	"github.com/hab-telemetry/rockblock-receiver/internal/service"
	"github.com/hab-telemetry/rockblock-receiver/internal/storage"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) ListObjects(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]storage.ObjectInfo, 0, len(m.objects))
	for key, body := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		infos = append(infos, storage.ObjectInfo{Key: key, Size: int64(len(body))})
	}
	return infos, nil
}

func (m *memStore) GetObject(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return body, nil
}

func (m *memStore) PutObject(_ context.Context, key string, data []byte, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func newTestRouter(store storage.ObjectStorage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(&Services{
		Messages: service.NewMessageService(store, nil),
	}, nil)
}

func postWebhook(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/rockblock", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookStoresValidDelivery(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	w := postWebhook(router, `{"imei":"300234061666900","data":"32.8000|-117.1000|150|8|3.7|72"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}

	if len(store.objects) != 1 {
		t.Fatalf("stored %d objects, want 1", len(store.objects))
	}
	for key, body := range store.objects {
		if !strings.HasPrefix(key, "300234061666900_") || !strings.HasSuffix(key, ".json") {
			t.Errorf("object key = %q, want {imei}_{timestamp}.json", key)
		}
		var msg domain.Message
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("stored document is not JSON: %v", err)
		}
		if msg.Data != "32.8000|-117.1000|150|8|3.7|72" {
			t.Errorf("stored data = %q", msg.Data)
		}
		if msg.Timestamp == "" {
			t.Error("stored document has no receipt timestamp")
		}
	}
}

func TestWebhookRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing imei", `{"data":"32.8|-117.1|150|8|3.7|72"}`},
		{"missing data", `{"imei":"300234061666900"}`},
		{"blank imei", `{"imei":"  ","data":"x"}`},
		{"not json", `imei=300234061666900`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			router := newTestRouter(store)

			w := postWebhook(router, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if len(store.objects) != 0 {
				t.Errorf("rejected delivery stored %d objects, want 0", len(store.objects))
			}
		})
	}
}

func TestWebhookReportsStorageFailure(t *testing.T) {
	store := newMemStore()
	store.putErr = errors.New("bucket unavailable")
	router := newTestRouter(store)

	w := postWebhook(router, `{"imei":"300234061666900","data":"x"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestDeviceLatest(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	if w := postWebhook(router, `{"imei":"300234061666900","data":"32.8000|-117.1000|150|8|3.7|72"}`); w.Code != http.StatusOK {
		t.Fatalf("seed delivery failed with status %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/300234061666900/latest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		IMEI    string                 `json:"imei"`
		Decoded *domain.TrackingFields `json:"decoded"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.IMEI != "300234061666900" {
		t.Errorf("imei = %q", resp.IMEI)
	}
	if resp.Decoded == nil || resp.Decoded.Satellites != 8 {
		t.Errorf("decoded = %+v, want satellites 8", resp.Decoded)
	}
}

func TestDeviceLatestUnknownDevice(t *testing.T) {
	router := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/300234000000000/latest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
