package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestClient_Validate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/validate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "kc_key_test" {
			t.Errorf("X-API-Key = %q", r.Header.Get("X-API-Key"))
		}
		if _, err := uuid.Parse(r.Header.Get("X-Request-Id")); err != nil {
			t.Errorf("X-Request-Id is not a uuid: %q", r.Header.Get("X-Request-Id"))
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Method != "52" || req.Account != "43001500" || req.Bank != "13051172" {
			t.Errorf("unexpected body %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"method":"52","account":"0043001500","bank":"13051172","valid":true,"outcome":"valid","alternative":1,"exception":false}`))
	}))
	defer server.Close()

	client := New(server.URL+"/", "kc_key_test")
	res, err := client.Validate(context.Background(), Request{Method: "52", Account: "43001500", Bank: "13051172"})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !res.Valid || res.Outcome != "valid" {
		t.Errorf("Validate() = %+v", res)
	}
	if res.Alternative == nil || *res.Alternative != 1 {
		t.Errorf("Validate().Alternative = %v, want 1", res.Alternative)
	}
}

func TestClient_ValidateBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Items []Request `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(body.Items) != 2 {
			t.Errorf("got %d items, want 2", len(body.Items))
		}
		w.Write([]byte(`{"results":[
			{"method":"00","account":"0009290701","valid":true,"outcome":"valid","exception":false},
			{"error":{"code":"UNKNOWN_METHOD","message":"unknown method: \"ZZ\""}}
		]}`))
	}))
	defer server.Close()

	results, err := New(server.URL, "").ValidateBatch(context.Background(), []Request{
		{Method: "00", Account: "9290701"},
		{Method: "ZZ", Account: "1"},
	})
	if err != nil {
		t.Fatalf("ValidateBatch() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("ValidateBatch() returned %d results", len(results))
	}
	if results[0].Result == nil || !results[0].Valid || results[0].Alternative != nil {
		t.Errorf("results[0] = %+v", results[0].Result)
	}
	if results[1].Result != nil || results[1].Error == nil || results[1].Error.Code != "UNKNOWN_METHOD" {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestClient_Methods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/methods":
			w.Write([]byte(`{"data":[{"code":"00","description":"mod 10, weights 2,1","kind":"rule"},{"code":"52","description":"ESER","kind":"chain"}]}`))
		case "/api/v1/methods/52":
			w.Write([]byte(`{"code":"52","description":"ESER","kind":"chain"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":"UNKNOWN_METHOD","message":"unknown method"}}`))
		}
	}))
	defer server.Close()

	client := New(server.URL, "")
	list, err := client.ListMethods(context.Background())
	if err != nil {
		t.Fatalf("ListMethods() error = %v", err)
	}
	if len(list) != 2 || list[1].Kind != "chain" {
		t.Errorf("ListMethods() = %+v", list)
	}

	m, err := client.GetMethod(context.Background(), "52")
	if err != nil {
		t.Fatalf("GetMethod() error = %v", err)
	}
	if m.Code != "52" {
		t.Errorf("GetMethod().Code = %q", m.Code)
	}

	_, err = client.GetMethod(context.Background(), "ZZ")
	if !IsNotFound(err) {
		t.Errorf("GetMethod(ZZ) error = %v, want not found", err)
	}
}

func TestClient_ListChecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("method") != "52" || q.Get("limit") != "2" || q.Get("cursor") != "abc" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data":[{"id":"c1","method":"52","account":"******1500","valid":true,"outcome":"valid","alternative":0,"createdAt":"2026-01-01T00:00:00Z"}],"pagination":{"limit":2,"hasMore":true,"nextCursor":"next"}}`))
	}))
	defer server.Close()

	page, err := New(server.URL, "").ListChecks(context.Background(), ListChecksOptions{Method: "52", Limit: 2, Cursor: "abc"})
	if err != nil {
		t.Fatalf("ListChecks() error = %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].Alternative == nil || *page.Data[0].Alternative != 0 {
		t.Errorf("ListChecks().Data = %+v", page.Data)
	}
	if !page.Pagination.HasMore || page.Pagination.NextCursor != "next" {
		t.Errorf("ListChecks().Pagination = %+v", page.Pagination)
	}
}

func TestClient_ErrorHandling(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":"INVALID_REQUEST","message":"invalid account number"}}`, "INVALID_REQUEST"},
		{"plain body", http.StatusBadGateway, `upstream down`, "HTTP_502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New(server.URL, "").Validate(context.Background(), Request{Method: "00", Account: "x"})
			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.Code != tt.wantCode || apiErr.StatusCode != tt.status {
				t.Errorf("got %+v", apiErr)
			}
			if IsNotFound(err) {
				t.Error("IsNotFound() = true")
			}
		})
	}
}
