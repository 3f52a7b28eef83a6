package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bankgraph/internal/graph"
	"bankgraph/internal/ledger"
	"bankgraph/internal/query"
	"bankgraph/internal/services"
	"bankgraph/internal/stats"
)

func newTestServer(t *testing.T) (*httptest.Server, *services.IngestService) {
	t.Helper()
	l := ledger.New()
	ingest := services.NewIngestService(l, nil, nil)
	srv := NewServer(":0", ingest, query.New(l), stats.New(l), graph.New(l))
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts, ingest
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode GET %s: %v", url, err)
		}
	}
	return resp
}

func TestRegisterAndRecordFlow(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/accounts",
		`{"account_id":"A","owner_name":"Alice","bank_name":"First National"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/transactions",
		`{"source_id":"A","destination_id":"B","amount":"100","category":"TRANSFER"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record status = %d", resp.StatusCode)
	}
	var recorded struct {
		TransactionID string `json:"transaction_id"`
		Status        string `json:"status"`
		Amount        string `json:"amount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&recorded); err != nil {
		t.Fatal(err)
	}
	if recorded.TransactionID == "" || recorded.Status != "COMPLETED" {
		t.Fatalf("unexpected recorded transaction: %+v", recorded)
	}
	if recorded.Amount != "100" {
		t.Errorf("amount = %s, want 100", recorded.Amount)
	}

	var summary struct {
		AccountCount     int `json:"account_count"`
		TransactionCount int `json:"transaction_count"`
	}
	getJSON(t, ts.URL+"/api/statistics", &summary)
	if summary.AccountCount != 2 || summary.TransactionCount != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRecordTransactionValidationStatus(t *testing.T) {
	ts, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"bad amount", `{"source_id":"A","destination_id":"B","amount":"abc"}`, http.StatusUnprocessableEntity},
		{"zero amount", `{"source_id":"A","destination_id":"B","amount":"0"}`, http.StatusUnprocessableEntity},
		{"self transfer", `{"source_id":"A","destination_id":"A","amount":"5"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		if resp := postJSON(t, ts.URL+"/api/transactions", tc.body); resp.StatusCode != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, resp.StatusCode, tc.want)
		}
	}
}

func TestDuplicateTransactionConflict(t *testing.T) {
	ts, _ := newTestServer(t)
	body := `{"transaction_id":"t1","source_id":"A","destination_id":"B","amount":"5"}`
	if resp := postJSON(t, ts.URL+"/api/transactions", body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first record: %d", resp.StatusCode)
	}
	if resp := postJSON(t, ts.URL+"/api/transactions", body); resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate should conflict, got %d", resp.StatusCode)
	}
}

func TestQueryTransactionsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	postJSON(t, ts.URL+"/api/transactions", `{"source_id":"A","destination_id":"B","amount":"100","category":"TRANSFER"}`)
	postJSON(t, ts.URL+"/api/transactions", `{"source_id":"A","destination_id":"B","amount":"50","category":"PAYMENT"}`)

	var txs []map[string]any
	getJSON(t, ts.URL+"/api/transactions?min=60&max=200", &txs)
	if len(txs) != 1 {
		t.Fatalf("amount range query returned %d, want 1", len(txs))
	}

	txs = nil
	getJSON(t, ts.URL+"/api/transactions?source=A&destination=B&category=transfer", &txs)
	if len(txs) != 1 {
		t.Fatalf("conjunctive query returned %d, want 1", len(txs))
	}

	// Unknown pair is empty, not an error.
	txs = nil
	resp := getJSON(t, ts.URL+"/api/transactions?source=X&destination=Y", &txs)
	if resp.StatusCode != http.StatusOK || len(txs) != 0 {
		t.Fatalf("unknown pair: status %d, %d rows", resp.StatusCode, len(txs))
	}
}

func TestAccountEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	postJSON(t, ts.URL+"/api/accounts", `{"account_id":"A","owner_name":"Alice","bank_name":"First National"}`)
	postJSON(t, ts.URL+"/api/transactions", `{"source_id":"A","destination_id":"B","amount":"100"}`)

	var accounts []map[string]any
	getJSON(t, ts.URL+"/api/accounts?search=alice", &accounts)
	if len(accounts) != 1 {
		t.Fatalf("search returned %d accounts, want 1", len(accounts))
	}

	var txs []map[string]any
	getJSON(t, ts.URL+"/api/accounts/A/transactions", &txs)
	if len(txs) != 1 {
		t.Fatalf("account history returned %d, want 1", len(txs))
	}

	if resp := getJSON(t, ts.URL+"/api/accounts/ghost/transactions", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown account lookup should 404, got %d", resp.StatusCode)
	}

	var flow struct {
		NetFlow string `json:"net_flow"`
	}
	getJSON(t, ts.URL+"/api/accounts/A/netflow", &flow)
	if flow.NetFlow != "-100" {
		t.Errorf("net flow = %s, want -100", flow.NetFlow)
	}
}

func TestPeriodStatisticsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	now := time.Now().UTC()
	postJSON(t, ts.URL+"/api/transactions", `{"source_id":"A","destination_id":"B","amount":"100"}`)

	start := now.Add(-time.Hour).Format(time.RFC3339Nano)
	end := now.Add(time.Hour).Format(time.RFC3339Nano)
	var summary struct {
		TransactionCount int `json:"transaction_count"`
	}
	getJSON(t, ts.URL+"/api/statistics/period?start="+start+"&end="+end, &summary)
	if summary.TransactionCount != 1 {
		t.Errorf("period count = %d, want 1", summary.TransactionCount)
	}

	if resp := getJSON(t, ts.URL+"/api/statistics/period?start="+end+"&end="+start, nil); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("inverted window should 422, got %d", resp.StatusCode)
	}
	if resp := getJSON(t, ts.URL+"/api/statistics/period", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing bounds should 400, got %d", resp.StatusCode)
	}
}

func TestGraphEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	postJSON(t, ts.URL+"/api/transactions", `{"source_id":"A","destination_id":"B","amount":"10"}`)
	postJSON(t, ts.URL+"/api/transactions", `{"source_id":"B","destination_id":"C","amount":"5"}`)
	postJSON(t, ts.URL+"/api/transactions", `{"source_id":"A","destination_id":"C","amount":"100"}`)

	var path struct {
		Path        []string `json:"path"`
		TotalWeight string   `json:"total_weight"`
	}
	getJSON(t, ts.URL+"/api/graph/path?from=A&to=C", &path)
	if len(path.Path) != 3 || path.Path[1] != "B" || path.TotalWeight != "15" {
		t.Fatalf("path = %+v", path)
	}

	var conn struct {
		Connected bool `json:"connected"`
	}
	getJSON(t, ts.URL+"/api/graph/connected?a=C&b=A", &conn)
	if !conn.Connected {
		t.Error("C and A should be weakly connected")
	}

	var components [][]string
	getJSON(t, ts.URL+"/api/graph/components", &components)
	if len(components) != 1 || len(components[0]) != 3 {
		t.Fatalf("components = %v", components)
	}

	var degrees []struct {
		AccountID string `json:"account_id"`
		Degree    int    `json:"degree"`
	}
	getJSON(t, ts.URL+"/api/graph/degrees?n=1", &degrees)
	if len(degrees) != 1 || degrees[0].Degree != 2 {
		t.Fatalf("degrees = %+v", degrees)
	}
}

func TestExportTransactionsCSV(t *testing.T) {
	ts, _ := newTestServer(t)
	postJSON(t, ts.URL+"/api/transactions", `{"transaction_id":"t1","source_id":"A","destination_id":"B","amount":"10"}`)

	resp, err := http.Get(ts.URL + "/api/export/transactions.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Type"); got != "text/csv" {
		t.Errorf("content type = %s", got)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(body), "TransactionID,") {
		t.Errorf("missing csv header: %q", string(body))
	}
	if !strings.Contains(string(body), "t1,A,B,10,") {
		t.Errorf("missing transaction row: %q", string(body))
	}
}
