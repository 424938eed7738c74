package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/winterSteve25/props/internal/store"
	coregrpc "github.com/winterSteve25/props/pkg/core/grpc"
	propslog "github.com/winterSteve25/props/pkg/core/log"
)

const bufSize = 1024 * 1024

func newTestService(history store.HistoryStore) *Service {
	return NewService(ServiceOptions{
		Logger:         propslog.Discard(),
		MaxSourceBytes: 256,
		History:        history,
	})
}

// startGRPC serves srv over an in-memory listener and returns a client
func startGRPC(t *testing.T, srv *Server) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	go srv.GRPC().Serve(lis)
	t.Cleanup(srv.GRPC().Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Failed to dial bufnet: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPC_Parse(t *testing.T) {
	history := store.NewMemoryHistoryStore()
	srv := New(Config{}, newTestService(history), propslog.Discard())
	client := NewPropsClient(startGRPC(t, srv))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := client.Parse(ctx, "main.props", "number: I32 = 32\nx: Str = 1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if out["id"] == "" {
		t.Error("Expected a unit id")
	}
	if nodes := out["ast"].([]interface{}); len(nodes) != 2 {
		t.Errorf("Expected 2 ast entries, got %d", len(nodes))
	}

	diags := out["diagnostics"].([]interface{})
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0].(map[string]interface{})
	if d["kind"] != "UnmatchedTypes" {
		t.Errorf("Expected UnmatchedTypes, got %v", d["kind"])
	}
	// Struct numbers decode as float64
	if d["line"] != float64(2) {
		t.Errorf("Expected line 2, got %v", d["line"])
	}
	if !strings.Contains(d["rendered"].(string), "Parsing Error:") {
		t.Errorf("Expected rendered excerpt, got %q", d["rendered"])
	}

	types := out["types"].(map[string]interface{})
	if types["number"] != "I32" {
		t.Errorf("Expected number: I32, got %v", types["number"])
	}

	runs, _ := history.List(ctx, store.RunFilter{})
	if len(runs) != 1 || runs[0].SourceName != "main.props" {
		t.Errorf("Expected the run to be recorded, got %d runs", len(runs))
	}
}

func TestGRPC_Tokens(t *testing.T) {
	srv := New(Config{}, newTestService(nil), propslog.Discard())
	client := NewPropsClient(startGRPC(t, srv))

	tokens, err := client.Tokens(context.Background(), "x = 1")
	if err != nil {
		t.Fatalf("Tokens failed: %v", err)
	}
	if len(tokens) == 0 {
		t.Fatal("Expected tokens")
	}
	first := tokens[0].(map[string]interface{})
	if first["token"] != `Ident("x")` {
		t.Errorf("Expected first token Ident(\"x\"), got %v", first["token"])
	}
}

func TestGRPC_Errors(t *testing.T) {
	srv := New(Config{}, newTestService(nil), propslog.Discard())
	conn := startGRPC(t, srv)
	client := NewPropsClient(conn)

	_, err := client.Parse(context.Background(), "", strings.Repeat("x", 300))
	if status.Code(err) != codes.ResourceExhausted {
		t.Errorf("Expected ResourceExhausted for oversized source, got %v", err)
	}

	err = conn.Invoke(context.Background(), ParseMethod, &structpb.Struct{}, new(structpb.Struct))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("Expected InvalidArgument for missing source, got %v", err)
	}
}

func TestGRPC_Health(t *testing.T) {
	srv := New(Config{}, newTestService(nil), propslog.Discard())
	srv.GRPC().SetServing(ServiceName, true)
	conn := startGRPC(t, srv)

	serving, err := coregrpc.CheckHealth(context.Background(), conn, ServiceName)
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	if !serving {
		t.Error("Expected service to be serving")
	}
}

func TestGRPC_RequestIDHeader(t *testing.T) {
	srv := New(Config{}, newTestService(nil), propslog.Discard())
	conn := startGRPC(t, srv)
	client := NewPropsClient(conn)

	tests := []struct {
		name     string
		ctx      context.Context
		wantSame bool
	}{
		{"propagated", metadata.AppendToOutgoingContext(context.Background(), coregrpc.RequestIDHeader, "req-42"), true},
		{"generated", context.Background(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var header metadata.MD
			if _, err := client.Parse(tt.ctx, "", "x = 1", grpc.Header(&header)); err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			ids := header.Get(coregrpc.RequestIDHeader)
			if len(ids) != 1 {
				t.Fatalf("Expected one request id, got %v", ids)
			}
			if tt.wantSame && ids[0] != "req-42" {
				t.Errorf("Expected req-42, got %s", ids[0])
			}
			if !tt.wantSame && ids[0] == "" {
				t.Error("Expected a generated request id")
			}
		})
	}
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocket_Parse(t *testing.T) {
	srv := New(Config{}, newTestService(nil), propslog.Discard())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)

	if err := conn.WriteJSON(map[string]interface{}{
		"type":    "parse",
		"payload": map[string]string{"source": "x = 1 +"},
	}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var resp struct {
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
	}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if resp.Type != "result" {
		t.Fatalf("Expected result, got %s", resp.Type)
	}
	diags := resp.Payload["diagnostics"].([]interface{})
	if len(diags) != 1 || diags[0].(map[string]interface{})["kind"] != "UnexpectedEOF" {
		t.Errorf("Expected a single UnexpectedEOF, got %v", diags)
	}
}

func TestWebSocket_Messages(t *testing.T) {
	srv := New(Config{}, newTestService(nil), propslog.Discard())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	tests := []struct {
		name     string
		message  string
		wantType string
		wantCode string
	}{
		{"ping", `{"type":"ping"}`, "pong", ""},
		{"tokens", `{"type":"tokens","payload":{"source":"a"}}`, "tokens", ""},
		{"unknown type", `{"type":"compile"}`, "error", "unknown_type"},
		{"bad payload", `{"type":"parse","payload":"oops"}`, "error", "invalid_payload"},
		{"too large", `{"type":"parse","payload":{"source":"` + strings.Repeat("y", 300) + `"}}`, "error", "TOO_LARGE"},
	}

	conn := dialWS(t, ts)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.message)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			var resp struct {
				Type    string                 `json:"type"`
				Payload map[string]interface{} `json:"payload"`
			}
			if err := conn.ReadJSON(&resp); err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if resp.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, resp.Type)
			}
			if tt.wantCode != "" && resp.Payload["code"] != tt.wantCode {
				t.Errorf("Expected code %s, got %v", tt.wantCode, resp.Payload["code"])
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := New(Config{}, newTestService(store.NewMemoryHistoryStore()), propslog.Discard())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	history, _ := srv.service.History().List(context.Background(), store.RunFilter{})
	if len(history) != 0 {
		t.Errorf("Expected health probes to stay out of history, got %d runs", len(history))
	}
}

func TestServer_RunAndShutdown(t *testing.T) {
	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	srv := New(Config{ShutdownTimeout: time.Second}, newTestService(nil), propslog.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, grpcLis, httpLis) }()

	resp, err := http.Get("http://" + httpLis.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shut down")
	}
}
