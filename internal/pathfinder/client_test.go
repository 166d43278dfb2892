package pathfinder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Versifine/strider/internal/config"
)

// newTestClient 创建一个指向 mock server 的 Client
func newTestClient(serverURL string) *Client {
	return NewClient(&config.PathfinderConfig{
		Endpoint:       serverURL,
		RequestTimeout: 2000,
	})
}

func TestPathfind(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		handler    http.HandlerFunc
		wantErr    bool
		wantNodes  int
		errContain string
		errIs      error
	}{
		{
			name: "正常返回",
			req:  Request{Start: [3]int{0, 64, 0}, End: [3]int{5, 64, -3}, Flags: DefaultFlags()},
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/pathfind" {
					t.Errorf("请求 = %s %s, 期望 POST /api/pathfind", r.Method, r.URL.Path)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("Content-Type header = %q, 期望 %q", r.Header.Get("Content-Type"), "application/json")
				}
				var body PathfindRequest
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("解析请求体失败: %v", err)
				}
				if body.Start != "0,64,0" || body.End != "5,64,-3" {
					t.Errorf("坐标 = %q -> %q, 期望 0,64,0 -> 5,64,-3", body.Start, body.End)
				}
				if !body.UseKeynodes || body.UseEtherwarp || body.UseWarpPoints || body.UseSpline || body.IsPerfectPath {
					t.Errorf("默认开关不符预期: %+v", body)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"path":[{"x":0,"y":64,"z":0,"top_bound":1.5,"path_weight":2,"is_liquid":false},{"x":5,"y":64,"z":-3,"is_liquid":true}],"keynodes":[{"x":5,"y":64,"z":-3}]}`))
			},
			wantNodes: 2,
		},
		{
			name: "空路径",
			req:  Request{End: [3]int{1, 2, 3}},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"path":[],"keynodes":[]}`))
			},
			wantErr: true,
			errIs:   ErrNoPath,
		},
		{
			name: "服务端错误",
			req:  Request{End: [3]int{1, 2, 3}},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("map not loaded"))
			},
			wantErr:    true,
			errContain: "status 500",
		},
		{
			name: "响应不是JSON",
			req:  Request{End: [3]int{1, 2, 3}},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>"))
			},
			wantErr:    true,
			errContain: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			path, err := newTestClient(server.URL).Pathfind(context.Background(), tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Pathfind() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.errContain != "" && !strings.Contains(err.Error(), tt.errContain) {
				t.Errorf("错误信息 = %q, 期望包含 %q", err.Error(), tt.errContain)
			}
			if tt.errIs != nil && !errors.Is(err, tt.errIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.errIs)
			}
			if !tt.wantErr && path.Len() != tt.wantNodes {
				t.Errorf("节点数 = %d, 期望 %d", path.Len(), tt.wantNodes)
			}
		})
	}
}

func TestPathfindDecodesNodeFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"path":[{"x":1,"y":70,"z":-4,"top_bound":2.5,"path_weight":0.75,"is_liquid":true}],"keynodes":[]}`))
	}))
	defer server.Close()

	path, err := newTestClient(server.URL).Pathfind(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Pathfind() 返回错误: %v", err)
	}
	n := path.At(0)
	if n.X != 1 || n.Y != 70 || n.Z != -4 || n.TopBound != 2.5 || n.Weight != 0.75 || !n.Liquid {
		t.Errorf("节点字段解析错误: %+v", n)
	}
	if len(path.Keynodes()) != 0 {
		t.Errorf("keynodes = %d, 期望 0", len(path.Keynodes()))
	}
}

func TestPathfindTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(&config.PathfinderConfig{Endpoint: server.URL, RequestTimeout: 50})
	_, err := client.Pathfind(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("期望超时错误，实际: %v", err)
	}
}

func TestLoadMap(t *testing.T) {
	var gotMap atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/loadmap" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		m := r.URL.Query().Get("map")
		gotMap.Store(m)
		if m == "nowhere" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("unknown map"))
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/")
	if err := client.LoadMap(context.Background(), "mines"); err != nil {
		t.Fatalf("LoadMap() 返回错误: %v", err)
	}
	if gotMap.Load() != "mines" || client.CurrentMap() != "mines" {
		t.Errorf("map = %v / %q, 期望 mines", gotMap.Load(), client.CurrentMap())
	}

	if err := client.LoadMap(context.Background(), "nowhere"); err == nil {
		t.Fatal("未知地图应返回错误")
	}
	if client.CurrentMap() != "mines" {
		t.Errorf("失败后 CurrentMap = %q, 期望保持 mines", client.CurrentMap())
	}
}

func TestKeepalive(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/keepalive" && r.Method == http.MethodGet {
			hits.Add(1)
		}
	}))
	defer server.Close()

	if err := newTestClient(server.URL).Keepalive(context.Background()); err != nil {
		t.Fatalf("Keepalive() 返回错误: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("keepalive 请求次数 = %d, 期望 1", hits.Load())
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(nil)
	if c.baseURL != "http://localhost:3000" {
		t.Errorf("baseURL = %q, 期望默认地址", c.baseURL)
	}
	c = NewClient(&config.PathfinderConfig{})
	if c.baseURL != "http://localhost:3000" {
		t.Errorf("空 Endpoint 的 baseURL = %q, 期望默认地址", c.baseURL)
	}
}
