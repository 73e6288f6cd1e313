package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kindred-protocol/kindred/client"
)

func TestContentGatewayCachesBlobs(t *testing.T) {
	var hits int
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/content/") {
			http.NotFound(w, r)
			return
		}
		hits++
		w.Write([]byte("encrypted-blob"))
	}))
	defer store.Close()

	g := NewContentGateway(client.New(store.URL, store.URL), nil)
	ctx := context.Background()

	blob, err := g.Fetch(ctx, "bafyexample")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(blob) != "encrypted-blob" {
		t.Fatalf("unexpected blob %q", blob)
	}

	if _, err := g.Fetch(ctx, "bafyexample"); err != nil {
		t.Fatalf("cached fetch failed: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected one upstream hit, got %d", hits)
	}
}

func TestContentGatewayMissingBlob(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer store.Close()

	g := NewContentGateway(client.New(store.URL, store.URL), nil)

	if _, err := g.Fetch(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for missing blob")
	}
}
