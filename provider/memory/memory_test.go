package memory

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

func TestGetSetDel(t *testing.T) {
	ctx := context.Background()
	p := New()

	if _, ok, err := p.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v"), 1, 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	b, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(b, []byte("v")) {
		t.Fatalf("Get: ok=%v err=%v b=%q", ok, err, b)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	p := New()
	_, _ = p.Set(ctx, "forever", []byte("v"), 1, 0)
	_, _ = p.Set(ctx, "short", []byte("v"), 1, 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	if _, ok, _ := p.Get(ctx, "forever"); !ok {
		t.Fatalf("ttl=0 entry should not expire")
	}
	if _, ok, _ := p.Get(ctx, "short"); ok {
		t.Fatalf("ttl entry should have expired")
	}
	if p.Len() != 1 {
		t.Fatalf("expired entry should be dropped on read, len=%d", p.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	p := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = p.Set(ctx, "k", []byte{byte(j)}, 1, 0)
				_, _, _ = p.Get(ctx, "k")
			}
		}()
	}
	wg.Wait()
	if _, ok, _ := p.Get(ctx, "k"); !ok {
		t.Fatalf("expected key present")
	}
}

func TestCloseClears(t *testing.T) {
	ctx := context.Background()
	p := New()
	_, _ = p.Set(ctx, "k", []byte("v"), 1, 0)
	if err := p.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if p.Len() != 0 {
		t.Fatalf("Close should drop entries")
	}
}
