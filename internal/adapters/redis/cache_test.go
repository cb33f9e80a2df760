package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "shelter_board/internal/adapters/redis"
)

func TestCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	type payload struct {
		Kennel string `json:"kennel"`
		Lanes  int    `json:"lanes"`
	}

	// miss before set
	var out payload
	ok, err := c.Get(ctx, "timeline:test", &out)
	if err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "timeline:test", payload{Kennel: "K-1", Lanes: 2}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err = c.Get(ctx, "timeline:test", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if out.Kennel != "K-1" || out.Lanes != 2 {
		t.Fatalf("unexpected payload: %+v", out)
	}

	// expiry honors the TTL
	mr.FastForward(61 * time.Second)
	if ok, _ := c.Get(ctx, "timeline:test", &out); ok {
		t.Fatalf("expected miss after TTL expiry")
	}

	if err := c.Del(ctx, "timeline:test"); err != nil {
		t.Fatalf("del: %v", err)
	}
}
