package db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) *RedisDB {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewRedisDB("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(rdb.Close)
	return rdb
}

type testSnapshot struct {
	BoardID string   `json:"boardId"`
	Lists   []string `json:"lists"`
}

func TestBoardSnapshotRoundTrip(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	in := testSnapshot{BoardID: "b-1", Lists: []string{"todo", "doing", "done"}}
	if err := rdb.SetBoardSnapshot(ctx, "b-1", in, 5*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out testSnapshot
	found, err := rdb.GetBoardSnapshot(ctx, "b-1", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("snapshot not found after set")
	}
	if out.BoardID != in.BoardID || len(out.Lists) != 3 || out.Lists[1] != "doing" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestBoardSnapshotMiss(t *testing.T) {
	rdb := newTestRedis(t)

	var out testSnapshot
	found, err := rdb.GetBoardSnapshot(context.Background(), "missing", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected a miss for an uncached board")
	}
}

func TestInvalidateBoard(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	if err := rdb.SetBoardSnapshot(ctx, "b-1", testSnapshot{BoardID: "b-1"}, 5*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := rdb.InvalidateBoard(ctx, "b-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	var out testSnapshot
	found, err := rdb.GetBoardSnapshot(ctx, "b-1", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("snapshot survived invalidation")
	}

	// Invalidation scopes to one board.
	if err := rdb.SetBoardSnapshot(ctx, "b-2", testSnapshot{BoardID: "b-2"}, 5*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := rdb.InvalidateBoard(ctx, "b-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if found, _ = rdb.GetBoardSnapshot(ctx, "b-2", &out); !found {
		t.Fatal("unrelated board was invalidated")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	if err := rdb.SetSession(ctx, "user-1", map[string]string{"token": "abc"}, time.Minute); err != nil {
		t.Fatalf("set session: %v", err)
	}

	var session map[string]string
	if err := rdb.GetSession(ctx, "user-1", &session); err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session["token"] != "abc" {
		t.Errorf("session mismatch: %v", session)
	}

	if err := rdb.DeleteSession(ctx, "user-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if err := rdb.GetSession(ctx, "user-1", &session); err == nil {
		t.Fatal("expected an error after session deletion")
	}
}
