package rnet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testJoiner(addrs func() ([]string, error)) *Joiner {
	return &Joiner{log: slog.New(slog.NewTextHandler(io.Discard, nil)), addrs: addrs}
}

func TestJoinWaitsForAddress(t *testing.T) {
	calls := 0
	j := testJoiner(func() ([]string, error) {
		calls++
		if calls < 3 {
			return nil, nil
		}
		return []string{"192.168.4.20"}, nil
	})
	ip, err := j.Join(context.Background(), Config{SSID: "greenhouse", Timeout: 2 * time.Second, Attempts: 1})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if ip != "192.168.4.20" || calls != 3 {
		t.Errorf("ip %q after %d polls", ip, calls)
	}
}

func TestJoinRetriesThenFails(t *testing.T) {
	calls := 0
	j := testJoiner(func() ([]string, error) {
		calls++
		return nil, errors.New("no carrier")
	})
	_, err := j.Join(context.Background(), Config{SSID: "greenhouse", Timeout: time.Second, RetryDelay: time.Millisecond, Attempts: 3})
	if !errors.Is(err, ErrNetworkJoin) {
		t.Fatalf("err %v, want ErrNetworkJoin", err)
	}
	if calls != 3 {
		t.Errorf("attempts %d, want 3", calls)
	}
}

func TestJoinTimesOut(t *testing.T) {
	j := testJoiner(func() ([]string, error) { return nil, nil })
	start := time.Now()
	_, err := j.Join(context.Background(), Config{Timeout: 20 * time.Millisecond, Attempts: 2})
	if !errors.Is(err, ErrNetworkJoin) {
		t.Fatalf("err %v, want ErrNetworkJoin", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("join ignored its timeout")
	}
}

func TestJoinCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j := testJoiner(func() ([]string, error) { return nil, nil })
	if _, err := j.Join(ctx, Config{Timeout: time.Hour, RetryDelay: time.Hour, Attempts: 5}); !errors.Is(err, ErrNetworkJoin) {
		t.Fatalf("err %v, want ErrNetworkJoin", err)
	}
}
