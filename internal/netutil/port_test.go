package netutil

import (
	"net"
	"reflect"
	"testing"
)

func TestSelectBindAddrPreferredFree(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	got, err := SelectBindAddr(addr, nil, false)
	if err != nil {
		t.Fatalf("SelectBindAddr() error = %v", err)
	}
	if got != addr {
		t.Fatalf("SelectBindAddr() = %q, want %q", got, addr)
	}
}

func TestSelectBindAddrFallback(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen busy: %v", err)
	}
	defer func() { _ = busy.Close() }()

	free, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen free: %v", err)
	}
	freeAddr := free.Addr().String()
	_ = free.Close()

	got, err := SelectBindAddr(busy.Addr().String(), []string{busy.Addr().String(), freeAddr}, true)
	if err != nil {
		t.Fatalf("SelectBindAddr() error = %v", err)
	}
	if got != freeAddr {
		t.Fatalf("SelectBindAddr() = %q, want %q", got, freeAddr)
	}

	if _, err := SelectBindAddr(busy.Addr().String(), []string{freeAddr}, false); err == nil {
		t.Fatal("SelectBindAddr() without fallback = nil error")
	}
}

func TestParseCandidates(t *testing.T) {
	got, err := ParseCandidates("127.0.0.1", "8291, 8295-8297,")
	if err != nil {
		t.Fatalf("ParseCandidates() error = %v", err)
	}
	want := []string{"127.0.0.1:8291", "127.0.0.1:8295", "127.0.0.1:8296", "127.0.0.1:8297"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseCandidates() = %v; want %v", got, want)
	}

	for _, bad := range []string{"abc", "0", "70000", "9000-8000", "8000-x"} {
		if _, err := ParseCandidates("127.0.0.1", bad); err == nil {
			t.Fatalf("ParseCandidates(%q) = nil error", bad)
		}
	}
}

func TestHTTPBaseURL(t *testing.T) {
	cases := map[string]string{
		"127.0.0.1:8290": "http://127.0.0.1:8290",
		"0.0.0.0:8290":   "http://127.0.0.1:8290",
		":8290":          "http://127.0.0.1:8290",
		"[::]:8290":      "http://[::1]:8290",
	}
	for in, want := range cases {
		if got := HTTPBaseURL(in); got != want {
			t.Fatalf("HTTPBaseURL(%q) = %q; want %q", in, got, want)
		}
	}
}
