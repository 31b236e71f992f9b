package clickhouse

import (
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

func TestBuildOptions(t *testing.T) {
	opts := buildOptions(ClientConfig{
		Host:        "ch",
		Port:        9000,
		Database:    "recopulse",
		User:        "default",
		DialTimeout: 5 * time.Second,
		MaxExecTime: 30 * time.Second,
		AsyncInsert: true,
	})
	if len(opts.Addr) != 1 || opts.Addr[0] != "ch:9000" {
		t.Fatalf("unexpected addr %v", opts.Addr)
	}
	if opts.Auth.Database != "recopulse" || opts.Auth.Username != "default" {
		t.Fatalf("unexpected auth %+v", opts.Auth)
	}
	if opts.Protocol != clickhouse.Native || opts.DialTimeout != 5*time.Second {
		t.Fatalf("unexpected transport settings: %v %v", opts.Protocol, opts.DialTimeout)
	}
	if opts.Settings["max_execution_time"] != 30 || opts.Settings["async_insert"] != 1 {
		t.Fatalf("unexpected settings %v", opts.Settings)
	}
	if _, ok := opts.Settings["wait_for_async_insert"]; ok {
		t.Fatalf("wait_for_async_insert should be off")
	}

	opts = buildOptions(ClientConfig{Host: "ch", Port: 8123, Database: "db", User: "u", Password: "p", UseHTTP: true})
	if opts.Protocol != clickhouse.HTTP || opts.Auth.Password != "p" || len(opts.Settings) != 0 {
		t.Fatalf("unexpected http options %+v", opts)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error without host")
	}
}
