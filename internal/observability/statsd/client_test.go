package statsd

import (
	"net"
	"strings"
	"testing"
	"time"
)

// newCapturePair returns an enabled client wired to a local UDP listener and a
// function that reads the next emitted line.
func newCapturePair(t *testing.T, cfg Config) (*Client, func() string) {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	t.Cleanup(func() { _ = pc.Close() })

	cfg.Enabled = true
	cfg.Address = pc.LocalAddr().String()
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	read := func() string {
		buf := make([]byte, 1024)
		if derr := pc.SetReadDeadline(time.Now().Add(2 * time.Second)); derr != nil {
			t.Fatalf("set deadline: %v", derr)
		}
		n, _, rerr := pc.ReadFrom(buf)
		if rerr != nil {
			t.Fatalf("read udp: %v", rerr)
		}
		return string(buf[:n])
	}
	return client, read
}

func TestCountEmitsPrefixedLine(t *testing.T) {
	client, read := newCapturePair(t, Config{Prefix: "atelier"})

	client.Count("intake.submission", 1, map[string]string{"result": "accepted"})

	line := read()
	if line != "atelier.intake.submission:1|c|#result:accepted" {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestTagsAreSortedAndMerged(t *testing.T) {
	client, read := newCapturePair(t, Config{
		Prefix: "atelier",
		Tags:   map[string]string{"env": "test"},
	})

	client.Count("intake.submission", 2, map[string]string{
		"source": "site-vitrine",
		"result": "rejected",
	})

	line := read()
	want := "|#env:test,result:rejected,source:site-vitrine"
	if !strings.HasSuffix(line, want) {
		t.Fatalf("line %q does not end with %q", line, want)
	}
}

func TestPerCallTagsOverrideClientTags(t *testing.T) {
	client, read := newCapturePair(t, Config{Tags: map[string]string{"env": "test"}})

	client.Count("notify.delivery", 1, map[string]string{"env": "staging"})

	if line := read(); !strings.Contains(line, "env:staging") {
		t.Fatalf("line %q should carry the per-call tag value", line)
	}
}

func TestTimingEmitsMilliseconds(t *testing.T) {
	client, read := newCapturePair(t, Config{})

	client.Timing("intake.duration", 1500*time.Millisecond, nil)

	if line := read(); line != "intake.duration:1500|ms" {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestGaugeFormatsFloats(t *testing.T) {
	client, read := newCapturePair(t, Config{})

	client.Gauge("queue.depth", 2.5, nil)

	if line := read(); line != "queue.depth:2.5|g" {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestMetricNamesAreNormalized(t *testing.T) {
	client, read := newCapturePair(t, Config{Prefix: "atelier"})

	client.Count("intake submission/rate", 1, nil)

	if line := read(); !strings.HasPrefix(line, "atelier.intake_submission_rate:") {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestDisabledClientIsInert(t *testing.T) {
	client, err := NewClient(Config{Enabled: false, Address: "127.0.0.1:8125"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Enabled() {
		t.Fatal("disabled client reports enabled")
	}
	// Must not panic or block.
	client.Count("intake.submission", 1, nil)
	if cerr := client.Close(); cerr != nil {
		t.Fatalf("close: %v", cerr)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var client *Client
	client.Count("x", 1, nil)
	client.Gauge("x", 1, nil)
	client.Timing("x", time.Second, nil)
	if client.Enabled() {
		t.Fatal("nil client reports enabled")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestEmptyAddressYieldsInertClient(t *testing.T) {
	client, err := NewClient(Config{Enabled: true, Address: "  "})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Enabled() {
		t.Fatal("client without address reports enabled")
	}
}
