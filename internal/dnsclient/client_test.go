package dnsclient

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/miekg/dns"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAutoFallbackToTCPOnTruncation(t *testing.T) {
	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, r *dns.Msg) {
		if w.RemoteAddr().Network() == "udp" {
			m := new(dns.Msg)
			m.SetReply(r)
			m.Truncated = true
			_ = w.WriteMsg(m)
			return
		}
		_ = w.WriteMsg(Reply(r, "192.0.2.10", "192.0.2.11"))
	})

	udpConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("udp listen: %v", err)
	}
	defer udpConn.Close()

	addr := udpConn.LocalAddr().String()
	tcpLn, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatalf("tcp listen: %v", err)
	}
	defer tcpLn.Close()

	udpSrv := &dns.Server{PacketConn: udpConn, Handler: mux}
	tcpSrv := &dns.Server{Listener: tcpLn, Handler: mux}

	go func() { _ = udpSrv.ActivateAndServe() }()
	go func() { _ = tcpSrv.ActivateAndServe() }()
	defer udpSrv.Shutdown()
	defer tcpSrv.Shutdown()

	client := New(Options{Mode: ModeAuto, Timeout: 500 * time.Millisecond})
	got, err := client.LookupAddrs(context.Background(), addr, "example.com", dns.TypeA)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if diff := cmp.Diff([]string{"192.0.2.10", "192.0.2.11"}, got); diff != "" {
		t.Fatalf("unexpected addresses (-want +got):\n%s", diff)
	}
}

func TestLookupAddrsFollowsCNAMEAnswer(t *testing.T) {
	transport := &MockTransport{Responder: func(server string, msg *dns.Msg) (*dns.Msg, time.Duration, error) {
		if !msg.RecursionDesired {
			return nil, 0, errors.New("expected recursive query")
		}
		resp := Reply(msg, "203.0.113.7")
		cname := &dns.CNAME{Hdr: dns.RR_Header{Name: msg.Question[0].Name, Rrtype: dns.TypeCNAME, Class: dns.ClassINET, Ttl: 60}, Target: "edge.example.net."}
		resp.Answer = append([]dns.RR{cname}, resp.Answer...)
		return resp, time.Millisecond, nil
	}}
	client := NewWithTransports(Options{Mode: ModeUDP}, transport, transport)

	got, err := client.LookupAddrs(context.Background(), "1.1.1.1", "www.example.com", dns.TypeA)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(got) != 1 || got[0] != "203.0.113.7" {
		t.Fatalf("unexpected addresses: %#v", got)
	}
}

func TestLookupAddrsRcodeFailure(t *testing.T) {
	transport := &MockTransport{Responder: func(server string, msg *dns.Msg) (*dns.Msg, time.Duration, error) {
		resp := new(dns.Msg)
		resp.SetReply(msg)
		resp.Rcode = dns.RcodeNameError
		return resp, time.Millisecond, nil
	}}
	client := NewWithTransports(Options{Mode: ModeUDP}, transport, transport)

	if _, err := client.LookupAddrs(context.Background(), "1.1.1.1", "missing.example.com", dns.TypeA); err == nil {
		t.Fatalf("expected NXDOMAIN to fail")
	}
	if _, err := client.LookupAddrs(context.Background(), "1.1.1.1", "example.com", dns.TypeMX); err == nil {
		t.Fatalf("expected unsupported rrtype to fail")
	}
}

func TestLookupAddrsLogsTransport(t *testing.T) {
	transport := &MockTransport{Responder: func(server string, msg *dns.Msg) (*dns.Msg, time.Duration, error) {
		return Reply(msg, "192.0.2.1"), 3 * time.Millisecond, nil
	}}
	core, logs := observer.New(zapcore.DebugLevel)
	client := NewWithTransports(Options{Mode: ModeUDP, Logger: zap.New(core)}, transport, transport)

	if _, err := client.LookupAddrs(context.Background(), "1.1.1.1", "example.com", dns.TypeA); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	entries := logs.FilterMessage("address query").All()
	if len(entries) != 1 {
		t.Fatalf("expected one query log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["transport"] != "udp" || fields["server"] != "1.1.1.1:53" {
		t.Fatalf("unexpected log fields: %#v", fields)
	}
}

func TestNormalizeServer(t *testing.T) {
	cases := map[string]string{
		"1.1.1.1":           "1.1.1.1:53",
		"1.1.1.1:5353":      "1.1.1.1:5353",
		"2606:4700::1111":   "[2606:4700::1111]:53",
		"[2606:4700::1111]": "[2606:4700::1111]:53",
	}
	for in, want := range cases {
		if got := NormalizeServer(in); got != want {
			t.Fatalf("NormalizeServer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadResolversFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolv.conf")
	content := "# test\nnameserver 1.1.1.1\nsearch lan\nnameserver 8.8.8.8\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	resolvers, err := loadResolvers(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(resolvers) != 2 || resolvers[0] != "1.1.1.1" || resolvers[1] != "8.8.8.8" {
		t.Fatalf("unexpected resolvers: %#v", resolvers)
	}
}

func TestUniqueResolvers(t *testing.T) {
	got := uniqueResolvers([]string{" 1.1.1.1", "", "8.8.8.8", "1.1.1.1", "DNS.example", "dns.example"})
	if diff := cmp.Diff([]string{"1.1.1.1", "8.8.8.8", "DNS.example"}, got); diff != "" {
		t.Fatalf("unexpected resolvers (-want +got):\n%s", diff)
	}
}
