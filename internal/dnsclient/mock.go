package dnsclient

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"
)

type MockTransport struct {
	Responder func(server string, msg *dns.Msg) (*dns.Msg, time.Duration, error)
}

func (m *MockTransport) Exchange(ctx context.Context, server string, msg *dns.Msg) (*dns.Msg, time.Duration, error) {
	if m.Responder == nil {
		return nil, 0, nil
	}
	return m.Responder(server, msg)
}

// Reply answers msg with one A or AAAA record per ip.
func Reply(msg *dns.Msg, ips ...string) *dns.Msg {
	resp := new(dns.Msg)
	resp.SetReply(msg)
	name := msg.Question[0].Name
	for _, raw := range ips {
		ip := net.ParseIP(raw)
		if ip == nil {
			continue
		}
		if v4 := ip.To4(); v4 != nil {
			resp.Answer = append(resp.Answer, &dns.A{Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60}, A: v4})
			continue
		}
		resp.Answer = append(resp.Answer, &dns.AAAA{Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 60}, AAAA: ip})
	}
	return resp
}
