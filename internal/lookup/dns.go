package lookup

import (
	"context"
	"sync"

	"github.com/jaxxstorm/quicken/internal/dnsclient"
	"github.com/miekg/dns"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type DNSOptions struct {
	Resolvers   []string
	IPv6        bool
	Parallelism int
	Logger      *zap.Logger
}

// DNSSource collects candidates by asking several recursive resolvers for
// the hostname. Different resolvers often hand out different CDN edges.
type DNSSource struct {
	client *dnsclient.Client
	opts   DNSOptions
}

func NewDNSSource(client *dnsclient.Client, opts DNSOptions) *DNSSource {
	if len(opts.Resolvers) == 0 {
		opts.Resolvers = dnsclient.DefaultResolverChain()
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 6
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &DNSSource{client: client, opts: opts}
}

type dnsQuery struct {
	server string
	qtype  uint16
}

type dnsAnswer struct {
	addrs []string
	err   error
}

// Lookup returns the union of every resolver's answers. It fails only when
// no resolver answered.
func (s *DNSSource) Lookup(ctx context.Context, hostname string) ([]string, error) {
	queries := []dnsQuery{}
	for _, server := range s.opts.Resolvers {
		queries = append(queries, dnsQuery{server: server, qtype: dns.TypeA})
		if s.opts.IPv6 {
			queries = append(queries, dnsQuery{server: server, qtype: dns.TypeAAAA})
		}
	}
	if len(queries) == 0 {
		return nil, errors.New("no resolvers configured")
	}

	answers := make([]dnsAnswer, len(queries))
	wg := sync.WaitGroup{}
	sem := make(chan struct{}, s.opts.Parallelism)
	for i, q := range queries {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, q dnsQuery) {
			defer wg.Done()
			defer func() { <-sem }()
			addrs, err := s.client.LookupAddrs(ctx, q.server, hostname, q.qtype)
			answers[idx] = dnsAnswer{addrs: addrs, err: err}
		}(i, q)
	}
	wg.Wait()

	var errs error
	addrs := []string{}
	answered := 0
	for i, a := range answers {
		if a.err != nil {
			s.opts.Logger.Debug("resolver query failed",
				zap.String("hostname", hostname),
				zap.String("server", queries[i].server),
				zap.Error(a.err),
			)
			errs = multierr.Append(errs, a.err)
			continue
		}
		answered++
		addrs = append(addrs, a.addrs...)
	}
	if answered == 0 {
		return nil, errors.Wrap(errs, "all resolvers failed")
	}
	return lo.Uniq(addrs), nil
}
