package server

import (
	"errors"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"

	"github.com/lawnchairsociety/lighthouse/internal/config"
	"github.com/lawnchairsociety/lighthouse/internal/logger"
)

var (
	ErrTooManyFromIP = errors.New("too many connections from this address")
	ErrServerFull    = errors.New("connection limit reached")
)

// ConnLimiter caps open control sessions per client address and in total.
// Zero limits mean unlimited.
type ConnLimiter struct {
	mu       sync.Mutex
	open     map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

// NewConnLimiter creates a limiter from the connection config.
func NewConnLimiter(cfg config.ConnectionsConfig) *ConnLimiter {
	return &ConnLimiter{
		open:     make(map[string]int),
		maxPerIP: cfg.MaxPerIP,
		maxTotal: cfg.MaxTotal,
	}
}

// Slot is one admitted connection. Release may be called more than once.
type Slot struct {
	limiter *ConnLimiter
	ip      string
	once    sync.Once
}

// IP returns the normalised address the slot is charged to.
func (s *Slot) IP() string {
	return s.ip
}

// Release frees the slot.
func (s *Slot) Release() {
	s.once.Do(func() { s.limiter.release(s.ip) })
}

// Acquire admits a connection from ip, or reports which limit refused it.
func (c *ConnLimiter) Acquire(ip string) (*Slot, error) {
	ip = normalizeIP(ip)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxTotal > 0 && c.total >= c.maxTotal {
		return nil, ErrServerFull
	}
	if c.maxPerIP > 0 && c.open[ip] >= c.maxPerIP {
		return nil, ErrTooManyFromIP
	}

	c.open[ip]++
	c.total++
	return &Slot{limiter: c, ip: ip}, nil
}

func (c *ConnLimiter) release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open[ip] <= 1 {
		delete(c.open, ip)
	} else {
		c.open[ip]--
	}
	c.total--
}

// Stats returns the open connection count and the number of distinct
// addresses.
func (c *ConnLimiter) Stats() (total int, ips int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total, len(c.open)
}

// Open returns the number of open connections charged to ip.
func (c *ConnLimiter) Open(ip string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open[normalizeIP(ip)]
}

// normalizeIP folds IPv4-mapped IPv6 addresses onto IPv4 so one client is
// counted once. Strings that are not addresses are kept as they are.
func normalizeIP(ip string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return strings.TrimSpace(ip)
	}
	return addr.Unmap().WithZone("").String()
}

// extractIP strips the port from an ip:port address.
func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// ipResolver picks the address a request is charged to.
type ipResolver struct {
	trusted []netip.Prefix
}

// newIPResolver parses trusted proxy entries. Bare addresses are accepted
// as single-host prefixes; invalid entries are logged and skipped.
func newIPResolver(proxies []string) *ipResolver {
	r := &ipResolver{}
	for _, entry := range proxies {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			r.trusted = append(r.trusted, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			r.trusted = append(r.trusted, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		logger.Warning("Ignoring invalid trusted proxy", "entry", entry)
	}
	return r
}

func (r *ipResolver) isTrusted(peer string) bool {
	addr, err := netip.ParseAddr(normalizeIP(peer))
	if err != nil {
		return false
	}
	for _, p := range r.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP returns the socket peer, or the client named by X-Forwarded-For
// (first entry) or X-Real-IP when the peer is a trusted proxy.
func (r *ipResolver) clientIP(req *http.Request) string {
	peer := normalizeIP(extractIP(req.RemoteAddr))
	if !r.isTrusted(peer) {
		return peer
	}

	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := normalizeIP(first); ip != "" {
			return ip
		}
	}
	if xri := normalizeIP(req.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}
