package scanner

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"cyfox/internal/log"

	"github.com/rs/zerolog"
)

// Finding is one open port discovered on the local network.
type Finding struct {
	Host    string
	Port    int
	Service string
	Flagged bool
	Note    string
}

// Backend performs the actual scan. It may take seconds and is always
// called off the mutation path, from inside the worker's own tick.
type Backend interface {
	Scan(ctx context.Context, network string, ports []int) ([]Finding, error)
}

var serviceNames = map[int]string{
	21:   "FTP",
	22:   "SSH",
	23:   "Telnet",
	80:   "HTTP",
	443:  "HTTPS",
	445:  "SMB",
	3306: "MySQL",
	3389: "RDP",
}

// flaggedNotes marks services worth alerting on when found exposed.
var flaggedNotes = map[int]string{
	21:   "FTP port exposed - check for anonymous access",
	445:  "SMB port exposed - check for EternalBlue vulnerability",
	3306: "MySQL port exposed - check for weak credentials",
	3389: "RDP port exposed - check for BlueKeep vulnerability",
}

// ConnectScanner is the shipped Backend: a plain TCP connect scan with a
// short per-dial timeout.
type ConnectScanner struct {
	dialTimeout time.Duration
	maxHosts    int
	logger      zerolog.Logger
}

// NewConnectScanner creates a ConnectScanner.
func NewConnectScanner(dialTimeout time.Duration, maxHosts int) *ConnectScanner {
	if dialTimeout <= 0 {
		dialTimeout = 500 * time.Millisecond
	}
	if maxHosts <= 0 {
		maxHosts = 10
	}
	return &ConnectScanner{
		dialTimeout: dialTimeout,
		maxHosts:    maxHosts,
		logger:      log.WithComponent("connect-scan"),
	}
}

// Scan probes the first hosts of the network range on the given ports.
func (scanner *ConnectScanner) Scan(ctx context.Context, network string, ports []int) ([]Finding, error) {
	hosts, err := expandHosts(network, scanner.maxHosts)
	if err != nil {
		return nil, fmt.Errorf("parse network range %q: %w", network, err)
	}

	dialer := net.Dialer{Timeout: scanner.dialTimeout}
	var findings []Finding
	for _, host := range hosts {
		if ctx.Err() != nil {
			return findings, ctx.Err()
		}
		for _, port := range ports {
			address := net.JoinHostPort(host, strconv.Itoa(port))
			conn, err := dialer.DialContext(ctx, "tcp", address)
			if err != nil {
				continue
			}
			_ = conn.Close()
			findings = append(findings, newFinding(host, port))
		}
	}
	scanner.logger.Debug().Int("findings", len(findings)).Int("hosts", len(hosts)).Msg("scan pass finished")
	return findings, nil
}

func newFinding(host string, port int) Finding {
	service, known := serviceNames[port]
	if !known {
		service = fmt.Sprintf("Unknown-%d", port)
	}
	note, flagged := flaggedNotes[port]
	return Finding{Host: host, Port: port, Service: service, Flagged: flagged, Note: note}
}

// expandHosts lists up to limit usable addresses of a CIDR range, skipping
// the network and broadcast addresses.
func expandHosts(network string, limit int) ([]string, error) {
	_, subnet, err := net.ParseCIDR(network)
	if err != nil {
		return nil, err
	}

	var hosts []string
	for ip := nextIP(subnet.IP.Mask(subnet.Mask)); subnet.Contains(ip) && len(hosts) < limit; ip = nextIP(ip) {
		if isBroadcast(ip, subnet) {
			break
		}
		hosts = append(hosts, ip.String())
	}
	return hosts, nil
}

func nextIP(ip net.IP) net.IP {
	next := make(net.IP, len(ip))
	copy(next, ip)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}
	return next
}

func isBroadcast(ip net.IP, subnet *net.IPNet) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	mask := subnet.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	for i := range v4 {
		if v4[i]|mask[i] != 0xff {
			return false
		}
	}
	return true
}
