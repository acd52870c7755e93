// Package zeroconf advertises the book list web UI as an mDNS/DNS-SD service
// so browsers on the LAN can find it without knowing the host address.
package zeroconf

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/grandcat/zeroconf"
)

// ServiceType is the DNS-SD type the UI is registered under.
const ServiceType = "_http._tcp"

// Service manages mDNS service registration.
type Service struct {
	name    string // instance name, e.g. "booklist-myhost"
	port    int
	version string
}

// New creates a Service that will advertise the UI on port.
func New(name string, port int, version string) *Service {
	return &Service{
		name:    name,
		port:    port,
		version: version,
	}
}

// Records returns the TXT records published with the service.
func (s *Service) Records() []string {
	return []string{"version=" + s.version, "path=/", "app=booklist"}
}

// Start registers the mDNS service and blocks until ctx is cancelled, at which
// point it shuts down the server cleanly.
func (s *Service) Start(ctx context.Context) error {
	txt := s.Records()

	server, err := zeroconf.Register(
		s.name,
		ServiceType,
		"local.",
		s.port,
		txt,
		nil, // all interfaces
	)
	if err != nil {
		return fmt.Errorf("zeroconf register: %w", err)
	}
	slog.Info("zeroconf: registered mDNS service",
		"name", s.name,
		"port", s.port,
		"txt", txt,
	)

	<-ctx.Done()

	server.Shutdown()
	slog.Info("zeroconf: mDNS service unregistered")
	return nil
}

// PortFromAddr extracts the TCP port from a listen address such as ":8080"
// or "0.0.0.0:80".
func PortFromAddr(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("zeroconf: parse listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("zeroconf: invalid port in %q", addr)
	}
	return port, nil
}
