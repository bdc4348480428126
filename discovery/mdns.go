// Package discovery advertises the server on the local network so clients
// on the same LAN can find it without knowing its address.
package discovery

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_sharedcanvas._tcp"

// Advertiser wraps a running mDNS responder.
type Advertiser struct {
	server *mdns.Server
}

// Advertise announces instance on port. The responder runs until Shutdown.
func Advertise(instance string, port int) (*Advertiser, error) {
	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, txtRecords())
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}

	slog.Info("mdns advertising", "instance", instance, "service", ServiceType, "port", port)
	return &Advertiser{server: server}, nil
}

func (a *Advertiser) Shutdown() error {
	return a.server.Shutdown()
}

func txtRecords() []string {
	return []string{"path=/ws", "proto=json"}
}
