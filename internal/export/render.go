// Package export renders inventory snapshots into DNS zone fragments and Kea
// DHCP reservation files, and writes them atomically.
package export

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/sipico/netinv/internal/inventory"
	"github.com/sipico/netinv/internal/storage"
)

// RenderDNSHosts returns one A record line per host with an IPv4 address, in
// input order.
func RenderDNSHosts(hosts []*storage.Host) []byte {
	var b bytes.Buffer
	for _, h := range hosts {
		if h.IPv4 == "" {
			continue
		}
		fmt.Fprintf(&b, "%s\t\t IN\tA\t%s\n", h.Name, h.IPv4)
	}
	return b.Bytes()
}

// RenderDNSReverse returns one PTR line per host with an IPv4 address. The
// label is the last octet followed by the second to last.
func RenderDNSReverse(hosts []*storage.Host, domain string) []byte {
	var b bytes.Buffer
	for _, h := range hosts {
		if h.IPv4 == "" {
			continue
		}
		octets := strings.Split(h.IPv4, ".")
		if len(octets) != 4 {
			continue
		}
		fmt.Fprintf(&b, "%s.%s\t\t IN PTR\t%s.%s\n", octets[3], octets[2], h.Name, domain)
	}
	return b.Bytes()
}

// RenderDNSAliases returns one record per alias: A or AAAA when the target is
// an IP literal, CNAME otherwise.
func RenderDNSAliases(aliases []*storage.Alias) []byte {
	var b bytes.Buffer
	for _, a := range aliases {
		rtype := "CNAME"
		switch {
		case inventory.IsIPv4(a.Target):
			rtype = "A"
		case inventory.IsIPv6(a.Target):
			rtype = "AAAA"
		}
		fmt.Fprintf(&b, "%s\t\t IN\t%s\t%s\n", a.Name, rtype, a.Target)
	}
	return b.Bytes()
}

type hostRecord struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	IPv4       *string `json:"ipv4"`
	IPv6       *string `json:"ipv6"`
	MAC        *string `json:"mac"`
	Note       *string `json:"note"`
	SSLEnabled int     `json:"ssl_enabled"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// byInsertion returns a copy of hosts ordered by ascending ID.
func byInsertion(hosts []*storage.Host) []*storage.Host {
	out := slices.Clone(hosts)
	slices.SortStableFunc(out, func(a, b *storage.Host) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// RenderHostsNDJSON returns one JSON object per host, one per line, in input
// order. Unset optional fields are null.
func RenderHostsNDJSON(hosts []*storage.Host) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	for _, h := range hosts {
		rec := hostRecord{
			ID:   h.ID,
			Name: h.Name,
			IPv4: optional(h.IPv4),
			IPv6: optional(h.IPv6),
			MAC:  optional(h.MAC),
			Note: optional(h.Note),
		}
		if h.SSLEnabled {
			rec.SSLEnabled = 1
		}
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("failed to encode host %d: %w", h.ID, err)
		}
	}
	return b.Bytes(), nil
}

// Reservation4 is a Kea DHCPv4 host reservation.
type Reservation4 struct {
	HWAddress string `json:"hw-address"`
	IPAddress string `json:"ip-address"`
	Hostname  string `json:"hostname"`
}

// Reservation6 is a Kea DHCPv6 host reservation keyed by the host's MAC.
type Reservation6 struct {
	DUID        string `json:"duid"`
	IPAddresses string `json:"ip-addresses"`
	Hostname    string `json:"hostname"`
}

// RenderDHCP4 returns the reservations for hosts with both IPv4 and MAC set.
func RenderDHCP4(hosts []*storage.Host) ([]byte, error) {
	res := make([]Reservation4, 0, len(hosts))
	for _, h := range hosts {
		if h.IPv4 == "" || h.MAC == "" {
			continue
		}
		res = append(res, Reservation4{HWAddress: h.MAC, IPAddress: h.IPv4, Hostname: h.Name})
	}
	return marshalReservations(res)
}

// RenderDHCP6 returns the reservations for hosts with both IPv6 and MAC set.
func RenderDHCP6(hosts []*storage.Host) ([]byte, error) {
	res := make([]Reservation6, 0, len(hosts))
	for _, h := range hosts {
		if h.IPv6 == "" || h.MAC == "" {
			continue
		}
		res = append(res, Reservation6{DUID: h.MAC, IPAddresses: h.IPv6, Hostname: h.Name})
	}
	return marshalReservations(res)
}

func marshalReservations[R Reservation4 | Reservation6](res []R) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(struct {
		Reservations []R `json:"reservations"`
	}{res}); err != nil {
		return nil, fmt.Errorf("failed to encode reservations: %w", err)
	}
	return b.Bytes(), nil
}
