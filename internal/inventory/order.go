package inventory

import (
	"encoding/binary"
	"math"
	"net/netip"
	"sort"

	"github.com/sipico/netinv/internal/storage"
)

type ipv4Key struct {
	missing int    // 1 when the host has no IPv4
	value   uint64 // numeric address; MaxUint64 for unparsable input
}

func hostIPv4Key(h *storage.Host) ipv4Key {
	if h.IPv4 == "" {
		return ipv4Key{missing: 1}
	}
	addr, err := netip.ParseAddr(h.IPv4)
	if err != nil || !addr.Is4() {
		return ipv4Key{value: math.MaxUint64}
	}
	b := addr.As4()
	return ipv4Key{value: uint64(binary.BigEndian.Uint32(b[:]))}
}

// SortHostsByIPv4 orders hosts by ascending numeric IPv4. Hosts with an
// unparsable IPv4 follow every valid address, hosts without one come last,
// and equal keys keep their input order.
func SortHostsByIPv4(hosts []*storage.Host) {
	keys := make(map[*storage.Host]ipv4Key, len(hosts))
	for _, h := range hosts {
		keys[h] = hostIPv4Key(h)
	}
	sort.SliceStable(hosts, func(i, j int) bool {
		a, b := keys[hosts[i]], keys[hosts[j]]
		if a.missing != b.missing {
			return a.missing < b.missing
		}
		return a.value < b.value
	})
}
