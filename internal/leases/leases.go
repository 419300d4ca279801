// Package leases reads the DHCPv4 lease file kept by the Kea memfile backend.
package leases

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrNotFound is returned when the lease file does not exist.
var ErrNotFound = errors.New("lease file not found")

// Lease is one row of the lease file. Pointer fields are nil when the column
// is missing, empty, or unparsable.
type Lease struct {
	Address       *string `json:"address"`
	HWAddr        *string `json:"hwaddr"`
	ClientID      *string `json:"client_id"`
	ValidLifetime *int64  `json:"valid_lifetime"`
	Expire        *int64  `json:"expire"`
	SubnetID      *int64  `json:"subnet_id"`
	FQDNFwd       *bool   `json:"fqdn_fwd"`
	FQDNRev       *bool   `json:"fqdn_rev"`
	Hostname      *string `json:"hostname"`
	State         *int64  `json:"state"`
	UserContext   *string `json:"user_context"`
	PoolID        *int64  `json:"pool_id"`
}

// columnAliases maps underscore spellings to the canonical Kea header names.
var columnAliases = map[string]string{
	"client_id":      "client-id",
	"valid_lifetime": "valid-lft",
	"subnet_id":      "subnet-id",
	"fqdn_fwd":       "fqdn-fwd",
	"fqdn_rev":       "fqdn-rev",
	"user_context":   "user-context",
	"pool_id":        "pool-id",
}

func normalize(col string) string {
	col = strings.TrimSpace(col)
	if canonical, ok := columnAliases[col]; ok {
		return canonical
	}
	return col
}

// ReadFile parses the lease file at path.
func ReadFile(path string) ([]Lease, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open lease file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a header row followed by lease rows. Rows shorter than the
// header leave the trailing fields unset.
func Parse(r io.Reader) ([]Lease, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Lease{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lease header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalize(h)] = i
	}

	out := []Lease{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read lease row: %w", err)
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		out = append(out, Lease{
			Address:       toString(get("address")),
			HWAddr:        toString(get("hwaddr")),
			ClientID:      toString(get("client-id")),
			ValidLifetime: toInt(get("valid-lft")),
			Expire:        toInt(get("expire")),
			SubnetID:      toInt(get("subnet-id")),
			FQDNFwd:       toBool(get("fqdn-fwd")),
			FQDNRev:       toBool(get("fqdn-rev")),
			Hostname:      toString(get("hostname")),
			State:         toInt(get("state")),
			UserContext:   toString(get("user-context")),
			PoolID:        toInt(get("pool-id")),
		})
	}
	return out, nil
}

func toString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func toInt(v string) *int64 {
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func toBool(v string) *bool {
	var b bool
	switch strings.ToLower(v) {
	case "true", "1", "yes", "y":
		b = true
	case "false", "0", "no", "n":
		b = false
	default:
		return nil
	}
	return &b
}
