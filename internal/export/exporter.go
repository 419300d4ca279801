package export

import (
	"context"
	"log/slog"
	"time"

	"github.com/sipico/netinv/internal/metrics"
	"github.com/sipico/netinv/internal/storage"
)

// Artifact names used in logs, metrics and ExportError.
const (
	ArtifactDNSHosts     = "dns_hosts"
	ArtifactDNSHostsJSON = "dns_hosts_json"
	ArtifactDNSReverse   = "dns_reverse"
	ArtifactDNSAliases   = "dns_aliases"
	ArtifactDHCP4        = "dhcp4"
	ArtifactDHCP6        = "dhcp6"
	ArtifactBackup       = "backup"
)

const filePerm = 0o644

// Paths locates every artifact. An empty path disables that artifact.
type Paths struct {
	DNSHosts   string
	DNSReverse string
	DNSAliases string
	DHCP4      string
	DHCP6      string
	Backup     string
}

// Result summarizes one export run.
type Result struct {
	Files []string
	Took  time.Duration
}

// Exporter writes rendered artifacts to disk. It never touches the inventory
// and never signals the DNS or DHCP daemons.
type Exporter struct {
	paths  Paths
	logger *slog.Logger
}

// New creates an Exporter.
func New(paths Paths, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{paths: paths, logger: logger}
}

type artifact struct {
	name   string
	path   string
	render func() ([]byte, error)
}

func bytesOf(b []byte) func() ([]byte, error) {
	return func() ([]byte, error) { return b, nil }
}

// DNS writes the host file, its NDJSON companion, the reverse file and the
// alias file. The companion lists hosts in insertion order; the zone
// fragments keep the order of hosts.
func (e *Exporter) DNS(ctx context.Context, hosts []*storage.Host, aliases []*storage.Alias, domain string) (*Result, error) {
	var companion string
	if e.paths.DNSHosts != "" {
		companion = e.paths.DNSHosts + ".json"
	}
	return e.run(ctx, "dns", []artifact{
		{ArtifactDNSHosts, e.paths.DNSHosts, bytesOf(RenderDNSHosts(hosts))},
		{ArtifactDNSHostsJSON, companion, func() ([]byte, error) { return RenderHostsNDJSON(byInsertion(hosts)) }},
		{ArtifactDNSReverse, e.paths.DNSReverse, bytesOf(RenderDNSReverse(hosts, domain))},
		{ArtifactDNSAliases, e.paths.DNSAliases, bytesOf(RenderDNSAliases(aliases))},
	})
}

// DHCP writes the DHCPv4 and DHCPv6 reservation files.
func (e *Exporter) DHCP(ctx context.Context, hosts []*storage.Host) (*Result, error) {
	return e.run(ctx, "dhcp", []artifact{
		{ArtifactDHCP4, e.paths.DHCP4, func() ([]byte, error) { return RenderDHCP4(hosts) }},
		{ArtifactDHCP6, e.paths.DHCP6, func() ([]byte, error) { return RenderDHCP6(hosts) }},
	})
}

// Backup writes every host as NDJSON to the backup file, in insertion order.
func (e *Exporter) Backup(ctx context.Context, hosts []*storage.Host) (*Result, error) {
	return e.run(ctx, "backup", []artifact{
		{ArtifactBackup, e.paths.Backup, func() ([]byte, error) { return RenderHostsNDJSON(byInsertion(hosts)) }},
	})
}

func (e *Exporter) run(ctx context.Context, target string, artifacts []artifact) (*Result, error) {
	start := time.Now()
	res := &Result{Files: make([]string, 0, len(artifacts))}

	for _, a := range artifacts {
		if a.path == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, e.fail(target, &ExportError{Artifact: a.name, Path: a.path, Err: err})
		}
		data, err := a.render()
		if err != nil {
			return nil, e.fail(target, &ExportError{Artifact: a.name, Path: a.path, Err: err})
		}
		if err := WriteFileAtomic(a.path, data, filePerm); err != nil {
			return nil, e.fail(target, &ExportError{Artifact: a.name, Path: a.path, Err: err})
		}
		res.Files = append(res.Files, a.path)
	}

	res.Took = time.Since(start)
	metrics.RecordExport(target, "success", res.Took.Seconds())
	e.logger.Info("export completed", "target", target, "files", len(res.Files), "took_ms", res.Took.Milliseconds())
	return res, nil
}

func (e *Exporter) fail(target string, err *ExportError) error {
	metrics.RecordExport(target, "failure", 0)
	e.logger.Error("export failed", "target", target, "artifact", err.Artifact, "path", err.Path, "error", err.Err)
	return err
}
