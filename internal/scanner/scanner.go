package scanner

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	g "github.com/gosnmp/gosnmp"

	"github.com/sszokoly/bgwmon/internal/log"
)

// Standard MIB-II system OIDs used to identify a branch gateway.
const (
	oidSysDescr  = ".1.3.6.1.2.1.1.1.0"
	oidSysName   = ".1.3.6.1.2.1.1.5.0"
	oidSysUpTime = ".1.3.6.1.2.1.1.3.0"
)

// probeTimeout is the per-host SNMP timeout
const probeTimeout = 2 * time.Second

// maxConcurrent limits in-flight SNMP probes during a subnet sweep
const maxConcurrent = 10

// Result describes one SNMP-responsive host found during a sweep.
type Result struct {
	IP       string `json:"ip"`
	SysDescr string `json:"sys_descr"`
	SysName  string `json:"sys_name"`
	Model    string `json:"model"`   // "G450", "G430" or ""
	Gateway  bool   `json:"gateway"` // true when the host looks like a media gateway
}

// Scanner discovers branch gateways on a subnet via SNMP.
type Scanner struct {
	community string
}

// NewScanner creates a scanner using the given SNMP community.
func NewScanner(community string) *Scanner {
	return &Scanner{community: community}
}

// ScanSubnet probes every host in the CIDR subnet and returns the
// SNMP-responsive ones. Hosts that do not answer are silently skipped.
func (s *Scanner) ScanSubnet(ctx context.Context, cidr string) ([]Result, error) {
	ips, err := generateIPList(cidr)
	if err != nil {
		return nil, fmt.Errorf("generating IP list: %w", err)
	}

	log.Info("Starting SNMP subnet sweep", "subnet", cidr, "hosts", len(ips))

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []Result
	)
	sem := make(chan struct{}, maxConcurrent)

	for _, ip := range ips {
		wg.Add(1)
		go func(ip string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				return
			default:
			}

			res, err := s.Probe(ip)
			if err != nil {
				log.Debug("Host probe failed", "ip", ip, "error", err)
				return
			}

			mu.Lock()
			results = append(results, *res)
			mu.Unlock()
			log.Debug("Host responded", "ip", ip, "model", res.Model)
		}(ip)
	}

	wg.Wait()

	log.Info("Subnet sweep completed", "subnet", cidr, "found", len(results))
	return results, nil
}

// Probe queries one host's system group and classifies it.
func (s *Scanner) Probe(ip string) (*Result, error) {
	conn := &g.GoSNMP{
		Target:    ip,
		Port:      161,
		Community: s.community,
		Version:   g.Version2c,
		Timeout:   probeTimeout,
		Retries:   0,
	}
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", ip, err)
	}
	defer conn.Conn.Close()

	resp, err := conn.Get([]string{oidSysDescr, oidSysName, oidSysUpTime})
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", ip, err)
	}

	res := &Result{IP: ip}
	for _, variable := range resp.Variables {
		value := octetString(variable)
		switch variable.Name {
		case oidSysDescr:
			res.SysDescr = value
		case oidSysName:
			res.SysName = value
		}
	}

	res.Model = classify(res.SysDescr)
	res.Gateway = res.Model != ""
	return res, nil
}

// classify extracts the gateway model from a sysDescr string.
func classify(sysDescr string) string {
	descr := strings.ToUpper(sysDescr)
	switch {
	case strings.Contains(descr, "G450"):
		return "G450"
	case strings.Contains(descr, "G430"):
		return "G430"
	}
	return ""
}

// octetString renders an SNMP variable value as text.
func octetString(v g.SnmpPDU) string {
	switch val := v.Value.(type) {
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return ""
	}
}

// generateIPList expands a CIDR subnet into host addresses, dropping the
// network and broadcast addresses for IPv4 subnets.
func generateIPList(cidr string) ([]string, error) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}

	var ips []string
	for ip := ip.Mask(ipnet.Mask); ipnet.Contains(ip); incIP(ip) {
		ips = append(ips, ip.String())
	}

	if len(ips) > 2 {
		ips = ips[1 : len(ips)-1]
	}
	return ips, nil
}

func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			break
		}
	}
}
