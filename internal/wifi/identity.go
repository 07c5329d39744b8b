package wifi

import (
	"fmt"
	"net"
	"os"
	"strings"
)

// DeviceID derives the stable device identity from the first hardware
// interface address, formatted as uppercase hex without separators.
// Hosts without a usable interface fall back to the hostname.
func DeviceID() string {
	ifaces, err := net.Interfaces()
	if err == nil {
		for _, iface := range ifaces {
			if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
				continue
			}
			return formatHardwareAddr(iface.HardwareAddr)
		}
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		return "UNKNOWN-DEVICE"
	}
	return strings.ToUpper(host)
}

func formatHardwareAddr(addr net.HardwareAddr) string {
	var b strings.Builder
	for _, octet := range addr {
		fmt.Fprintf(&b, "%02X", octet)
	}
	return b.String()
}
