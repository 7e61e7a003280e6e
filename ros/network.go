package ros

import (
	"net"
	"os"
	"strings"
)

// determineHost picks the name other nodes use to reach this one and
// reports whether only the loopback interface should be listened on.
func determineHost() (string, bool) {
	if rosHostname, ok := os.LookupEnv("ROS_HOSTNAME"); ok {
		return rosHostname, rosHostname == "localhost"
	}

	if rosIP, ok := os.LookupEnv("ROS_IP"); ok {
		return rosIP, isLoopbackAddress(rosIP)
	}

	if osHostname, err := os.Hostname(); err == nil && osHostname != "localhost" {
		return osHostname, false
	}

	if addrs, err := net.InterfaceAddrs(); err == nil {
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				return ipnet.IP.String(), false
			}
		}
	}
	return "127.0.0.1", true
}

func isLoopbackAddress(ip string) bool {
	return ip == "::1" || strings.HasPrefix(ip, "127.")
}

// listen opens a TCP listener on an ephemeral port.
func listen(listenIP string) (net.Listener, error) {
	return net.Listen("tcp", net.JoinHostPort(listenIP, "0"))
}
