package ros

import (
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestIsLoopbackAddress(t *testing.T) {
	for ip, want := range map[string]bool{
		"127.0.0.1":   true,
		"127.1.2.3":   true,
		"::1":         true,
		"10.0.0.5":    false,
		"192.168.1.1": false,
		"localhost":   false,
		"::":          false,
	} {
		if got := isLoopbackAddress(ip); got != want {
			t.Errorf("isLoopbackAddress(%q) = %v", ip, got)
		}
	}
}

// setenv sets key for the test, or unsets it when value is empty.
func setenv(t *testing.T, key, value string) {
	t.Setenv(key, value)
	if value == "" {
		os.Unsetenv(key)
	}
}

func TestDetermineHost(t *testing.T) {
	cases := []struct {
		hostname, ip string
		wantHost     string
		wantLocal    bool
	}{
		{"localhost", "", "localhost", true},
		{"slam-pc.local", "", "slam-pc.local", false},
		{"slam-pc.local", "127.0.0.1", "slam-pc.local", false},
		{"", "10.0.0.5", "10.0.0.5", false},
		{"", "127.0.0.1", "127.0.0.1", true},
		{"", "::1", "::1", true},
	}
	for _, c := range cases {
		setenv(t, "ROS_HOSTNAME", c.hostname)
		setenv(t, "ROS_IP", c.ip)
		host, local := determineHost()
		if host != c.wantHost || local != c.wantLocal {
			t.Errorf("ROS_HOSTNAME=%q ROS_IP=%q: got %s local=%v, want %s local=%v",
				c.hostname, c.ip, host, local, c.wantHost, c.wantLocal)
		}
	}
}

func TestNodeHostArguments(t *testing.T) {
	server := httptest.NewServer(newFakeMaster().handler())
	defer server.Close()
	setenv(t, "ROS_HOSTNAME", "from-environment")
	setenv(t, "ROS_IP", "")

	cases := []struct {
		args         []string
		wantHost     string
		wantListenIP string
	}{
		{nil, "from-environment", "0.0.0.0"},
		{[]string{"__hostname:=localhost"}, "localhost", "127.0.0.1"},
		{[]string{"__ip:=127.0.0.1"}, "127.0.0.1", "127.0.0.1"},
		{[]string{"__ip:=10.0.0.5"}, "10.0.0.5", "0.0.0.0"},
		{[]string{"__ip:=127.0.0.1", "__hostname:=slam-pc"}, "slam-pc", "0.0.0.0"},
	}
	for _, c := range cases {
		node, err := newDefaultNode("/host_test", append(c.args, "__master:="+server.URL))
		if err != nil {
			t.Fatal(err)
		}
		if node.hostname != c.wantHost || node.listenIP != c.wantListenIP {
			t.Errorf("%v: host %s listening on %s, want %s on %s",
				c.args, node.hostname, node.listenIP, c.wantHost, c.wantListenIP)
		}
		if !strings.HasPrefix(node.xmlrpcURI, "http://"+c.wantHost+":") {
			t.Errorf("%v: slave API at %s", c.args, node.xmlrpcURI)
		}
		node.Shutdown()
	}
}
