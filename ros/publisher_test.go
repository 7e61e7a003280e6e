package ros

import (
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestSession(conn net.Conn) *remoteSubscriberSession {
	msgType := testMessageType{}
	return &remoteSubscriberSession{
		conn:     conn,
		nodeID:   "/talker",
		topic:    "/chatter",
		typeText: msgType.Text(),
		md5sum:   msgType.MD5Sum(),
		typeName: msgType.Name(),
		quitChan: make(chan struct{}),
		msgChan:  make(chan []byte, sessionQueueSize),
		logger:   quietLogger(),
	}
}

func subscriberHeader(msgType, md5sum string) []header {
	return []header{
		{"callerid", "/listener"},
		{"md5sum", md5sum},
		{"topic", "/chatter"},
		{"type", msgType},
	}
}

func TestSessionHandshake(t *testing.T) {
	cases := []struct {
		name    string
		headers []header
		wantErr string
	}{
		{"matching", subscriberHeader("std_msgs/String", "992ce8a1687cec8c8bd883ec73ca41d1"), ""},
		{"wildcard", subscriberHeader("*", "*"), ""},
		{"wrong type", subscriberHeader("std_msgs/Int32", "*"), "incompatible message type for topic /chatter"},
		{"wrong md5", subscriberHeader("std_msgs/String", "0123"), "incompatible message md5 for topic /chatter"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			server, client := net.Pipe()
			defer client.Close()
			session := newTestSession(server)
			go func() {
				writeConnectionHeader(c.headers, client)
				if c.wantErr == "" {
					readConnectionHeader(client)
				}
			}()

			got, err := session.handshake()
			server.Close()
			if c.wantErr != "" {
				if err == nil || !strings.HasPrefix(err.Error(), c.wantErr) {
					t.Errorf("error %v, want %q", err, c.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got["callerid"] != "/listener" {
				t.Error(got)
			}
		})
	}
}

func TestSessionHandshakeClosedConnection(t *testing.T) {
	server, client := net.Pipe()
	client.Close()
	_, err := newTestSession(server).handshake()
	if err == nil || !strings.HasPrefix(err.Error(), "failed to read connection header: ") {
		t.Errorf("error %v", err)
	}
}

func TestSessionEnqueueDropsOldest(t *testing.T) {
	session := newTestSession(nil)
	for i := 0; i < sessionQueueSize+2; i++ {
		session.enqueue([]byte(fmt.Sprint(i)))
	}
	var got []string
	for len(session.msgChan) > 0 {
		got = append(got, string(<-session.msgChan))
	}
	var want []string
	for i := 2; i < sessionQueueSize+2; i++ {
		want = append(want, fmt.Sprint(i))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}
