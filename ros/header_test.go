package ros

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConnectionHeaderRoundTrip(t *testing.T) {
	headers := []header{
		{"topic", "/orb_slam_2_ros_node/pose_cam"},
		{"md5sum", "d3812c3cbc69362b77dc0b19b345f8f5"},
		{"message_definition", "a=b\nc"},
		{"empty", ""},
	}
	var buf bytes.Buffer
	if err := writeConnectionHeader(headers, &buf); err != nil {
		t.Fatal(err)
	}
	size := binary.LittleEndian.Uint32(buf.Bytes())
	if int(size) != buf.Len()-4 {
		t.Errorf("header length prefix %d, body %d", size, buf.Len()-4)
	}
	got, err := readConnectionHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(headers, got, cmp.AllowUnexported(header{})); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}

func TestConnectionHeaderRejectsMalformed(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(9))
	binary.Write(&buf, binary.LittleEndian, uint32(5))
	buf.WriteString("noeq!")
	if _, err := readConnectionHeader(&buf); err == nil {
		t.Error("field without '=' accepted")
	}

	buf.Reset()
	binary.Write(&buf, binary.LittleEndian, uint32(8))
	binary.Write(&buf, binary.LittleEndian, uint32(100))
	buf.WriteString("a=bc")
	if _, err := readConnectionHeader(&buf); err == nil {
		t.Error("field overrun accepted")
	}
}
