package ros

import (
	"bytes"
)

// MessageType describes a ROS message type: its definition text, md5sum
// and full name, and how to allocate an instance.
type MessageType interface {
	Text() string
	MD5Sum() string
	Name() string
	NewMessage() Message
}

// Message is a value of some MessageType using ROS serialization.
type Message interface {
	Type() MessageType
	Serialize(buf *bytes.Buffer) error
	Deserialize(buf *bytes.Reader) error
}
