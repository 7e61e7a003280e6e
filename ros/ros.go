package ros

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Node is a participant of the ROS graph.
type Node interface {
	NewPublisher(topic string, msgType MessageType) (Publisher, error)
	// Create a publisher which gives you callbacks when subscribers
	// connect and disconnect.  The callbacks are called in their own
	// goroutines, so they don't need to return immediately to let the
	// connection proceed.
	NewPublisherWithCallbacks(topic string,
		msgType MessageType,
		connectCallback, disconnectCallback func(SingleSubscriberPublisher)) (Publisher, error)
	// callback should be a function which takes 0, 1, or 2 arguments.
	// If it takes 0 arguments, it will simply be called without the
	// message.  1-argument functions are the normal case, and the
	// argument should be of the generated message type.  If the
	// function takes 2 arguments, the first argument should be of the
	// generated message type and the second argument should be of
	// type MessageEvent.
	NewSubscriber(topic string, msgType MessageType, callback interface{}) (Subscriber, error)
	// NewSubscriberWithQueueSize keeps at most queueSize received
	// messages waiting for a spin; older ones are dropped. NewSubscriber
	// uses a queue of 10.
	NewSubscriberWithQueueSize(topic string, msgType MessageType, queueSize int, callback interface{}) (Subscriber, error)
	// NewTimer calls callback every period on the goroutine running
	// Spin or SpinOnce.
	NewTimer(period Duration, callback func(TimerEvent)) Timer

	OK() bool
	SpinOnce()
	Spin()
	Shutdown()

	GetParam(name string) (interface{}, error)
	SetParam(name string, value interface{}) error
	HasParam(name string) (bool, error)
	SearchParam(name string) (string, error)
	DeleteParam(name string) error

	Name() string
	Logger() *logrus.Entry

	NonRosArgs() []string
}

// NewNode creates a node registered with the master given by
// ROS_MASTER_URI or the __master argument.
func NewNode(name string, args []string) (Node, error) {
	return newDefaultNode(name, args)
}

type Publisher interface {
	Publish(msg Message)
	GetNumSubscribers() int
	Shutdown()
}

// A publisher which only sends to one specific subscriber.  This is
// sent as an argument to the connect and disconnect callback
// functions passed to Node.NewPublisherWithCallbacks().
type SingleSubscriberPublisher interface {
	Publish(msg Message)
	GetSubscriberName() string
	GetTopic() string
}

type Subscriber interface {
	GetNumPublishers() int
	Shutdown()
}

// Optional second argument to a Subscriber callback.
type MessageEvent struct {
	PublisherName    string
	ReceiptTime      time.Time
	ConnectionHeader map[string]string
}

// TimerEvent is passed to timer callbacks.
type TimerEvent struct {
	LastExpected    Time
	LastReal        Time
	CurrentExpected Time
	CurrentReal     Time
}

type Timer interface {
	Stop()
}
