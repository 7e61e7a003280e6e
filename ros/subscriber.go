package ros

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// maxMessageSize bounds a single TCPROS frame accepted from a publisher.
	maxMessageSize = 1 << 30
	// defaultQueueSize is the subscriber queue used by NewSubscriber.
	defaultQueueSize = 10
)

type messageEvent struct {
	bytes []byte
	event MessageEvent
}

// The subscription object runs in own goroutine (start).
// Apart from the channels and the fields guarded by queueMu, do not access
// its properties from other goroutines.
type defaultSubscriber struct {
	topic            string
	msgType          MessageType
	pubList          []string
	numPublishers    int32
	pubListChan      chan []string
	msgChan          chan messageEvent
	addCallbackChan  chan interface{}
	shutdownChan     chan struct{}
	shutdownOnce     sync.Once
	connections      map[string]chan struct{}
	disconnectedChan chan string

	// Received messages wait here for the spinning goroutine. At most one
	// delivery job per subscriber sits on the node's job channel.
	queueMu   sync.Mutex
	queueSize int
	queue     []messageEvent
	scheduled bool
	callbacks []interface{}
}

func newDefaultSubscriber(topic string, msgType MessageType, queueSize int, callback interface{}) *defaultSubscriber {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &defaultSubscriber{
		topic:            topic,
		msgType:          msgType,
		queueSize:        queueSize,
		msgChan:          make(chan messageEvent, 10),
		pubListChan:      make(chan []string, 10),
		addCallbackChan:  make(chan interface{}, 10),
		shutdownChan:     make(chan struct{}),
		disconnectedChan: make(chan string, 10),
		connections:      make(map[string]chan struct{}),
		callbacks:        []interface{}{callback},
	}
}

// checkCallback verifies that callback can be invoked with a message and
// an optional MessageEvent.
func checkCallback(callback interface{}) error {
	fun := reflect.ValueOf(callback)
	if fun.Kind() != reflect.Func {
		return errors.Errorf("callback is %T, not a func", callback)
	}
	if n := fun.Type().NumIn(); n > 2 {
		return errors.Errorf("callback takes %d arguments, at most 2 allowed", n)
	}
	return nil
}

func (sub *defaultSubscriber) updatePublishers(pubURIs []string) {
	select {
	case sub.pubListChan <- pubURIs:
	case <-sub.shutdownChan:
	}
}

func (sub *defaultSubscriber) addCallback(callback interface{}) {
	select {
	case sub.addCallbackChan <- callback:
	case <-sub.shutdownChan:
	}
}

func (sub *defaultSubscriber) start(wg *sync.WaitGroup, nodeID string, nodeAPIURI string, masterURI string, jobChan chan func(), nodeLogger *logrus.Entry) {
	logger := nodeLogger.WithField("topic", sub.topic)
	logger.Debug("Subscriber goroutine started.")
	defer wg.Done()
	defer logger.Debug("Subscriber goroutine exit.")

	for {
		select {
		case list := <-sub.pubListChan:
			deadPubs := setDifference(sub.pubList, list)
			newPubs := setDifference(list, sub.pubList)
			sub.pubList = list
			atomic.StoreInt32(&sub.numPublishers, int32(len(list)))

			for _, pub := range deadPubs {
				if quitChan, ok := sub.connections[pub]; ok {
					close(quitChan)
					delete(sub.connections, pub)
				}
			}
			for _, pub := range newPubs {
				uri, err := requestTCPROS(pub, nodeID, sub.topic)
				if err != nil {
					logger.Error(err)
					continue
				}
				quitChan := make(chan struct{})
				sub.connections[pub] = quitChan
				go startRemotePublisherConn(logger, pub, uri, sub.topic,
					sub.msgType, nodeID, sub.msgChan, quitChan, sub.disconnectedChan)
			}
		case callback := <-sub.addCallbackChan:
			sub.queueMu.Lock()
			sub.callbacks = append(sub.callbacks, callback)
			sub.queueMu.Unlock()
		case msgEvent := <-sub.msgChan:
			if !sub.push(msgEvent, logger) {
				continue
			}
			select {
			case jobChan <- func() { sub.deliver(logger) }:
			case <-sub.shutdownChan:
			}
		case pubURI := <-sub.disconnectedChan:
			logger.Debugf("Connection to %s closed", pubURI)
			delete(sub.connections, pubURI)
		case <-sub.shutdownChan:
			for _, quitChan := range sub.connections {
				close(quitChan)
			}
			sub.connections = map[string]chan struct{}{}
			if _, err := callRosAPI(masterURI, "unregisterSubscriber", nodeID, sub.topic, nodeAPIURI); err != nil {
				logger.Warn(err)
			}
			return
		}
	}
}

// push queues a received message, dropping the oldest ones beyond the
// queue size. It reports whether a delivery job has to be scheduled.
func (sub *defaultSubscriber) push(msgEvent messageEvent, logger *logrus.Entry) bool {
	sub.queueMu.Lock()
	defer sub.queueMu.Unlock()
	sub.queue = append(sub.queue, msgEvent)
	if n := len(sub.queue) - sub.queueSize; n > 0 {
		logger.Debugf("Queue full, dropped %d message(s)", n)
		sub.queue = append(sub.queue[:0], sub.queue[n:]...)
	}
	if sub.scheduled {
		return false
	}
	sub.scheduled = true
	return true
}

// deliver runs on the spinning goroutine and hands every queued message to
// the callbacks, oldest first.
func (sub *defaultSubscriber) deliver(logger *logrus.Entry) {
	sub.queueMu.Lock()
	pending := sub.queue
	sub.queue = nil
	sub.scheduled = false
	callbacks := append([]interface{}(nil), sub.callbacks...)
	sub.queueMu.Unlock()

	for _, msgEvent := range pending {
		m := sub.msgType.NewMessage()
		if err := m.Deserialize(bytes.NewReader(msgEvent.bytes)); err != nil {
			logger.Errorf("Failed to deserialize %s: %v", sub.msgType.Name(), err)
			continue
		}
		args := []reflect.Value{reflect.ValueOf(m), reflect.ValueOf(msgEvent.event)}
		for _, callback := range callbacks {
			fun := reflect.ValueOf(callback)
			fun.Call(args[0:fun.Type().NumIn()])
		}
	}
}

// requestTCPROS asks the publisher node at pubURI for a TCPROS endpoint.
func requestTCPROS(pubURI string, nodeID string, topic string) (string, error) {
	protocols := []interface{}{[]interface{}{"TCPROS"}}
	result, err := callRosAPI(pubURI, "requestTopic", nodeID, topic, protocols)
	if err != nil {
		return "", errors.Wrapf(err, "requestTopic to %s", pubURI)
	}
	params, ok := result.([]interface{})
	if !ok || len(params) < 3 {
		return "", errors.Errorf("requestTopic to %s: malformed protocol parameters %v", pubURI, result)
	}
	name, _ := params[0].(string)
	if name != "TCPROS" {
		return "", errors.Errorf("requestTopic to %s: unsupported protocol %q", pubURI, name)
	}
	addr, ok := params[1].(string)
	if !ok {
		return "", errors.Errorf("requestTopic to %s: host is not a string", pubURI)
	}
	port, ok := params[2].(int32)
	if !ok {
		return "", errors.Errorf("requestTopic to %s: port is not an int", pubURI)
	}
	return net.JoinHostPort(addr, fmt.Sprint(port)), nil
}

func startRemotePublisherConn(logger *logrus.Entry,
	pubURI string, addr string, topic string,
	msgType MessageType, nodeID string,
	msgChan chan messageEvent,
	quitChan chan struct{},
	disconnectedChan chan string) {
	logger = logger.WithField("publisher", pubURI)

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		logger.Errorf("Failed to connect to %s: %v", addr, err)
		notifyDisconnected(disconnectedChan, quitChan, pubURI)
		return
	}
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-quitChan:
		case <-stopped:
		}
		conn.Close()
	}()

	event, err := subscribeHandshake(conn, topic, msgType, nodeID)
	if err != nil {
		logger.Error(err)
		notifyDisconnected(disconnectedChan, quitChan, pubURI)
		return
	}
	logger.Debug("Start receiving messages...")

	for {
		var msgSize uint32
		if err := binary.Read(conn, binary.LittleEndian, &msgSize); err != nil {
			if err != io.EOF && !isClosed(quitChan) {
				logger.Errorf("Failed to read a message size: %v", err)
			}
			notifyDisconnected(disconnectedChan, quitChan, pubURI)
			return
		}
		if msgSize > maxMessageSize {
			logger.Errorf("Message of %d bytes exceeds the limit", msgSize)
			notifyDisconnected(disconnectedChan, quitChan, pubURI)
			return
		}
		buffer := make([]byte, int(msgSize))
		if _, err := io.ReadFull(conn, buffer); err != nil {
			if !isClosed(quitChan) {
				logger.Errorf("Failed to read a message body: %v", err)
			}
			notifyDisconnected(disconnectedChan, quitChan, pubURI)
			return
		}
		event.ReceiptTime = time.Now()
		select {
		case msgChan <- messageEvent{bytes: buffer, event: event}:
		case <-quitChan:
			return
		}
	}
}

// subscribeHandshake sends our connection header and validates the
// publisher's answer.
func subscribeHandshake(conn net.Conn, topic string, msgType MessageType, nodeID string) (MessageEvent, error) {
	headers := []header{
		{"topic", topic},
		{"md5sum", msgType.MD5Sum()},
		{"type", msgType.Name()},
		{"callerid", nodeID},
	}
	if err := writeConnectionHeader(headers, conn); err != nil {
		return MessageEvent{}, errors.Wrap(err, "writing connection header")
	}
	resHeaders, err := readConnectionHeader(conn)
	if err != nil {
		return MessageEvent{}, errors.Wrap(err, "reading response header")
	}
	resHeaderMap := headerMap(resHeaders)
	if e, ok := resHeaderMap["error"]; ok {
		return MessageEvent{}, errors.Errorf("publisher refused %s: %s", topic, e)
	}
	if resHeaderMap["type"] != msgType.Name() || resHeaderMap["md5sum"] != msgType.MD5Sum() {
		return MessageEvent{}, errors.Errorf("incompatible message type for %s: %s/%s vs %s/%s", topic,
			resHeaderMap["type"], resHeaderMap["md5sum"], msgType.Name(), msgType.MD5Sum())
	}
	return MessageEvent{
		PublisherName:    resHeaderMap["callerid"],
		ConnectionHeader: resHeaderMap,
	}, nil
}

func notifyDisconnected(disconnectedChan chan string, quitChan chan struct{}, pubURI string) {
	select {
	case disconnectedChan <- pubURI:
	case <-quitChan:
	}
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func (sub *defaultSubscriber) Shutdown() {
	sub.shutdownOnce.Do(func() { close(sub.shutdownChan) })
}

func (sub *defaultSubscriber) GetNumPublishers() int {
	return int(atomic.LoadInt32(&sub.numPublishers))
}
