package ros

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// sessionQueueSize is the number of serialized messages buffered per
	// subscriber before the oldest is dropped.
	sessionQueueSize = 10
	writeTimeout     = time.Second
)

type remoteSubscriberSessionError struct {
	session *remoteSubscriberSession
	err     error
}

func (e *remoteSubscriberSessionError) Error() string {
	return fmt.Sprintf("remoteSubscriberSession %s error: %v", e.session.conn.RemoteAddr(), e.err)
}

type defaultPublisher struct {
	logger             *logrus.Entry
	node               *defaultNode
	topic              string
	msgType            MessageType
	msgChan            chan []byte
	shutdownChan       chan struct{}
	shutdownOnce       sync.Once
	sessionChan        chan *remoteSubscriberSession
	sessionErrorChan   chan error
	numSessions        int32
	listener           net.Listener
	connectCallback    func(SingleSubscriberPublisher)
	disconnectCallback func(SingleSubscriberPublisher)
}

func newDefaultPublisher(node *defaultNode,
	topic string, msgType MessageType, listener net.Listener,
	connectCallback, disconnectCallback func(SingleSubscriberPublisher)) *defaultPublisher {
	return &defaultPublisher{
		logger:             node.logger.WithField("topic", topic),
		node:               node,
		topic:              topic,
		msgType:            msgType,
		msgChan:            make(chan []byte, 10),
		shutdownChan:       make(chan struct{}),
		sessionChan:        make(chan *remoteSubscriberSession, 10),
		sessionErrorChan:   make(chan error, 10),
		listener:           listener,
		connectCallback:    connectCallback,
		disconnectCallback: disconnectCallback,
	}
}

func (pub *defaultPublisher) start(wg *sync.WaitGroup) {
	logger := pub.logger
	logger.Debug("Publisher goroutine started.")
	defer wg.Done()

	go pub.listenRemoteSubscriber()

	sessions := make(map[*remoteSubscriberSession]struct{})
	for {
		select {
		case msg := <-pub.msgChan:
			for session := range sessions {
				session.enqueue(msg)
			}
		case s := <-pub.sessionChan:
			sessions[s] = struct{}{}
			atomic.StoreInt32(&pub.numSessions, int32(len(sessions)))
			go s.start()
		case err := <-pub.sessionErrorChan:
			logger.Debug(err)
			if sessionError, ok := err.(*remoteSubscriberSessionError); ok {
				delete(sessions, sessionError.session)
				atomic.StoreInt32(&pub.numSessions, int32(len(sessions)))
			}
		case <-pub.shutdownChan:
			pub.listener.Close()
			if _, err := callRosAPI(pub.node.masterURI, "unregisterPublisher",
				pub.node.qualifiedName, pub.topic, pub.node.xmlrpcURI); err != nil {
				logger.Warn(err)
			}
			for session := range sessions {
				close(session.quitChan)
			}
			logger.Debug("Publisher goroutine exit.")
			return
		}
	}
}

func (pub *defaultPublisher) listenRemoteSubscriber() {
	logger := pub.logger
	logger.Debugf("Start listen %s.", pub.listener.Addr().String())
	for {
		conn, err := pub.listener.Accept()
		if err != nil {
			logger.Debugf("Stop listening: %v", err)
			return
		}
		logger.Debugf("Connected %s", conn.RemoteAddr().String())
		session := newRemoteSubscriberSession(pub, conn)
		select {
		case pub.sessionChan <- session:
		case <-pub.shutdownChan:
			conn.Close()
			return
		}
	}
}

func (pub *defaultPublisher) Publish(msg Message) {
	var buf bytes.Buffer
	if err := msg.Serialize(&buf); err != nil {
		pub.logger.Errorf("Failed to serialize %s: %v", pub.msgType.Name(), err)
		return
	}
	select {
	case pub.msgChan <- buf.Bytes():
	case <-pub.shutdownChan:
	}
}

func (pub *defaultPublisher) GetNumSubscribers() int {
	return int(atomic.LoadInt32(&pub.numSessions))
}

func (pub *defaultPublisher) Shutdown() {
	pub.shutdownOnce.Do(func() { close(pub.shutdownChan) })
}

func (pub *defaultPublisher) hostAndPort() (string, int32) {
	_, port, err := net.SplitHostPort(pub.listener.Addr().String())
	if err != nil {
		pub.logger.Error("failed to split host port")
		return pub.node.hostname, 0
	}
	return pub.node.hostname, portNumber(port)
}

type remoteSubscriberSession struct {
	conn               net.Conn
	nodeID             string
	topic              string
	typeText           string
	md5sum             string
	typeName           string
	quitChan           chan struct{}
	msgChan            chan []byte
	errorChan          chan error
	pubDone            <-chan struct{}
	logger             *logrus.Entry
	connectCallback    func(SingleSubscriberPublisher)
	disconnectCallback func(SingleSubscriberPublisher)
}

func newRemoteSubscriberSession(pub *defaultPublisher, conn net.Conn) *remoteSubscriberSession {
	return &remoteSubscriberSession{
		conn:               conn,
		nodeID:             pub.node.qualifiedName,
		topic:              pub.topic,
		typeText:           pub.msgType.Text(),
		md5sum:             pub.msgType.MD5Sum(),
		typeName:           pub.msgType.Name(),
		quitChan:           make(chan struct{}),
		msgChan:            make(chan []byte, sessionQueueSize),
		errorChan:          pub.sessionErrorChan,
		pubDone:            pub.shutdownChan,
		logger:             pub.logger.WithField("subscriber", conn.RemoteAddr().String()),
		connectCallback:    pub.connectCallback,
		disconnectCallback: pub.disconnectCallback,
	}
}

// enqueue never blocks the publisher loop; when the session queue is full
// the oldest message is dropped.
func (session *remoteSubscriberSession) enqueue(msg []byte) {
	for {
		select {
		case session.msgChan <- msg:
			return
		default:
		}
		select {
		case <-session.msgChan:
		default:
		}
	}
}

type singleSubPub struct {
	subName string
	topic   string
	session *remoteSubscriberSession
}

func (ssp *singleSubPub) Publish(msg Message) {
	var buf bytes.Buffer
	if err := msg.Serialize(&buf); err != nil {
		ssp.session.logger.Error(err)
		return
	}
	ssp.session.enqueue(buf.Bytes())
}

func (ssp *singleSubPub) GetSubscriberName() string {
	return ssp.subName
}

func (ssp *singleSubPub) GetTopic() string {
	return ssp.topic
}

// handshake validates the subscriber's connection header and answers it.
func (session *remoteSubscriberSession) handshake() (map[string]string, error) {
	headers, err := readConnectionHeader(session.conn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read connection header")
	}
	headerMap := headerMap(headers)
	for k, v := range headerMap {
		session.logger.Debugf("  `%s` = `%s`", k, v)
	}

	if headerMap["type"] != session.typeName && headerMap["type"] != "*" {
		return nil, errors.Errorf("incompatible message type for topic %s: %s vs %s",
			session.topic, session.typeName, headerMap["type"])
	}
	if headerMap["md5sum"] != session.md5sum && headerMap["md5sum"] != "*" {
		return nil, errors.Errorf("incompatible message md5 for topic %s: %s vs %s",
			session.topic, session.md5sum, headerMap["md5sum"])
	}

	resHeaders := []header{
		{"message_definition", session.typeText},
		{"callerid", session.nodeID},
		{"latching", "0"},
		{"md5sum", session.md5sum},
		{"topic", session.topic},
		{"type", session.typeName},
	}
	session.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := writeConnectionHeader(resHeaders, session.conn); err != nil {
		return nil, errors.Wrap(err, "failed to write response header")
	}
	return headerMap, nil
}

func (session *remoteSubscriberSession) start() {
	logger := session.logger
	ssp := &singleSubPub{
		topic:   session.topic,
		session: session,
	}
	exitErr := errors.New("normal exit")
	defer func() {
		session.conn.Close()
		select {
		case session.errorChan <- &remoteSubscriberSessionError{session, exitErr}:
		case <-session.pubDone:
		}
	}()

	headerMap, err := session.handshake()
	if err != nil {
		logger.Error(err)
		exitErr = err
		return
	}
	ssp.subName = headerMap["callerid"]
	if session.connectCallback != nil {
		go session.connectCallback(ssp)
	}
	if session.disconnectCallback != nil {
		defer session.disconnectCallback(ssp)
	}

	logger.Debug("Start sending messages...")
	var frame bytes.Buffer
	for {
		select {
		case msg := <-session.msgChan:
			frame.Reset()
			binary.Write(&frame, binary.LittleEndian, uint32(len(msg)))
			frame.Write(msg)
			session.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := frame.WriteTo(session.conn); err != nil {
				logger.Debugf("write failed: %v", err)
				exitErr = err
				return
			}
		case <-session.quitChan:
			return
		}
	}
}
