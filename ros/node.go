package ros

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ethz-asl/orb_slam_2_ros/xmlrpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// *defaultNode implements Node interface.
// Registries are guarded by mu since the slave API is served from the
// XML-RPC goroutines.
type defaultNode struct {
	name           string
	namespace      string
	qualifiedName  string
	masterURI      string
	xmlrpcURI      string
	xmlrpcListener net.Listener
	xmlrpcHandler  *xmlrpc.Handler
	mu             sync.Mutex
	subscribers    map[string]*defaultSubscriber
	publishers     map[string]*defaultPublisher
	timers         []*defaultTimer
	jobChan        chan func()
	interruptChan  chan os.Signal
	logger         *logrus.Entry
	ok             bool
	okMutex        sync.RWMutex
	shutdownOnce   sync.Once
	waitGroup      sync.WaitGroup
	logDir         string
	hostname       string
	listenIP       string
	homeDir        string
	nameResolver   *NameResolver
	nonRosArgs     []string
}

func newDefaultNode(name string, args []string) (*defaultNode, error) {
	node := new(defaultNode)

	namespace, nodeName, err := qualifyNodeName(name)
	if err != nil {
		return nil, err
	}

	remapping, params, specials, rest := processArguments(args)

	node.homeDir = filepath.Join(os.Getenv("HOME"), ".ros")
	if homeDir := os.Getenv("ROS_HOME"); len(homeDir) > 0 {
		node.homeDir = homeDir
	}

	node.name = nodeName
	if value, ok := specials["__name"]; ok {
		node.name = value
	}

	node.namespace = namespace
	if ns := os.Getenv("ROS_NAMESPACE"); len(ns) > 0 {
		node.namespace = ns
	}
	if value, ok := specials["__ns"]; ok {
		node.namespace = value
	}
	node.logDir = filepath.Join(node.homeDir, "log")
	if logDir := os.Getenv("ROS_LOG_DIR"); len(logDir) > 0 {
		node.logDir = logDir
	}
	if value, ok := specials["__log"]; ok {
		node.logDir = value
	}

	var onlyLocalhost bool
	node.hostname, onlyLocalhost = determineHost()
	if value, ok := specials["__hostname"]; ok {
		node.hostname = value
		onlyLocalhost = (value == "localhost")
	} else if value, ok := specials["__ip"]; ok {
		node.hostname = value
		onlyLocalhost = isLoopbackAddress(value)
	}
	if onlyLocalhost {
		node.listenIP = "127.0.0.1"
	} else {
		node.listenIP = "0.0.0.0"
	}

	node.masterURI = os.Getenv("ROS_MASTER_URI")
	if value, ok := specials["__master"]; ok {
		node.masterURI = value
	}
	if node.masterURI == "" {
		return nil, errors.New("ROS_MASTER_URI is not set")
	}

	node.nameResolver = newNameResolver(node.namespace, node.name, remapping)
	node.qualifiedName = node.nameResolver.nodeName
	if !isValidName(node.qualifiedName) {
		return nil, errors.Errorf("invalid node name %q", node.qualifiedName)
	}
	node.nonRosArgs = rest

	node.subscribers = make(map[string]*defaultSubscriber)
	node.publishers = make(map[string]*defaultPublisher)
	node.jobChan = make(chan func(), 100)
	node.interruptChan = make(chan os.Signal, 1)
	node.ok = true

	base := DefaultLogger()
	if value, ok := specials["__log_level"]; ok {
		level, err := ParseLogLevel(value)
		if err != nil {
			return nil, err
		}
		base.SetLevel(level)
	}
	logger := base.WithField("node", node.qualifiedName)
	node.logger = logger

	signal.Notify(node.interruptChan, os.Interrupt)
	go func() {
		if _, ok := <-node.interruptChan; ok {
			logger.Info("Interrupted")
			node.setOK(false)
		}
	}()

	logger.Debugf("Master URI = %s", node.masterURI)

	for k, v := range params {
		key := node.nameResolver.resolve(PrivateNS + k)
		if _, err := callRosAPI(node.masterURI, "setParam", node.qualifiedName, key, loadParamFromString(v)); err != nil {
			return nil, errors.Wrapf(err, "setting parameter %s", key)
		}
	}

	listener, err := listen(node.listenIP)
	if err != nil {
		return nil, errors.Wrap(err, "XML-RPC listener")
	}
	_, port, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		listener.Close()
		return nil, err
	}
	node.xmlrpcURI = fmt.Sprintf("http://%s/", net.JoinHostPort(node.hostname, port))
	node.xmlrpcListener = listener
	logger.Debugf("listen on http://%s", listener.Addr().String())

	m := map[string]xmlrpc.Method{
		"getBusStats":      func(callerID string) (interface{}, error) { return node.getBusStats(callerID) },
		"getBusInfo":       func(callerID string) (interface{}, error) { return node.getBusInfo(callerID) },
		"getMasterUri":     func(callerID string) (interface{}, error) { return node.getMasterURI(callerID) },
		"shutdown":         func(callerID string, msg string) (interface{}, error) { return node.shutdown(callerID, msg) },
		"getPid":           func(callerID string) (interface{}, error) { return node.getPid(callerID) },
		"getSubscriptions": func(callerID string) (interface{}, error) { return node.getSubscriptions(callerID) },
		"getPublications":  func(callerID string) (interface{}, error) { return node.getPublications(callerID) },
		"paramUpdate": func(callerID string, key string, value interface{}) (interface{}, error) {
			return node.paramUpdate(callerID, key, value)
		},
		"publisherUpdate": func(callerID string, topic string, publishers []interface{}) (interface{}, error) {
			return node.publisherUpdate(callerID, topic, publishers)
		},
		"requestTopic": func(callerID string, topic string, protocols []interface{}) (interface{}, error) {
			return node.requestTopic(callerID, topic, protocols)
		},
	}
	node.xmlrpcHandler = xmlrpc.NewHandler(m)
	go http.Serve(node.xmlrpcListener, node.xmlrpcHandler)
	logger.Debugf("Started %s", node.qualifiedName)
	return node, nil
}

func (node *defaultNode) setOK(ok bool) {
	node.okMutex.Lock()
	node.ok = ok
	node.okMutex.Unlock()
}

func (node *defaultNode) OK() bool {
	node.okMutex.RLock()
	defer node.okMutex.RUnlock()
	return node.ok
}

func (node *defaultNode) Name() string {
	return node.qualifiedName
}

func (node *defaultNode) getBusStats(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusError, "Not implemented", 0), nil
}

func (node *defaultNode) getBusInfo(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusError, "Not implemented", 0), nil
}

func (node *defaultNode) getMasterURI(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "Success", node.masterURI), nil
}

func (node *defaultNode) shutdown(callerID string, msg string) (interface{}, error) {
	node.logger.Infof("Shutdown requested by %s: %s", callerID, msg)
	node.setOK(false)
	return buildRosAPIResult(APIStatusSuccess, "Success", 0), nil
}

func (node *defaultNode) getPid(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "Success", os.Getpid()), nil
}

func (node *defaultNode) getSubscriptions(callerID string) (interface{}, error) {
	node.mu.Lock()
	defer node.mu.Unlock()
	result := []interface{}{}
	for t, s := range node.subscribers {
		result = append(result, []interface{}{t, s.msgType.Name()})
	}
	return buildRosAPIResult(APIStatusSuccess, "Success", result), nil
}

func (node *defaultNode) getPublications(callerID string) (interface{}, error) {
	node.mu.Lock()
	defer node.mu.Unlock()
	result := []interface{}{}
	for t, p := range node.publishers {
		result = append(result, []interface{}{t, p.msgType.Name()})
	}
	return buildRosAPIResult(APIStatusSuccess, "Success", result), nil
}

func (node *defaultNode) paramUpdate(callerID string, key string, value interface{}) (interface{}, error) {
	return buildRosAPIResult(APIStatusError, "Not implemented", 0), nil
}

func (node *defaultNode) publisherUpdate(callerID string, topic string, publishers []interface{}) (interface{}, error) {
	node.logger.Debugf("Slave API publisherUpdate(%s, %s) called.", callerID, topic)
	node.mu.Lock()
	sub, ok := node.subscribers[topic]
	node.mu.Unlock()
	if !ok {
		return buildRosAPIResult(APIStatusFailure, "No such topic", 0), nil
	}
	pubURIs := make([]string, 0, len(publishers))
	for _, uri := range publishers {
		if s, ok := uri.(string); ok {
			pubURIs = append(pubURIs, s)
		}
	}
	sub.updatePublishers(pubURIs)
	return buildRosAPIResult(APIStatusSuccess, "Success", 0), nil
}

func (node *defaultNode) requestTopic(callerID string, topic string, protocols []interface{}) (interface{}, error) {
	node.logger.Debugf("Slave API requestTopic(%s, %s, ...) called.", callerID, topic)
	node.mu.Lock()
	pub, ok := node.publishers[topic]
	node.mu.Unlock()
	if !ok {
		return buildRosAPIResult(APIStatusFailure, "No such topic", 0), nil
	}
	for _, v := range protocols {
		protocolParams, ok := v.([]interface{})
		if !ok || len(protocolParams) == 0 {
			continue
		}
		if name, _ := protocolParams[0].(string); name == "TCPROS" {
			host, port := pub.hostAndPort()
			return buildRosAPIResult(APIStatusSuccess, "Success", []interface{}{"TCPROS", host, port}), nil
		}
	}
	return buildRosAPIResult(APIStatusFailure, "No supported protocol", []interface{}{}), nil
}

func (node *defaultNode) NewPublisher(topic string, msgType MessageType) (Publisher, error) {
	return node.NewPublisherWithCallbacks(topic, msgType, nil, nil)
}

func (node *defaultNode) NewPublisherWithCallbacks(topic string, msgType MessageType, connectCallback, disconnectCallback func(SingleSubscriberPublisher)) (Publisher, error) {
	name := node.nameResolver.remap(topic)
	if !isValidName(name) {
		return nil, errors.Errorf("invalid topic name %q", name)
	}
	node.mu.Lock()
	defer node.mu.Unlock()
	if pub, ok := node.publishers[name]; ok {
		return pub, nil
	}

	listener, err := listen(node.listenIP)
	if err != nil {
		return nil, errors.Wrapf(err, "TCPROS listener for %s", name)
	}
	pub := newDefaultPublisher(node, name, msgType, listener, connectCallback, disconnectCallback)
	node.publishers[name] = pub
	node.waitGroup.Add(1)
	go pub.start(&node.waitGroup)

	if _, err := callRosAPI(node.masterURI, "registerPublisher",
		node.qualifiedName, name, msgType.Name(), node.xmlrpcURI); err != nil {
		delete(node.publishers, name)
		pub.Shutdown()
		return nil, errors.Wrapf(err, "registering publisher %s", name)
	}
	return pub, nil
}

func (node *defaultNode) NewSubscriber(topic string, msgType MessageType, callback interface{}) (Subscriber, error) {
	return node.NewSubscriberWithQueueSize(topic, msgType, defaultQueueSize, callback)
}

func (node *defaultNode) NewSubscriberWithQueueSize(topic string, msgType MessageType, queueSize int, callback interface{}) (Subscriber, error) {
	name := node.nameResolver.remap(topic)
	if !isValidName(name) {
		return nil, errors.Errorf("invalid topic name %q", name)
	}
	if err := checkCallback(callback); err != nil {
		return nil, errors.Wrapf(err, "subscriber %s", name)
	}
	node.mu.Lock()
	defer node.mu.Unlock()
	if sub, ok := node.subscribers[name]; ok {
		sub.addCallback(callback)
		return sub, nil
	}

	node.logger.Debugf("Call Master API registerSubscriber for %s", name)
	result, err := callRosAPI(node.masterURI, "registerSubscriber",
		node.qualifiedName, name, msgType.Name(), node.xmlrpcURI)
	if err != nil {
		return nil, errors.Wrapf(err, "registering subscriber %s", name)
	}
	list, ok := result.([]interface{})
	if !ok {
		return nil, errors.Errorf("registerSubscriber returned %T, not a list", result)
	}
	var publishers []string
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errors.New("publisher list contains a non-string entry")
		}
		publishers = append(publishers, s)
	}
	node.logger.Debugf("Publisher URI list: %v", publishers)

	sub := newDefaultSubscriber(name, msgType, queueSize, callback)
	node.subscribers[name] = sub
	node.waitGroup.Add(1)
	go sub.start(&node.waitGroup, node.qualifiedName, node.xmlrpcURI, node.masterURI, node.jobChan, node.logger)
	sub.updatePublishers(publishers)
	return sub, nil
}

func (node *defaultNode) NewTimer(period Duration, callback func(TimerEvent)) Timer {
	timer := newDefaultTimer(period, callback, node.jobChan, node.logger)
	node.mu.Lock()
	node.timers = append(node.timers, timer)
	node.mu.Unlock()
	node.waitGroup.Add(1)
	go timer.start(&node.waitGroup)
	return timer
}

func (node *defaultNode) SpinOnce() {
	select {
	case job := <-node.jobChan:
		job()
	case <-time.After(10 * time.Millisecond):
	}
}

func (node *defaultNode) Spin() {
	for node.OK() {
		select {
		case job := <-node.jobChan:
			job()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (node *defaultNode) Shutdown() {
	node.shutdownOnce.Do(node.shutdownNow)
}

func (node *defaultNode) shutdownNow() {
	logger := node.logger
	logger.Debug("Shutting node down")
	node.setOK(false)
	signal.Stop(node.interruptChan)
	close(node.interruptChan)

	node.mu.Lock()
	for _, t := range node.timers {
		t.Stop()
	}
	for _, s := range node.subscribers {
		s.Shutdown()
	}
	for _, p := range node.publishers {
		p.Shutdown()
	}
	node.mu.Unlock()

	// Drain pending callbacks so that no goroutine stays blocked on the
	// job channel while we wait for them.
	done := make(chan struct{})
	go func() {
		node.waitGroup.Wait()
		close(done)
	}()
	for waiting := true; waiting; {
		select {
		case <-node.jobChan:
		case <-done:
			waiting = false
		}
	}
	logger.Debug("Close XMLRPC listener")
	node.xmlrpcListener.Close()
	node.xmlrpcHandler.WaitForShutdown()
	logger.Debug("Shutting node down completed")
}

func (node *defaultNode) GetParam(key string) (interface{}, error) {
	name := node.nameResolver.remap(key)
	return callRosAPI(node.masterURI, "getParam", node.qualifiedName, name)
}

func (node *defaultNode) SetParam(key string, value interface{}) error {
	name := node.nameResolver.remap(key)
	_, err := callRosAPI(node.masterURI, "setParam", node.qualifiedName, name, value)
	return err
}

func (node *defaultNode) HasParam(key string) (bool, error) {
	name := node.nameResolver.remap(key)
	result, err := callRosAPI(node.masterURI, "hasParam", node.qualifiedName, name)
	if err != nil {
		return false, err
	}
	hasParam, ok := result.(bool)
	if !ok {
		return false, errors.Errorf("hasParam returned %T", result)
	}
	return hasParam, nil
}

func (node *defaultNode) SearchParam(key string) (string, error) {
	result, err := callRosAPI(node.masterURI, "searchParam", node.qualifiedName, key)
	if err != nil {
		return "", err
	}
	foundKey, ok := result.(string)
	if !ok {
		return "", errors.Errorf("searchParam returned %T", result)
	}
	return foundKey, nil
}

func (node *defaultNode) DeleteParam(key string) error {
	name := node.nameResolver.remap(key)
	_, err := callRosAPI(node.masterURI, "deleteParam", node.qualifiedName, name)
	return err
}

func (node *defaultNode) Logger() *logrus.Entry {
	return node.logger
}

func (node *defaultNode) NonRosArgs() []string {
	return node.nonRosArgs
}

func portNumber(port string) int32 {
	p, err := strconv.ParseInt(port, 10, 32)
	if err != nil {
		return 0
	}
	return int32(p)
}
