package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/guardit/pkg/alert"
)

type fakeToken struct {
	mqtt.Token
	completed bool
	err       error
}

func (t *fakeToken) Wait() bool { return t.completed }

func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.completed }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.completed {
		close(ch)
	}
	return ch
}

func (t *fakeToken) Error() error { return t.err }

type publishedMessage struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient implements the parts of mqtt.Client the platform uses.
type fakeClient struct {
	mqtt.Client

	mu           sync.Mutex
	connected    bool
	connectToken *fakeToken
	publishToken *fakeToken
	connects     int
	disconnects  int
	published    []publishedMessage
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) Connect() mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects++
	if c.connectToken.completed && c.connectToken.err == nil {
		c.connected = true
	}
	return c.connectToken
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	c.connected = false
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, _ := payload.([]byte)
	c.published = append(c.published, publishedMessage{topic: topic, qos: qos, payload: b})
	return c.publishToken
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		connectToken: &fakeToken{completed: true},
		publishToken: &fakeToken{completed: true},
	}
}

func testMQTTConfig() MQTTConfig {
	return MQTTConfig{Broker: "tcp://broker:1883", ClientID: "guardit-test", Topic: "guardit/alerts", QoS: 1}
}

func TestMQTTPlatform_ConnectGrantsPermission(t *testing.T) {
	client := newFakeClient()
	p := newMQTTPlatform(testMQTTConfig(), client)

	perm, err := p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, perm)
	assert.Equal(t, 1, client.connects)

	perm, err = p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, perm)
	assert.Equal(t, 1, client.connects, "a connected client is not reconnected")
}

func TestMQTTPlatform_RefusedConnectionIsDenied(t *testing.T) {
	client := newFakeClient()
	client.connectToken = &fakeToken{completed: true, err: errors.New("not authorized")}
	p := newMQTTPlatform(testMQTTConfig(), client)

	perm, err := p.RequestPermission(context.Background())
	assert.Equal(t, PermissionDenied, perm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")
	assert.Contains(t, err.Error(), "tcp://broker:1883")
}

func TestMQTTPlatform_ConnectTimeoutIsDenied(t *testing.T) {
	client := newFakeClient()
	client.connectToken = &fakeToken{completed: false}
	p := newMQTTPlatform(testMQTTConfig(), client)

	perm, err := p.RequestPermission(context.Background())
	assert.Equal(t, PermissionDenied, perm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestMQTTPlatform_DeliverPublishesJSON(t *testing.T) {
	client := newFakeClient()
	p := newMQTTPlatform(testMQTTConfig(), client)

	n := Notification{Title: "Fall Detected", Body: "Possible fall detected at 2:30:00 PM", Kind: alert.KindFall}
	require.NoError(t, p.Deliver(context.Background(), n))

	require.Len(t, client.published, 1)
	msg := client.published[0]
	assert.Equal(t, "guardit/alerts", msg.topic)
	assert.Equal(t, byte(1), msg.qos)

	var got Notification
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, n, got)
}

func TestMQTTPlatform_DeliverFailures(t *testing.T) {
	n := Notification{Title: "t", Body: "b", Kind: alert.KindLED}

	client := newFakeClient()
	client.publishToken = &fakeToken{completed: true, err: errors.New("connection lost")}
	err := newMQTTPlatform(testMQTTConfig(), client).Deliver(context.Background(), n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guardit/alerts")

	client = newFakeClient()
	client.publishToken = &fakeToken{completed: false}
	err = newMQTTPlatform(testMQTTConfig(), client).Deliver(context.Background(), n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestMQTTPlatform_Close(t *testing.T) {
	client := newFakeClient()
	p := newMQTTPlatform(testMQTTConfig(), client)

	p.Close()
	assert.Equal(t, 0, client.disconnects)

	_, err := p.RequestPermission(context.Background())
	require.NoError(t, err)
	p.Close()
	assert.Equal(t, 1, client.disconnects)
	assert.Equal(t, "mqtt", p.Name())
}

func TestDispatch_MQTTRefusedIsSwallowed(t *testing.T) {
	client := newFakeClient()
	client.connectToken = &fakeToken{completed: true, err: errors.New("connection refused")}
	d, _ := newTestDispatcher(newMQTTPlatform(testMQTTConfig(), client))

	assert.Nil(t, d.Dispatch(context.Background(), alert.KindFall, "Fall Detected", "body"))
	assert.Empty(t, d.Store().List())
	assert.ErrorIs(t, d.RequestPermission(context.Background()), ErrPermissionDenied)
}

func TestDispatch_MQTTPublishFailureIsSwallowed(t *testing.T) {
	client := newFakeClient()
	client.publishToken = &fakeToken{completed: true, err: errors.New("connection lost")}
	d, _ := newTestDispatcher(newMQTTPlatform(testMQTTConfig(), client))

	assert.Nil(t, d.Dispatch(context.Background(), alert.KindFall, "Fall Detected", "body"))
	assert.Empty(t, d.Store().List())
	assert.Len(t, client.published, 1)
}
