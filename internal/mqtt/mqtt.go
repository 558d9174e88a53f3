package mqtt

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Client struct {
	cli mqtt.Client
}

// ClientAPI is the part of the broker connection the publisher needs.
type ClientAPI interface {
	PublishWith(topic string, payload []byte, retain bool) error
}

// Connect dials the broker. mqtt:// and tcp:// map to plain TCP, ssl:// and
// tls:// to TLS. Credentials may be embedded in the URL.
func Connect(brokerURL, clientID string) (*Client, error) {
	raw := strings.TrimSpace(brokerURL)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse broker url: %w", err)
	}
	server := u.Host
	switch u.Scheme {
	case "mqtt", "tcp", "":
		server = "tcp://" + server
	case "ssl", "tls":
		server = "ssl://" + server
	case "ws", "wss":
		server = u.Scheme + "://" + server + u.Path
	default:
		return nil, fmt.Errorf("unsupported broker scheme %q", u.Scheme)
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(server)
	if strings.TrimSpace(clientID) == "" {
		clientID = "household-service-" + time.Now().Format("150405.000")
	}
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	if u.User != nil {
		pw, _ := u.User.Password()
		opts.SetUsername(u.User.Username())
		opts.SetPassword(pw)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		slog.Warn("mqtt connection lost", "error", err)
	}
	opts.OnConnect = func(_ mqtt.Client) {
		slog.Info("mqtt connected", "broker", server)
	}

	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if ok := tok.WaitTimeout(15 * time.Second); !ok {
		return nil, fmt.Errorf("mqtt connect to %s timed out", server)
	}
	if err := tok.Error(); err != nil {
		return nil, err
	}
	return &Client{cli: c}, nil
}

func (c *Client) PublishWith(topic string, payload []byte, retain bool) error {
	t := c.cli.Publish(topic, 1, retain, payload)
	if !t.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt publish to %s timed out", topic)
	}
	return t.Error()
}

func (c *Client) Close() {
	if c == nil || c.cli == nil {
		return
	}
	c.cli.Disconnect(1000)
}
