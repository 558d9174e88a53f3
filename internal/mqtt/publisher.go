package mqtt

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/PetoAdam/homenavi/household-service/internal/household"
)

const DefaultTopicPrefix = "homenavi/household"

// Publisher mirrors household events onto the device bus. State snapshots are
// retained so a device that subscribes late still sees the current values.
// Topics: <prefix>/<family>/state, <prefix>/<family>/item, <prefix>/<family>/note.
type Publisher struct {
	client ClientAPI
	prefix string
}

func NewPublisher(client ClientAPI, prefix string) *Publisher {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Publisher{client: client, prefix: prefix}
}

func (p *Publisher) Topic(family, entity string) string {
	return p.prefix + "/" + topicSegment(family) + "/" + entity
}

// Notify implements household.Notifier.
func (p *Publisher) Notify(_ context.Context, ev household.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	retain := ev.Type == household.EventStateChanged
	return p.client.PublishWith(p.Topic(ev.Family, ev.Entity), payload, retain)
}

// topicSegment keeps a family name from spanning or wildcarding topic levels.
func topicSegment(s string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(s)
}
