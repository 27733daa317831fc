package messaging

import "github.com/segmentio/kafka-go"

// messageCarrier exposes kafka message headers as an otel
// TextMapCarrier so trace context can ride along with each event.
type messageCarrier struct {
	msg *kafka.Message
}

func carrierFor(msg *kafka.Message) messageCarrier {
	return messageCarrier{msg: msg}
}

func (c messageCarrier) Get(key string) string {
	for i := range c.msg.Headers {
		if c.msg.Headers[i].Key == key {
			return string(c.msg.Headers[i].Value)
		}
	}
	return ""
}

func (c messageCarrier) Set(key, value string) {
	for i := range c.msg.Headers {
		if c.msg.Headers[i].Key == key {
			c.msg.Headers[i].Value = []byte(value)
			return
		}
	}
	c.msg.Headers = append(c.msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c messageCarrier) Keys() []string {
	keys := make([]string, 0, len(c.msg.Headers))
	for _, h := range c.msg.Headers {
		keys = append(keys, h.Key)
	}
	return keys
}
