// Package publisher broadcasts recorded vehicle positions over NATS so
// map frontends and other consumers can subscribe to live movement
// without polling the API.
package publisher

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is the root of every position subject. The full subject
// is fleet.position.<line>.<session>.
const SubjectPrefix = "fleet.position"

// PublisherMetrics is the observability hook the publisher reports into.
type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

// NATSPublisher publishes position messages over a single NATS connection.
type NATSPublisher struct {
	nc      *nats.Conn
	logger  *slog.Logger
	metrics PublisherMetrics
}

func NewNATSPublisher(url string, logger *slog.Logger, m PublisherMetrics) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "publisher"))

	nc, err := nats.Connect(url,
		nats.Name("fleet-tracker"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			logger.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, logger: logger, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// PositionMessage is the wire payload for one recorded fix.
type PositionMessage struct {
	SessionID  string    `json:"sessionId"`
	LineID     string    `json:"lineId"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	Speed      *float64  `json:"speed,omitempty"`
	Heading    *float64  `json:"heading,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// PublishPosition sends the fix on fleet.position.<line>.<session>.
func (p *NATSPublisher) PublishPosition(msg PositionMessage) error {
	subject := fmt.Sprintf("%s.%s.%s", SubjectPrefix, subjectToken(msg.LineID), subjectToken(msg.SessionID))
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
