package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"rejar/internal/engine"
	"rejar/internal/logging"
	"rejar/sink"
)

// driver publishes one JSON record per run, keyed by destination path.
// A build step must know the report landed, so the producer is
// synchronous.
type driver struct {
	cfg Config
	p   sarama.SyncProducer
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config, got %T", c)
	}
	sc, err := saramaConfig(cfg)
	if err != nil {
		return err
	}
	p, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return err
	}
	d.cfg, d.p = cfg, p
	return nil
}

func saramaConfig(cfg Config) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	if cfg.Version != "" {
		ver, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return nil, err
		}
		sc.Version = ver
	}
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true
	sc.Producer.Timeout = cfg.Timeout
	sc.Producer.Retry.Max = cfg.Retries
	if cfg.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if cfg.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = cfg.SASLUser, cfg.SASLPass
	}
	return sc, nil
}

func (d *driver) Push(r engine.Report) error {
	if d.p == nil {
		return fmt.Errorf("kafka-sink: not configured")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: d.cfg.Topic,
		Key:   sarama.StringEncoder(r.Destination),
		Value: sarama.ByteEncoder(body),
	}
	part, off, err := d.p.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka-sink: publish report: %w", err)
	}
	logging.L().Debug("report published", "topic", d.cfg.Topic, "partition", part, "offset", off)
	return nil
}

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	p := d.p
	d.p = nil
	return p.Close()
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
