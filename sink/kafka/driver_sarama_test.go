package kafka

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"rejar/internal/engine"
)

func TestDriver_PushPublishesJSONReport(t *testing.T) {
	cfg := Config{Topic: "builds", Acks: -1}
	sc, err := saramaConfig(cfg)
	if err != nil {
		t.Fatalf("saramaConfig: %v", err)
	}
	p := mocks.NewSyncProducer(t, sc)
	p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var r engine.Report
		if err := json.Unmarshal(val, &r); err != nil {
			return err
		}
		if r.Destination != "out.jar" || len(r.Rewritten) != 1 || r.Rewritten[0].Unit != "pkg/A" {
			return errors.New("unexpected report payload")
		}
		return nil
	})

	d := &driver{cfg: cfg, p: p}
	err = d.Push(engine.Report{
		Destination: "out.jar",
		Rewritten:   []engine.UnitChange{{Unit: "pkg/A"}},
	})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestDriver_PushFailure(t *testing.T) {
	sc, _ := saramaConfig(Config{Acks: 1})
	p := mocks.NewSyncProducer(t, sc)
	p.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	d := &driver{cfg: Config{Topic: "builds"}, p: p}
	if err := d.Push(engine.Report{Destination: "out.jar"}); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("want ErrOutOfBrokers, got %v", err)
	}
	_ = d.Close()
}

func TestDriver_PushUnconfigured(t *testing.T) {
	if err := (&driver{}).Push(engine.Report{}); err == nil {
		t.Fatal("expected error")
	}
}
