// Package publish streams animations to an MQTT broker, one message per
// frame at the animation's frame rate.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/config"
	"github.com/san-kum/asciimate/internal/decoder"
	"github.com/san-kum/asciimate/internal/export"
	"github.com/san-kum/asciimate/internal/format"
	"github.com/san-kum/asciimate/internal/logx"
	"github.com/san-kum/asciimate/internal/player"
)

const (
	MetaSuffix     = "/meta"
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

var ErrTimeout = errors.New("publish: broker did not acknowledge in time")

// Mode selects the frame payload.
type Mode int

const (
	// Text sends each resolved frame as UTF-8 rows.
	Text Mode = iota
	// Record sends the encoded full or delta record, as it appears in the
	// binary stream. Playback restarts at a full frame on every loop.
	Record
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "text":
		return Text, nil
	case "record", "binary":
		return Record, nil
	}
	return Text, fmt.Errorf("unknown publish mode %q", s)
}

// Sender delivers one message and waits for the broker.
type Sender func(topic string, qos byte, retained bool, payload []byte) error

// MQTT adapts a connected client to a Sender.
func MQTT(c mqtt.Client) Sender {
	return func(topic string, qos byte, retained bool, payload []byte) error {
		token := c.Publish(topic, qos, retained, payload)
		if !token.WaitTimeout(publishTimeout) {
			return ErrTimeout
		}
		return token.Error()
	}
}

// Connect opens a client for cfg. Paho's own error output is routed to log.
func Connect(cfg config.MQTTConfig, log *logx.Logger) (mqtt.Client, error) {
	mqtt.ERROR = pahoLogger{log.Section("mqtt")}

	options := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Section("publish").Infof("connected to %s", cfg.Broker)
		})
	client := mqtt.NewClient(options)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	return client, nil
}

type pahoLogger struct{ s logx.Section }

func (l pahoLogger) Println(v ...interface{})               { l.s.Errorf("%s", fmt.Sprint(v...)) }
func (l pahoLogger) Printf(format string, v ...interface{}) { l.s.Errorf(format, v...) }

type Options struct {
	Topic string
	QoS   byte
	Mode  Mode
	Loop  bool
	Speed float64
}

// Streamer publishes the header once, retained, on Topic+MetaSuffix and
// then every frame on Topic.
type Streamer struct {
	send Sender
	opts Options
	log  logx.Section
	sent int
}

func NewStreamer(send Sender, opts Options, log *logx.Logger) *Streamer {
	if log == nil {
		log = logx.Discard()
	}
	return &Streamer{send: send, opts: opts, log: log.Section("publish")}
}

// Sent reports how many frame messages went out.
func (s *Streamer) Sent() int { return s.sent }

// Stream plays a through a player whose renderer publishes. It returns
// after one pass unless Loop is set, when ctx is done, or on the first
// failed publish.
func (s *Streamer) Stream(ctx context.Context, a *anim.Animation) error {
	res, err := decoder.ResolveAnimation(a)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(format.NewMetaDoc(res.Meta))
	if err != nil {
		return err
	}
	if err := s.send(s.opts.Topic+MetaSuffix, s.opts.QoS, true, meta); err != nil {
		return fmt.Errorf("publish meta: %w", err)
	}

	cells := res.Meta.Cells()
	colors := res.Meta.ColorMode.HasColor()
	var sendErr error
	var p *player.Player

	render := func(i int, g anim.Grid) {
		if sendErr != nil {
			return
		}
		var payload []byte
		switch s.opts.Mode {
		case Record:
			payload, sendErr = format.AppendRecord(nil, a.Frames[i], cells, colors)
		default:
			payload = []byte(export.GridToText(g, res.Meta))
		}
		if sendErr == nil {
			sendErr = s.send(s.opts.Topic, s.opts.QoS, false, payload)
		}
		if sendErr != nil {
			sendErr = &anim.FrameError{Index: i, Wrapped: sendErr}
			p.Stop()
			return
		}
		s.sent++
	}

	speed := s.opts.Speed
	if speed == 0 {
		speed = 1
	}
	p, err = player.New(res.Frames, int(res.Meta.FPS),
		player.WithSpeed(speed),
		player.WithRenderer(render),
		player.WithLoopHandler(func(loops int) {
			s.log.Debugf("loop %d done, %d frames sent", loops, s.sent)
			if !s.opts.Loop {
				p.Stop()
			}
		}),
	)
	if err != nil {
		return err
	}
	defer p.Destroy()

	s.log.Infof("streaming %d frames to %s at %d fps", res.Len(), s.opts.Topic, res.Meta.FPS)
	if err := p.Run(ctx, 0); err != nil {
		return err
	}
	return sendErr
}
