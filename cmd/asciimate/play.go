package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/asciimate/internal/publish"
	"github.com/san-kum/asciimate/internal/storage"
	"github.com/san-kum/asciimate/internal/tui"
	"github.com/san-kum/asciimate/internal/viz"
)

func playAnimation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, label, err := storage.New(dataDir).Open(args[0])
	if err != nil {
		return err
	}

	if plain {
		ctx, stop := interruptContext()
		defer stop()
		err := tui.Play(ctx, os.Stdout, a, tui.Options{
			Name:  label,
			Speed: cfg.Player.Speed,
			Loop:  cfg.Player.Loop,
			Color: useColor(),
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	return viz.Run(a, viz.Options{
		Name:     label,
		Speed:    cfg.Player.Speed,
		Loop:     cfg.Player.Loop,
		Theme:    cfg.Player.Theme,
		Autoplay: true,
	})
}

func browseLibrary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return viz.RunBrowser(storage.New(dataDir), viz.Options{
		Speed: cfg.Player.Speed,
		Loop:  cfg.Player.Loop,
		Theme: cfg.Player.Theme,
	})
}

func publishAnimation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := publish.ParseMode(mode)
	if err != nil {
		return err
	}
	a, label, err := storage.New(dataDir).Open(args[0])
	if err != nil {
		return err
	}

	log := logger()
	client, err := publish.Connect(cfg.MQTT, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	ctx, stop := interruptContext()
	defer stop()

	s := publish.NewStreamer(publish.MQTT(client), publish.Options{
		Topic: cfg.MQTT.Topic,
		QoS:   byte(cfg.MQTT.QoS),
		Mode:  m,
		Loop:  loop,
		Speed: cfg.Player.Speed,
	}, log)
	err = s.Stream(ctx, a)
	log.Section("publish").Noticef("%s: %d frames sent to %s", label, s.Sent(), cfg.MQTT.Topic)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
