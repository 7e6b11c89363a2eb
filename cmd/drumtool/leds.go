package main

import (
	"fmt"

	"go-drum/midi"
	"go-drum/pads"
	"go-drum/sequencer"
	"go-drum/sound"
)

// showDemo paints the house demo on the pads and lets them edit it until
// Enter is pressed.
func showDemo(c midi.Controller) error {
	m, err := loadPattern("house", sequencer.Options{Bank: sound.NewBank()})
	if err != nil {
		return err
	}
	defer m.Close()

	host := pads.NewHost(m, nil)
	events, cancel := m.Subscribe(64)
	defer cancel()
	go func() {
		for range events {
			c.SetLEDBatch(host.LEDs(m.Frame()))
		}
	}()
	go func() {
		for ev := range c.PadEvents() {
			host.Press(ev)
		}
	}()

	if err := c.SetLEDBatch(host.LEDs(m.Frame())); err != nil {
		return err
	}
	fmt.Println("Pads are live. Press Enter to clear...")
	fmt.Scanln()
	return c.Close()
}
