package input

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// System is the Sink that performs real OS-level injection via robotgo.
type System struct{}

// NewSystem returns the system input sink.
func NewSystem() *System {
	return &System{}
}

func (s *System) PressKey(key string) error {
	if err := robotgo.KeyDown(key); err != nil {
		return fmt.Errorf("key down %q: %w", key, err)
	}
	return nil
}

func (s *System) ReleaseKey(key string) error {
	if err := robotgo.KeyUp(key); err != nil {
		return fmt.Errorf("key up %q: %w", key, err)
	}
	return nil
}

func (s *System) TypeSequence(text string) error {
	robotgo.TypeStr(text)
	return nil
}

func (s *System) MoveMouse(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (s *System) Click(button Button) error {
	// robotgo names the middle button "center".
	name := string(button)
	if button == ButtonMiddle {
		name = "center"
	}
	robotgo.Click(name)
	return nil
}

func (s *System) Scroll(amount int) error {
	robotgo.Scroll(0, amount)
	return nil
}
