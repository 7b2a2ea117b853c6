package input

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

// TestRecorderLogsCallsInOrder verifies the recorded call log mirrors
// the call sequence.
func TestRecorderLogsCallsInOrder(t *testing.T) {
	r := &Recorder{}
	r.PressKey("a")
	r.MoveMouse(10, 20)
	r.Click(ButtonLeft)
	r.Scroll(-3)
	r.TypeSequence("hi")
	r.ReleaseKey("a")

	want := []string{"press a", "move 10,20", "click left", "scroll -3", "type hi", "release a"}
	if got := r.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("Calls() = %v, want %v", got, want)
	}
}

// TestRecorderEchoesToWriter verifies the dry-run echo output.
func TestRecorderEchoesToWriter(t *testing.T) {
	var buf bytes.Buffer
	r := &Recorder{Out: &buf}
	r.PressKey("enter")

	if !strings.Contains(buf.String(), "[dry-run] press enter") {
		t.Errorf("echo output = %q, want dry-run press line", buf.String())
	}
}

// TestRecorderFailureInjection verifies FailOn makes only the named
// method fail.
func TestRecorderFailureInjection(t *testing.T) {
	r := &Recorder{FailOn: "click"}
	if err := r.PressKey("a"); err != nil {
		t.Errorf("PressKey error: %v", err)
	}
	if err := r.Click(ButtonRight); err == nil {
		t.Error("expected injected click failure")
	}
}
