package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hab-telemetry/rockblock-receiver/internal/domain"
)

func TestRenderDecodesTrackingFields(t *testing.T) {
	messages := []*domain.Message{
		{
			IMEI:      "300234061666900",
			Timestamp: "2026-07-04T14:00:00Z",
			Data:      "32.8000|-117.1000|150|8|3.7|72",
			ObjectKey: "300234061666900_2026-07-04T14:00:00Z.json",
		},
	}

	var buf bytes.Buffer
	Render(&buf, messages)
	out := buf.String()

	for _, want := range []string{
		"Found 1 messages",
		"Message #1",
		"300234061666900",
		"300234061666900_2026-07-04T14:00:00Z.json",
		"32.8000|-117.1000|150|8|3.7|72",
		"Location:   32.8000, -117.1000",
		"Altitude:   150 m",
		"Satellites: 8",
		"Battery:    3.7 V",
		"Temp:       72 F",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarksMalformedPayloadUnavailable(t *testing.T) {
	messages := []*domain.Message{
		{IMEI: "a", Timestamp: "2026-07-04T14:00:00Z", Data: "32.8|-117.1|150"},
		{IMEI: "b", Timestamp: "2026-07-04T13:00:00Z", Data: "32.8|-117.1|150|8|3.7|72"},
	}

	var buf bytes.Buffer
	Render(&buf, messages)
	out := buf.String()

	if !strings.Contains(out, "Decoded:    unavailable") {
		t.Errorf("malformed payload not marked unavailable:\n%s", out)
	}
	// The malformed record must not stop the good one from rendering.
	if !strings.Contains(out, "Message #2") || !strings.Contains(out, "Satellites: 8") {
		t.Errorf("record after malformed payload not rendered:\n%s", out)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	messages := []*domain.Message{
		{IMEI: "a", Timestamp: "2026-07-04T14:00:00Z", Data: "1|2|3|4|5|6"},
		{IMEI: "b", Timestamp: "2026-07-04T13:00:00Z", Data: "not-tracking-data"},
	}

	var first, second bytes.Buffer
	Render(&first, messages)
	Render(&second, messages)

	if first.String() != second.String() {
		t.Error("two renders of the same messages differ")
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, nil)
	if !strings.Contains(buf.String(), "No messages found") {
		t.Errorf("unexpected empty output: %q", buf.String())
	}
}
