package report

import (
	"fmt"
	"io"

	"github.com/hab-telemetry/rockblock-receiver/internal/domain"
)

// Render writes a human-readable summary of stored messages. Messages
// whose tracking payload does not decode are still reported, with the
// decoded block marked unavailable.
func Render(w io.Writer, messages []*domain.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(w, "No messages found")
		return
	}

	fmt.Fprintf(w, "Found %d messages\n", len(messages))
	fmt.Fprintln(w, "================================================================================")

	for i, msg := range messages {
		fmt.Fprintf(w, "\nMessage #%d\n", i+1)
		fmt.Fprintf(w, "  IMEI:       %s\n", msg.IMEI)
		fmt.Fprintf(w, "  Timestamp:  %s\n", msg.Timestamp)
		fmt.Fprintf(w, "  Object:     %s\n", msg.ObjectKey)
		fmt.Fprintf(w, "  Raw Data:   %s\n", msg.Data)

		fields, err := domain.ParseTrackingData(msg.Data)
		if err != nil {
			fmt.Fprintf(w, "  Decoded:    unavailable (%v)\n", err)
			continue
		}

		fmt.Fprintf(w, "  Location:   %.4f, %.4f\n", fields.Latitude, fields.Longitude)
		fmt.Fprintf(w, "  Altitude:   %d m\n", fields.AltitudeM)
		fmt.Fprintf(w, "  Satellites: %d\n", fields.Satellites)
		fmt.Fprintf(w, "  Battery:    %.1f V\n", fields.BatteryVolts)
		fmt.Fprintf(w, "  Temp:       %d F\n", fields.TemperatureF)
	}
}
