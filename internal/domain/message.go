package domain

// InboundDelivery is the JSON body posted by the ground-station service
// for a single satellite message. Only IMEI and Data are required; the
// remaining fields are passed through to storage when present.
type InboundDelivery struct {
	IMEI             string   `json:"imei"`
	Data             string   `json:"data"`
	MOMSN            *int     `json:"momsn,omitempty"`
	TransmitTime     string   `json:"transmit_time,omitempty"`
	IridiumLatitude  *float64 `json:"iridium_latitude,omitempty"`
	IridiumLongitude *float64 `json:"iridium_longitude,omitempty"`
	IridiumCEP       *float64 `json:"iridium_cep,omitempty"`
}

// Message is the JSON document written to the bucket, one object per
// delivery. Timestamp is the receipt time (RFC3339Nano, UTC), assigned
// by the receiver rather than the sender.
type Message struct {
	IMEI             string   `json:"imei"`
	Timestamp        string   `json:"timestamp"`
	Data             string   `json:"data"`
	MOMSN            *int     `json:"momsn,omitempty"`
	TransmitTime     string   `json:"transmit_time,omitempty"`
	IridiumLatitude  *float64 `json:"iridium_latitude,omitempty"`
	IridiumLongitude *float64 `json:"iridium_longitude,omitempty"`
	IridiumCEP       *float64 `json:"iridium_cep,omitempty"`

	// ObjectKey is the bucket key the document was read from or written
	// to. Not part of the stored document.
	ObjectKey string `json:"-"`
}
