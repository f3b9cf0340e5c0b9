package pb

import (
	"compass_apiserver/internal/heading"
	"compass_apiserver/internal/manager"
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"
)

// Heading is the payload of GetHeading, GetHeadingStream and GET /v1/heading.
type Heading struct {
	Session    string  `json:"session"`
	Seq        uint64  `json:"seq"`
	Azimuth    int     `json:"azimuth"`
	Previous   int     `json:"previous"`
	Text       string  `json:"text"`
	Mode       string  `json:"mode"`
	From       float64 `json:"from"`
	To         float64 `json:"to"`
	DurationMs int64   `json:"duration_ms"`
	SensorID   string  `json:"sensor_id"`
	SysTicks   int64   `json:"sys_ticks"`
}

func NewHeading(r heading.Record) Heading {
	return Heading{
		Session:    r.Session,
		Seq:        r.Seq,
		Azimuth:    r.Azimuth,
		Previous:   r.Previous,
		Text:       r.Text,
		Mode:       r.Mode.String(),
		From:       r.From,
		To:         r.To,
		DurationMs: r.Duration.Milliseconds(),
		SensorID:   r.SensorID,
		SysTicks:   r.SysTicks,
	}
}

// Status describes the session of the server.
type Status struct {
	Running         bool   `json:"running"`
	Faulted         bool   `json:"faulted"`
	ManuallyStopped bool   `json:"manually_stopped"`
	Mode            string `json:"mode"`
	Session         string `json:"session"`
	Azimuth         int    `json:"azimuth"`
	// Text is empty until a heading has been computed.
	Text            string `json:"text"`
	Err             string `json:"err"`
}

// NewStatus reads the session state of m.
func NewStatus(m manager.Manager) Status {
	return Status{
		Running:         m.Running(),
		Faulted:         m.Faulted(),
		ManuallyStopped: m.ManuallyStopped(),
		Mode:            m.Mode().String(),
		Session:         m.Session(),
		Azimuth:         m.Azimuth(),
		Text:            m.Text(),
	}
}

type Devices struct {
	IDs []string `json:"ids"`
}

type Info struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ToStruct converts a payload to a Struct through its JSON form. Numbers
// become doubles, so integers above 2^53 lose precision.
func ToStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// FromStruct decodes s into the payload v.
func FromStruct(s *structpb.Struct, v interface{}) error {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
