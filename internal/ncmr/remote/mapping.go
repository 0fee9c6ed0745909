package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"ncmr/internal/ncmr/models"
)

// rawRecord is the record service's wire shape. Field names are snake_case and
// any field may be missing or null.
type rawRecord struct {
	ID                flexString `json:"id"`
	NCMRNumber        string     `json:"ncmr_number"`
	PartNumber        string     `json:"part_number"`
	PartName          string     `json:"part_name"`
	Quantity          flexInt    `json:"quantity"`
	LotNumber         string     `json:"lot_number"`
	Supplier          string     `json:"supplier"`
	Severity          string     `json:"severity"`
	ReportedBy        string     `json:"reported_by"`
	Department        string     `json:"department"`
	DefectDescription string     `json:"defect_description"`
	DispositionAction string     `json:"disposition_action"`
	Status            string     `json:"status"`
	CreatedAt         string     `json:"created_at"`
}

// createPayload is the POST body. The service takes camelCase on input.
type createPayload struct {
	PartNumber        string `json:"partNumber"`
	PartName          string `json:"partName"`
	Quantity          int    `json:"quantity"`
	LotNumber         string `json:"lotNumber"`
	DefectDescription string `json:"defectDescription"`
	DispositionAction string `json:"dispositionAction"`
	Supplier          string `json:"supplier,omitempty"`
	Severity          string `json:"severity,omitempty"`
	ReportedBy        string `json:"reportedBy,omitempty"`
	Department        string `json:"department,omitempty"`
}

type statusPayload struct {
	ID     json.RawMessage `json:"id"`
	Status models.Status   `json:"status"`
}

func newCreatePayload(d models.Draft) createPayload {
	return createPayload{
		PartNumber:        d.PartNumber,
		PartName:          d.PartName,
		Quantity:          d.Quantity,
		LotNumber:         d.LotNumber,
		DefectDescription: d.DefectDescription,
		DispositionAction: d.DispositionAction,
		Supplier:          d.Supplier,
		Severity:          string(d.Severity),
		ReportedBy:        d.ReportedBy,
		Department:        d.Department,
	}
}

// wireID sends numeric ids back as JSON numbers, the way the service issued them.
func wireID(id string) json.RawMessage {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && strconv.FormatInt(n, 10) == id {
		return json.RawMessage(id)
	}
	b, _ := json.Marshal(id)
	return b
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func parseCreatedAt(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return now
}

// toRecord maps the wire shape to the typed record, defaulting missing fields.
func toRecord(raw rawRecord, now time.Time) models.Record {
	status, err := models.ParseStatus(raw.Status)
	if err != nil {
		status = models.StatusOpen
	}
	severity, err := models.ParseSeverity(raw.Severity)
	if err != nil {
		severity = models.SeverityMinor
	}
	return models.Record{
		ID:                raw.ID.value,
		NCMRNumber:        raw.NCMRNumber,
		PartNumber:        raw.PartNumber,
		PartName:          raw.PartName,
		Quantity:          raw.Quantity.value,
		LotNumber:         raw.LotNumber,
		Supplier:          raw.Supplier,
		Severity:          severity,
		ReportedBy:        raw.ReportedBy,
		Department:        raw.Department,
		DefectDescription: raw.DefectDescription,
		DispositionAction: raw.DispositionAction,
		Status:            status,
		CreatedAt:         parseCreatedAt(raw.CreatedAt, now),
	}
}

// flexString accepts a JSON string, number or null. Anything else leaves it
// empty and marks it invalid.
type flexString struct {
	value   string
	invalid bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	*f = flexString{}
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
	case b[0] == '"':
		if err := json.Unmarshal(b, &f.value); err != nil {
			f.invalid = true
		}
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			f.invalid = true
			return nil
		}
		f.value = n.String()
	}
	return nil
}

// maxQuantity bounds a unit count on every platform.
const maxQuantity = math.MaxInt32

// flexInt accepts a non-negative JSON number, a numeric string or null.
// Anything else leaves it zero and marks it invalid.
type flexInt struct {
	value   int
	invalid bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = flexInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			f.invalid = true
			return nil
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		f.invalid = true
		return nil
	}
	v = math.Round(v)
	if v < 0 || v > maxQuantity {
		f.invalid = true
		return nil
	}
	f.value = int(v)
	return nil
}

var errNotObject = errors.New("record is not a JSON object")

// decodeRecord decodes one list element. Fields of the wrong type are left at
// their defaults and reported in the returned error alongside a usable record;
// only errNotObject means there is no record at all.
func decodeRecord(elem json.RawMessage) (rawRecord, error) {
	elem = bytes.TrimSpace(elem)
	if len(elem) == 0 || elem[0] != '{' {
		return rawRecord{}, errNotObject
	}
	var raw rawRecord
	var problems []error
	if err := json.Unmarshal(elem, &raw); err != nil {
		problems = append(problems, err)
	}
	if raw.ID.invalid {
		problems = append(problems, errors.New("id: unreadable value"))
	}
	if raw.Quantity.invalid {
		problems = append(problems, errors.New("quantity: unreadable value"))
	}
	return raw, errors.Join(problems...)
}
