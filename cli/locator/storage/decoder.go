package storage

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/daniil11ru/lastseen/cli/locator/errs"
	"github.com/daniil11ru/lastseen/cli/locator/model"
)

// Decoder normalizes a raw stored value of any supported physical encoding
// into the canonical position record. The identifier field of a payload is
// read under the namespace-specific name or its legacy alternate, falling
// back to the key-derived identifier when both are absent.
type Decoder struct {
	IDField       string
	LegacyIDField string
}

// storedRecord is the serialized-blob payload shape shared by the string,
// append-log and ranked-set encodings.
type storedRecord struct {
	DeviceID    string                 `json:"device_id"`
	UserID      string                 `json:"user_id"`
	ID          string                 `json:"id"`
	Lat         *float64               `json:"lat"`
	Lng         *float64               `json:"lng"`
	Timestamp   *string                `json:"timestamp"`
	ReceivedAt  *string                `json:"received_at"`
	UpdatedAt   *string                `json:"updated_at"`
	Metadata    map[string]interface{} `json:"metadata"`
	DisplayName *string                `json:"display_name"`
}

func (r *storedRecord) identifier(primary, legacy string) string {
	byName := map[string]string{"device_id": r.DeviceID, "user_id": r.UserID, "id": r.ID}
	if v := byName[primary]; v != "" {
		return v
	}
	return byName[legacy]
}

// Decode converts a fetched raw value into a canonical record. A value with
// no decodable payload yields (nil, nil) and is indistinguishable from a
// missing key. A present-but-corrupt payload yields a DECODE_ERROR: that is
// a data-integrity signal, not "never existed".
func (d Decoder) Decode(raw RawValue, fallbackID string) (*model.Position, error) {
	var p *model.Position
	var err error

	switch raw.Type {
	case TypeString, TypeList, TypeZSet:
		p, err = d.decodeBlob(raw.Blob, fallbackID)
	case TypeHash:
		p, err = d.decodeFields(raw.Fields, fallbackID)
	default:
		log.Warnf("unsupported physical type %q for %q, treating as not found", raw.Type, fallbackID)
		return nil, nil
	}
	if err != nil || p == nil {
		return nil, err
	}

	if p.EntityID == "" {
		p.EntityID = fallbackID
	}
	p.RetrievedAt = now().UTC().Format(time.RFC3339)
	return p, nil
}

func (d Decoder) decodeBlob(blob, fallbackID string) (*model.Position, error) {
	if strings.TrimSpace(blob) == "" {
		return nil, nil
	}

	var r storedRecord
	if err := json.Unmarshal([]byte(blob), &r); err != nil {
		return nil, errs.Newf(errs.DecodeError, "malformed position payload for %q: %v", fallbackID, err)
	}

	return &model.Position{
		EntityID:    r.identifier(d.IDField, d.LegacyIDField),
		Lat:         r.Lat,
		Lng:         r.Lng,
		Timestamp:   r.Timestamp,
		ReceivedAt:  r.ReceivedAt,
		UpdatedAt:   r.UpdatedAt,
		Metadata:    r.Metadata,
		DisplayName: r.DisplayName,
	}, nil
}

func (d Decoder) decodeFields(fields map[string]string, fallbackID string) (*model.Position, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	p := &model.Position{}

	id := fields[d.IDField]
	if id == "" {
		id = fields[d.LegacyIDField]
	}
	p.EntityID = id

	var err error
	if p.Lat, err = parseCoordinate(fields, "lat", fallbackID); err != nil {
		return nil, err
	}
	if p.Lng, err = parseCoordinate(fields, "lng", fallbackID); err != nil {
		return nil, err
	}

	p.Timestamp = optionalField(fields, "timestamp")
	p.ReceivedAt = optionalField(fields, "received_at")
	p.UpdatedAt = optionalField(fields, "updated_at")
	p.DisplayName = optionalField(fields, "display_name")

	if v := fields["metadata"]; v != "" {
		if err := json.Unmarshal([]byte(v), &p.Metadata); err != nil {
			return nil, errs.Newf(errs.DecodeError, "malformed metadata for %q: %v", fallbackID, err)
		}
	}

	return p, nil
}

func parseCoordinate(fields map[string]string, name, fallbackID string) (*float64, error) {
	v, ok := fields[name]
	if !ok || v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, errs.Newf(errs.DecodeError, "field %s of %q is not numeric: %v", name, fallbackID, err)
	}
	return &f, nil
}

func optionalField(fields map[string]string, name string) *string {
	v, ok := fields[name]
	if !ok || v == "" {
		return nil
	}
	return &v
}
