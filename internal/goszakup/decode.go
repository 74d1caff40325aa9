package goszakup

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"goszakup/internal/log"
)

// MalformedRecordError reports a record that could not be decoded as a
// whole. Fields lists the top-level keys that were dropped; the rest of the
// record was decoded.
type MalformedRecordError struct {
	Entity string
	Fields []string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("malformed %s record: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("malformed %s record (fields %s): %v", e.Entity, strings.Join(e.Fields, ", "), e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// DecodeContract decodes one Contract item. On a type mismatch the record is
// decoded field by field; the returned value holds every field that decoded
// and the error is a *MalformedRecordError.
func DecodeContract(raw json.RawMessage) (RawContract, error) {
	var rc RawContract
	err := decodeLenient(EntityContract, raw, &rc)
	var mre *MalformedRecordError
	if errors.As(err, &mre) && slices.Contains(mre.Fields, "ContractUnits") {
		rc.ContractUnits = decodeUnits(raw)
	}
	return rc, err
}

// decodeUnits salvages ContractUnits one unit at a time, so a bad plan
// amount only drops that unit's plan.
func decodeUnits(raw json.RawMessage) []ContractUnit {
	var rec struct {
		Units []json.RawMessage `json:"ContractUnits"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil
	}
	units := make([]ContractUnit, 0, len(rec.Units))
	for _, u := range rec.Units {
		var unit ContractUnit
		_ = decodeLenient(EntityContract, u, &unit)
		units = append(units, unit)
	}
	return units
}

// DecodeAnnouncement decodes one TrdBuy item like DecodeContract.
func DecodeAnnouncement(raw json.RawMessage) (RawAnnouncement, error) {
	var ra RawAnnouncement
	err := decodeLenient(EntityTrdBuy, raw, &ra)
	return ra, err
}

func decodeLenient[T any](entity string, raw json.RawMessage, dst *T) error {
	strictErr := json.Unmarshal(raw, dst)
	if strictErr == nil {
		return nil
	}
	var zero T
	*dst = zero

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return &MalformedRecordError{Entity: entity, Err: err}
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var bad []string
	for _, name := range names {
		one, err := json.Marshal(map[string]json.RawMessage{name: fields[name]})
		if err != nil {
			bad = append(bad, name)
			continue
		}
		var trial T
		if err := json.Unmarshal(one, &trial); err != nil {
			bad = append(bad, name)
			continue
		}
		_ = json.Unmarshal(one, dst)
	}
	return &MalformedRecordError{Entity: entity, Fields: bad, Err: strictErr}
}

// DecodeContracts decodes a page sequence. Malformed records are logged,
// counted and kept with whatever decoded.
func DecodeContracts(records []json.RawMessage, logger *log.Logger) ([]RawContract, int) {
	return decodeAll(records, DecodeContract, logger)
}

// DecodeAnnouncements decodes a page sequence like DecodeContracts.
func DecodeAnnouncements(records []json.RawMessage, logger *log.Logger) ([]RawAnnouncement, int) {
	return decodeAll(records, DecodeAnnouncement, logger)
}

func decodeAll[T any](records []json.RawMessage, decode func(json.RawMessage) (T, error), logger *log.Logger) ([]T, int) {
	if logger == nil {
		logger = log.Default(log.ComponentNormalizer)
	}
	out := make([]T, 0, len(records))
	malformed := 0
	for i, raw := range records {
		item, err := decode(raw)
		if err != nil {
			malformed++
			var mre *MalformedRecordError
			if errors.As(err, &mre) {
				logger.Warn("Malformed record decoded with defaults",
					log.FieldEntity, mre.Entity,
					"position", i,
					"fields", strings.Join(mre.Fields, ","),
					log.FieldError, mre.Err)
			}
		}
		out = append(out, item)
	}
	return out, malformed
}
