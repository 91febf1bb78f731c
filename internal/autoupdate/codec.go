package autoupdate

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
)

const (
	ApplyPath = "/apply"
	DataParam = "data"
)

// Payload JSON keys, in the order Encode writes them.
const (
	keyCandidateID       = "candidateId"
	keyInterviewID       = "interviewId"
	keyPrimaryProfile    = "primary_profile"
	keySecondaryProfiles = "secondary_profiles"
	keyOverallHireSignal = "overall_hire_signal"
	keyAxisScores        = "axis_scores"
	keyAxisNotes         = "axis_notes"
	keyTags              = "tags"
)

// Encode builds "<origin>/apply?data=<base64>" for p. Only present fields
// are serialized. The base64 text uses the standard, padded alphabet and is
// not query-escaped.
func Encode(origin string, p Payload) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	body, err := p.MarshalJSON()
	if err != nil {
		return "", err
	}
	data := base64.StdEncoding.EncodeToString(body)
	return strings.TrimRight(origin, "/") + ApplyPath + "?" + DataParam + "=" + data, nil
}

// MarshalJSON writes the canonical form of p: fixed key order, axis maps in
// canonical axis order, absent fields omitted.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, value any) error {
		b, err := marshalValue(value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := marshalValue(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}

	if err := write(keyCandidateID, p.CandidateID); err != nil {
		return nil, err
	}
	if v, ok := p.InterviewID.Get(); ok {
		if err := write(keyInterviewID, v); err != nil {
			return nil, err
		}
	}
	if v, ok := p.PrimaryProfile.Get(); ok {
		if err := write(keyPrimaryProfile, v); err != nil {
			return nil, err
		}
	}
	if v, ok := p.SecondaryProfiles.Get(); ok {
		if err := write(keySecondaryProfiles, nonNil(v)); err != nil {
			return nil, err
		}
	}
	if v, ok := p.OverallHireSignal.Get(); ok {
		if err := write(keyOverallHireSignal, string(v)); err != nil {
			return nil, err
		}
	}
	if v, ok := p.AxisScores.Get(); ok {
		if err := write(keyAxisScores, orderedAxes(v)); err != nil {
			return nil, err
		}
	}
	if v, ok := p.AxisNotes.Get(); ok {
		if err := write(keyAxisNotes, orderedAxes(v)); err != nil {
			return nil, err
		}
	}
	if v, ok := p.Tags.Get(); ok {
		if err := write(keyTags, nonNil(v)); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode parses an auto-update link. Any problem yields an
// apperror.ErrInvalidLink error and no payload.
func Decode(raw string) (Payload, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Payload{}, apperror.NewInvalidLink("not a URL", err)
	}
	if !u.IsAbs() {
		return Payload{}, apperror.NewInvalidLink("URL must be absolute", nil)
	}
	if !strings.Contains(u.Path, ApplyPath) {
		return Payload{}, apperror.NewInvalidLink("path does not contain /apply", nil)
	}

	data := u.Query().Get(DataParam)
	if data == "" {
		return Payload{}, apperror.NewInvalidLink("missing data parameter", nil)
	}

	body, err := decodeBase64(data)
	if err != nil {
		return Payload{}, apperror.NewInvalidLink("data is not base64", err)
	}

	return DecodeJSON(body)
}

// DecodeJSON validates the JSON body of a link.
func DecodeJSON(body []byte) (Payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Payload{}, apperror.NewInvalidLink("data is not a JSON object", err)
	}
	if fields == nil {
		return Payload{}, apperror.NewInvalidLink("data is not a JSON object", nil)
	}

	var p Payload
	var err error

	raw, ok := fields[keyCandidateID]
	if !ok {
		return Payload{}, apperror.NewInvalidLink("candidateId is required", nil)
	}
	if p.CandidateID, err = decodeString(raw); err != nil {
		return Payload{}, fieldError(keyCandidateID, err)
	}
	if p.CandidateID == "" {
		return Payload{}, apperror.NewInvalidLink("candidateId must not be empty", nil)
	}

	if raw, ok := fields[keyInterviewID]; ok {
		v, err := decodeString(raw)
		if err != nil {
			return Payload{}, fieldError(keyInterviewID, err)
		}
		p.InterviewID = Some(v)
	}

	if raw, ok := fields[keyPrimaryProfile]; ok {
		v, err := decodeString(raw)
		if err != nil {
			return Payload{}, fieldError(keyPrimaryProfile, err)
		}
		p.PrimaryProfile = Some(v)
	}

	if raw, ok := fields[keySecondaryProfiles]; ok {
		v, err := decodeStrings(raw)
		if err != nil {
			return Payload{}, fieldError(keySecondaryProfiles, err)
		}
		p.SecondaryProfiles = Some(v)
	}

	if raw, ok := fields[keyOverallHireSignal]; ok {
		v, err := decodeString(raw)
		if err != nil {
			return Payload{}, fieldError(keyOverallHireSignal, err)
		}
		signal := models.HireSignal(v)
		if !signal.Valid() {
			return Payload{}, fieldError(keyOverallHireSignal, fmt.Errorf("unknown value %q", v))
		}
		p.OverallHireSignal = Some(signal)
	}

	if raw, ok := fields[keyAxisScores]; ok {
		v, err := decodeAxisScores(raw)
		if err != nil {
			return Payload{}, fieldError(keyAxisScores, err)
		}
		p.AxisScores = Some(v)
	}

	if raw, ok := fields[keyAxisNotes]; ok {
		v, err := decodeAxisNotes(raw)
		if err != nil {
			return Payload{}, fieldError(keyAxisNotes, err)
		}
		p.AxisNotes = Some(v)
	}

	if raw, ok := fields[keyTags]; ok {
		v, err := decodeStrings(raw)
		if err != nil {
			return Payload{}, fieldError(keyTags, err)
		}
		p.Tags = Some(v)
	}

	return p, nil
}

func fieldError(key string, err error) error {
	return apperror.NewInvalidLink(fmt.Sprintf("invalid %s: %v", key, err), err)
}

// decodeBase64 accepts standard base64 with or without padding. Query
// decoding turns '+' into ' ', which is undone first.
func decodeBase64(data string) ([]byte, error) {
	data = strings.ReplaceAll(data, " ", "+")
	if b, err := base64.StdEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
}

func jsonKind(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func decodeString(raw json.RawMessage) (string, error) {
	if jsonKind(raw) != '"' {
		return "", fmt.Errorf("expected a string")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeStrings(raw json.RawMessage) ([]string, error) {
	if jsonKind(raw) != '[' {
		return nil, fmt.Errorf("expected an array of strings")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := decodeString(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeAxisObject(raw json.RawMessage) (map[models.Axis]json.RawMessage, error) {
	if jsonKind(raw) != '{' {
		return nil, fmt.Errorf("expected an object")
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	out := make(map[models.Axis]json.RawMessage, len(entries))
	for key, value := range entries {
		axis := models.Axis(key)
		if !axis.Valid() {
			return nil, fmt.Errorf("unknown axis %q", key)
		}
		out[axis] = value
	}
	return out, nil
}

func decodeAxisScores(raw json.RawMessage) (map[models.Axis]int, error) {
	entries, err := decodeAxisObject(raw)
	if err != nil {
		return nil, err
	}

	scores := make(map[models.Axis]int, len(entries))
	for axis, value := range entries {
		score, err := decodeScore(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", axis, err)
		}
		scores[axis] = score
	}
	return scores, nil
}

// decodeScore accepts JSON numbers with an integral value in [1,5]; 4 and
// 4.0 are the same score, 3.5 and "3" are rejected.
func decodeScore(raw json.RawMessage) (int, error) {
	kind := jsonKind(raw)
	if kind != '-' && (kind < '0' || kind > '9') {
		return 0, fmt.Errorf("expected a number")
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("score %s is not a whole number", n)
	}
	if f < models.MinScore || f > models.MaxScore {
		return 0, fmt.Errorf("score %s out of range 1-5", n)
	}
	return int(f), nil
}

func decodeAxisNotes(raw json.RawMessage) (map[models.Axis]string, error) {
	entries, err := decodeAxisObject(raw)
	if err != nil {
		return nil, err
	}

	notes := make(map[models.Axis]string, len(entries))
	for axis, value := range entries {
		note, err := decodeString(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", axis, err)
		}
		notes[axis] = note
	}
	return notes, nil
}

// axisEntries serializes an axis map in canonical axis order.
type axisEntries[V any] struct {
	keys   []models.Axis
	values map[models.Axis]V
}

func orderedAxes[V any](m map[models.Axis]V) axisEntries[V] {
	keys := make([]models.Axis, 0, len(m))
	for _, axis := range models.Axes {
		if _, ok := m[axis]; ok {
			keys = append(keys, axis)
		}
	}
	return axisEntries[V]{keys: keys, values: m}
}

func (e axisEntries[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, axis := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalValue(string(axis))
		if err != nil {
			return nil, err
		}
		v, err := marshalValue(e.values[axis])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalValue is json.Marshal without HTML escaping.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
