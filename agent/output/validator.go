package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	contractx "github.com/tanpawarit/careermate/agent/contract"
)

const DefaultMaxRetries = 2

// Violation describes the first schema violation found in a candidate.
type Violation struct {
	Schema string
	Field  string
	Reason string
}

func (v *Violation) Error() string {
	if v.Field == "" {
		return fmt.Sprintf("%s: schema=%s %s", contractx.ErrValidation, v.Schema, v.Reason)
	}
	return fmt.Sprintf("%s: schema=%s field=%s %s", contractx.ErrValidation, v.Schema, v.Field, v.Reason)
}

func (v *Violation) Unwrap() error {
	return contractx.ErrValidation
}

// Correction is the message sent back to the engine to ask for a fixed answer.
func (v *Violation) Correction() string {
	subject := "The response"
	if v.Field != "" {
		subject = fmt.Sprintf("Field %q", v.Field)
	}
	return fmt.Sprintf(
		"Your previous answer does not match the %s schema. %s %s. Reply again with only the corrected JSON.",
		v.Schema, subject, v.Reason,
	)
}

type Validator struct {
	maxRetries int
}

// NewValidator returns a validator allowing maxRetries corrective retries.
// A negative value selects DefaultMaxRetries.
func NewValidator(maxRetries int) *Validator {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Validator{maxRetries: maxRetries}
}

func (v *Validator) MaxRetries() int {
	return v.maxRetries
}

// Validate checks candidate against s and wraps it into the matching result
// variant. Fields not declared by s are dropped.
func (v *Validator) Validate(candidate string, s Schema) (contractx.StructuredResult, error) {
	if s.Shape == ShapeText {
		text := strings.TrimSpace(candidate)
		if text == "" {
			return contractx.StructuredResult{}, &Violation{Schema: s.Name, Field: "text", Reason: "must not be empty"}
		}
		return contractx.NewPlainTextResult(text), nil
	}

	raw, err := decodeCandidate(candidate)
	if err != nil {
		return contractx.StructuredResult{}, &Violation{Schema: s.Name, Reason: "is not valid JSON: " + err.Error()}
	}

	switch val := raw.(type) {
	case map[string]any:
		if s.Shape == ShapeList {
			items, ok := unwrapList(val)
			if !ok {
				return contractx.StructuredResult{}, &Violation{Schema: s.Name, Reason: "must be a JSON array"}
			}
			return v.validateList(items, s)
		}
		clean, violation := cleanObject(val, s, "")
		if violation != nil {
			return contractx.StructuredResult{}, violation
		}
		return wrapObject(s.Variant, clean)
	case []any:
		if s.Shape == ShapeObject {
			return contractx.StructuredResult{}, &Violation{Schema: s.Name, Reason: "must be a JSON object"}
		}
		return v.validateList(val, s)
	default:
		return contractx.StructuredResult{}, &Violation{Schema: s.Name, Reason: fmt.Sprintf("must be JSON %s, got %T", s.Shape, raw)}
	}
}

func (v *Validator) validateList(items []any, s Schema) (contractx.StructuredResult, error) {
	cleaned := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return contractx.StructuredResult{}, &Violation{
				Schema: s.Name,
				Field:  fmt.Sprintf("[%d]", i),
				Reason: "must be a JSON object",
			}
		}
		clean, violation := cleanObject(obj, s, fmt.Sprintf("[%d].", i))
		if violation != nil {
			return contractx.StructuredResult{}, violation
		}
		cleaned = append(cleaned, clean)
	}
	return wrapList(s.ListVariant, cleaned)
}

func decodeCandidate(candidate string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(stripCodeFence(candidate)))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return raw, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func unwrapList(obj map[string]any) ([]any, bool) {
	if len(obj) != 1 {
		return nil, false
	}
	items, ok := obj["courses"].([]any)
	return items, ok
}

func cleanObject(obj map[string]any, s Schema, path string) (map[string]any, *Violation) {
	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		val, present := obj[f.Name]
		fail := func(reason string) *Violation {
			return &Violation{Schema: s.Name, Field: path + f.Name, Reason: reason}
		}

		if f.Kind == KindOptionalString {
			if !present || val == nil {
				continue
			}
			str, ok := val.(string)
			if !ok {
				return nil, fail("must be a string or null")
			}
			out[f.Name] = str
			continue
		}

		if !present || val == nil {
			return nil, fail("is required")
		}

		switch f.Kind {
		case KindString:
			str, ok := val.(string)
			if !ok {
				return nil, fail(fmt.Sprintf("must be a string, got %s", jsonType(val)))
			}
			out[f.Name] = str
		case KindStringList:
			list, ok := val.([]any)
			if !ok {
				return nil, fail(fmt.Sprintf("must be an array of strings, got %s", jsonType(val)))
			}
			strs := make([]string, 0, len(list))
			for i, item := range list {
				str, ok := item.(string)
				if !ok {
					return nil, fail(fmt.Sprintf("item %d must be a string, got %s", i, jsonType(item)))
				}
				strs = append(strs, str)
			}
			out[f.Name] = strs
		case KindInteger:
			n, ok := toInteger(val)
			if !ok {
				return nil, fail(fmt.Sprintf("must be an integer, got %v", val))
			}
			if n < 0 {
				return nil, fail(fmt.Sprintf("must not be negative, got %d", n))
			}
			out[f.Name] = n
		case KindEnum:
			str, ok := val.(string)
			if !ok {
				return nil, fail(fmt.Sprintf("must be one of %s, got %s", strings.Join(f.Enum, ", "), jsonType(val)))
			}
			canonical, ok := matchEnum(str, f.Enum)
			if !ok {
				return nil, fail(fmt.Sprintf("must be one of %s, got %q", strings.Join(f.Enum, ", "), str))
			}
			out[f.Name] = canonical
		default:
			return nil, fail(fmt.Sprintf("has unsupported kind %q", f.Kind))
		}
	}
	return out, nil
}

func toInteger(val any) (int64, bool) {
	num, ok := val.(json.Number)
	if !ok {
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		return n, true
	}
	// Values outside the int64 range would wrap on conversion.
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func matchEnum(s string, allowed []string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return a, true
		}
	}
	return "", false
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func wrapObject(kind contractx.ResultKind, clean map[string]any) (contractx.StructuredResult, error) {
	switch kind {
	case contractx.ResultSkillGap:
		var rec contractx.SkillGap
		if err := remarshal(clean, &rec); err != nil {
			return contractx.StructuredResult{}, err
		}
		return contractx.NewSkillGapResult(rec), nil
	case contractx.ResultJobListing:
		var rec contractx.JobListing
		if err := remarshal(clean, &rec); err != nil {
			return contractx.StructuredResult{}, err
		}
		return contractx.NewJobListingResult(rec), nil
	case contractx.ResultCourseRecommendation:
		var rec contractx.CourseRecommendation
		if err := remarshal(clean, &rec); err != nil {
			return contractx.StructuredResult{}, err
		}
		return contractx.NewCourseResult(rec), nil
	default:
		return contractx.StructuredResult{}, fmt.Errorf("%w: no object variant for kind=%q", contractx.ErrValidation, kind)
	}
}

func wrapList(kind contractx.ResultKind, clean []map[string]any) (contractx.StructuredResult, error) {
	if kind != contractx.ResultCourseRecommendationList {
		return contractx.StructuredResult{}, fmt.Errorf("%w: no list variant for kind=%q", contractx.ErrValidation, kind)
	}
	recs := make([]contractx.CourseRecommendation, 0, len(clean))
	if err := remarshal(clean, &recs); err != nil {
		return contractx.StructuredResult{}, err
	}
	return contractx.NewCourseListResult(recs), nil
}

func remarshal(in any, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: encode cleaned candidate: %v", contractx.ErrValidation, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decode cleaned candidate: %v", contractx.ErrValidation, err)
	}
	return nil
}
