package workout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ParsePartial decodes one stage's sanitized output and validates its shape.
// Day counts are left to Merge.
func ParsePartial(text string) (PartialPlan, error) {
	const op = "workout.parse_partial"
	var p PartialPlan
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	if err := dec.Decode(&p); err != nil {
		return PartialPlan{}, NewError(KindMalformedResponse, op, "decode partial plan", err)
	}
	if err := validatePartial(&p); err != nil {
		return PartialPlan{}, NewError(KindMalformedResponse, op, err.Error(), err)
	}
	return p, nil
}

func validatePartial(p *PartialPlan) error {
	if p.StartDate = strings.TrimSpace(p.StartDate); p.StartDate != "" {
		if _, err := time.Parse(DateLayout, p.StartDate); err != nil {
			return fmt.Errorf("start_date %q is not YYYY-MM-DD", p.StartDate)
		}
	}
	if len(p.Plan) == 0 {
		return fmt.Errorf("plan has no days")
	}
	for i := range p.Plan {
		d := &p.Plan[i]
		if d.Day < 1 {
			return fmt.Errorf("plan[%d]: day must be >= 1, got %d", i, d.Day)
		}
		d.Date = strings.TrimSpace(d.Date)
		if _, err := time.Parse(DateLayout, d.Date); err != nil {
			return fmt.Errorf("plan[%d]: date %q is not YYYY-MM-DD", i, d.Date)
		}
		switch kind := DayKind(strings.ToLower(strings.TrimSpace(string(d.Kind)))); kind {
		case DayWorkout, DayRest:
			d.Kind = kind
		default:
			return fmt.Errorf("plan[%d]: unknown day type %q", i, d.Kind)
		}
		if raw := bytes.TrimSpace(d.Workout); len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			d.Workout = nil
		}
	}
	return nil
}
