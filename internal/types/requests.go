package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	Ingredients []string `json:"ingredients"`
	Diet        string   `json:"diet"`
}

// SaveRecipeRequest is the body of POST /api/save-recipe
type SaveRecipeRequest struct {
	User   string      `json:"user"`
	Recipe RecipeInput `json:"recipe"`
}

// RecipeInput is a recipe as submitted by the browser. Field types are cast
// the way a document store would cast them rather than rejected outright.
type RecipeInput struct {
	Title    Text     `json:"title"`
	PrepTime Text     `json:"prep_time"`
	Servings Servings `json:"servings"`
	Steps    Steps    `json:"steps"`
}

// Text accepts a JSON string, number or boolean
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*t = Text(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*t = Text(num.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*t = Text(strconv.FormatBool(b))
		return nil
	}

	return fmt.Errorf("expected text, got %s", data)
}

// Servings can handle both string and number values
type Servings int

func (s *Servings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		return s.set(num)
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		str = strings.TrimSpace(str)
		if str == "" {
			*s = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("servings %q is not a number", str)
		}
		return s.set(parsed)
	}

	return fmt.Errorf("servings must be a number")
}

// MaxServings bounds servings read from any source
const MaxServings = math.MaxInt32

func (s *Servings) set(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("servings must be a non-negative number")
	}
	if v > MaxServings {
		return fmt.Errorf("servings must not exceed %d", MaxServings)
	}
	if v != math.Trunc(v) {
		return fmt.Errorf("servings must be a whole number")
	}
	*s = Servings(int(v))
	return nil
}

// Steps accepts a list of strings or a single string
type Steps []string

func (s *Steps) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Steps{}
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = Steps{single}
		return nil
	}

	var items []Text
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("steps must be a list of strings")
	}
	out := make(Steps, 0, len(items))
	for _, item := range items {
		out = append(out, string(item))
	}
	*s = out
	return nil
}
