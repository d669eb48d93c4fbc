// ABOUTME: Parses FatSecret-style food descriptions into per-serving nutrition.
// ABOUTME: "Per 100g - Calories: 200kcal | Fat: 10.00g | Carbs: 20.00g | Protein: 5.00g".
package lookup

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/harperreed/fitness/internal/models"
)

// ErrUnparseable means a food description is missing a nutrition value.
var ErrUnparseable = errors.New("food description has no nutrition values")

var (
	caloriesRe = regexp.MustCompile(`Calories:\s*([0-9]*\.?[0-9]+)\s*kcal`)
	fatRe      = regexp.MustCompile(`Fat:\s*([0-9]*\.?[0-9]+)\s*g`)
	carbsRe    = regexp.MustCompile(`Carbs:\s*([0-9]*\.?[0-9]+)\s*g`)
	proteinRe  = regexp.MustCompile(`Protein:\s*([0-9]*\.?[0-9]+)\s*g`)
)

// ParseFoodDescription extracts calories, fat, carbs and protein per serving.
// All four values must be present.
func ParseFoodDescription(desc string) (models.Serving, error) {
	fields := []struct {
		name string
		re   *regexp.Regexp
		dst  *float64
	}{
		{"calories", caloriesRe, nil},
		{"fat", fatRe, nil},
		{"carbs", carbsRe, nil},
		{"protein", proteinRe, nil},
	}
	var s models.Serving
	fields[0].dst = &s.Calories
	fields[1].dst = &s.Fat
	fields[2].dst = &s.Carbs
	fields[3].dst = &s.Protein

	for _, f := range fields {
		m := f.re.FindStringSubmatch(desc)
		if m == nil {
			return models.Serving{}, fmt.Errorf("%w: missing %s in %q", ErrUnparseable, f.name, desc)
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return models.Serving{}, fmt.Errorf("parse %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return s, nil
}

// Descriptions is a nutrition source that reads values out of the food description.
type Descriptions struct{}

// Nutrition parses description; foodID is unused.
func (Descriptions) Nutrition(_ context.Context, _ string, description string) (models.Serving, error) {
	return ParseFoodDescription(description)
}
