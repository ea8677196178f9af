// Package match derives situational metrics for a limited-overs chase from raw match state.
package match

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	// BallsPerOver is the number of legal deliveries in an over
	BallsPerOver = 6
	// InningsOvers is the length of an innings in a 20-over match
	InningsOvers = 20
	// InningsBalls is the number of legal deliveries in a full innings
	InningsBalls = InningsOvers * BallsPerOver
	// MaxWickets is the number of wickets a side can lose
	MaxWickets = 10
)

// MatchState is the raw state of a chase as supplied by the caller
type MatchState struct {
	Target            int     `json:"target" validate:"gte=1"`
	CurrentScore      int     `json:"current_score" validate:"gte=0"`
	Wickets           int     `json:"wickets" validate:"gte=0,lte=10"`
	OversCompleted    float64 `json:"overs_completed" validate:"gte=0,lte=20,tenths"`
	TopBatsmanPlaying bool    `json:"top_batsman_playing"`
	RecentPartnership int     `json:"recent_partnership" validate:"gte=0,lte=100"`
}

var validate = newStateValidator()

func newStateValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("tenths", validateTenths)
	return v
}

// validateTenths accepts values with at most one decimal place
func validateTenths(fl validator.FieldLevel) bool {
	d := decimal.NewFromFloat(fl.Field().Float())
	return d.Mul(decimal.NewFromInt(10)).IsInteger()
}

// Validate checks every field of the state against its allowed range.
// Compute does not require a valid state; surfaces that accept user input call Validate first.
func (s MatchState) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "tenths":
			msgs = append(msgs, fmt.Sprintf("%s must have at most one decimal place, got %v", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

// ballsBowled converts overs completed into whole legal balls.
// overs*6 is evaluated in decimal so 0.1 steps never produce float residue.
func (s MatchState) ballsBowled() int {
	return int(decimal.NewFromFloat(s.OversCompleted).
		Mul(decimal.NewFromInt(BallsPerOver)).
		Round(0).
		IntPart())
}
