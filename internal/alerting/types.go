// Package alerting evaluates inspection submissions against score
// thresholds and manages the resulting alert queue.
package alerting

import (
	"math"
	"slices"
	"strings"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/entities"
)

// Alert is a persisted threshold alert.
type Alert = entities.Alert

// ThresholdSetting is a persisted threshold for one scope.
type ThresholdSetting = entities.ThresholdSetting

// ScopeGlobal applies to every form type without its own threshold.
const ScopeGlobal = entities.ScopeGlobal

// FormType identifies the facility category of an inspection form.
type FormType string

// Known form types.
const (
	FormFoodEstablishment FormType = "food_establishment"
	FormResidential       FormType = "residential"
	FormBurial            FormType = "burial"
	FormSwimmingPool      FormType = "swimming_pool"
	FormBarbershop        FormType = "barbershop"
	FormSmallHotel        FormType = "small_hotel"
	FormSpiritLicence     FormType = "spirit_licence"
	FormInstitutional     FormType = "institutional"
	FormMeatProcessing    FormType = "meat_processing"
)

var formTypeLabels = map[FormType]string{
	FormFoodEstablishment: "Food Establishment",
	FormResidential:       "Residential",
	FormBurial:            "Burial Site",
	FormSwimmingPool:      "Swimming Pool",
	FormBarbershop:        "Barbershop",
	FormSmallHotel:        "Small Hotel",
	FormSpiritLicence:     "Spirit Licence Premises",
	FormInstitutional:     "Institutional",
	FormMeatProcessing:    "Meat Processing",
}

// FormTypes returns every known form type in stable order.
func FormTypes() []FormType {
	types := make([]FormType, 0, len(formTypeLabels))
	for ft := range formTypeLabels {
		types = append(types, ft)
	}
	slices.Sort(types)
	return types
}

// Valid reports whether ft is a known form type.
func (ft FormType) Valid() bool {
	_, ok := formTypeLabels[ft]
	return ok
}

// Label returns the human readable name of ft.
func (ft FormType) Label() string {
	if label, ok := formTypeLabels[ft]; ok {
		return label
	}
	return string(ft)
}

// ParseFormType normalizes s and validates it. Hyphens and spaces are
// accepted in place of underscores.
func ParseFormType(s string) (FormType, bool) {
	normalized := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	ft := FormType(normalized)
	return ft, ft.Valid()
}

// validScope reports whether scope can hold a threshold.
func validScope(scope string) bool {
	return scope == ScopeGlobal || FormType(scope).Valid()
}

// StatusFilter selects alerts by acknowledgment state.
type StatusFilter string

// Status filters accepted by QueryService.List.
const (
	StatusAll            StatusFilter = "all"
	StatusUnacknowledged StatusFilter = "unacknowledged"
	StatusAcknowledged   StatusFilter = "acknowledged"
)

// FormTypeAll matches every form type in list filters.
const FormTypeAll = "all"

// Submission is the event passed by a submission handler after the
// inspection record has been saved.
type Submission struct {
	InspectionID  int64   `json:"inspection_id"`
	InspectorName string  `json:"inspector_name"`
	FormType      string  `json:"form_type"`
	Score         float64 `json:"score"`
}

func (s Submission) validate() error {
	switch {
	case s.InspectionID <= 0:
		return invalidSubmission("inspection_id must be positive")
	case !FormType(s.FormType).Valid():
		return invalidSubmission("unknown form_type " + s.FormType)
	case math.IsNaN(s.Score) || math.IsInf(s.Score, 0):
		return invalidSubmission("score must be a finite number")
	}
	return nil
}

// Outcome describes what an evaluation did.
type Outcome string

// Evaluation outcomes.
const (
	OutcomeCreated        Outcome = "created"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeAboveThreshold Outcome = "above_threshold"
	OutcomeNoThreshold    Outcome = "no_threshold"
	OutcomeFailOpen       Outcome = "fail_open"
)
