// Package catalog holds the compiled-in instrument declarations.
package catalog

import (
	"fmt"
	"sync"

	"github.com/okian/psyscale/internal/domain/instrument"
)

var (
	once     sync.Once
	registry *instrument.Registry
)

// Default returns the process-wide registry built from the compiled-in
// declarations. It is constructed once; concurrent callers share the result.
// An invalid declaration set is a build defect and panics.
func Default() *instrument.Registry {
	once.Do(func() {
		r, err := instrument.NewRegistry(Declarations()...)
		if err != nil {
			panic(fmt.Sprintf("catalog: %v", err))
		}
		registry = r
	})
	return registry
}

const seekHelp = "Scores in this range warrant prompt contact with a mental health professional."

// Declarations returns a fresh copy of the compiled-in instrument table.
func Declarations() []instrument.Instrument {
	zung := &instrument.Rescale{Factor: 1.25}

	return []instrument.Instrument{
		{
			ID:      1,
			Path:    "sds",
			Name:    "Self-Rating Depression Scale",
			Warning: "The standard score is the raw total multiplied by 1.25.",
			RawMin:  20,
			RawMax:  80,
			Rescale: zung,
			Buckets: []instrument.Bucket{
				{Low: 25, High: 53, Severity: instrument.Normal,
					Advice:  "No depressive symptoms beyond the normal range.",
					Symptom: "Mood within the typical range."},
				{Low: 53, High: 63, Severity: instrument.Mild,
					Advice:  "Keep regular sleep and exercise and talk with people you trust.",
					Symptom: "Occasional low mood, reduced interest."},
				{Low: 63, High: 73, Severity: instrument.Moderate,
					Advice:  "Consider a consultation with a counsellor or physician.",
					Symptom: "Persistent low mood affecting daily activity."},
				{Low: 73, High: 100, Severity: instrument.Major,
					Advice:          "Seek a clinical assessment.",
					Symptom:         "Marked low mood, hopelessness, loss of energy.",
					CriticalWarning: seekHelp},
			},
		},
		{
			ID:      2,
			Path:    "sas",
			Name:    "Self-Rating Anxiety Scale",
			Warning: "The standard score is the raw total multiplied by 1.25.",
			RawMin:  20,
			RawMax:  80,
			Rescale: zung,
			Buckets: []instrument.Bucket{
				{Low: 25, High: 50, Severity: instrument.Normal,
					Advice:  "No anxiety beyond the normal range.",
					Symptom: "Ordinary day-to-day tension."},
				{Low: 50, High: 60, Severity: instrument.Mild,
					Advice:  "Relaxation practice and regular routines usually help.",
					Symptom: "Restlessness, occasional worry."},
				{Low: 60, High: 70, Severity: instrument.Moderate,
					Advice:  "Consider a consultation with a counsellor or physician.",
					Symptom: "Frequent worry, tension, disturbed sleep."},
				{Low: 70, High: 100, Severity: instrument.Major,
					Advice:          "Seek a clinical assessment.",
					Symptom:         "Intense anxiety with physical symptoms.",
					CriticalWarning: seekHelp},
			},
		},
		{
			ID:      3,
			Path:    "phq9",
			Name:    "Patient Health Questionnaire-9",
			Warning: "Any positive answer to item 9 needs follow-up regardless of the total.",
			RawMin:  0,
			RawMax:  27,
			Buckets: []instrument.Bucket{
				{Low: 0, High: 5, Severity: instrument.Normal,
					Advice:  "No action needed.",
					Symptom: "Minimal depressive symptoms."},
				{Low: 5, High: 10, Severity: instrument.Mild,
					Advice:  "Watchful waiting; repeat the questionnaire in two weeks.",
					Symptom: "Mild depressive symptoms."},
				{Low: 10, High: 15, Severity: instrument.Moderate,
					Advice:  "Discuss a treatment plan with a professional.",
					Symptom: "Moderate depressive symptoms."},
				{Low: 15, High: 27, Severity: instrument.Major,
					Advice:          "Active treatment is recommended.",
					Symptom:         "Moderately severe to severe depressive symptoms.",
					CriticalWarning: seekHelp},
			},
		},
		{
			ID:     4,
			Path:   "gad7",
			Name:   "Generalized Anxiety Disorder-7",
			RawMin: 0,
			RawMax: 21,
			Buckets: []instrument.Bucket{
				{Low: 0, High: 5, Severity: instrument.Normal,
					Advice:  "No action needed.",
					Symptom: "Minimal anxiety."},
				{Low: 5, High: 10, Severity: instrument.Mild,
					Advice:  "Monitor and repeat the questionnaire later.",
					Symptom: "Mild anxiety."},
				{Low: 10, High: 15, Severity: instrument.Moderate,
					Advice:  "Further evaluation is recommended.",
					Symptom: "Moderate anxiety."},
				{Low: 15, High: 21, Severity: instrument.Major,
					Advice:          "Active treatment is recommended.",
					Symptom:         "Severe anxiety.",
					CriticalWarning: seekHelp},
			},
		},
		{
			ID:      5,
			Path:    "epds",
			Name:    "Edinburgh Postnatal Depression Scale",
			Warning: "Any positive answer to item 10 needs immediate follow-up.",
			RawMin:  0,
			RawMax:  30,
			Buckets: []instrument.Bucket{
				{Low: 0, High: 10, Severity: instrument.Normal,
					Advice:  "No action needed.",
					Symptom: "Depression unlikely."},
				{Low: 10, High: 13, Severity: instrument.Mild,
					Advice:  "Repeat the scale in two to four weeks.",
					Symptom: "Possible depression."},
				{Low: 13, High: 20, Severity: instrument.Moderate,
					Advice:  "Refer for clinical assessment.",
					Symptom: "Probable depression."},
				{Low: 20, High: 30, Severity: instrument.Major,
					Advice:          "Urgent clinical assessment.",
					Symptom:         "Depression highly likely.",
					CriticalWarning: seekHelp},
			},
		},
		{
			ID:     6,
			Path:   "pss10",
			Name:   "Perceived Stress Scale",
			RawMin: 0,
			RawMax: 40,
			Buckets: []instrument.Bucket{
				{Low: 0, High: 14, Severity: instrument.Normal,
					Advice:  "Stress is within a manageable range.",
					Symptom: "Low perceived stress."},
				{Low: 14, High: 27, Severity: instrument.Moderate,
					Advice:  "Look at workload, rest and support.",
					Symptom: "Moderate perceived stress."},
				{Low: 27, High: 40, Severity: instrument.Major,
					Advice:  "Consider professional support for stress management.",
					Symptom: "High perceived stress."},
			},
		},
		{
			ID:     7,
			Path:   "k10",
			Name:   "Kessler Psychological Distress Scale",
			RawMin: 10,
			RawMax: 50,
			Buckets: []instrument.Bucket{
				{Low: 10, High: 16, Severity: instrument.Normal,
					Advice:  "No action needed.",
					Symptom: "Likely to be well."},
				{Low: 16, High: 22, Severity: instrument.Mild,
					Advice:  "Self-care and monitoring.",
					Symptom: "Likely mild distress."},
				{Low: 22, High: 30, Severity: instrument.Moderate,
					Advice:  "Consider talking to a professional.",
					Symptom: "Likely moderate distress."},
				{Low: 30, High: 50, Severity: instrument.Major,
					Advice:          "Seek a clinical assessment.",
					Symptom:         "Likely severe distress.",
					CriticalWarning: seekHelp},
			},
		},
	}
}
