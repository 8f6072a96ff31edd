// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Lesson    string
	Recording string
	Seed      int64
	Noise     float64
	Rate      float64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lesson      string
	Since       *time.Time
	Last        int
	CurveWindow int
	Shapes      string
}

// SessionRecord captures a completed practice session.
type SessionRecord struct {
	ID             string
	Lesson         string
	StartedAt      time.Time
	EndedAt        time.Time
	StepsCompleted int
	StepsTotal     int
	Attempts       int
	AvgAccuracy    float64
	BestAccuracy   float64
	DurationMs     int64
}

// StepResult stores per-step results for a session.
type StepResult struct {
	StepIndex    int
	StepName     string
	ShapeKind    string
	Attempts     int
	BestAccuracy float64
	Completed    bool
	TimeSpentMs  int64
}

// AttemptRecord stores the metric breakdown of one scored stroke.
type AttemptRecord struct {
	StepIndex           int
	Attempt             int
	Accuracy            float64
	PathAccuracy        float64
	TemporalAccuracy    float64
	VelocityConsistency float64
	PressureStability   float64
	Correct             bool
}

// ShapeAggregate aggregates attempt outcomes per guide shape kind.
type ShapeAggregate struct {
	ShapeKind    string
	Attempts     int
	Correct      int
	AvgAccuracy  float64
	BestAccuracy float64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID      string
	Lesson         string
	EndedAt        time.Time
	StepsCompleted int
	StepsTotal     int
	Attempts       int
	AvgAccuracy    float64
	BestAccuracy   float64
	DurationMs     int64
}
