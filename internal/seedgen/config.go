package seedgen

import "time"

// Config holds configuration for one seeding run.
type Config struct {
	BaseURL         string        // Base URL of the service
	NumStudents     int           // Number of synthetic students
	NumCompetitions int           // Number of synthetic competitions
	Seed            int64         // RNG seed; same seed, same population
	Workers         int           // Number of concurrent submitters
	Timeout         time.Duration // HTTP request timeout
	Verbose         bool          // Enable verbose logging
	LogFile         string        // Log file for run output
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated  int
	EventsSubmitted  int
	EventsSuccessful int
	EventsDuplicate  int
	EventsFailed     int
	ViewsVerified    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// AckResponse mirrors the ingestion acknowledgement body.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}
