package seed

import "time"

// Config holds configuration for the seed run
type Config struct {
	BaseURL           string        // Base URL of the service
	Sellers           int           // Number of sellers to generate
	DealsPerSeller    int           // Number of deals per seller
	MeetingsPerSeller int           // Number of meetings per seller
	Workers           int           // Number of concurrent workers
	Timeout           time.Duration // HTTP request timeout
	Verbose           bool          // Enable verbose logging
}

// DealRecord mirrors the wire schema for POST /deals
type DealRecord struct {
	RecordID            string  `json:"record_id"`
	DealID              string  `json:"deal_id"`
	SellerID            string  `json:"seller_id"`
	SellerName          string  `json:"seller_name"`
	Stage               string  `json:"stage"`
	EstimatedValue      float64 `json:"estimated_value"`
	Probability         int     `json:"probability"`
	ForecastProbability *int    `json:"forecast_probability,omitempty"`
	Outcome             *int    `json:"outcome,omitempty"`
	UpdatedAt           string  `json:"updated_at"`
}

// MeetingRecord mirrors the wire schema for POST /meetings
type MeetingRecord struct {
	RecordID    string `json:"record_id"`
	MeetingID   string `json:"meeting_id"`
	SellerID    string `json:"seller_id"`
	CompanySize int    `json:"company_size"`
	Status      string `json:"status"`
	At          string `json:"at"`
}

// AckResponse represents the response from record submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// ForecastSummary mirrors the GET /forecast response
type ForecastSummary struct {
	TotalPipeline    float64          `json:"total_pipeline"`
	AdjustedForecast float64          `json:"adjusted_forecast"`
	Sellers          []SellerForecast `json:"sellers"`
	ActiveCount      int              `json:"active_count"`
}

// SellerForecast is one row of the forecast response
type SellerForecast struct {
	SellerID string  `json:"seller_id"`
	Name     string  `json:"name"`
	Pipeline float64 `json:"pipeline"`
	Adjusted float64 `json:"adjusted"`
	Score    float64 `json:"reliability"`
}

// RaceRow mirrors one GET /race response row
type RaceRow struct {
	Item struct {
		SellerID string  `json:"seller_id"`
		Name     string  `json:"name"`
		Value    float64 `json:"value"`
	} `json:"item"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"`
	Medal string  `json:"medal,omitempty"`
}

// Stats holds seed run statistics
type Stats struct {
	RecordsGenerated  int
	RecordsSubmitted  int
	RecordsSuccessful int
	RecordsDuplicate  int
	RecordsFailed     int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
