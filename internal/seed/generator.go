package seed

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/armandov/sellerpulse/pkg/logger"
	"github.com/google/uuid"
)

// Stage vocabulary matching the service defaults.
const (
	stageProspecting = "Prospección"
	stageNegotiation = "Negociación"
	stageWon         = "Cerrado Ganado"
	stageLost        = "Cerrado Perdido"
)

// Meeting statuses matching the service defaults.
const (
	meetingHeld      = "held"
	meetingPostponed = "postponed"
)

// Seller calibration profiles.
const (
	profileCalibrated = 0 // frozen forecasts track outcomes closely
	profileOptimist   = 1 // high forecasts regardless of outcome
	profilePessimist  = 2 // low forecasts regardless of outcome
	profileCount      = 3
)

const (
	randomFloatDivisor = 1_000_000
	maxDealValue       = 200_000
	minDealValue       = 5_000
	maxCompanySize     = 5
)

var sellerNames = []string{
	"Lucía Fernández", "Marco Ríos", "Valentina Cruz", "Andrés Molina",
	"Camila Torres", "Javier Ortega", "Sofía Herrera", "Diego Paredes",
	"Mariana Solís", "Tomás Aguilar",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max).
func getRandomInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// seller is one synthetic seller with a calibration profile.
type seller struct {
	id      string
	name    string
	profile int
}

// generateRecords builds the full synthetic dataset.
func generateRecords(ctx context.Context, config *Config, stats *Stats) ([]DealRecord, []MeetingRecord) {
	logger.Get().Info(ctx, "generating synthetic CRM records",
		logger.Int("sellers", config.Sellers),
		logger.Int("dealsPerSeller", config.DealsPerSeller),
		logger.Int("meetingsPerSeller", config.MeetingsPerSeller))

	sellers := make([]seller, config.Sellers)
	for i := range sellers {
		sellers[i] = seller{
			id:      uuid.New().String(),
			name:    sellerNames[i%len(sellerNames)],
			profile: i % profileCount,
		}
	}

	deals := make([]DealRecord, 0, config.Sellers*config.DealsPerSeller)
	meetings := make([]MeetingRecord, 0, config.Sellers*config.MeetingsPerSeller)

	for _, s := range sellers {
		for i := 0; i < config.DealsPerSeller; i++ {
			deals = append(deals, generateDeal(s, i))
		}
		for i := 0; i < config.MeetingsPerSeller; i++ {
			meetings = append(meetings, generateMeeting(s))
		}
	}

	stats.RecordsGenerated = len(deals) + len(meetings)
	logger.Get().Info(ctx, "generated records",
		logger.Int("deals", len(deals)),
		logger.Int("meetings", len(meetings)))
	return deals, meetings
}

// generateDeal creates one deal. Roughly half of each seller's deals are
// closed so the reliability scorer has history to chew on.
func generateDeal(s seller, index int) DealRecord {
	dealID := uuid.New().String()
	value := minDealValue + getRandomFloat()*(maxDealValue-minDealValue)
	now := time.Now().UTC().Format(time.RFC3339)

	record := DealRecord{
		RecordID:   dealID,
		DealID:     dealID,
		SellerID:   s.id,
		SellerName: s.name,
		UpdatedAt:  now,
	}

	if index%2 == 0 {
		// Closed deal with a frozen forecast and an outcome.
		won := getRandomFloat() < 0.5
		outcome := 0
		record.Stage = stageLost
		if won {
			outcome = 1
			record.Stage = stageWon
		}
		frozen := frozenForecast(s.profile, won)
		record.ForecastProbability = &frozen
		record.Outcome = &outcome
		record.Probability = frozen
		record.EstimatedValue = value
		return record
	}

	// Open deal, alternating between prospecting and negotiation.
	if index%4 == 1 {
		record.Stage = stageProspecting
		record.Probability = 10 + getRandomInt(20)
	} else {
		record.Stage = stageNegotiation
		record.Probability = 30 + getRandomInt(60)
	}
	record.EstimatedValue = value
	return record
}

// frozenForecast picks a frozen probability per the seller's profile.
func frozenForecast(profile int, won bool) int {
	switch profile {
	case profileCalibrated:
		if won {
			return 70 + getRandomInt(25)
		}
		return 5 + getRandomInt(25)
	case profileOptimist:
		return 75 + getRandomInt(25)
	default: // profilePessimist
		return getRandomInt(25)
	}
}

// generateMeeting creates one meeting; postpones grow with company size so
// the bucketed analysis has a visible gradient.
func generateMeeting(s seller) MeetingRecord {
	meetingID := uuid.New().String()
	size := 1 + getRandomInt(maxCompanySize)

	status := meetingHeld
	postponeChance := float64(size) / 10 // 10% per size bucket
	if getRandomFloat() < postponeChance {
		status = meetingPostponed
	}

	return MeetingRecord{
		RecordID:    meetingID,
		MeetingID:   meetingID,
		SellerID:    s.id,
		CompanySize: size,
		Status:      status,
		At:          time.Now().UTC().Format(time.RFC3339),
	}
}
