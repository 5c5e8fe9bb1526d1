package domain

import (
	"fmt"
	"math"
	"time"
)

// Percent difference above which an offload is flagged for investigation.
const DiscrepancyThresholdPercent = 2.0

type OffloadingStatus string

const (
	OffloadingApproved           OffloadingStatus = "approved"
	OffloadingUnderInvestigation OffloadingStatus = "under_investigation"
)

type Discrepancy struct {
	Percent float64
	Flagged bool
}

// Status derives the offloading record status from the discrepancy.
func (d Discrepancy) Status() OffloadingStatus {
	if d.Flagged {
		return OffloadingUnderInvestigation
	}
	return OffloadingApproved
}

// ComputeDiscrepancy returns |delivered-loaded|/loaded as a percentage.
// Exactly DiscrepancyThresholdPercent is not flagged.
func ComputeDiscrepancy(loaded, delivered float64) (Discrepancy, error) {
	if !finite(loaded) || loaded <= 0 {
		return Discrepancy{}, fmt.Errorf("compute discrepancy: %w: loaded volume %v", ErrInvalidQuantity, loaded)
	}
	if !finite(delivered) || delivered < 0 {
		return Discrepancy{}, fmt.Errorf("compute discrepancy: %w: delivered volume %v", ErrInvalidQuantity, delivered)
	}

	pct := math.Abs((delivered-loaded)/loaded) * 100
	return Discrepancy{Percent: pct, Flagged: pct > DiscrepancyThresholdPercent}, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Measured outcome of transferring a delivery's fuel into a tank.
// Written once per delivery.
type OffloadingRecord struct {
	ID                 string           `json:"id"`
	DeliveryID         string           `json:"delivery_id"`
	OrderID            string           `json:"order_id"`
	TankID             string           `json:"tank_id"`
	LoadedVolume       float64          `json:"loaded_volume"`
	DeliveredVolume    float64          `json:"delivered_volume"`
	MeasuredBy         string           `json:"measured_by"`
	MeasuredByRole     string           `json:"measured_by_role"`
	DiscrepancyPercent float64          `json:"discrepancy_percent"`
	DiscrepancyFlagged bool             `json:"discrepancy_flagged"`
	Status             OffloadingStatus `json:"status"`
	RecordedAt         time.Time        `json:"recorded_at"`
}
