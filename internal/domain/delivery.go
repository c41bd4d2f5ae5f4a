package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultWeightKg       = 1.0
	DefaultServiceMinutes = 5
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Parse a priority label. Matching is case-insensitive and an empty label
// means medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	default:
		return "", fmt.Errorf("parse priority: unknown priority %q", s)
	}
}

type PackageSize string

const (
	SizeSmall  PackageSize = "small"
	SizeMedium PackageSize = "medium"
	SizeLarge  PackageSize = "large"
)

func ParsePackageSize(s string) (PackageSize, error) {
	switch ps := PackageSize(strings.ToLower(strings.TrimSpace(s))); ps {
	case "":
		return SizeMedium, nil
	case SizeSmall, SizeMedium, SizeLarge:
		return ps, nil
	default:
		return "", fmt.Errorf("parse package size: unknown size %q", s)
	}
}

// Minutes since local midnight.
type ClockTime int

// Parse a wall-clock time in "15:04" form.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Delivery time window in local wall-clock minutes. Start and End are inclusive.
type TimeWindow struct {
	Start ClockTime
	End   ClockTime
}

// Report whether a minute-of-day value lies inside the window.
func (w TimeWindow) Contains(minute float64) bool {
	return minute >= float64(w.Start) && minute <= float64(w.End)
}

// A single destination to be visited.
// Location and NormalizedAddress are populated once by geocoding and are not
// mutated afterwards; use Resolved to obtain a resolved copy.
type DeliveryRequest struct {
	ID                string
	Address           string
	Location          *Coordinates
	NormalizedAddress string
	CustomerName      string
	Phone             string
	Notes             string
	Priority          Priority
	Window            *TimeWindow
	WeightKg          float64
	Size              PackageSize
	CashToCollect     float64
	ServiceMinutes    float64
}

// Return a copy with unset optional fields replaced by their defaults.
func (r DeliveryRequest) WithDefaults() DeliveryRequest {
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.Size == "" {
		r.Size = SizeMedium
	}
	if r.WeightKg <= 0 {
		r.WeightKg = DefaultWeightKg
	}
	if r.ServiceMinutes <= 0 {
		r.ServiceMinutes = DefaultServiceMinutes
	}
	if r.CashToCollect < 0 {
		r.CashToCollect = 0
	}
	return r
}

// Return a copy carrying the resolved coordinate and normalized address.
func (r DeliveryRequest) Resolved(loc Coordinates, normalized string) DeliveryRequest {
	r.Location = &loc
	if strings.TrimSpace(normalized) == "" {
		normalized = r.Address
	}
	r.NormalizedAddress = normalized
	return r
}

// Key used to detect duplicate destinations.
func (r DeliveryRequest) DedupeKey() string {
	return strings.ToLower(strings.TrimSpace(r.Address))
}

// Display label for logs and failure reports.
func (r DeliveryRequest) Label() string {
	if r.NormalizedAddress != "" {
		return r.NormalizedAddress
	}
	return strings.TrimSpace(r.Address)
}

// Remove duplicate requests by DedupeKey, keeping the first occurrence.
// Input order is preserved.
func Dedupe(requests []DeliveryRequest) []DeliveryRequest {
	seen := make(map[string]struct{}, len(requests))
	out := make([]DeliveryRequest, 0, len(requests))
	for _, r := range requests {
		k := r.DedupeKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
