// Package tariff computes the pre-tax base amount for metered water
// consumption. The engine is pure: no I/O, no state, no clock.
//
// Dispatch is a closed enum over connection categories. Schedules are
// validated once at load/seed time, so a malformed schedule never reaches
// the calculation path.
package tariff

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/openwater/aquabill/pkg/money"
)

// Category selects the tariff branch for a connection.
type Category string

const (
	CategoryDomestic       Category = "domestic"
	CategoryFountain       Category = "fountain"
	CategoryMunicipal      Category = "municipal"
	CategoryPublicCommerce Category = "public_commerce"
	CategoryIndustrial     Category = "industrial"
)

var (
	ErrInvalidCategory     = errors.New("invalid_category")
	ErrMalformedSchedule   = errors.New("malformed_schedule")
	ErrNegativeConsumption = errors.New("negative_consumption")
)

// ParseCategory maps a stored category value to the closed enum.
func ParseCategory(value string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryDomestic:
		return CategoryDomestic, nil
	case CategoryFountain:
		return CategoryFountain, nil
	case CategoryMunicipal:
		return CategoryMunicipal, nil
	case CategoryPublicCommerce:
		return CategoryPublicCommerce, nil
	case CategoryIndustrial:
		return CategoryIndustrial, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, value)
	}
}

// Band is one progressive consumption tier. Max <= 0 means open-ended.
type Band struct {
	Min       float64
	Max       float64
	UnitPrice float64
}

// open reports whether the band has no upper bound.
func (b Band) open() bool { return b.Max <= 0 }

// FlatWithMinimum is the public-commerce/industrial shape: a base fee covers
// consumption up to MinConsumption, overage is billed per unit beyond it.
type FlatWithMinimum struct {
	BaseFee        float64
	MinConsumption float64
	OverageRate    float64
}

// Schedule is the full rate schedule a System carries.
type Schedule struct {
	AvailabilityFee float64

	FountainRate float64

	DomesticBands [3]Band

	// Municipal billing is either the same three-band shape as Domestic or a
	// flat per-unit rate, controlled by MunicipalTiered.
	MunicipalTiered   bool
	MunicipalBands    [3]Band
	MunicipalFlatRate float64

	Commerce   FlatWithMinimum
	Industrial FlatWithMinimum
}

// Validate checks every branch of the schedule. It is called when a System
// is loaded or seeded, never during calculation.
func (s Schedule) Validate() error {
	if s.AvailabilityFee < 0 {
		return fmt.Errorf("%w: negative availability fee", ErrMalformedSchedule)
	}
	if s.FountainRate <= 0 {
		return fmt.Errorf("%w: fountain rate must be positive", ErrMalformedSchedule)
	}
	if err := validateBands("domestic", s.DomesticBands); err != nil {
		return err
	}
	if s.MunicipalTiered {
		if err := validateBands("municipal", s.MunicipalBands); err != nil {
			return err
		}
	} else if s.MunicipalFlatRate <= 0 {
		return fmt.Errorf("%w: municipal flat rate must be positive", ErrMalformedSchedule)
	}
	if err := validateFlatWithMinimum("public_commerce", s.Commerce); err != nil {
		return err
	}
	return validateFlatWithMinimum("industrial", s.Industrial)
}

func validateBands(branch string, bands [3]Band) error {
	if bands[0].Min != 0 {
		return fmt.Errorf("%w: %s band 1 must start at 0", ErrMalformedSchedule, branch)
	}
	for i, b := range bands {
		if b.UnitPrice <= 0 {
			return fmt.Errorf("%w: %s band %d unit price must be positive", ErrMalformedSchedule, branch, i+1)
		}
		if i < 2 {
			if b.open() || b.Max <= b.Min {
				return fmt.Errorf("%w: %s band %d upper bound must exceed lower bound", ErrMalformedSchedule, branch, i+1)
			}
			if bands[i+1].Min != b.Max {
				return fmt.Errorf("%w: %s bands %d and %d are not contiguous", ErrMalformedSchedule, branch, i+1, i+2)
			}
		}
	}
	if !bands[2].open() {
		return fmt.Errorf("%w: %s band 3 must be open-ended", ErrMalformedSchedule, branch)
	}
	return nil
}

func validateFlatWithMinimum(branch string, f FlatWithMinimum) error {
	if f.BaseFee <= 0 {
		return fmt.Errorf("%w: %s base fee must be positive", ErrMalformedSchedule, branch)
	}
	if f.MinConsumption < 0 || f.OverageRate < 0 {
		return fmt.Errorf("%w: %s minimum consumption and overage rate must be non-negative", ErrMalformedSchedule, branch)
	}
	return nil
}

// ComputeBaseAmount returns the pre-tax amount for the given category and
// consumption against the schedule. Amounts are rounded to two decimals
// after every accumulation step.
func ComputeBaseAmount(category Category, consumption float64, schedule Schedule) (float64, error) {
	if consumption < 0 || math.IsNaN(consumption) || math.IsInf(consumption, 0) {
		return 0, ErrNegativeConsumption
	}

	switch category {
	case CategoryFountain:
		return money.Round(consumption * schedule.FountainRate), nil
	case CategoryDomestic:
		return tieredAmount(schedule.AvailabilityFee, consumption, schedule.DomesticBands), nil
	case CategoryMunicipal:
		if schedule.MunicipalTiered {
			return tieredAmount(schedule.AvailabilityFee, consumption, schedule.MunicipalBands), nil
		}
		amount := money.Round(schedule.AvailabilityFee)
		return money.Round(amount + consumption*schedule.MunicipalFlatRate), nil
	case CategoryPublicCommerce:
		return flatWithMinimumAmount(consumption, schedule.Commerce), nil
	case CategoryIndustrial:
		return flatWithMinimumAmount(consumption, schedule.Industrial), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
}

// tieredAmount sums per-band contributions independently: each band bills
// the slice of consumption that falls inside it.
func tieredAmount(availabilityFee, consumption float64, bands [3]Band) float64 {
	amount := money.Round(availabilityFee)
	for _, band := range bands {
		if consumption <= band.Min {
			continue
		}
		upper := consumption
		if !band.open() && upper > band.Max {
			upper = band.Max
		}
		amount = money.Round(amount + (upper-band.Min)*band.UnitPrice)
	}
	return amount
}

func flatWithMinimumAmount(consumption float64, f FlatWithMinimum) float64 {
	amount := money.Round(f.BaseFee)
	if consumption > f.MinConsumption {
		amount = money.Round(amount + (consumption-f.MinConsumption)*f.OverageRate)
	}
	return amount
}
