package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchedule() Schedule {
	return Schedule{
		AvailabilityFee: 50,
		FountainRate:    12.5,
		DomesticBands: [3]Band{
			{Min: 0, Max: 5, UnitPrice: 225.81},
			{Min: 5, Max: 10, UnitPrice: 65.91},
			{Min: 10, UnitPrice: 74.11},
		},
		MunicipalTiered:   false,
		MunicipalFlatRate: 30,
		Commerce: FlatWithMinimum{
			BaseFee:        500,
			MinConsumption: 20,
			OverageRate:    40,
		},
		Industrial: FlatWithMinimum{
			BaseFee:        1200,
			MinConsumption: 50,
			OverageRate:    60,
		},
	}
}

func TestComputeBaseAmount_Fountain(t *testing.T) {
	amount, err := ComputeBaseAmount(CategoryFountain, 8, testSchedule())
	require.NoError(t, err)
	assert.Equal(t, 100.0, amount)
}

func TestComputeBaseAmount_Domestic_WithinFirstBand(t *testing.T) {
	schedule := testSchedule()

	amount, err := ComputeBaseAmount(CategoryDomestic, 3, schedule)
	require.NoError(t, err)

	// availability fee + 3 units at the band-1 rate only
	assert.Equal(t, 50+money2(3*225.81), amount)
}

func TestComputeBaseAmount_Domestic_SpansAllBands(t *testing.T) {
	schedule := testSchedule()

	amount, err := ComputeBaseAmount(CategoryDomestic, 12, schedule)
	require.NoError(t, err)

	// 5 units in band 1, 5 in band 2, 2 in the open band 3
	expected := 50.0
	expected = money2(expected + 5*225.81)
	expected = money2(expected + 5*65.91)
	expected = money2(expected + 2*74.11)
	assert.Equal(t, expected, amount)
}

func TestComputeBaseAmount_Domestic_ZeroConsumption(t *testing.T) {
	amount, err := ComputeBaseAmount(CategoryDomestic, 0, testSchedule())
	require.NoError(t, err)
	assert.Equal(t, 50.0, amount)
}

func TestComputeBaseAmount_Municipal_Flat(t *testing.T) {
	amount, err := ComputeBaseAmount(CategoryMunicipal, 4, testSchedule())
	require.NoError(t, err)
	assert.Equal(t, 50+4*30.0, amount)
}

func TestComputeBaseAmount_Municipal_Tiered(t *testing.T) {
	schedule := testSchedule()
	schedule.MunicipalTiered = true
	schedule.MunicipalBands = [3]Band{
		{Min: 0, Max: 10, UnitPrice: 20},
		{Min: 10, Max: 20, UnitPrice: 30},
		{Min: 20, UnitPrice: 40},
	}

	amount, err := ComputeBaseAmount(CategoryMunicipal, 25, schedule)
	require.NoError(t, err)
	assert.Equal(t, 50+10*20+10*30+5*40.0, amount)
}

func TestComputeBaseAmount_CommerceAndIndustrial(t *testing.T) {
	schedule := testSchedule()

	// at or below the minimum: base fee only
	amount, err := ComputeBaseAmount(CategoryPublicCommerce, 20, schedule)
	require.NoError(t, err)
	assert.Equal(t, 500.0, amount)

	// beyond the minimum: base fee plus overage
	amount, err = ComputeBaseAmount(CategoryPublicCommerce, 25, schedule)
	require.NoError(t, err)
	assert.Equal(t, 500+5*40.0, amount)

	amount, err = ComputeBaseAmount(CategoryIndustrial, 49, schedule)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, amount)

	amount, err = ComputeBaseAmount(CategoryIndustrial, 51, schedule)
	require.NoError(t, err)
	assert.Equal(t, 1200+1*60.0, amount)
}

func TestComputeBaseAmount_MonotonicInConsumption(t *testing.T) {
	schedule := testSchedule()
	categories := []Category{
		CategoryDomestic,
		CategoryFountain,
		CategoryMunicipal,
		CategoryPublicCommerce,
		CategoryIndustrial,
	}

	for _, category := range categories {
		previous := -1.0
		for consumption := 0.0; consumption <= 60; consumption += 0.5 {
			amount, err := ComputeBaseAmount(category, consumption, schedule)
			require.NoError(t, err)
			assert.GreaterOrEqualf(t, amount, previous,
				"%s: amount decreased at consumption %.1f", category, consumption)
			previous = amount
		}
	}
}

func TestComputeBaseAmount_InvalidCategory(t *testing.T) {
	_, err := ComputeBaseAmount(Category("cemetery"), 10, testSchedule())
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestComputeBaseAmount_NegativeConsumption(t *testing.T) {
	_, err := ComputeBaseAmount(CategoryDomestic, -1, testSchedule())
	assert.ErrorIs(t, err, ErrNegativeConsumption)
}

func TestParseCategory(t *testing.T) {
	category, err := ParseCategory(" Domestic ")
	require.NoError(t, err)
	assert.Equal(t, CategoryDomestic, category)

	_, err = ParseCategory("swimming_pool")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestScheduleValidate(t *testing.T) {
	assert.NoError(t, testSchedule().Validate())

	broken := testSchedule()
	broken.DomesticBands[1].Min = 6 // gap between band 1 and band 2
	assert.ErrorIs(t, broken.Validate(), ErrMalformedSchedule)

	broken = testSchedule()
	broken.DomesticBands[2].Max = 100 // band 3 must stay open-ended
	assert.ErrorIs(t, broken.Validate(), ErrMalformedSchedule)

	broken = testSchedule()
	broken.MunicipalFlatRate = 0
	assert.ErrorIs(t, broken.Validate(), ErrMalformedSchedule)

	broken = testSchedule()
	broken.MunicipalTiered = true // bands not configured
	assert.ErrorIs(t, broken.Validate(), ErrMalformedSchedule)

	broken = testSchedule()
	broken.Commerce.BaseFee = 0
	assert.ErrorIs(t, broken.Validate(), ErrMalformedSchedule)
}

func money2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
