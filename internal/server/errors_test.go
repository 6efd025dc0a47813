package server

import (
	"fmt"
	"net/http"
	"testing"

	connectiondomain "github.com/openwater/aquabill/internal/connection/domain"
	customerdomain "github.com/openwater/aquabill/internal/customer/domain"
	invoicedomain "github.com/openwater/aquabill/internal/invoice/domain"
	readingdomain "github.com/openwater/aquabill/internal/reading/domain"
	sequencedomain "github.com/openwater/aquabill/internal/sequence/domain"
	systemdomain "github.com/openwater/aquabill/internal/system/domain"
	"github.com/openwater/aquabill/internal/tariff"
	"github.com/stretchr/testify/assert"
)

func TestMapError_ServerConfigurationFaults(t *testing.T) {
	// an unresolvable system or a broken schedule is the operator's fault,
	// never the caller's
	for _, err := range []error{
		readingdomain.ErrSystemNotFound,
		connectiondomain.ErrSystemMissing,
		systemdomain.ErrNotFound,
		tariff.ErrMalformedSchedule,
		tariff.ErrInvalidCategory,
		fmt.Errorf("compute: %w", tariff.ErrMalformedSchedule),
	} {
		status, payload := mapError(err)
		assert.Equal(t, http.StatusInternalServerError, status, "error %v", err)
		assert.Equal(t, "internal_error", payload.Type, "error %v", err)
	}
}

func TestMapError_NotFoundClass(t *testing.T) {
	for _, err := range []error{
		customerdomain.ErrNotFound,
		readingdomain.ErrCustomerNotFound,
		readingdomain.ErrConnectionNotFound,
		readingdomain.ErrOwnershipMismatch,
		invoicedomain.ErrOwnershipMismatch,
	} {
		status, payload := mapError(err)
		assert.Equal(t, http.StatusNotFound, status, "error %v", err)
		assert.Equal(t, "not_found", payload.Type, "error %v", err)
	}
}

func TestMapError_ValidationClass(t *testing.T) {
	status, payload := mapError(readingdomain.ErrReadingRegression)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)

	status, _ = mapError(connectiondomain.ErrInvalidCategory)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMapError_TransientAndAuth(t *testing.T) {
	status, _ := mapError(readingdomain.ErrMissingActor)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = mapError(ErrRateLimited)
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, _ = mapError(sequencedomain.ErrAllocatorUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
