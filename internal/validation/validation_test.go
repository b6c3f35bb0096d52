package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("value", "field"))
	assert.Error(t, ValidateRequired("", "field"))
	assert.Error(t, ValidateRequired("   ", "field"))
}

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID("550e8400-e29b-41d4-a716-446655440001", "id"))
	assert.Error(t, ValidateUUID("not-a-uuid", "id"))
}

func TestValidateDonationAmount(t *testing.T) {
	v := DonationValidation{}
	assert.NoError(t, v.ValidateAmount(25))
	assert.NoError(t, v.ValidateAmount(0.01))
	assert.Error(t, v.ValidateAmount(0))
	assert.Error(t, v.ValidateAmount(-10))
	assert.Error(t, v.ValidateAmount(2_000_000))
}

func TestValidateCredentials(t *testing.T) {
	v := LoginValidation{}
	assert.NoError(t, v.ValidateCredentials("admin", "secret"))
	assert.Error(t, v.ValidateCredentials("", "secret"))
	assert.Error(t, v.ValidateCredentials("admin", ""))
}

func TestValidateFilterValue(t *testing.T) {
	v := FilterValidation{}
	assert.NoError(t, v.ValidateFilterValue("", "city"), "absent filters are valid")
	assert.NoError(t, v.ValidateFilterValue("Provo", "city"))

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	assert.Error(t, v.ValidateFilterValue(string(long), "city"))
}
