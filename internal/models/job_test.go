package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperationValid(t *testing.T) {
	for _, op := range Operations() {
		assert.True(t, op.Valid(), "operation %s should be valid", op)
	}

	assert.False(t, Operation("rotate").Valid())
	assert.False(t, Operation("").Valid())
	assert.False(t, Operation("COMPRESS").Valid(), "operations are case sensitive")
}

func TestJobRecordValidate(t *testing.T) {
	valid := JobRecord{
		ID:        "job-1",
		Operation: OperationConvert,
		Outcome:   "succeeded",
		ClientKey: "10.0.0.1",
		CreatedAt: time.Now(),
	}
	assert.NoError(t, valid.Validate())

	rec := valid
	rec.ID = ""
	assert.Error(t, rec.Validate())

	rec = valid
	rec.Operation = "rotate"
	assert.Error(t, rec.Validate())

	rec = valid
	rec.Outcome = ""
	assert.Error(t, rec.Validate())

	rec = valid
	rec.CreatedAt = time.Time{}
	assert.Error(t, rec.Validate())
}
