package reports

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_AllTypes(t *testing.T) {
	require.Len(t, Types(), 4)

	for _, rt := range Types() {
		t.Run(string(rt), func(t *testing.T) {
			data, ok := Template(rt)
			require.True(t, ok)

			records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, 3, "header plus exactly two rows")

			cols, _ := Columns(rt)
			assert.Equal(t, cols, records[0])
			for _, row := range records[1:] {
				assert.Len(t, row, len(cols))
			}
		})
	}
}

func TestTemplate_UnknownType(t *testing.T) {
	data, ok := Template("inventory")
	assert.False(t, ok)
	assert.Nil(t, data)

	_, ok = Columns("inventory")
	assert.False(t, ok)
}

func TestTemplate_HeaderLine(t *testing.T) {
	data, ok := Template(CallOutcomes)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(data), "call_date,phone_number,campaign"))
	assert.Equal(t, "call_outcomes_template.csv", Filename(CallOutcomes))
}

func TestDescribe(t *testing.T) {
	infos := Describe()
	require.Len(t, infos, 4)
	assert.Equal(t, AppointmentSchedule, infos[0].Type)
	assert.NotEmpty(t, infos[0].Title)
}

func TestValidateUpload_TemplateRoundTrip(t *testing.T) {
	for _, rt := range Types() {
		data, _ := Template(rt)
		summary, err := ValidateUpload(rt, bytes.NewReader(data))
		require.NoError(t, err, rt)
		assert.Equal(t, 2, summary.Rows)
	}
}

func TestValidateUpload_Errors(t *testing.T) {
	_, err := ValidateUpload("inventory", strings.NewReader("a,b\n"))
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = ValidateUpload(PatientVisits, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyUpload)

	_, err = ValidateUpload(PatientVisits, strings.NewReader("visit_date,patient_name\n"))
	var mismatch *HeaderMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Contains(t, mismatch.Missing, "doctor")
	assert.Empty(t, mismatch.Unexpected)

	header := "visit_date,patient_name,patient_id,department,doctor,visit_type,ward\n"
	_, err = ValidateUpload(PatientVisits, strings.NewReader(header))
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"status"}, mismatch.Missing)
	assert.Equal(t, []string{"ward"}, mismatch.Unexpected)

	good := "visit_date,patient_name,patient_id,department,doctor,visit_type,status\n2024-01-15,John\n"
	_, err = ValidateUpload(PatientVisits, strings.NewReader(good))
	assert.ErrorContains(t, err, "data row 1")
}

func TestValidateUpload_StripsBOM(t *testing.T) {
	data, _ := Template(RevenueSummary)
	withBOM := append([]byte("\ufeff"), data...)

	summary, err := ValidateUpload(RevenueSummary, bytes.NewReader(withBOM))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Rows)
}
