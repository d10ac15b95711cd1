//go:build !integration

package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCounters(t *testing.T) {
	report := NewReport()
	assert.True(t, report.OK())
	assert.Equal(t, "Found 0 formatting and 0 validation errors", report.Summary())
	assert.NoError(t, report.Err())

	report.AddFormatting("cycles.json", ErrNotCanonical)
	report.AddValidation("packs.json", "pack Core Set", errors.New("at '/' [required]: missing property 'code'"))
	report.AddValidation("pack/core.json", "", ErrNotAList)

	assert.False(t, report.OK())
	assert.Equal(t, 1, report.FormattingErrors())
	assert.Equal(t, 2, report.ValidationErrors())
	assert.Equal(t, "Found 1 formatting and 2 validation errors", report.Summary())

	defects := report.Defects()
	require.Len(t, defects, 3)
	assert.Equal(t, FormattingDefect, defects[0].Kind)
	assert.Equal(t, "packs.json: pack Core Set: at '/' [required]: missing property 'code'", defects[1].Error())
	assert.Equal(t, "pack/core.json: document is not a list", defects[2].Error())
	assert.ErrorIs(t, defects[2], ErrNotAList)

	assert.Len(t, report.DefectsOf(ValidationDefect), 2)
}

func TestReportOnlyFormatting(t *testing.T) {
	report := NewReport()
	report.AddFormatting("cycles.json", ErrNotCanonical)

	assert.False(t, report.OK(), "formatting drift alone fails the run")
	assert.Equal(t, 0, report.ValidationErrors())
}

func TestReportErr(t *testing.T) {
	report := NewReport()
	report.AddValidation("packs.json", "pack wla", errors.New("line one\nline two"))

	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "Found 0 formatting and 1 validation errors")
	assert.Contains(t, err.Error(), "validation packs.json: pack wla: line one\n    line two")
}

func TestDefectsReturnsCopy(t *testing.T) {
	report := NewReport()
	report.AddFormatting("a.json", ErrNotCanonical)

	defects := report.Defects()
	defects[0].Path = "changed"
	assert.Equal(t, "a.json", report.Defects()[0].Path)
}

func TestDefectKindString(t *testing.T) {
	assert.Equal(t, "formatting", FormattingDefect.String())
	assert.Equal(t, "validation", ValidationDefect.String())
	assert.Equal(t, "DefectKind(7)", DefectKind(7).String())
}
