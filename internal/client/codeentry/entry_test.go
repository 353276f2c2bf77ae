package codeentry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_LeftToRightSubmitsOnce(t *testing.T) {
	e := New(6)
	var submitted []string

	for i, d := range []string{"1", "2", "3", "4", "5", "6"} {
		if code, ok := e.Input(i, d); ok {
			submitted = append(submitted, code)
		}
		if i < 5 {
			assert.Equal(t, i+1, e.Focus(), "focus advances after cell %d", i)
		}
	}

	assert.Equal(t, []string{"123456"}, submitted)
	assert.Equal(t, "123456", e.Code())
	assert.Equal(t, 5, e.Focus(), "focus stays on the last cell")
	assert.True(t, e.Complete())
}

func TestInput_AllDigitSequences(t *testing.T) {
	codes := []string{"000000", "999999", "010203", "908172"}
	for _, want := range codes {
		e := New(6)
		count := 0
		var got string
		for i := 0; i < len(want); i++ {
			if code, ok := e.Input(i, want[i:i+1]); ok {
				count++
				got = code
			}
		}
		assert.Equal(t, 1, count, want)
		assert.Equal(t, want, got)
	}
}

func TestInput_RejectsNonDigits(t *testing.T) {
	e := New(6)
	_, ok := e.Input(0, "a")
	assert.False(t, ok)
	_, _ = e.Input(0, "7")
	_, _ = e.Input(1, "x")

	assert.Equal(t, []string{"7", "", "", "", "", ""}, e.Cells())
	assert.Equal(t, 1, e.Focus())
}

func TestInput_OutOfRangeIgnored(t *testing.T) {
	e := New(6)
	_, ok := e.Input(6, "1")
	assert.False(t, ok)
	_, ok = e.Input(-1, "1")
	assert.False(t, ok)
	assert.Equal(t, "", e.Code())
}

func TestInput_Paste(t *testing.T) {
	e := New(6)
	code, ok := e.Input(0, "123456")
	require.True(t, ok)
	assert.Equal(t, "123456", code)
	assert.Equal(t, 5, e.Focus())

	e = New(6)
	_, ok = e.Input(2, "9999999")
	assert.False(t, ok)
	assert.Equal(t, []string{"", "", "9", "9", "9", "9"}, e.Cells())
}

func TestBackspace_FilledCellClearsInPlace(t *testing.T) {
	e := New(6)
	_, _ = e.Input(0, "1")
	_, _ = e.Input(1, "2")

	e.Backspace(1)

	assert.Equal(t, []string{"1", "", "", "", "", ""}, e.Cells())
	assert.Equal(t, 1, e.Focus())
}

func TestBackspace_EmptyCellRetreats(t *testing.T) {
	for i := 1; i < 6; i++ {
		e := New(6)
		for j := 0; j < i; j++ {
			_, _ = e.Input(j, "5")
		}

		e.Backspace(i)

		assert.Equal(t, i-1, e.Focus())
		assert.Equal(t, "5", e.Cells()[i-1], "previous digit is kept")
	}
}

func TestBackspace_RetreatThenClear(t *testing.T) {
	e := New(6)
	_, _ = e.Input(0, "123")

	e.Backspace(3)
	assert.Equal(t, []string{"1", "2", "3", "", "", ""}, e.Cells())
	assert.Equal(t, 2, e.Focus())

	e.Backspace(e.Focus())
	assert.Equal(t, []string{"1", "2", "", "", "", ""}, e.Cells())
	assert.Equal(t, 2, e.Focus())
}

func TestBackspace_FirstEmptyCellStays(t *testing.T) {
	e := New(6)
	e.Backspace(0)
	assert.Equal(t, 0, e.Focus())
}

func TestInput_EmptyTextClearsCell(t *testing.T) {
	e := New(6)
	_, _ = e.Input(0, "123")
	_, _ = e.Input(1, "")
	assert.Equal(t, []string{"1", "", "3", "", "", ""}, e.Cells())
	assert.Equal(t, 1, e.Focus())
}

func TestLatch_EditInPlaceDoesNotResubmit(t *testing.T) {
	e := New(6)
	_, ok := e.Input(0, "123456")
	require.True(t, ok)

	_, ok = e.Input(3, "9")
	assert.False(t, ok, "replacing a digit keeps the code complete")
	assert.Equal(t, "123956", e.Code())
	assert.True(t, e.Submitted())
}

func TestLatch_ReArmsWhenIncomplete(t *testing.T) {
	e := New(6)
	_, ok := e.Input(0, "123456")
	require.True(t, ok)

	e.Backspace(5)
	assert.False(t, e.Submitted())

	code, ok := e.Input(5, "0")
	require.True(t, ok)
	assert.Equal(t, "123450", code)
}

func TestClear(t *testing.T) {
	e := New(6)
	_, _ = e.Input(0, "123456")

	e.Clear()

	assert.Equal(t, "", e.Code())
	assert.Equal(t, 0, e.Focus())
	assert.False(t, e.Submitted())
	code, ok := e.Input(0, "654321")
	require.True(t, ok)
	assert.Equal(t, "654321", code)
}

func TestNew_DefaultLength(t *testing.T) {
	assert.Equal(t, 6, New(0).Len())
	assert.Equal(t, 4, New(4).Len())
}
