package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBusinessYears(t *testing.T) {
	tests := []struct {
		name string
		fye  string
		now  time.Time
		want []string
	}{
		{
			name: "calendar year",
			fye:  "31.12.",
			now:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			want: []string{"2025e", "2024e", "2023", "2022", "2021"},
		},
		{
			name: "calendar year on new year's eve",
			fye:  "31.12.",
			now:  time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC),
			want: []string{"2025e", "2024e", "2023", "2022", "2021"},
		},
		{
			name: "split year before fiscal year end",
			fye:  "30.09.",
			now:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			want: []string{"24/25e", "23/24e", "22/23", "21/22", "20/21"},
		},
		{
			name: "split year on the fiscal year end",
			fye:  "30.09.",
			now:  time.Date(2024, 9, 30, 12, 0, 0, 0, time.UTC),
			want: []string{"24/25e", "23/24e", "22/23", "21/22", "20/21"},
		},
		{
			name: "split year after fiscal year end",
			fye:  "30.09.",
			now:  time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
			want: []string{"25/26e", "24/25e", "23/24", "22/23", "21/22"},
		},
		{
			name: "split year across the century",
			fye:  "31.03.",
			now:  time.Date(2099, 5, 1, 0, 0, 0, 0, time.UTC),
			want: []string{"00/01e", "99/00e", "98/99", "97/98", "96/97"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBusinessYears(tt.fye, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveBusinessYears_SplitShiftsAtFiscalYearEnd(t *testing.T) {
	before, err := ResolveBusinessYears("30.09.", time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	after, err := ResolveBusinessYears("30.09.", time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.NotEqual(t, before[1], after[1])
}

func TestResolveBusinessYears_Invalid(t *testing.T) {
	for _, fye := range []string{"", "31.", "ab.cd.", "32.01.", "15.13.", "1.1.2024"} {
		t.Run(fye, func(t *testing.T) {
			_, err := ResolveBusinessYears(fye, time.Now())
			assert.True(t, errors.Is(err, ErrFiscalYearEnd))
		})
	}
}

func TestParseFiscalYearEnd(t *testing.T) {
	html := `<div><span>Geschäftsjahresende: 31.12.</span><p>x</p><span>Geschäftsjahresende:  30.06.</span></div>`

	fye, err := ParseFiscalYearEnd(html)
	require.NoError(t, err)
	assert.Equal(t, "30.06.", fye)

	_, err = ParseFiscalYearEnd(`<span>Branche: Software</span>`)
	assert.True(t, errors.Is(err, ErrFiscalYearEnd))
}
