package rfm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_DropsRowsWithAnyMissingValue(t *testing.T) {
	table, err := Read(strings.NewReader(header +
		"536365,85123A,MUG,6,01/12/2010 08:26,2.55,17850,United Kingdom\n" +
		"536366,85123A,MUG,6,01/12/2010 08:26,2.55,,United Kingdom\n" +
		"536367,85123A,,6,01/12/2010 08:26,2.55,13047,United Kingdom\n" +
		"536368,85123A,MUG,2,02/12/2010 09:00,1.00,13047,NA\n" +
		"536369,85123A,MUG,3,02/12/2010 09:00,1.00,13047.0,France\n" +
		"536370,85123A,MUG,1,02/12/2010 09:00,1.00,n/a,France\n" +
		"536371,85123A,<NA>,1,02/12/2010 09:00,1.00,13047,France\n" +
		"536372,85123A,MUG,1,02/12/2010 09:00,1.00,13047,1.#QNAN\n" +
		"536373,85123A, ,1,02/12/2010 09:00,1.00,12583,France\n"))
	require.NoError(t, err)

	cleaned, err := Clean(table)
	require.NoError(t, err)

	assert.Equal(t, 6, cleaned.Dropped)
	require.Len(t, cleaned.Rows, 3)
	assert.Equal(t, "17850", cleaned.Rows[0].CustomerID)
	assert.Equal(t, "13047", cleaned.Rows[1].CustomerID)
	assert.Equal(t, int64(3), cleaned.Rows[1].Quantity)
	assertAmount(t, "1", cleaned.Rows[1].UnitPrice)
	assert.Equal(t, "12583", cleaned.Rows[2].CustomerID, "descrição só com espaço não é ausente")
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "NA", "N/A", "n/a", "<NA>", "#N/A", "#N/A N/A", "#NA", "NaN", "-NaN", "nan", "-nan",
		"1.#IND", "-1.#IND", "1.#QNAN", "-1.#QNAN", "NULL", "null", "None"} {
		assert.Truef(t, isMissing(v), "%q deveria ser ausente", v)
	}
	for _, v := range []string{" ", "na", " NA", "0", "none"} {
		assert.Falsef(t, isMissing(v), "%q não deveria ser ausente", v)
	}
}

func TestClean_NeverIntroducesCustomers(t *testing.T) {
	table, err := Read(strings.NewReader(header +
		"536365,85123A,MUG,6,01/12/2010 08:26,2.55,17850,United Kingdom\n" +
		"536366,85123A,MUG,6,,2.55,12583,France\n" +
		"536367,85123A,MUG,1,01/12/2010 08:26,2.55,12583.0,France\n"))
	require.NoError(t, err)

	before := map[string]struct{}{}
	idx := table.ColumnIndex("CustomerID")
	for _, r := range table.Rows {
		before[NormalizeCustomerID(r.Values[idx])] = struct{}{}
	}

	cleaned, err := Clean(table)
	require.NoError(t, err)
	assert.Len(t, cleaned.Rows, 2)
	for _, r := range cleaned.Rows {
		assert.Contains(t, before, r.CustomerID)
	}
}

func TestClean_AllRowsMissing(t *testing.T) {
	table, err := Read(strings.NewReader(header +
		"536365,85123A,MUG,6,01/12/2010 08:26,2.55,,United Kingdom\n"))
	require.NoError(t, err)

	_, err = Clean(table)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCleaning)
	assert.Equal(t, KindCleaning, KindOf(err))
}

func TestNormalizeCustomerID(t *testing.T) {
	tests := map[string]string{
		"17850":    "17850",
		"17850.0":  "17850",
		"17850.00": "17850",
		" 17850 ":  "17850",
		"1.785e4":  "17850",
		"12.5":     "12.5",
		"C-001":    "C-001",
		"abc ":     "abc",
		" ":        " ",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCustomerID(in), in)
	}
}
